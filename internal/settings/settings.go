// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package settings holds the mediator's Settings record (§6). Loading
// these values from a file, flag set, or environment is an out-of-scope
// external concern (§1 Non-goals); callers construct a Settings
// directly (e.g. from their own flag parsing) and pass it in.
package settings

import "time"

// AskRulePolicy selects how an unmatched connection is decided.
type AskRulePolicy string

const (
	// AskRuleMonitor auto-decides every prompt with a synthesized
	// default rule (DefaultAction/DefaultDuration, allow/once by
	// default) and never blocks on a human.
	AskRuleMonitor AskRulePolicy = "monitor"
	// AskRuleInteractive registers the prompt with the broker and
	// blocks the daemon's AskRule call until an operator responds or
	// the prompt times out.
	AskRuleInteractive AskRulePolicy = "interactive"
)

// ParseAskRulePolicy coerces s into a known AskRulePolicy, defaulting
// to AskRuleMonitor — the safer default when misconfigured, since it
// never blocks a daemon's connection decision on a human.
func ParseAskRulePolicy(s string) AskRulePolicy {
	switch AskRulePolicy(s) {
	case AskRuleMonitor, AskRuleInteractive:
		return AskRulePolicy(s)
	default:
		return AskRuleMonitor
	}
}

// Settings is the mediator's full runtime configuration (§6).
type Settings struct {
	ListenAddress string

	DatabasePath string

	DefaultAction   string
	DefaultDuration string

	PromptTimeoutSeconds int
	MaxConnections       int
	MaxAlerts            int

	// AskRulePolicy resolves §9's Open Question: whether AskRule's
	// policy (monitor vs. interactive) is caller-configurable. It is —
	// see DESIGN.md's Open-question decisions.
	AskRulePolicy AskRulePolicy

	FirewallConfigPath string
	DaemonConfigPath   string
}

// Default returns the mediator's documented default Settings.
func Default() Settings {
	return Settings{
		ListenAddress:        "unix:///var/run/mediator.sock",
		DatabasePath:         "/var/lib/mediator/mediator.db",
		DefaultAction:        "allow",
		DefaultDuration:      "once",
		PromptTimeoutSeconds: 15,
		MaxConnections:       1000,
		MaxAlerts:            500,
		AskRulePolicy:        AskRuleMonitor,
		FirewallConfigPath:   "/etc/opensnitchd/system-fw.json",
		DaemonConfigPath:     "/etc/opensnitchd/default-config.json",
	}
}

// PromptTimeout returns PromptTimeoutSeconds as a time.Duration.
func (s Settings) PromptTimeout() time.Duration {
	return time.Duration(s.PromptTimeoutSeconds) * time.Second
}
