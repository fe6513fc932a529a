// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import (
	"strconv"
	"strings"
	"time"
)

// RuleAction is the daemon's decision for a matching connection.
// Unknown values decode to ActionAllow per §7.
type RuleAction string

const (
	ActionAllow RuleAction = "allow"
	ActionDeny  RuleAction = "deny"
	ActionReject RuleAction = "reject"
)

// ParseRuleAction coerces an arbitrary string into a known RuleAction,
// defaulting to ActionAllow for anything unrecognized.
func ParseRuleAction(s string) RuleAction {
	switch RuleAction(strings.ToLower(s)) {
	case ActionAllow, ActionDeny, ActionReject:
		return RuleAction(strings.ToLower(s))
	default:
		return ActionAllow
	}
}

// Duration is a rule's lifetime. Temporary durations carry a second
// count via Seconds(), computed from the fixed table below; Once and
// Always/UntilRestart carry no count.
type Duration string

const (
	DurationOnce         Duration = "once"
	DurationUntilRestart Duration = "until-restart"
	DurationAlways       Duration = "always"
	Duration5m           Duration = "5m"
	Duration15m          Duration = "15m"
	Duration30m          Duration = "30m"
	Duration1h           Duration = "1h"
	Duration12h          Duration = "12h"
	Duration24h          Duration = "24h"
)

var durationSeconds = map[Duration]int64{
	Duration5m:  5 * 60,
	Duration15m: 15 * 60,
	Duration30m: 30 * 60,
	Duration1h:  60 * 60,
	Duration12h: 12 * 60 * 60,
	Duration24h: 24 * 60 * 60,
}

// ParseDuration coerces an arbitrary string into a known Duration,
// defaulting to DurationOnce for anything unrecognized.
func ParseDuration(s string) Duration {
	switch Duration(s) {
	case DurationOnce, DurationUntilRestart, DurationAlways,
		Duration5m, Duration15m, Duration30m, Duration1h, Duration12h, Duration24h:
		return Duration(s)
	default:
		return DurationOnce
	}
}

// Seconds returns the temporary duration's second count, and false for
// Once/UntilRestart/Always which have no fixed expiry.
func (d Duration) Seconds() (int64, bool) {
	secs, ok := durationSeconds[d]
	return secs, ok
}

// ExpiresAt computes the absolute expiry of a rule created at `created`
// with this duration. The second return is false when the rule has no
// fixed expiry (Once is resolved by the daemon after first use,
// UntilRestart/Always have no timer).
func (d Duration) ExpiresAt(created time.Time) (time.Time, bool) {
	secs, ok := d.Seconds()
	if !ok {
		return time.Time{}, false
	}
	return created.Add(time.Duration(secs) * time.Second), true
}

// Rule is a matcher plus action scoped to one node.
type Rule struct {
	Name        string
	Description string
	Enabled     bool
	Precedence  bool
	NoLog       bool
	Action      RuleAction
	Duration    Duration
	Operator    Operator
	Created     time.Time
	Updated     time.Time
}

// DefaultName synthesizes the "<process-basename>-<dst_port>" rule
// name used by both the monitor-mode policy (§4.1 op 3) and the
// interactive-policy timeout fallback (§4.3).
func DefaultName(processPath string, dstPort int) string {
	base := processPath
	if idx := strings.LastIndexByte(processPath, '/'); idx >= 0 {
		base = processPath[idx+1:]
	}
	if base == "" {
		base = "unknown"
	}
	return base + "-" + strconv.Itoa(dstPort)
}

// DefaultRule builds the monitor-mode / timeout-fallback default rule
// for a connection: a simple operator on process.path, named
// "<process-basename>-<dst_port>" (§4.1, §4.3), taking its action and
// duration from the configured defaults (Settings.DefaultAction /
// Settings.DefaultDuration) rather than hardcoding allow/once.
func DefaultRule(processPath string, dstPort int, action RuleAction, duration Duration, now time.Time) Rule {
	return Rule{
		Name:     DefaultName(processPath, dstPort),
		Enabled:  true,
		Action:   action,
		Duration: duration,
		Operator: NewSimple(OperandProcessPath, processPath),
		Created:  now,
		Updated:  now,
	}
}
