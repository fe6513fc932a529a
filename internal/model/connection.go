// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

// Connection is an intercepted flow, as reported by a daemon's AskRule
// call or embedded in a Statistics push's event batch.
type Connection struct {
	Protocol string

	SrcIP   string
	SrcPort int

	DstIP   string
	DstHost string
	DstPort int

	UserID int

	ProcessID       int
	ProcessPath     string
	ProcessCwd      string
	ProcessArgs     []string
	ProcessEnv      map[string]string
	ProcessTree     []int
	ChecksumMD5     string
	ChecksumSHA1    string

	// Decision fields, populated once the daemon (via this mediator)
	// has reached a verdict.
	Action   RuleAction
	RuleName string
}
