// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import "github.com/google/uuid"

// FirewallPolicy is a chain or default policy verdict.
type FirewallPolicy string

const (
	PolicyAccept FirewallPolicy = "accept"
	PolicyDrop   FirewallPolicy = "drop"
	PolicyReject FirewallPolicy = "reject"
)

func ParseFirewallPolicy(s string) FirewallPolicy {
	switch FirewallPolicy(s) {
	case PolicyAccept, PolicyDrop, PolicyReject:
		return FirewallPolicy(s)
	default:
		return PolicyAccept
	}
}

// ChainHook names the netfilter hook point a Chain is attached to.
type ChainHook string

const (
	HookInput   ChainHook = "input"
	HookOutput  ChainHook = "output"
	HookForward ChainHook = "forward"
)

// FirewallTarget is the verdict a FirewallRule applies. Unknown values
// decode to TargetAccept per §7.
type FirewallTarget string

const (
	TargetAccept FirewallTarget = "ACCEPT"
	TargetDrop   FirewallTarget = "DROP"
	TargetReject FirewallTarget = "REJECT"
)

func ParseFirewallTarget(s string) FirewallTarget {
	switch FirewallTarget(s) {
	case TargetAccept, TargetDrop, TargetReject:
		return FirewallTarget(s)
	default:
		return TargetAccept
	}
}

// FirewallRule is one ordered rule inside a Chain. UUID is a stable
// identifier across edits (§3).
type FirewallRule struct {
	UUID        string
	Position    int
	Description string
	Enabled     bool
	Target      FirewallTarget
	Expressions []string
}

// NewFirewallRule mints a FirewallRule with a fresh stable UUID.
func NewFirewallRule(position int, description string, target FirewallTarget, expressions []string) FirewallRule {
	return FirewallRule{
		UUID:        uuid.NewString(),
		Position:    position,
		Description: description,
		Enabled:     true,
		Target:      target,
		Expressions: expressions,
	}
}

// Chain is an ordered set of FirewallRule under one hook.
type Chain struct {
	Name   string
	Hook   ChainHook
	Policy FirewallPolicy
	Table  string
	Family string
	Rules  []FirewallRule
}

// SysFirewall is the node's system-level packet-filter configuration.
type SysFirewall struct {
	Enabled bool
	Running bool
	Version int

	DefaultInput   FirewallPolicy
	DefaultOutput  FirewallPolicy
	DefaultForward FirewallPolicy

	Chains []Chain
}
