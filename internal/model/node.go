// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import (
	"time"
)

// NodeStatus is a Node's connection lifecycle state. Destroyed nodes
// (status=disconnected) are retained, not removed (§3).
type NodeStatus string

const (
	StatusConnecting   NodeStatus = "connecting"
	StatusConnected    NodeStatus = "connected"
	StatusDisconnected NodeStatus = "disconnected"
	StatusError        NodeStatus = "error"
)

// Node represents one connected daemon.
type Node struct {
	Address string // stable, unique key

	Name    string
	Version string

	Status          NodeStatus
	FirewallRunning bool
	LogLevel        int
	Config          []byte // opaque configuration blob

	Rules []Rule

	Firewall   *SysFirewall
	Statistics *Statistics

	LastSeen    time.Time
	ConnectedAt time.Time
}

// NodeSet is a mapping from address to Node plus the UI's active-node
// cursor. Not safe for concurrent use without external locking — the
// state actor (C2) is the only writer and takes the accompanying lock
// (the actor's internal state mutex) for every mutation; readers take
// its RLock for snapshot copies.
type NodeSet struct {
	Nodes         map[string]*Node
	ActiveAddress string // "" means unset
}

// NewNodeSet returns an empty NodeSet.
func NewNodeSet() *NodeSet {
	return &NodeSet{Nodes: make(map[string]*Node)}
}

// Snapshot returns a deep-enough copy of the NodeSet (new map, copied
// Node values, copied Rules slice) suitable for a reader to hold
// without further locking. Rules is copied because the actor edits its
// elements in place; the Firewall and Statistics pointers are shared
// since the actor always replaces them wholesale (see §5's "copy-out"
// policy).
func (ns *NodeSet) Snapshot() *NodeSet {
	out := &NodeSet{
		Nodes:         make(map[string]*Node, len(ns.Nodes)),
		ActiveAddress: ns.ActiveAddress,
	}
	for addr, n := range ns.Nodes {
		cp := *n
		cp.Rules = append([]Rule(nil), n.Rules...)
		out.Nodes[addr] = &cp
	}
	return out
}

// RetargetActive migrates ActiveAddress to any remaining connected
// node, or unsets it, per §3's NodeSet invariant. Called by the actor
// on every NodeDisconnected command; it leaves ActiveAddress as it is
// while that node exists and is not disconnected.
func (ns *NodeSet) RetargetActive() {
	if ns.ActiveAddress != "" {
		if n, ok := ns.Nodes[ns.ActiveAddress]; ok && n.Status != StatusDisconnected {
			return
		}
	}
	for addr, n := range ns.Nodes {
		if n.Status == StatusConnected {
			ns.ActiveAddress = addr
			return
		}
	}
	ns.ActiveAddress = ""
}
