// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package actor

import (
	"time"

	"github.com/flowmediator/mediator/internal/model"
	"github.com/flowmediator/mediator/internal/notify"
)

// Command is one unit of work processed in order by the actor's single
// run loop (§4.2). Every field is set by the caller before Submit;
// nothing about a Command is mutated once enqueued.
type Command interface{ isCommand() }

type base struct{}

func (base) isCommand() {}

// NodeConnected registers (or re-registers) a node as connected.
type NodeConnected struct {
	base
	Address string
	Name    string
	Version string
	At      time.Time
}

// NodeDisconnected marks a node disconnected: its outbound queue is
// closed, and the active node cursor is retargeted if it pointed at
// this node. Prompts still pending for the node are resolved by the RPC
// server (prompt.Broker.CancelNode) before it submits this command.
type NodeDisconnected struct {
	base
	Address string
	At      time.Time
}

// StatsUpdate replaces a node's Statistics snapshot and flattens any
// newly reported Events into connection-ring appends.
type StatsUpdate struct {
	base
	Address string
	Stats   model.Statistics
}

// ConnectionEvent appends a single decided connection to the bounded
// global ring (updating the node's LastSeen), persisting it to the store.
type ConnectionEvent struct {
	base
	Address string
	Event   model.Event
}

// NewConnection records a connection observed under the monitor-mode
// AskRule policy (§4.1 op 3), distinct from the eventual verdict: it
// is folded into the connection ring as an unruled Event, the same way
// the daemon's own telemetry events are.
type NewConnection struct {
	base
	Address string
	Conn    model.Connection
}

// AlertReceived appends an Alert to the bounded alert ring and persists it.
type AlertReceived struct {
	base
	Address string
	Alert   model.Alert
}

// ConnectionPrompt records that a node has an outstanding AskRule
// prompt awaiting a verdict; it carries no verdict itself.
type ConnectionPrompt struct {
	base
	Address  string
	PromptID string
	Conn     model.Connection
	At       time.Time
}

// PromptResponse applies a resolved verdict (user-supplied or
// timeout-fallback) for PromptID: the decided connection is recorded,
// and if Rule should outlive this one decision, it is also upserted
// as a standing rule.
type PromptResponse struct {
	base
	Address    string
	PromptID   string
	Conn       model.Connection
	Rule       model.Rule
	SaveAsRule bool
	At         time.Time
}

// RuleAdded upserts a new standing rule for a node.
type RuleAdded struct {
	base
	Address string
	Rule    model.Rule
}

// RuleModified upserts an edited standing rule for a node.
type RuleModified struct {
	base
	Address string
	Rule    model.Rule
}

// RuleDeleted removes a standing rule by name.
type RuleDeleted struct {
	base
	Address string
	Name    string
}

// RuleToggled flips a standing rule's enabled flag.
type RuleToggled struct {
	base
	Address string
	Name    string
	Enabled bool
}

// FirewallConfigUpdate replaces a node's SysFirewall snapshot.
type FirewallConfigUpdate struct {
	base
	Address  string
	Firewall model.SysFirewall
}

// NotificationChannelOpened opens the outbound queue a node's
// Notifications stream will drain from, unless one is already open
// (the stream itself opens it before submitting this command).
type NotificationChannelOpened struct {
	base
	Address string
}

// SendNotification enqueues a daemon-bound Action on a node's
// outbound queue; delivery is best-effort (lossy under backpressure).
type SendNotification struct {
	base
	Address string
	Action  notify.Action
}

// NotificationAcked records a daemon's acknowledgment of a previously
// pushed Notification, as forwarded by the Notifications stream's
// reader task (§4.1 op 4).
type NotificationAcked struct {
	base
	Address string
	ID      uint64
	Code    int
	Data    string
}
