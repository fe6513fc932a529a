// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rpcserver

import "github.com/flowmediator/mediator/internal/model"

// connMode is the single byte a client writes immediately after
// connecting, before either net/rpc's own gob preamble (modeUnary) or
// the custom Notifications framing (modeNotify) begins. One listener
// serves both because the Notifications stream needs full-duplex
// server push, which net/rpc's request/reply model cannot express.
type connMode byte

const (
	modeUnary  connMode = 'R'
	modeNotify connMode = 'N'
)

// ClientConfig is a daemon's self-description, exchanged once via
// Subscribe (§4.1 op 2). Address is deliberately absent: the peer's
// address is derived from the connection, never trusted from payload.
type ClientConfig struct {
	Name     string
	Version  string
	LogLevel int
}

// PingArgs/PingReply implement §4.1 op 1.
type PingArgs struct {
	ID    string
	Stats *model.Statistics
}

type PingReply struct {
	ID string
}

// SubscribeArgs/SubscribeReply implement §4.1 op 2.
type SubscribeArgs struct {
	Config ClientConfig
}

type SubscribeReply struct {
	Config ClientConfig
}

// AskRuleArgs/AskRuleReply implement §4.1 op 3.
type AskRuleArgs struct {
	Conn model.Connection
}

type AskRuleReply struct {
	Rule model.Rule
}

// PostAlertArgs/PostAlertReply implement §4.1 op 5.
type PostAlertArgs struct {
	Alert model.Alert
}

type PostAlertReply struct {
	ID int64
}

// Notification is one daemon-bound frame on the Notifications stream
// (§4.1 op 4, §6's bit-exact Action ordinals).
type Notification struct {
	ID         uint64
	Type       int // 0 = action; matches §8 scenario 6's type=0
	ClientName string
	ServerName string
	Action     model.Action
	Data       string
}

// NotificationReply is one mediator-bound frame read back off the same
// stream: the daemon's acknowledgment of a pushed Notification.
type NotificationReply struct {
	ID   uint64
	Code int
	Data string
}

// serverName is the fixed ServerName stamped on every outbound
// Notification, matching §8 scenario 6's literal expected value.
const serverName = "opensnitch-tui"
