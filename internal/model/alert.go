// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import "time"

// AlertType classifies an Alert's severity. Unknown values decode to
// AlertTypeInfo per §7.
type AlertType string

const (
	AlertTypeError   AlertType = "error"
	AlertTypeWarning AlertType = "warning"
	AlertTypeInfo    AlertType = "info"
)

func ParseAlertType(s string) AlertType {
	switch AlertType(s) {
	case AlertTypeError, AlertTypeWarning, AlertTypeInfo:
		return AlertType(s)
	default:
		return AlertTypeInfo
	}
}

// AlertAction tells the UI what to do with an incoming Alert.
type AlertAction string

const (
	AlertActionNone AlertAction = "none"
	AlertActionShow AlertAction = "show"
	AlertActionSave AlertAction = "save"
)

func ParseAlertAction(s string) AlertAction {
	switch AlertAction(s) {
	case AlertActionNone, AlertActionShow, AlertActionSave:
		return AlertAction(s)
	default:
		return AlertActionNone
	}
}

// AlertPriority ranks an Alert for UI triage. Unknown values decode to
// AlertPriorityLow per §7.
type AlertPriority string

const (
	AlertPriorityLow    AlertPriority = "low"
	AlertPriorityMedium AlertPriority = "medium"
	AlertPriorityHigh   AlertPriority = "high"
)

func ParseAlertPriority(s string) AlertPriority {
	switch AlertPriority(s) {
	case AlertPriorityLow, AlertPriorityMedium, AlertPriorityHigh:
		return AlertPriority(s)
	default:
		return AlertPriorityLow
	}
}

// AlertCategory groups an Alert by subsystem. Unknown values decode to
// AlertCategoryGeneric per §7.
type AlertCategory string

const (
	AlertCategoryGeneric      AlertCategory = "generic"
	AlertCategoryProcMonitor  AlertCategory = "proc-monitor"
	AlertCategoryFirewall     AlertCategory = "firewall"
	AlertCategoryConnection   AlertCategory = "connection"
	AlertCategoryRule         AlertCategory = "rule"
	AlertCategoryNetlink      AlertCategory = "netlink"
	AlertCategoryKernelEvent  AlertCategory = "kernel-event"
)

func ParseAlertCategory(s string) AlertCategory {
	switch AlertCategory(s) {
	case AlertCategoryGeneric, AlertCategoryProcMonitor, AlertCategoryFirewall,
		AlertCategoryConnection, AlertCategoryRule, AlertCategoryNetlink, AlertCategoryKernelEvent:
		return AlertCategory(s)
	default:
		return AlertCategoryGeneric
	}
}

// AlertPayloadKind tags which of the Alert.Payload's fields is set.
type AlertPayloadKind string

const (
	AlertPayloadText       AlertPayloadKind = "text"
	AlertPayloadProcess    AlertPayloadKind = "process"
	AlertPayloadConnection AlertPayloadKind = "connection"
	AlertPayloadRule       AlertPayloadKind = "rule"
	AlertPayloadFirewall   AlertPayloadKind = "firewall-rule"
)

// AlertPayload is the tagged union of what an Alert is about.
type AlertPayload struct {
	Kind       AlertPayloadKind
	Text       string
	Process    *Connection // process fields are populated, network fields may be zero
	Connection *Connection
	Rule       *Rule
	FirewallRule *FirewallRule
}

// Alert is a typed notice emitted by a daemon for human attention.
type Alert struct {
	ID           string
	Type         AlertType
	Action       AlertAction
	Priority     AlertPriority
	Category     AlertCategory
	Payload      AlertPayload
	Node         string
	Timestamp    time.Time
	Acknowledged bool
}
