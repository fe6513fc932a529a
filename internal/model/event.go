// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import "time"

// Event is an append-only fact: a Connection together with its matched
// Rule (if any) and the instant it was decided. Time is kept in both
// an ISO-8601 string (for display/storage parity with the daemon) and
// unix-nanoseconds (for ordering comparisons).
type Event struct {
	Connection Connection
	Rule       *Rule
	Time       string
	TimeNanos  int64
}

// NewEvent stamps an Event at `at`.
func NewEvent(conn Connection, rule *Rule, at time.Time) Event {
	return Event{
		Connection: conn,
		Rule:       rule,
		Time:       at.UTC().Format(time.RFC3339Nano),
		TimeNanos:  at.UnixNano(),
	}
}
