// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import "time"

// Statistics is a per-node snapshot of counters and frequency maps, as
// pushed by a Ping or StatsUpdate command. Events carries the batch of
// recent decided connections the daemon has not previously reported;
// the state actor flattens these into ConnectionEvent appends (§4.1 op 1).
type Statistics struct {
	Uptime time.Duration

	TotalConnections    int64
	AcceptedConnections int64
	DroppedConnections  int64
	RuleHits            int64
	RuleMisses          int64
	DNSResponses        int64
	Ignored             int64

	ByProtocol map[string]int64
	ByAddress  map[string]int64
	ByHost     map[string]int64
	ByPort     map[string]int64
	ByUserID   map[string]int64
	ByExecutable map[string]int64

	Events []Event
}

// NewStatistics returns a Statistics value with all frequency maps
// initialized, so callers can always assign into them without a nil
// check.
func NewStatistics() Statistics {
	return Statistics{
		ByProtocol:   make(map[string]int64),
		ByAddress:    make(map[string]int64),
		ByHost:       make(map[string]int64),
		ByPort:       make(map[string]int64),
		ByUserID:     make(map[string]int64),
		ByExecutable: make(map[string]int64),
	}
}
