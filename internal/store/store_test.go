// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmediator/mediator/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleEvent(now time.Time, processPath string, dstPort int) model.Event {
	conn := model.Connection{
		Protocol: "tcp", SrcIP: "10.0.0.5", SrcPort: 51000,
		DstIP: "93.184.216.34", DstHost: "example.com", DstPort: dstPort,
		UserID: 1000, ProcessID: 4242, ProcessPath: processPath,
		Action: model.ActionAllow,
	}
	rule := model.DefaultRule(processPath, dstPort, model.ActionAllow, model.DurationOnce, now)
	conn.RuleName = rule.Name
	return model.NewEvent(conn, &rule, now)
}

func TestInsertConnectionDedupesAndCounts(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	ev := sampleEvent(now, "/usr/bin/curl", 443)

	require.NoError(t, s.InsertConnection("node-a", ev))
	require.NoError(t, s.InsertConnection("node-a", ev)) // duplicate, same UNIQUE key

	n, err := s.CountConnections()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	top, err := s.SelectStatsByProcess(10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "/usr/bin/curl", top[0].What)
	assert.EqualValues(t, 1, top[0].Hits)
}

func TestInsertConnectionDistinctRowsBumpCountersIndependently(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertConnection("node-a", sampleEvent(now, "/usr/bin/curl", 443)))
	require.NoError(t, s.InsertConnection("node-a", sampleEvent(now, "/usr/bin/wget", 80)))
	require.NoError(t, s.InsertConnection("node-a", sampleEvent(now, "/usr/bin/curl", 8443)))

	n, err := s.CountConnections()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	top, err := s.SelectStatsByProcess(10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "/usr/bin/curl", top[0].What)
	assert.EqualValues(t, 2, top[0].Hits)
}

func TestSelectConnectionsMostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertConnection("node-a", sampleEvent(base, "/usr/bin/a", 1)))
	require.NoError(t, s.InsertConnection("node-a", sampleEvent(base.Add(time.Second), "/usr/bin/b", 2)))

	rows, err := s.SelectConnections(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "/usr/bin/b", rows[0].ProcessPath)
	assert.Equal(t, "/usr/bin/a", rows[1].ProcessPath)
}

func TestPurgeConnectionsBefore(t *testing.T) {
	s := openTestStore(t)
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertConnection("node-a", sampleEvent(old, "/usr/bin/old", 1)))
	require.NoError(t, s.InsertConnection("node-a", sampleEvent(recent, "/usr/bin/new", 2)))

	n, err := s.PurgeConnectionsBefore(nowRFC3339(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	remaining, err := s.CountConnections()
	require.NoError(t, err)
	assert.EqualValues(t, 1, remaining)
}

func TestRuleLifecycle(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	r := model.DefaultRule("/usr/bin/ssh", 22, model.ActionAllow, model.DurationOnce, now)

	require.NoError(t, s.InsertRule("node-a", r))

	r.Action = model.ActionDeny
	r.Updated = now.Add(time.Minute)
	require.NoError(t, s.UpdateRule("node-a", r))

	rules, err := s.SelectRules("node-a")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, model.ActionDeny, rules[0].Action)

	require.NoError(t, s.ToggleRule("node-a", r.Name, false))
	rules, err = s.SelectRules("node-a")
	require.NoError(t, err)
	assert.False(t, rules[0].Enabled)

	require.NoError(t, s.DeleteRule("node-a", r.Name))
	count, err := s.CountRules("node-a")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestToggleRuleUnknownNameFails(t *testing.T) {
	s := openTestStore(t)
	err := s.ToggleRule("node-a", "does-not-exist", true)
	assert.Error(t, err)
}

func TestAlertLifecycle(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)

	a := model.Alert{
		Type: model.AlertTypeWarning, Action: model.AlertActionShow,
		Priority: model.AlertPriorityHigh, Category: model.AlertCategoryFirewall,
		Payload: model.AlertPayload{Kind: model.AlertPayloadText, Text: "firewall reload failed"},
		Node:    "node-a", Timestamp: now,
	}
	require.NoError(t, s.InsertAlert(a))

	alerts, err := s.SelectAlerts(10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertTypeWarning, alerts[0].Type)
	assert.Equal(t, model.AlertCategoryFirewall, alerts[0].Category)
	assert.Equal(t, model.AlertPayloadText, alerts[0].Payload.Kind)
	assert.Equal(t, "firewall reload failed", alerts[0].Payload.Text)
	assert.False(t, alerts[0].Acknowledged)

	n, err := s.PurgeAlertsBefore(nowRFC3339(now.Add(time.Hour)))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUpsertNodeRoundTrips(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 7, 30, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertNode(NodeSummary{
		Address: "unix:///tmp/a.sock", Hostname: "host-a", Status: "connected",
	}, now))
	require.NoError(t, s.UpsertNode(NodeSummary{
		Address: "unix:///tmp/a.sock", Hostname: "host-a", Status: "disconnected",
	}, now.Add(time.Minute)))

	nodes, err := s.SelectNodes()
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "disconnected", nodes[0].Status)
}
