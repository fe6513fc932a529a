// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package actor

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmediator/mediator/internal/clock"
	"github.com/flowmediator/mediator/internal/fwconfig"
	"github.com/flowmediator/mediator/internal/model"
	"github.com/flowmediator/mediator/internal/notify"
	"github.com/flowmediator/mediator/internal/store"
)

func newTestActor(t *testing.T, maxConnections, maxAlerts int) (*Actor, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	a := New(st, notify.NewRegistry(), clock.NewMock(time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)), nil, maxConnections, maxAlerts)
	return a, st
}

func runActor(t *testing.T, a *Actor) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go a.Run(ctx)
	return cancel
}

func submitAndWait(t *testing.T, a *Actor, cmd Command) {
	t.Helper()
	ch, cancel := a.Subscribe()
	defer cancel()
	require.NoError(t, a.Submit(context.Background(), cmd))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("command was not applied before timeout")
	}
}

func TestNodeConnectedSetsActiveAddress(t *testing.T) {
	a, _ := newTestActor(t, 0, 0)
	defer runActor(t, a)()

	submitAndWait(t, a, NodeConnected{Address: "node-a", Name: "host-a", Version: "1.0", At: time.Now()})

	snap := a.Snapshot()
	require.Contains(t, snap.Nodes, "node-a")
	assert.Equal(t, model.StatusConnected, snap.Nodes["node-a"].Status)
	assert.Equal(t, "node-a", snap.ActiveAddress)
}

func TestNodeDisconnectedRetargetsActiveAddress(t *testing.T) {
	a, _ := newTestActor(t, 0, 0)
	defer runActor(t, a)()

	submitAndWait(t, a, NodeConnected{Address: "node-a", At: time.Now()})
	submitAndWait(t, a, NodeConnected{Address: "node-b", At: time.Now()})
	submitAndWait(t, a, NodeDisconnected{Address: "node-a", At: time.Now()})

	snap := a.Snapshot()
	assert.Equal(t, model.StatusDisconnected, snap.Nodes["node-a"].Status)
	assert.Equal(t, "node-b", snap.ActiveAddress)
}

func TestConnectionRingIsBounded(t *testing.T) {
	a, st := newTestActor(t, 3, 0)
	defer runActor(t, a)()

	for i := 0; i < 5; i++ {
		conn := model.Connection{ProcessPath: "/usr/bin/p", DstPort: 1000 + i}
		ev := model.NewEvent(conn, nil, time.Now())
		submitAndWait(t, a, ConnectionEvent{Address: "node-a", Event: ev})
	}

	assert.Len(t, a.RecentConnections(), 3)

	count, err := st.CountConnections()
	require.NoError(t, err)
	assert.EqualValues(t, 5, count, "store retains all rows even though the in-memory ring is bounded")
}

func TestAlertRingIsBounded(t *testing.T) {
	a, _ := newTestActor(t, 0, 2)
	defer runActor(t, a)()

	for i := 0; i < 4; i++ {
		submitAndWait(t, a, AlertReceived{Address: "node-a", Alert: model.Alert{
			Type: model.AlertTypeInfo, Timestamp: time.Now(),
		}})
	}

	assert.Len(t, a.RecentAlerts(), 2)
}

func TestPromptResponseRecordsDecisionAndOptionallyRule(t *testing.T) {
	a, st := newTestActor(t, 0, 0)
	defer runActor(t, a)()

	conn := model.Connection{ProcessPath: "/usr/bin/curl", DstPort: 443}
	rule := model.DefaultRule("/usr/bin/curl", 443, model.ActionAllow, model.DurationOnce, time.Now())
	rule.Duration = model.Duration15m

	submitAndWait(t, a, PromptResponse{
		Address: "node-a", PromptID: "p1", Conn: conn, Rule: rule, SaveAsRule: true, At: time.Now(),
	})

	recent := a.RecentConnections()
	require.Len(t, recent, 1)
	assert.Equal(t, model.ActionAllow, recent[0].Connection.Action)

	rules, err := st.SelectRules("node-a")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, rule.Name, rules[0].Name)
}

func TestRuleLifecycleCommands(t *testing.T) {
	a, st := newTestActor(t, 0, 0)
	defer runActor(t, a)()

	r := model.DefaultRule("/usr/bin/ssh", 22, model.ActionAllow, model.DurationOnce, time.Now())
	submitAndWait(t, a, RuleAdded{Address: "node-a", Rule: r})
	submitAndWait(t, a, RuleToggled{Address: "node-a", Name: r.Name, Enabled: false})

	snap := a.Snapshot()
	require.Len(t, snap.Nodes["node-a"].Rules, 1)
	assert.False(t, snap.Nodes["node-a"].Rules[0].Enabled)

	submitAndWait(t, a, RuleDeleted{Address: "node-a", Name: r.Name})
	count, err := st.CountRules("node-a")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestNotificationChannelOpenedAndSend(t *testing.T) {
	reg := notify.NewRegistry()
	st, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	defer st.Close()
	a := New(st, reg, nil, nil, 0, 0)
	defer runActor(t, a)()

	// NotificationChannelOpened/SendNotification emit no UiUpdateSignal
	// (§9), so they cannot be awaited through submitAndWait; poll the
	// registry's own observable state instead.
	require.NoError(t, a.Submit(context.Background(), NotificationChannelOpened{Address: "node-a"}))
	require.Eventually(t, func() bool { return reg.IsOpen("node-a") }, time.Second, time.Millisecond)

	ch := reg.Open("node-a")
	require.NoError(t, a.Submit(context.Background(), SendNotification{Address: "node-a", Action: notify.Action{Kind: 5}}))

	select {
	case act := <-ch:
		assert.Equal(t, 5, act.Kind)
	case <-time.After(time.Second):
		t.Fatal("notification was not delivered before timeout")
	}
}

func TestNewConnectionAppendsUnruledEvent(t *testing.T) {
	a, st := newTestActor(t, 0, 0)
	defer runActor(t, a)()

	conn := model.Connection{ProcessPath: "/usr/bin/curl", DstPort: 443}
	submitAndWait(t, a, NewConnection{Address: "node-a", Conn: conn})

	recent := a.RecentConnections()
	require.Len(t, recent, 1)
	assert.Equal(t, conn.ProcessPath, recent[0].Connection.ProcessPath)
	assert.Nil(t, recent[0].Rule)

	n, err := st.CountConnections()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSignalMappingPerCommand(t *testing.T) {
	a, _ := newTestActor(t, 0, 0)

	cases := []struct {
		name string
		cmd  Command
		want []UiUpdateSignal
	}{
		{"node connected", NodeConnected{Address: "node-a", At: time.Now()}, []UiUpdateSignal{NodeChanged}},
		{"node disconnected", NodeDisconnected{Address: "node-a", At: time.Now()}, []UiUpdateSignal{NodeChanged}},
		{"stats without events", StatsUpdate{Address: "node-a", Stats: model.NewStatistics()}, []UiUpdateSignal{StatsUpdated}},
		{"alert received", AlertReceived{Address: "node-a", Alert: model.Alert{Type: model.AlertTypeInfo, Timestamp: time.Now()}}, []UiUpdateSignal{AlertsUpdated}},
		{"connection prompt", ConnectionPrompt{Address: "node-a", PromptID: "p1", At: time.Now()}, []UiUpdateSignal{PromptReceived}},
		{"rule added", RuleAdded{Address: "node-a", Rule: model.Rule{Name: "r1"}}, []UiUpdateSignal{RulesUpdated}},
		{"rule deleted", RuleDeleted{Address: "node-a", Name: "r1"}, []UiUpdateSignal{RulesUpdated}},
		{"firewall config update", FirewallConfigUpdate{Address: "node-a", Firewall: model.SysFirewall{}}, []UiUpdateSignal{FirewallUpdated}},
		{"notification channel opened emits nothing", NotificationChannelOpened{Address: "node-a"}, nil},
		{"send notification emits nothing", SendNotification{Address: "node-a", Action: notify.Action{Kind: 1}}, nil},
		{"notification acked emits nothing", NotificationAcked{Address: "node-a"}, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := a.handle(c.cmd)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestStatsUpdateWithEventsEmitsBothSignals(t *testing.T) {
	a, _ := newTestActor(t, 0, 0)

	stats := model.NewStatistics()
	stats.Events = []model.Event{model.NewEvent(model.Connection{ProcessPath: "/usr/bin/curl"}, nil, time.Now())}

	got := a.handle(StatsUpdate{Address: "node-a", Stats: stats})
	assert.Equal(t, []UiUpdateSignal{StatsUpdated, ConnectionsUpdated}, got)
}

func TestFirewallConfigUpdateWritesFileAndNotifies(t *testing.T) {
	reg := notify.NewRegistry()
	st, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	defer st.Close()
	a := New(st, reg, nil, nil, 0, 0)
	a.SetFirewallConfigPath(filepath.Join(t.TempDir(), "system-fw.json"))

	outbound := reg.Open("node-a")
	fw := model.SysFirewall{Enabled: true}

	got := a.handle(FirewallConfigUpdate{Address: "node-a", Firewall: fw})
	assert.Equal(t, []UiUpdateSignal{FirewallUpdated}, got)

	onDisk, err := fwconfig.ReadFirewallConfig(a.firewallConfigPath)
	require.NoError(t, err)
	assert.Equal(t, fw.Enabled, onDisk.Enabled)

	select {
	case act := <-outbound:
		assert.Equal(t, int(model.ActionReloadFwRules), act.Kind)
	case <-time.After(time.Second):
		t.Fatal("ReloadFwRules notification was not sent")
	}
}

func TestFirewallConfigUpdateSkipsWriteWhenPathUnset(t *testing.T) {
	a, _ := newTestActor(t, 0, 0)

	got := a.handle(FirewallConfigUpdate{Address: "node-a", Firewall: model.SysFirewall{}})
	assert.Equal(t, []UiUpdateSignal{FirewallUpdated}, got)
}
