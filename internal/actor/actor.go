// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package actor implements the state actor (C2, §4.2): a single
// goroutine processing a FIFO queue of Commands against one in-memory
// NodeSet, persisting decided connections/rules/alerts through the
// store and lossily broadcasting change signals to every subscriber
// after each command that changes a read snapshot (the outbound
// notification commands broadcast nothing).
package actor

import (
	"context"
	"sync"
	"time"

	"github.com/flowmediator/mediator/internal/clock"
	"github.com/flowmediator/mediator/internal/fwconfig"
	"github.com/flowmediator/mediator/internal/logging"
	"github.com/flowmediator/mediator/internal/model"
	"github.com/flowmediator/mediator/internal/notify"
	"github.com/flowmediator/mediator/internal/store"
)

const (
	// DefaultMaxConnections bounds the in-memory connection ring.
	DefaultMaxConnections = 1000
	// DefaultMaxAlerts bounds the in-memory alert ring.
	DefaultMaxAlerts = 500

	commandQueueCapacity = 256
)

// state holds everything the actor owns. Reads take RLock; the actor
// goroutine is the sole writer and always takes Lock.
type state struct {
	mu                sync.RWMutex
	nodes             *model.NodeSet
	recentConnections []model.Event
	recentAlerts      []model.Alert
}

// Actor is the C2 state actor.
type Actor struct {
	log    *logging.Logger
	store  *store.Store
	notify *notify.Registry
	clock  clock.Clock

	maxConnections int
	maxAlerts      int

	commands chan Command

	st state

	subMu   sync.Mutex
	subs    map[int]chan UiUpdateSignal
	nextSub int

	firewallConfigPath string
}

// New builds an Actor. maxConnections/maxAlerts of 0 fall back to the
// package defaults.
func New(st *store.Store, reg *notify.Registry, clk clock.Clock, log *logging.Logger, maxConnections, maxAlerts int) *Actor {
	if log == nil {
		log = logging.Default()
	}
	if clk == nil {
		clk = clock.Real
	}
	if maxConnections <= 0 {
		maxConnections = DefaultMaxConnections
	}
	if maxAlerts <= 0 {
		maxAlerts = DefaultMaxAlerts
	}
	return &Actor{
		log:            log.WithComponent("actor"),
		store:          st,
		notify:         reg,
		clock:          clk,
		maxConnections: maxConnections,
		maxAlerts:      maxAlerts,
		commands:       make(chan Command, commandQueueCapacity),
		st:             state{nodes: model.NewNodeSet()},
		subs:           make(map[int]chan UiUpdateSignal),
	}
}

// SetFirewallConfigPath sets the path handleFirewallConfigUpdate writes
// to on firewall-rule mutation. Leaving it unset disables the write
// side of that handler (useful in tests that don't exercise fwconfig).
func (a *Actor) SetFirewallConfigPath(path string) {
	a.firewallConfigPath = path
}

// Submit enqueues cmd, blocking until there is room or ctx is done.
// Ordering of Commands accepted by Submit is preserved by Run.
func (a *Actor) Submit(ctx context.Context, cmd Command) error {
	select {
	case a.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the command queue in order until ctx is cancelled.
func (a *Actor) Run(ctx context.Context) error {
	for {
		select {
		case cmd := <-a.commands:
			for _, sig := range a.handle(cmd) {
				a.broadcast(sig)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Subscribe registers a lossy UiUpdateSignal channel: after every
// command is applied, Run makes a best-effort (non-blocking) send of
// each signal the command produced on every subscribed channel.
// Callers must drain it promptly; a missed signal just means
// "re-check state", never a lost update.
func (a *Actor) Subscribe() (<-chan UiUpdateSignal, func()) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	id := a.nextSub
	a.nextSub++
	ch := make(chan UiUpdateSignal, 1)
	a.subs[id] = ch
	cancel := func() {
		a.subMu.Lock()
		defer a.subMu.Unlock()
		if c, ok := a.subs[id]; ok {
			delete(a.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (a *Actor) broadcast(sig UiUpdateSignal) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	for _, ch := range a.subs {
		select {
		case ch <- sig:
		default:
		}
	}
}

// Snapshot returns an independent copy of the current NodeSet.
func (a *Actor) Snapshot() *model.NodeSet {
	a.st.mu.RLock()
	defer a.st.mu.RUnlock()
	return a.st.nodes.Snapshot()
}

// RecentConnections returns a copy of the bounded connection ring.
func (a *Actor) RecentConnections() []model.Event {
	a.st.mu.RLock()
	defer a.st.mu.RUnlock()
	out := make([]model.Event, len(a.st.recentConnections))
	copy(out, a.st.recentConnections)
	return out
}

// RecentAlerts returns a copy of the bounded alert ring.
func (a *Actor) RecentAlerts() []model.Alert {
	a.st.mu.RLock()
	defer a.st.mu.RUnlock()
	out := make([]model.Alert, len(a.st.recentAlerts))
	copy(out, a.st.recentAlerts)
	return out
}

func (a *Actor) handle(cmd Command) []UiUpdateSignal {
	switch c := cmd.(type) {
	case NodeConnected:
		a.handleNodeConnected(c)
		return []UiUpdateSignal{NodeChanged}
	case NodeDisconnected:
		a.handleNodeDisconnected(c)
		return []UiUpdateSignal{NodeChanged}
	case StatsUpdate:
		return a.handleStatsUpdate(c)
	case ConnectionEvent:
		a.appendConnection(c.Address, c.Event)
		return []UiUpdateSignal{ConnectionsUpdated}
	case NewConnection:
		a.handleNewConnection(c)
		return []UiUpdateSignal{ConnectionsUpdated}
	case AlertReceived:
		a.appendAlert(c.Address, c.Alert)
		return []UiUpdateSignal{AlertsUpdated}
	case ConnectionPrompt:
		a.handleConnectionPrompt(c)
		return []UiUpdateSignal{PromptReceived}
	case PromptResponse:
		a.handlePromptResponse(c)
		return []UiUpdateSignal{ConnectionsUpdated}
	case RuleAdded:
		a.upsertRule(c.Address, c.Rule)
		return []UiUpdateSignal{RulesUpdated}
	case RuleModified:
		a.upsertRule(c.Address, c.Rule)
		return []UiUpdateSignal{RulesUpdated}
	case RuleDeleted:
		a.handleRuleDeleted(c)
		return []UiUpdateSignal{RulesUpdated}
	case RuleToggled:
		a.handleRuleToggled(c)
		return []UiUpdateSignal{RulesUpdated}
	case FirewallConfigUpdate:
		a.handleFirewallConfigUpdate(c)
		return []UiUpdateSignal{FirewallUpdated}
	case NotificationChannelOpened:
		if !a.notify.IsOpen(c.Address) {
			a.notify.Open(c.Address)
		}
		return nil
	case SendNotification:
		if !a.notify.Send(c.Address, c.Action) {
			a.log.Debug("notification dropped, queue closed or full", "node", c.Address)
		}
		return nil
	case NotificationAcked:
		a.log.Debug("notification acked", "node", c.Address, "id", c.ID, "code", c.Code)
		return nil
	default:
		a.log.Warn("unknown command type, ignoring")
		return nil
	}
}

func (a *Actor) getOrCreateNodeLocked(addr string) *model.Node {
	n, ok := a.st.nodes.Nodes[addr]
	if !ok {
		n = &model.Node{Address: addr, Status: model.StatusConnecting}
		a.st.nodes.Nodes[addr] = n
	}
	return n
}

func (a *Actor) handleNodeConnected(c NodeConnected) {
	a.st.mu.Lock()
	n := a.getOrCreateNodeLocked(c.Address)
	n.Name = c.Name
	n.Version = c.Version
	n.Status = model.StatusConnected
	n.ConnectedAt = c.At
	n.LastSeen = c.At
	if a.st.nodes.ActiveAddress == "" {
		a.st.nodes.ActiveAddress = c.Address
	}
	a.st.mu.Unlock()

	if err := a.store.UpsertNode(store.NodeSummary{Address: c.Address, Hostname: c.Name, Status: string(model.StatusConnected)}, c.At); err != nil {
		a.log.Error("persist node_connected failed", "node", c.Address, "error", err)
	}
}

func (a *Actor) handleNodeDisconnected(c NodeDisconnected) {
	a.st.mu.Lock()
	n := a.getOrCreateNodeLocked(c.Address)
	n.Status = model.StatusDisconnected
	n.LastSeen = c.At
	a.st.nodes.RetargetActive()
	a.st.mu.Unlock()

	a.notify.Close(c.Address)

	if err := a.store.UpsertNode(store.NodeSummary{Address: c.Address, Hostname: n.Name, Status: string(model.StatusDisconnected)}, c.At); err != nil {
		a.log.Error("persist node_disconnected failed", "node", c.Address, "error", err)
	}
}

func (a *Actor) handleStatsUpdate(c StatsUpdate) []UiUpdateSignal {
	a.st.mu.Lock()
	n := a.getOrCreateNodeLocked(c.Address)
	stats := c.Stats
	n.Statistics = &stats
	n.LastSeen = a.clock.Now()
	a.st.mu.Unlock()

	for _, ev := range c.Stats.Events {
		a.appendConnection(c.Address, ev)
	}

	if len(c.Stats.Events) > 0 {
		return []UiUpdateSignal{StatsUpdated, ConnectionsUpdated}
	}
	return []UiUpdateSignal{StatsUpdated}
}

func (a *Actor) handleNewConnection(c NewConnection) {
	ev := model.NewEvent(c.Conn, nil, a.clock.Now())
	a.appendConnection(c.Address, ev)
}

func (a *Actor) handleConnectionPrompt(c ConnectionPrompt) {
	a.st.mu.Lock()
	n := a.getOrCreateNodeLocked(c.Address)
	n.LastSeen = c.At
	a.st.mu.Unlock()
}

func (a *Actor) handlePromptResponse(c PromptResponse) {
	conn := c.Conn
	conn.Action = c.Rule.Action
	conn.RuleName = c.Rule.Name
	ev := model.NewEvent(conn, &c.Rule, c.At)
	a.appendConnection(c.Address, ev)

	if c.SaveAsRule {
		a.upsertRule(c.Address, c.Rule)
	}
}

func (a *Actor) appendConnection(addr string, ev model.Event) {
	a.st.mu.Lock()
	n := a.getOrCreateNodeLocked(addr)
	n.LastSeen = time.Unix(0, ev.TimeNanos)

	a.st.recentConnections = append(a.st.recentConnections, ev)
	if len(a.st.recentConnections) > a.maxConnections {
		a.st.recentConnections = a.st.recentConnections[len(a.st.recentConnections)-a.maxConnections:]
	}
	a.st.mu.Unlock()

	if err := a.store.InsertConnection(addr, ev); err != nil {
		a.log.Error("persist connection failed", "node", addr, "error", err)
	}
}

func (a *Actor) appendAlert(addr string, al model.Alert) {
	a.st.mu.Lock()
	a.st.recentAlerts = append(a.st.recentAlerts, al)
	if len(a.st.recentAlerts) > a.maxAlerts {
		a.st.recentAlerts = a.st.recentAlerts[len(a.st.recentAlerts)-a.maxAlerts:]
	}
	a.st.mu.Unlock()

	if err := a.store.InsertAlert(al); err != nil {
		a.log.Error("persist alert failed", "node", addr, "error", err)
	}
}

func (a *Actor) upsertRule(addr string, r model.Rule) {
	a.st.mu.Lock()
	n := a.getOrCreateNodeLocked(addr)
	replaced := false
	for i := range n.Rules {
		if n.Rules[i].Name == r.Name {
			n.Rules[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		n.Rules = append(n.Rules, r)
	}
	a.st.mu.Unlock()

	if err := a.store.InsertRule(addr, r); err != nil {
		a.log.Error("persist rule failed", "node", addr, "rule", r.Name, "error", err)
	}
}

func (a *Actor) handleRuleDeleted(c RuleDeleted) {
	a.st.mu.Lock()
	n := a.getOrCreateNodeLocked(c.Address)
	for i := range n.Rules {
		if n.Rules[i].Name == c.Name {
			n.Rules = append(n.Rules[:i], n.Rules[i+1:]...)
			break
		}
	}
	a.st.mu.Unlock()

	if err := a.store.DeleteRule(c.Address, c.Name); err != nil {
		a.log.Error("delete rule failed", "node", c.Address, "rule", c.Name, "error", err)
	}
}

func (a *Actor) handleRuleToggled(c RuleToggled) {
	a.st.mu.Lock()
	n := a.getOrCreateNodeLocked(c.Address)
	for i := range n.Rules {
		if n.Rules[i].Name == c.Name {
			n.Rules[i].Enabled = c.Enabled
			break
		}
	}
	a.st.mu.Unlock()

	if err := a.store.ToggleRule(c.Address, c.Name, c.Enabled); err != nil {
		a.log.Error("toggle rule failed", "node", c.Address, "rule", c.Name, "error", err)
	}
}

func (a *Actor) handleFirewallConfigUpdate(c FirewallConfigUpdate) {
	a.st.mu.Lock()
	n := a.getOrCreateNodeLocked(c.Address)
	fw := c.Firewall
	n.Firewall = &fw
	a.st.mu.Unlock()

	if a.firewallConfigPath == "" {
		return
	}
	if err := fwconfig.WriteFirewallConfig(a.firewallConfigPath, fw); err != nil {
		a.log.Error("write firewall config failed", "node", c.Address, "error", err)
		return
	}
	if !a.notify.Send(c.Address, notify.Action{Kind: int(model.ActionReloadFwRules)}) {
		a.log.Debug("reload_fw_rules notification dropped, queue closed or full", "node", c.Address)
	}
}
