// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package prompt implements the prompt broker (C3, §4.3): a FIFO queue
// of outstanding AskRule prompts, each resolved exactly once by either
// an operator's PromptResponse, the node disconnecting, or the
// configured timeout falling back to a synthesized default rule.
package prompt

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowmediator/mediator/internal/clock"
	"github.com/flowmediator/mediator/internal/logging"
	"github.com/flowmediator/mediator/internal/model"
)

// DefaultTimeout is used when Broker is constructed with timeout <= 0.
const DefaultTimeout = 15 * time.Second

// entry is one outstanding prompt. reply is buffered (capacity 1) so
// whichever of Respond/timeout/CancelNode resolves first never blocks.
type entry struct {
	id       string
	address  string
	conn     model.Connection
	created  time.Time
	reply    chan model.Rule
	resolved bool
}

// Summary describes a pending prompt for introspection (e.g. a future
// "what's waiting" RPC), in FIFO order.
type Summary struct {
	ID      string
	Address string
	Conn    model.Connection
	Created time.Time
}

// Broker owns the FIFO of pending prompts.
type Broker struct {
	mu              sync.Mutex
	order           *list.List // of *entry, front = oldest
	byID            map[string]*list.Element
	timeout         time.Duration
	clock           clock.Clock
	log             *logging.Logger
	defaultAction   model.RuleAction
	defaultDuration model.Duration
}

// New builds a Broker with the given AskRule timeout. defaultAction
// and defaultDuration are the Settings.DefaultAction/DefaultDuration
// values the timeout-fallback rule is synthesized from.
func New(timeout time.Duration, defaultAction model.RuleAction, defaultDuration model.Duration, clk clock.Clock, log *logging.Logger) *Broker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if clk == nil {
		clk = clock.Real
	}
	if log == nil {
		log = logging.Default()
	}
	return &Broker{
		order:           list.New(),
		byID:            make(map[string]*list.Element),
		timeout:         timeout,
		clock:           clk,
		log:             log.WithComponent("prompt"),
		defaultAction:   defaultAction,
		defaultDuration: defaultDuration,
	}
}

// Ask registers a new prompt for conn on node addr and blocks until a
// verdict arrives (via Respond), the node disconnects (via CancelNode),
// the broker's timeout elapses, or ctx is cancelled — whichever comes
// first resolves the prompt exactly once. The second return is the
// prompt's ID, useful for correlating a later Respond call from an
// operator-facing surface that split Ask into "enqueue" + "await".
func (b *Broker) Ask(ctx context.Context, addr string, conn model.Connection) (model.Rule, string) {
	e := &entry{
		id:      uuid.NewString(),
		address: addr,
		conn:    conn,
		created: b.clock.Now(),
		reply:   make(chan model.Rule, 1),
	}

	b.mu.Lock()
	el := b.order.PushBack(e)
	b.byID[e.id] = el
	b.mu.Unlock()

	select {
	case r := <-e.reply:
		return r, e.id
	case <-b.clock.After(b.timeout):
		b.resolve(e.id, b.fallback(conn))
		return <-e.reply, e.id
	case <-ctx.Done():
		b.resolve(e.id, b.fallback(conn))
		return <-e.reply, e.id
	}
}

func (b *Broker) fallback(conn model.Connection) model.Rule {
	return model.DefaultRule(conn.ProcessPath, conn.DstPort, b.defaultAction, b.defaultDuration, b.clock.Now())
}

// Respond resolves prompt id with rule, if it is still pending. It
// returns false if the prompt was already resolved (by a prior
// Respond, a timeout, or CancelNode) or never existed.
func (b *Broker) Respond(id string, rule model.Rule) bool {
	return b.resolve(id, rule)
}

func (b *Broker) resolve(id string, rule model.Rule) bool {
	b.mu.Lock()
	el, ok := b.byID[id]
	if !ok {
		b.mu.Unlock()
		return false
	}
	e := el.Value.(*entry)
	if e.resolved {
		b.mu.Unlock()
		return false
	}
	e.resolved = true
	delete(b.byID, id)
	b.order.Remove(el)
	b.mu.Unlock()

	e.reply <- rule
	return true
}

// CancelNode resolves every pending prompt for addr with its
// timeout-fallback rule, as if each had individually timed out. Called
// by the RPC server when a node's Notifications stream ends so Ask callers (net/rpc
// handlers blocked in a daemon's AskRule call) return promptly instead
// of waiting out the full timeout for a peer that is already gone.
func (b *Broker) CancelNode(addr string) int {
	b.mu.Lock()
	var toResolve []*entry
	for el := b.order.Front(); el != nil; el = el.Next() {
		if e := el.Value.(*entry); e.address == addr {
			toResolve = append(toResolve, e)
		}
	}
	b.mu.Unlock()

	n := 0
	for _, e := range toResolve {
		if b.resolve(e.id, b.fallback(e.conn)) {
			n++
		}
	}
	return n
}

// Pending returns a FIFO-ordered snapshot of outstanding prompts.
func (b *Broker) Pending() []Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Summary, 0, b.order.Len())
	for el := b.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		out = append(out, Summary{ID: e.id, Address: e.address, Conn: e.conn, Created: e.created})
	}
	return out
}
