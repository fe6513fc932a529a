// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package notify holds the per-node outbound notification queues that
// back the Notifications stream (§4.1 op 4): one bounded channel of
// Action per connected node, fed by SendNotification commands and
// drained by the RPC server's stream writer goroutine for that node.
package notify

import "sync"

// queueCapacity bounds each node's outbound queue. A daemon that is
// not draining its stream (stalled or disconnected) gets newly sent
// actions dropped once the queue is full, rather than blocking the
// state actor.
const queueCapacity = 100

// Registry maps node address to its outbound queue.
type Registry struct {
	mu     sync.Mutex
	queues map[string]chan Action
}

// Action is the payload pushed through a node's outbound queue. Kind
// holds a model.Action ordinal as a plain int; rpcserver and actor
// both convert to/from model.Action at their boundary.
type Action struct {
	Kind int
	Data string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{queues: make(map[string]chan Action)}
}

// Open creates (or replaces) the outbound queue for addr and returns
// the receive side for the RPC server's stream writer to drain.
func (r *Registry) Open(addr string) <-chan Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := make(chan Action, queueCapacity)
	r.queues[addr] = q
	return q
}

// Close removes and closes addr's outbound queue, if any. Safe to call
// on an address with no open queue.
func (r *Registry) Close(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.queues[addr]; ok {
		delete(r.queues, addr)
		close(q)
	}
}

// Send pushes action onto addr's outbound queue without blocking. It
// returns false if there is no open queue for addr, or if the queue is
// full and the action was dropped.
func (r *Registry) Send(addr string, action Action) bool {
	r.mu.Lock()
	q, ok := r.queues[addr]
	r.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case q <- action:
		return true
	default:
		return false
	}
}

// IsOpen reports whether addr currently has an outbound queue.
func (r *Registry) IsOpen(addr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.queues[addr]
	return ok
}
