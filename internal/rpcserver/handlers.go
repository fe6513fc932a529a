// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rpcserver

import (
	"context"

	"github.com/flowmediator/mediator/internal/actor"
	"github.com/flowmediator/mediator/internal/model"
)

// Handlers exposes the four unary RPCs (§4.1 ops 1, 2, 3, 5) for one
// connection. A fresh Handlers is registered per accepted connection
// (see Server.serveUnary) so peer carries that connection's derived
// identity without any request needing to supply it.
type Handlers struct {
	server *Server
	peer   string
}

// Ping acknowledges id and, if stats is present, folds it into the
// node's state (§4.1 op 1).
func (h *Handlers) Ping(args *PingArgs, reply *PingReply) error {
	reply.ID = args.ID

	if args.Stats != nil {
		ctx := context.Background()
		if err := h.server.actor.Submit(ctx, actor.StatsUpdate{Address: h.peer, Stats: *args.Stats}); err != nil {
			h.server.log.Warn("failed to submit stats update", "peer", h.peer, "error", err)
		}
	}
	return nil
}

// Subscribe registers the calling daemon as a connected node (§4.1 op 2).
func (h *Handlers) Subscribe(args *SubscribeArgs, reply *SubscribeReply) error {
	now := h.server.clock.Now()
	cmd := actor.NodeConnected{
		Address: h.peer,
		Name:    args.Config.Name,
		Version: args.Config.Version,
		At:      now,
	}
	if err := h.server.actor.Submit(context.Background(), cmd); err != nil {
		h.server.log.Warn("failed to submit node connected", "peer", h.peer, "error", err)
	}
	reply.Config = args.Config
	return nil
}

// AskRule resolves a per-flow decision under the server's configured
// policy (§4.1 op 3, §7's contract that this must return promptly).
func (h *Handlers) AskRule(args *AskRuleArgs, reply *AskRuleReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.server.cfg.PromptTimeout())
	defer cancel()
	reply.Rule = h.server.askRule(ctx, h.server, h.peer, args.Conn)
	return nil
}

// PostAlert records an alert on behalf of the calling node (§4.1 op 5).
func (h *Handlers) PostAlert(args *PostAlertArgs, reply *PostAlertReply) error {
	alert := args.Alert
	alert.Node = h.peer
	if err := h.server.actor.Submit(context.Background(), actor.AlertReceived{Address: h.peer, Alert: alert}); err != nil {
		h.server.log.Warn("failed to submit alert", "peer", h.peer, "error", err)
	}
	h.server.metrics.RecordAlert(h.peer, string(alert.Priority))
	reply.ID = 0
	return nil
}

// recordVerdict submits the PromptResponse bookkeeping command common
// to both AskRule policies and records the connection metric.
func (s *Server) recordVerdict(ctx context.Context, peer, promptID string, conn model.Connection, rule model.Rule) {
	decided := conn
	decided.Action = rule.Action
	decided.RuleName = rule.Name

	cmd := actor.PromptResponse{
		Address:    peer,
		PromptID:   promptID,
		Conn:       decided,
		Rule:       rule,
		SaveAsRule: false,
		At:         s.clock.Now(),
	}
	if err := s.actor.Submit(ctx, cmd); err != nil {
		s.log.Warn("failed to record connection verdict", "peer", peer, "error", err)
	}
	s.metrics.RecordConnection(peer, string(rule.Action), rule.Name)
}
