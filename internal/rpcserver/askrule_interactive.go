// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rpcserver

import (
	"context"

	"github.com/google/uuid"

	"github.com/flowmediator/mediator/internal/actor"
	"github.com/flowmediator/mediator/internal/model"
)

// askRuleInteractive routes the call through the prompt broker (§4.3):
// the actor records that a prompt is outstanding (for UI visibility),
// the broker blocks until an operator verdict, the timeout, or ctx
// cancellation resolves it, and the verdict is then recorded exactly
// like the monitor policy's synthesized one.
//
// promptID is generated here purely for the actor's ConnectionPrompt/
// PromptResponse bookkeeping pair; it is independent of the broker's
// own internal prompt id, which is not known until Ask returns.
func askRuleInteractive(ctx context.Context, s *Server, peer string, conn model.Connection) model.Rule {
	promptID := uuid.NewString()
	now := s.clock.Now()

	if err := s.actor.Submit(ctx, actor.NewConnection{Address: peer, Conn: conn}); err != nil {
		s.log.Warn("failed to submit new connection", "peer", peer, "error", err)
	}

	if err := s.actor.Submit(ctx, actor.ConnectionPrompt{
		Address: peer, PromptID: promptID, Conn: conn, At: now,
	}); err != nil {
		s.log.Warn("failed to submit connection prompt", "peer", peer, "error", err)
	}
	s.metrics.PromptsPending.Inc()

	rule, _ := s.broker.Ask(ctx, peer, conn)

	s.metrics.PromptsPending.Dec()
	s.metrics.PromptLatencySeconds.Observe(s.clock.Now().Sub(now).Seconds())

	s.recordVerdict(ctx, peer, promptID, conn, rule)
	return rule
}
