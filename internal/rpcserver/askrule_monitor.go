// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rpcserver

import (
	"context"

	"github.com/flowmediator/mediator/internal/actor"
	"github.com/flowmediator/mediator/internal/model"
)

// askRuleMonitor is the reference AskRule policy (§4.1 op 3): synthesize
// the default rule and return immediately, never blocking on a human.
func askRuleMonitor(ctx context.Context, s *Server, peer string, conn model.Connection) model.Rule {
	if err := s.actor.Submit(ctx, actor.NewConnection{Address: peer, Conn: conn}); err != nil {
		s.log.Warn("failed to submit new connection", "peer", peer, "error", err)
	}

	action := model.ParseRuleAction(s.cfg.DefaultAction)
	duration := model.ParseDuration(s.cfg.DefaultDuration)
	rule := model.DefaultRule(conn.ProcessPath, conn.DstPort, action, duration, s.clock.Now())
	s.recordVerdict(ctx, peer, "", conn, rule)
	return rule
}
