// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rpcserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"io"
	"net"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/flowmediator/mediator/internal/actor"
	"github.com/flowmediator/mediator/internal/model"
)

// writeFrame writes v as a length-prefixed gob frame: a 4-byte
// big-endian length followed by the gob-encoded payload. This mirrors
// net/rpc's own wire codec family (also length-implicit gob) without
// reusing net/rpc's request/reply framing, which has no server-push
// half.
func writeFrame(w io.Writer, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(buf.Len()))
	if _, err := w.Write(length[:]); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// readFrame reads one length-prefixed gob frame into v.
func readFrame(r io.Reader, v any) error {
	var length [4]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(length[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	return gob.NewDecoder(bytes.NewReader(buf)).Decode(v)
}

// serveNotifications implements the bidirectional Notifications stream
// (§4.1 op 4): on open it registers the node's outbound queue and
// emits NotificationChannelOpened, then runs a writer (drains the
// queue onto the wire) and a reader (forwards inbound acks) until
// either side ends the stream, at which point it emits NodeDisconnected
// and cancels any prompt left outstanding for this peer.
func (s *Server) serveNotifications(conn net.Conn, peer string) {
	defer conn.Close()

	outbound := s.notify.Open(peer)
	if err := s.actor.Submit(context.Background(), actor.NotificationChannelOpened{Address: peer}); err != nil {
		s.log.Warn("failed to submit notification channel opened", "peer", peer, "error", err)
	}

	s.log.Info("notifications stream opened", "peer", peer)

	var nextID uint64
	g, ctx := errgroup.WithContext(context.Background())
	reader := bufio.NewReader(conn)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case action, ok := <-outbound:
				if !ok {
					return nil
				}
				n := Notification{
					ID:         atomic.AddUint64(&nextID, 1),
					Type:       0,
					ClientName: peer,
					ServerName: serverName,
					Action:     model.Action(action.Kind),
					Data:       action.Data,
				}
				if err := writeFrame(conn, &n); err != nil {
					return err
				}
			}
		}
	})

	g.Go(func() error {
		for {
			var reply NotificationReply
			if err := readFrame(reader, &reply); err != nil {
				return err
			}
			cmd := actor.NotificationAcked{Address: peer, ID: reply.ID, Code: reply.Code, Data: reply.Data}
			if err := s.actor.Submit(ctx, cmd); err != nil {
				return nil
			}
		}
	})

	_ = g.Wait()

	s.log.Info("notifications stream closed", "peer", peer)
	cancelled := s.broker.CancelNode(peer)
	if cancelled > 0 {
		s.log.Debug("cancelled prompts on disconnect", "peer", peer, "count", cancelled)
	}
	if err := s.actor.Submit(context.Background(), actor.NodeDisconnected{Address: peer, At: s.clock.Now()}); err != nil {
		s.log.Warn("failed to submit node disconnected", "peer", peer, "error", err)
	}
}
