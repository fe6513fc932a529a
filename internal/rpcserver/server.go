// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package rpcserver implements the RPC server (C4, §4.1): the
// daemon-facing transport that terminates Ping/Subscribe/AskRule/
// PostAlert calls and owns the per-node outbound Notifications stream,
// translating each into a command for the state actor (C2).
package rpcserver

import (
	"context"
	"fmt"
	"net"
	"net/rpc"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/flowmediator/mediator/internal/actor"
	"github.com/flowmediator/mediator/internal/clock"
	mediatorerrors "github.com/flowmediator/mediator/internal/errors"
	"github.com/flowmediator/mediator/internal/logging"
	"github.com/flowmediator/mediator/internal/metrics"
	"github.com/flowmediator/mediator/internal/model"
	"github.com/flowmediator/mediator/internal/notify"
	"github.com/flowmediator/mediator/internal/prompt"
	"github.com/flowmediator/mediator/internal/settings"
)

// askRuleFunc resolves one AskRule call into a verdict. The two
// policies (monitor/interactive) are selected once at construction
// time per Settings.AskRulePolicy (§9's Open-question decision).
type askRuleFunc func(ctx context.Context, s *Server, peer string, conn model.Connection) model.Rule

// Server is the C4 RPC server.
type Server struct {
	log     *logging.Logger
	actor   *actor.Actor
	broker  *prompt.Broker
	notify  *notify.Registry
	metrics *metrics.Metrics
	clock   clock.Clock
	cfg     settings.Settings

	askRule askRuleFunc

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup

	connCounter uint64
}

// New builds a Server wired to the shared actor/broker/notify/metrics
// components. clk defaults to clock.Real when nil.
func New(cfg settings.Settings, a *actor.Actor, b *prompt.Broker, reg *notify.Registry, m *metrics.Metrics, clk clock.Clock, log *logging.Logger) *Server {
	if clk == nil {
		clk = clock.Real
	}
	if log == nil {
		log = logging.Default()
	}
	s := &Server{
		log:     log.WithComponent("rpcserver"),
		actor:   a,
		broker:  b,
		notify:  reg,
		metrics: m,
		clock:   clk,
		cfg:     cfg,
	}
	if cfg.AskRulePolicy == settings.AskRuleInteractive {
		s.askRule = askRuleInteractive
	} else {
		s.askRule = askRuleMonitor
	}
	return s
}

// Start resolves cfg.ListenAddress ("unix:///path" or "host:port"),
// binds a listener — removing any stale socket file first, and
// chmod'ing a Unix socket to 0o666 so a daemon running as a different
// uid can connect — and begins serving.
func (s *Server) Start() error {
	network, address := splitListenAddress(s.cfg.ListenAddress)

	if network == "unix" {
		os.Remove(address)
	}

	listener, err := net.Listen(network, address)
	if err != nil {
		return mediatorerrors.Wrapf(err, mediatorerrors.KindTransport, "listen on %s", s.cfg.ListenAddress)
	}

	if network == "unix" {
		if err := os.Chmod(address, 0o666); err != nil {
			listener.Close()
			return mediatorerrors.Wrapf(err, mediatorerrors.KindTransport, "chmod socket %s", address)
		}
	}

	return s.StartWithListener(listener)
}

// splitListenAddress parses "unix:///path/to.sock" into ("unix",
// "/path/to.sock") and anything else into ("tcp", addr) unchanged.
func splitListenAddress(addr string) (network, address string) {
	if rest, ok := strings.CutPrefix(addr, "unix://"); ok {
		return "unix", rest
	}
	return "tcp", addr
}

// StartWithListener begins accepting on an already-bound listener
// (tests pass one backed by net.Pipe-compatible loopback addresses).
func (s *Server) StartWithListener(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.log.Info("rpc server listening", "address", listener.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop(listener)
	return nil
}

// Stop closes the listener, which unblocks acceptLoop; it does not
// forcibly close already-accepted connections, which drain on their
// own (a daemon disconnect or Notifications stream close).
func (s *Server) Stop() error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return nil
	}
	err := l.Close()
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return
			}
			s.log.Error("accept failed", "error", err)
			return
		}
		go s.handleConn(conn)
	}
}

// handleConn reads the one-byte mode prefix and routes the connection
// to the unary net/rpc dispatcher or the Notifications stream loop.
// Peer identity is derived here, once, from the accepted connection —
// never from anything the client sends (§4.1's transport contract).
func (s *Server) handleConn(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("rpc connection handler panicked", "panic", r)
		}
	}()

	peer := s.peerID(conn)

	mode := make([]byte, 1)
	if _, err := conn.Read(mode); err != nil {
		conn.Close()
		return
	}

	switch connMode(mode[0]) {
	case modeNotify:
		s.serveNotifications(conn, peer)
	default:
		s.serveUnary(conn, peer)
	}
}

// peerID derives a stable identifier for conn. A Unix-domain client
// socket is usually unnamed (empty or "@"), so connections are given a
// sequence-numbered fallback identity in that case.
func (s *Server) peerID(conn net.Conn) string {
	addr := conn.RemoteAddr().String()
	if addr != "" && addr != "@" {
		return addr
	}
	n := atomic.AddUint64(&s.connCounter, 1)
	return fmt.Sprintf("unix-peer-%d", n)
}

// serveUnary registers a fresh *rpc.Server per connection, each
// carrying that connection's peer identity as closure state. A single
// shared rpc.Server (the teacher's pattern, appropriate for its one
// privileged local caller) cannot distinguish daemons; this adapts the
// same Register/ServeConn idiom to per-peer state.
func (s *Server) serveUnary(conn net.Conn, peer string) {
	h := &Handlers{server: s, peer: peer}
	srv := rpc.NewServer()
	if err := srv.RegisterName("Mediator", h); err != nil {
		s.log.Error("rpc register failed", "error", err)
		conn.Close()
		return
	}
	srv.ServeConn(conn)
}
