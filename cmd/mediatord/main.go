// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command mediatord wires together the store (C1), state actor (C2),
// prompt broker (C3), and RPC server (C4) into one running process,
// alongside the ambient health/metrics HTTP surface and the firewall
// config watcher (§6).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowmediator/mediator/internal/actor"
	"github.com/flowmediator/mediator/internal/clock"
	"github.com/flowmediator/mediator/internal/fwconfig"
	"github.com/flowmediator/mediator/internal/health"
	"github.com/flowmediator/mediator/internal/logging"
	"github.com/flowmediator/mediator/internal/metrics"
	"github.com/flowmediator/mediator/internal/model"
	"github.com/flowmediator/mediator/internal/notify"
	"github.com/flowmediator/mediator/internal/prompt"
	"github.com/flowmediator/mediator/internal/rpcserver"
	"github.com/flowmediator/mediator/internal/settings"
	"github.com/flowmediator/mediator/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mediatord:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := settings.Default()

	flags := flag.NewFlagSet("mediatord", flag.ExitOnError)
	flags.StringVar(&cfg.ListenAddress, "listen", cfg.ListenAddress, "daemon-facing RPC listen address (unix:///path or host:port)")
	flags.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path to the SQLite database")
	flags.StringVar(&cfg.FirewallConfigPath, "firewall-config", cfg.FirewallConfigPath, "path to the system firewall JSON")
	flags.StringVar(&cfg.DaemonConfigPath, "daemon-config", cfg.DaemonConfigPath, "path to the daemon's own config JSON")
	flags.IntVar(&cfg.PromptTimeoutSeconds, "prompt-timeout", cfg.PromptTimeoutSeconds, "seconds an interactive AskRule prompt waits before falling back")
	flags.IntVar(&cfg.MaxConnections, "max-connections", cfg.MaxConnections, "bounded size of the in-memory connection ring")
	flags.IntVar(&cfg.MaxAlerts, "max-alerts", cfg.MaxAlerts, "bounded size of the in-memory alert ring")
	askRulePolicy := flags.String("ask-rule-policy", string(cfg.AskRulePolicy), "monitor or interactive")
	healthAddr := flags.String("health-addr", ":9090", "address for /healthz and /metrics")
	logLevel := flags.String("log-level", "info", "debug, info, warn, or error")
	flags.Parse(os.Args[1:])
	cfg.AskRulePolicy = settings.ParseAskRulePolicy(*askRulePolicy)

	logCfg := logging.DefaultConfig()
	logCfg.Level = parseLogLevel(*logLevel)
	log := logging.New(logCfg).WithComponent("mediatord")

	st, err := store.Open(cfg.DatabasePath, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	reg := notify.NewRegistry()
	clk := clock.Real

	a := actor.New(st, reg, clk, log, cfg.MaxConnections, cfg.MaxAlerts)
	a.SetFirewallConfigPath(cfg.FirewallConfigPath)
	broker := prompt.New(cfg.PromptTimeout(), model.ParseRuleAction(cfg.DefaultAction), model.ParseDuration(cfg.DefaultDuration), clk, log)
	m := metrics.New()

	promReg := prometheus.NewRegistry()
	if err := m.Register(promReg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	rpcSrv := rpcserver.New(cfg, a, broker, reg, m, clk, log)
	healthSrv := health.New(*healthAddr, promReg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	actorDone := make(chan error, 1)
	go func() { actorDone <- a.Run(ctx) }()

	var watcher *fwconfig.Watcher
	if cfg.FirewallConfigPath != "" {
		watcher, err = fwconfig.NewWatcher(cfg.FirewallConfigPath, log)
		if err != nil {
			log.Warn("firewall config watcher disabled", "path", cfg.FirewallConfigPath, "error", err)
		} else {
			go watchFirewallConfig(ctx, watcher, a, log)
		}
	}

	if err := rpcSrv.Start(); err != nil {
		return fmt.Errorf("start rpc server: %w", err)
	}
	healthSrv.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("received signal, shutting down", "signal", sig.String())

	cancel()
	if watcher != nil {
		watcher.Close()
	}
	if err := rpcSrv.Stop(); err != nil {
		log.Error("rpc server stop error", "error", err)
	}
	if err := healthSrv.Stop(); err != nil {
		log.Error("health server stop error", "error", err)
	}
	<-actorDone

	log.Info("mediatord exited")
	return nil
}

// watchFirewallConfig reloads and re-broadcasts §6's SysFirewall file
// to the active node whenever the watcher reports an external edit.
func watchFirewallConfig(ctx context.Context, w *fwconfig.Watcher, a *actor.Actor, log *logging.Logger) {
	for {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return
			}
			fw, err := fwconfig.ReadFirewallConfig(path)
			if err != nil {
				log.Error("reload firewall config failed", "path", path, "error", err)
				continue
			}
			addr := a.Snapshot().ActiveAddress
			if addr == "" {
				continue
			}
			if err := a.Submit(ctx, actor.FirewallConfigUpdate{Address: addr, Firewall: fw}); err != nil {
				return
			}
			if err := a.Submit(ctx, actor.SendNotification{
				Address: addr,
				Action:  notify.Action{Kind: int(model.ActionReloadFwRules)},
			}); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
