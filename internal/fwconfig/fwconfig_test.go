// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fwconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmediator/mediator/internal/model"
)

func TestFirewallConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system-fw.json")
	fw := model.SysFirewall{
		Enabled: true, Running: true, Version: 1,
		DefaultInput: model.PolicyDrop, DefaultOutput: model.PolicyAccept, DefaultForward: model.PolicyDrop,
		Chains: []model.Chain{{
			Name: "input", Hook: model.HookInput, Policy: model.PolicyDrop, Table: "filter", Family: "inet",
			Rules: []model.FirewallRule{model.NewFirewallRule(0, "allow ssh", model.TargetAccept, []string{"tcp dport 22"})},
		}},
	}

	require.NoError(t, WriteFirewallConfig(path, fw))

	got, err := ReadFirewallConfig(path)
	require.NoError(t, err)
	assert.Equal(t, fw.DefaultInput, got.DefaultInput)
	require.Len(t, got.Chains, 1)
	require.Len(t, got.Chains[0].Rules, 1)
	assert.Equal(t, "allow ssh", got.Chains[0].Rules[0].Description)
	assert.Equal(t, fw.Chains[0].Rules[0].UUID, got.Chains[0].Rules[0].UUID)
}

func TestSetDaemonConfigAddressPreservesOtherFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default-config.json")
	initial := map[string]any{
		"Server": map[string]any{"Address": "unix:///old.sock", "AuthToken": "secret"},
		"LogLevel": "info",
	}
	data, err := json.Marshal(initial)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	require.NoError(t, SetDaemonConfigAddress(path, "unix:///new.sock"))

	addr, err := ReadDaemonConfigAddress(path)
	require.NoError(t, err)
	assert.Equal(t, "unix:///new.sock", addr)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "info", doc["LogLevel"])
	server := doc["Server"].(map[string]any)
	assert.Equal(t, "secret", server["AuthToken"])
}

func TestSetDaemonConfigAddressCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default-config.json")
	require.NoError(t, SetDaemonConfigAddress(path, "unix:///a.sock"))

	addr, err := ReadDaemonConfigAddress(path)
	require.NoError(t, err)
	assert.Equal(t, "unix:///a.sock", addr)
}

func TestWatcherFiresOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system-fw.json")
	require.NoError(t, WriteFirewallConfig(path, model.SysFirewall{}))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, WriteFirewallConfig(path, model.SysFirewall{Enabled: true}))

	select {
	case got := <-w.Events:
		assert.Equal(t, path, got)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not observe the rewrite")
	}
}
