// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package fwconfig reads and writes the two on-disk JSON files the
// mediator shares with the daemon (§6): the SysFirewall tree, and the
// daemon's own config file (of which the mediator only ever changes
// the Server.Address field, keeping every other field's value).
package fwconfig

import (
	"encoding/json"
	"os"
	"path/filepath"

	mediatorerrors "github.com/flowmediator/mediator/internal/errors"
	"github.com/flowmediator/mediator/internal/model"
)

// firewallRuleDoc and the other doc types below mirror model's shape
// with JSON tags; they exist so field renames inside model don't
// silently change the on-disk schema the daemon also reads.
type firewallRuleDoc struct {
	UUID        string   `json:"uuid"`
	Position    int      `json:"position"`
	Description string   `json:"description"`
	Enabled     bool     `json:"enabled"`
	Target      string   `json:"target"`
	Expressions []string `json:"expressions"`
}

type chainDoc struct {
	Name   string            `json:"name"`
	Hook   string            `json:"hook"`
	Policy string            `json:"policy"`
	Table  string            `json:"table"`
	Family string            `json:"family"`
	Rules  []firewallRuleDoc `json:"rules"`
}

type sysFirewallDoc struct {
	Enabled bool   `json:"enabled"`
	Running bool   `json:"running"`
	Version int    `json:"version"`

	DefaultInput   string `json:"default_input"`
	DefaultOutput  string `json:"default_output"`
	DefaultForward string `json:"default_forward"`

	Chains []chainDoc `json:"chains"`
}

func toDoc(fw model.SysFirewall) sysFirewallDoc {
	d := sysFirewallDoc{
		Enabled: fw.Enabled, Running: fw.Running, Version: fw.Version,
		DefaultInput:   string(fw.DefaultInput),
		DefaultOutput:  string(fw.DefaultOutput),
		DefaultForward: string(fw.DefaultForward),
	}
	for _, c := range fw.Chains {
		cd := chainDoc{Name: c.Name, Hook: string(c.Hook), Policy: string(c.Policy), Table: c.Table, Family: c.Family}
		for _, r := range c.Rules {
			cd.Rules = append(cd.Rules, firewallRuleDoc{
				UUID: r.UUID, Position: r.Position, Description: r.Description,
				Enabled: r.Enabled, Target: string(r.Target), Expressions: r.Expressions,
			})
		}
		d.Chains = append(d.Chains, cd)
	}
	return d
}

func fromDoc(d sysFirewallDoc) model.SysFirewall {
	fw := model.SysFirewall{
		Enabled: d.Enabled, Running: d.Running, Version: d.Version,
		DefaultInput:   model.ParseFirewallPolicy(d.DefaultInput),
		DefaultOutput:  model.ParseFirewallPolicy(d.DefaultOutput),
		DefaultForward: model.ParseFirewallPolicy(d.DefaultForward),
	}
	for _, cd := range d.Chains {
		c := model.Chain{
			Name: cd.Name, Hook: model.ChainHook(cd.Hook),
			Policy: model.ParseFirewallPolicy(cd.Policy), Table: cd.Table, Family: cd.Family,
		}
		for _, rd := range cd.Rules {
			c.Rules = append(c.Rules, model.FirewallRule{
				UUID: rd.UUID, Position: rd.Position, Description: rd.Description,
				Enabled: rd.Enabled, Target: model.ParseFirewallTarget(rd.Target), Expressions: rd.Expressions,
			})
		}
		fw.Chains = append(fw.Chains, c)
	}
	return fw
}

// WriteFirewallConfig writes fw to path as indented JSON, replacing
// any existing file via a temp-file-plus-rename to avoid a reader
// observing a partially written file.
func WriteFirewallConfig(path string, fw model.SysFirewall) error {
	data, err := json.MarshalIndent(toDoc(fw), "", "  ")
	if err != nil {
		return mediatorerrors.Wrap(err, mediatorerrors.KindInternal, "marshal firewall config")
	}
	return atomicWrite(path, data)
}

// ReadFirewallConfig reads and decodes the SysFirewall tree at path.
func ReadFirewallConfig(path string) (model.SysFirewall, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.SysFirewall{}, mediatorerrors.Wrap(err, mediatorerrors.KindStore, "read firewall config")
	}
	var d sysFirewallDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return model.SysFirewall{}, mediatorerrors.Wrap(err, mediatorerrors.KindDecode, "decode firewall config")
	}
	return fromDoc(d), nil
}

// ReadDaemonConfigAddress returns the daemon config's Server.Address
// field, or "" if the file or field does not exist.
func ReadDaemonConfigAddress(path string) (string, error) {
	doc, err := readDaemonConfig(path)
	if err != nil {
		return "", err
	}
	server, _ := doc["Server"].(map[string]any)
	addr, _ := server["Address"].(string)
	return addr, nil
}

// SetDaemonConfigAddress overwrites only the daemon config's
// Server.Address field, preserving every other field's value. The file
// is re-encoded as indented JSON with sorted keys, so the original
// formatting and key order are not kept. A missing file is treated as
// an empty document.
func SetDaemonConfigAddress(path, address string) error {
	doc, err := readDaemonConfig(path)
	if err != nil {
		return err
	}
	server, ok := doc["Server"].(map[string]any)
	if !ok {
		server = make(map[string]any)
	}
	server["Address"] = address
	doc["Server"] = server

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return mediatorerrors.Wrap(err, mediatorerrors.KindInternal, "marshal daemon config")
	}
	return atomicWrite(path, data)
}

func readDaemonConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, mediatorerrors.Wrap(err, mediatorerrors.KindStore, "read daemon config")
	}
	doc := make(map[string]any)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, mediatorerrors.Wrap(err, mediatorerrors.KindDecode, "decode daemon config")
		}
	}
	return doc, nil
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".mediator-tmp-*")
	if err != nil {
		return mediatorerrors.Wrap(err, mediatorerrors.KindStore, "create temp config file")
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return mediatorerrors.Wrap(err, mediatorerrors.KindStore, "write temp config file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return mediatorerrors.Wrap(err, mediatorerrors.KindStore, "close temp config file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return mediatorerrors.Wrap(err, mediatorerrors.KindStore, "rename temp config file into place")
	}
	return nil
}
