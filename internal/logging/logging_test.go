// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != slog.LevelInfo {
		t.Errorf("expected LevelInfo, got %v", cfg.Level)
	}
	if cfg.Format != FormatText {
		t.Errorf("expected FormatText, got %v", cfg.Format)
	}
}

func TestWithComponentTagsRecords(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	l := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: f})
	store := l.WithComponent("store")
	store.Info("opened", "path", ":memory:")

	buf, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf, []byte(`"component":"store"`)) {
		t.Errorf("expected component=store in output, got %s", buf)
	}
	if !strings.Contains(string(buf), `"path":":memory:"`) {
		t.Errorf("expected path attribute in output, got %s", buf)
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() should return the same instance")
	}
}
