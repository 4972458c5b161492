package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "trackd.yaml", `
addr: ":9090"
log_level: debug
update_interval_ms: 100
demo:
  enabled: true
  tick_ms: 16
  width: 800
  height: 700
  gravity: 0.1
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.LogLevel != "debug" || cfg.UpdateIntervalMS != 100 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.Demo.Enabled || cfg.Demo.TickMS != 16 || cfg.Demo.Gravity != 0.1 {
		t.Fatalf("unexpected demo config %+v", cfg.Demo)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "trackd.json", `{"addr":":8081","demo":{"enabled":false}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.Demo.Enabled {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "trackd.toml", "addr = \":7070\"\n[demo]\nwidth = 640.0\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.Demo.Width != 640 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "trackd.ini", "addr=:1\n")
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for .ini")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandHome("~/cfg/trackd.yaml")
	if err != nil {
		t.Fatalf("ExpandHome: %v", err)
	}
	if got != filepath.Join(home, "cfg", "trackd.yaml") {
		t.Fatalf("unexpected expansion %s", got)
	}
	got, err = ExpandHome("/abs/path")
	if err != nil || got != "/abs/path" {
		t.Fatalf("absolute path must pass through, got %s err=%v", got, err)
	}
}
