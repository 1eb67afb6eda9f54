package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/menuqr/internal/config"
	"github.com/danmuck/menuqr/internal/link"
	"github.com/danmuck/menuqr/internal/provenance"
)

func TestLoadCLIConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := loadCLIConfig(filepath.Join(t.TempDir(), "menuctl.toml"), false)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Placement != link.Fragment || cfg.IPLookupURL != provenance.DefaultLookupURL {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := loadCLIConfig(filepath.Join(t.TempDir(), "nope.toml"), true); err == nil {
		t.Fatalf("expected error for explicit missing config")
	}
}

func TestLoadCLIConfigTemplateOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menuctl.toml")
	if err := config.WriteTemplate(path, "menuctl", false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := loadCLIConfig(path, true)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.IPLookupTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.IPLookupTimeout)
	}
	if cfg.LedgerPath != "local/ledger.db" || cfg.QRSize != 256 {
		t.Fatalf("unexpected overlay: %+v", cfg)
	}
	viewer, err := cfg.viewerURL()
	if err != nil {
		t.Fatalf("viewer url: %v", err)
	}
	if viewer != "http://localhost:8080/menu.html" {
		t.Fatalf("unexpected viewer url: %q", viewer)
	}
}

func TestLoadCLIConfigPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menuctl.toml")
	body := "placement = \"query\"\nip_lookup_timeout = \"250ms\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := loadCLIConfig(path, true)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Placement != link.Query || cfg.IPLookupTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected overlay: %+v", cfg)
	}
	if cfg.EditorBaseURL != defaultCLIConfig().EditorBaseURL || cfg.LedgerPath != "" {
		t.Fatalf("defaults not kept: %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("placement = \"path\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadCLIConfig(path, true); err == nil {
		t.Fatalf("expected placement error")
	}
}
