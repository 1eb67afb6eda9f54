package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/menuqr/internal/link"
	"github.com/danmuck/menuqr/internal/provenance"
	"github.com/danmuck/menuqr/internal/qr"
)

const defaultConfigPath = "menuctl.toml"

type fileConfig struct {
	EditorBaseURL     string `toml:"editor_base_url"`
	ViewerPath        string `toml:"viewer_path"`
	Placement         string `toml:"placement"`
	IPLookupURL       string `toml:"ip_lookup_url"`
	IPLookupTimeout   string `toml:"ip_lookup_timeout"`
	IPLookupTimeoutMS int64  `toml:"ip_lookup_timeout_ms"`
	LedgerPath        string `toml:"ledger_path"`
	QRSize            int    `toml:"qr_size"`
}

type cliConfig struct {
	EditorBaseURL   string
	ViewerPath      string
	Placement       link.Placement
	IPLookupURL     string
	IPLookupTimeout time.Duration
	LedgerPath      string
	QRSize          int
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		EditorBaseURL:   "http://localhost:8080/",
		ViewerPath:      link.DefaultViewerPath,
		Placement:       link.Fragment,
		IPLookupURL:     provenance.DefaultLookupURL,
		IPLookupTimeout: 5 * time.Second,
		QRSize:          qr.DefaultSize,
	}
}

// loadCLIConfig overlays path on the defaults. A missing file at the default
// path is not an error; an explicitly named one is.
func loadCLIConfig(path string, explicit bool) (cliConfig, error) {
	cfg := defaultCLIConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cliConfig{}, fmt.Errorf("load menuctl config: %w", err)
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cliConfig{}, fmt.Errorf("load menuctl config: %w", err)
	}

	if meta.IsDefined("editor_base_url") {
		cfg.EditorBaseURL = strings.TrimSpace(raw.EditorBaseURL)
	}
	if meta.IsDefined("viewer_path") {
		cfg.ViewerPath = strings.TrimSpace(raw.ViewerPath)
	}
	if meta.IsDefined("placement") {
		p, err := link.ParsePlacement(raw.Placement)
		if err != nil {
			return cliConfig{}, fmt.Errorf("parse placement: %w", err)
		}
		cfg.Placement = p
	}
	if meta.IsDefined("ip_lookup_url") {
		cfg.IPLookupURL = strings.TrimSpace(raw.IPLookupURL)
	}
	if meta.IsDefined("ip_lookup_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.IPLookupTimeout))
		if err != nil {
			return cliConfig{}, fmt.Errorf("parse ip_lookup_timeout: %w", err)
		}
		cfg.IPLookupTimeout = d
	}
	if meta.IsDefined("ip_lookup_timeout_ms") {
		cfg.IPLookupTimeout = time.Duration(raw.IPLookupTimeoutMS) * time.Millisecond
	}
	if meta.IsDefined("ledger_path") {
		cfg.LedgerPath = strings.TrimSpace(raw.LedgerPath)
	}
	if meta.IsDefined("qr_size") {
		cfg.QRSize = raw.QRSize
	}
	return cfg, nil
}

// viewerURL resolves the viewer page against the editor base.
func (c cliConfig) viewerURL() (string, error) {
	return link.ViewerURL(c.EditorBaseURL, c.ViewerPath)
}
