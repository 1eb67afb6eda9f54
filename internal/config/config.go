package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/danmuck/menuqr/internal/link"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment overrides applied after the file is read.
const (
	EnvAddr          = "MENUQR_ADDR"
	EnvViewerBaseURL = "MENUQR_VIEWER_BASE_URL"
	EnvLedgerPath    = "MENUQR_LEDGER_PATH"
	EnvQRSize        = "MENUQR_QR_SIZE"
	EnvAPIToken      = "MENUQR_API_TOKEN"
)

type ViewerConfig struct {
	Name          string   `toml:"name"`
	Addr          string   `toml:"addr"`
	ViewerBaseURL string   `toml:"viewer_base_url"`
	Placement     string   `toml:"placement"`
	CorsOrigins   []string `toml:"cors_origins"`
	LedgerPath    string   `toml:"ledger_path"`
	QRSize        int      `toml:"qr_size"`
	// APIToken gates POST /api/encode when set.
	APIToken      string   `toml:"api_token"`
}

func DefaultViewerConfig() ViewerConfig {
	return ViewerConfig{
		Name:          "menuviewer",
		Addr:          ":8080",
		ViewerBaseURL: "http://localhost:8080/menu",
		Placement:     string(link.Query),
		CorsOrigins:   []string{"http://localhost:3000"},
		QRSize:        256,
	}
}

// LoadViewerConfig reads path (optional), fills defaults, applies .env and
// environment overrides, then validates.
func LoadViewerConfig(path string) (ViewerConfig, error) {
	var cfg ViewerConfig
	if strings.TrimSpace(path) != "" {
		if err := loadToml(path, &cfg); err != nil {
			return ViewerConfig{}, err
		}
	}
	cfg = withViewerDefaults(cfg)
	LoadEnv()
	if err := applyViewerEnv(&cfg); err != nil {
		return ViewerConfig{}, err
	}
	if err := ValidateViewerConfig(cfg); err != nil {
		return ViewerConfig{}, err
	}
	return cfg, nil
}

func withViewerDefaults(cfg ViewerConfig) ViewerConfig {
	def := DefaultViewerConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.ViewerBaseURL == "" {
		cfg.ViewerBaseURL = def.ViewerBaseURL
	}
	if cfg.Placement == "" {
		cfg.Placement = def.Placement
	}
	if cfg.QRSize == 0 {
		cfg.QRSize = def.QRSize
	}
	return cfg
}

// LoadEnv loads a .env file from the working directory when present.
func LoadEnv() {
	_ = godotenv.Load()
}

func applyViewerEnv(cfg *ViewerConfig) error {
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvViewerBaseURL); v != "" {
		cfg.ViewerBaseURL = v
	}
	if v := os.Getenv(EnvLedgerPath); v != "" {
		cfg.LedgerPath = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv(EnvQRSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvQRSize, err)
		}
		cfg.QRSize = n
	}
	return nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// CheckSyntax reports whether path is readable, well-formed TOML.
func CheckSyntax(path string) error {
	var raw map[string]any
	return loadToml(path, &raw)
}

func ValidateViewerConfig(cfg ViewerConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("viewer config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("viewer config missing addr")
	}
	u, err := url.Parse(cfg.ViewerBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("viewer config viewer_base_url must be an absolute URL: %q", cfg.ViewerBaseURL)
	}
	if _, err := link.ParsePlacement(cfg.Placement); err != nil {
		return fmt.Errorf("viewer config placement: %w", err)
	}
	if cfg.QRSize < 64 || cfg.QRSize > 2048 {
		return fmt.Errorf("viewer config qr_size out of range: %d", cfg.QRSize)
	}
	for i, origin := range cfg.CorsOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("cors_origins[%d] is empty", i)
		}
	}
	return nil
}
