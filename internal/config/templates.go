package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "viewer":
		return viewerTemplate, nil
	case "menuctl":
		return menuctlTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const viewerTemplate = `name = "menuviewer"
addr = ":8080"
viewer_base_url = "http://localhost:8080/menu"
placement = "query"
cors_origins = ["http://localhost:3000"]
ledger_path = "local/ledger.db"
qr_size = 256
`

const menuctlTemplate = `editor_base_url = "http://localhost:8080/"
viewer_path = "menu.html"
placement = "fragment"
ip_lookup_url = "https://api.ipify.org?format=json"
ip_lookup_timeout_ms = 5000
ledger_path = "local/ledger.db"
qr_size = 256
`
