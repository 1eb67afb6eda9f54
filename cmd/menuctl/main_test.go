package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/menuqr/internal/menu"
	"github.com/danmuck/menuqr/internal/protocol"
	"github.com/danmuck/menuqr/internal/testutil/testlog"
)

const v1Menu = `[{"id":"section-1","name":"Mains","items":[{"id":"item-1","name":"Soup","price":"5","description":"hot"}]}]`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func field(out, key string) string {
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, key+": "); ok {
			return v
		}
	}
	return ""
}

func TestEncodeDecodeInspectRoundTrip(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	in := writeFile(t, dir, "menu.json", v1Menu)
	ledgerPath := filepath.Join(dir, "ledger.db")
	cfg := writeFile(t, dir, "menuctl.toml", "editor_base_url = \"https://menus.test/app/\"\nledger_path = \""+filepath.ToSlash(ledgerPath)+"\"\n")
	qrPath := filepath.Join(dir, "menu.png")

	out, _, err := runCLI(t, "encode", "-config", cfg, "-in", in, "-ip", "198.51.100.7", "-qr", qrPath)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	url := field(out, "link")
	if !strings.HasPrefix(url, "https://menus.test/app/menu.html#data=") {
		t.Fatalf("unexpected link: %q", url)
	}
	if field(out, "capacity") != "within_budget" || field(out, "version") != "v1" {
		t.Fatalf("unexpected encode output:\n%s", out)
	}
	if info, err := os.Stat(qrPath); err != nil || info.Size() == 0 {
		t.Fatalf("expected qr png to be written: %v", err)
	}

	exported := filepath.Join(dir, "decoded.json")
	out, _, err = runCLI(t, "decode", "-out", exported, url)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(out, `"version": "v1"`) || !strings.Contains(out, `"Soup"`) {
		t.Fatalf("unexpected decode output:\n%s", out)
	}
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	m, err := menu.Parse(data)
	if err != nil {
		t.Fatalf("exported file does not re-import: %v", err)
	}
	if m.Sections[0].Items[0].Description != "hot" {
		t.Fatalf("unexpected exported menu: %+v", m)
	}

	out, _, err = runCLI(t, "inspect", url)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if field(out, "address") != "198.51.100.7" {
		t.Fatalf("unexpected inspect output:\n%s", out)
	}

	out, _, err = runCLI(t, "history", "-config", cfg)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "within_budget") {
		t.Fatalf("expected ledger entry:\n%s", out)
	}
	out, _, err = runCLI(t, "inspect", "-config", cfg, "-id", "1")
	if err != nil {
		t.Fatalf("inspect ledger: %v", err)
	}
	if field(out, "address") != "198.51.100.7" {
		t.Fatalf("unexpected ledger inspect output:\n%s", out)
	}
}

func TestEncodeOfflineUsesSentinel(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	in := writeFile(t, dir, "menu.json", v1Menu)
	cfg := writeFile(t, dir, "menuctl.toml", "placement = \"query\"\n")

	out, _, err := runCLI(t, "encode", "-config", cfg, "-in", in, "-offline")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	url := field(out, "link")
	if !strings.Contains(url, "?data=") {
		t.Fatalf("expected query placement: %q", url)
	}
	out, _, err = runCLI(t, "inspect", url)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if field(out, "address") != "ip_not_available" {
		t.Fatalf("expected sentinel address:\n%s", out)
	}
}

func TestEncodeRejectsInvalidAndEmptyMenus(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	cfg := writeFile(t, dir, "menuctl.toml", "")

	bad := writeFile(t, dir, "bad.json", `[{"name":"no id","items":[]}]`)
	if _, _, err := runCLI(t, "encode", "-config", cfg, "-in", bad, "-offline"); !errors.Is(err, menu.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
	empty := writeFile(t, dir, "empty.json", `[]`)
	_, stderr, err := runCLI(t, "encode", "-config", cfg, "-in", empty, "-offline")
	if !errors.Is(err, protocol.ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if !strings.Contains(stderr, "Your QR code will appear here.") {
		t.Fatalf("expected placeholder message, got %q", stderr)
	}
}

func TestDecodeCorruptLink(t *testing.T) {
	testlog.Start(t)

	_, _, err := runCLI(t, "decode", "https://menus.test/menu.html#data=AAAA")
	if !errors.Is(err, protocol.ErrCorruptLink) {
		t.Fatalf("expected ErrCorruptLink, got %v", err)
	}
	if _, _, err := runCLI(t, "decode"); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestValidateAndUpgrade(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	in := writeFile(t, dir, "menu.json", v1Menu)

	out, _, err := runCLI(t, "validate", in)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "ok: v1 menu, 1 sections, 1 items") {
		t.Fatalf("unexpected validate output: %q", out)
	}

	upgraded := filepath.Join(dir, "v2.json")
	if _, _, err := runCLI(t, "upgrade", "-in", in, "-out", upgraded, "-title", "Lunch"); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	data, err := os.ReadFile(upgraded)
	if err != nil {
		t.Fatalf("read upgraded: %v", err)
	}
	m, err := menu.Parse(data)
	if err != nil {
		t.Fatalf("parse upgraded: %v", err)
	}
	if m.Version != menu.V2 || m.Title != "Lunch" || len(m.Sections) != 1 {
		t.Fatalf("unexpected upgraded menu: %+v", m)
	}
}

func TestUnknownCommand(t *testing.T) {
	testlog.Start(t)

	if _, stderr, err := runCLI(t, "frobnicate"); !errors.Is(err, errUsage) || !strings.Contains(stderr, "unknown command") {
		t.Fatalf("expected usage error, got %v %q", err, stderr)
	}
}
