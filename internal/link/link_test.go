package link

import (
	"errors"
	"testing"
)

func TestBuildPlacements(t *testing.T) {
	viewer := "https://example.test/static-menu-qr/menu.html"

	got, err := Build(viewer, "eJxLTE", Fragment)
	if err != nil || got != viewer+"#data=eJxLTE" {
		t.Fatalf("unexpected fragment link %q (%v)", got, err)
	}
	got, err = Build(viewer, "eJxLTE", Query)
	if err != nil || got != viewer+"?data=eJxLTE" {
		t.Fatalf("unexpected query link %q (%v)", got, err)
	}
	got, err = Build(viewer, "", Fragment)
	if err != nil || got != "" {
		t.Fatalf("expected empty link for empty token, got %q (%v)", got, err)
	}
	if _, err := Build(viewer, "x", Placement("path")); !errors.Is(err, ErrUnknownPlacement) {
		t.Fatalf("expected ErrUnknownPlacement, got %v", err)
	}
}

func TestViewerURLResolvesRelative(t *testing.T) {
	got, err := ViewerURL("https://example.test/static-menu-qr/index.html", "")
	if err != nil {
		t.Fatalf("viewer url: %v", err)
	}
	if got != "https://example.test/static-menu-qr/menu.html" {
		t.Fatalf("unexpected viewer url: %q", got)
	}
}

func TestExtractPrefersFragment(t *testing.T) {
	got, err := Extract("https://example.test/menu.html?data=legacy#data=modern_-x")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "modern_-x" {
		t.Fatalf("expected fragment token, got %q", got)
	}
}

func TestExtractFallsBackToQuery(t *testing.T) {
	got, err := Extract("https://example.test/menu.html?data=legacy-token")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "legacy-token" {
		t.Fatalf("expected query token, got %q", got)
	}
}

func TestExtractBareTokenAndMissing(t *testing.T) {
	got, err := Extract("  eJyrVipLLSrOzM9TslIy0jNQ_ ")
	if err != nil || got != "eJyrVipLLSrOzM9TslIy0jNQ_" {
		t.Fatalf("unexpected bare token %q (%v)", got, err)
	}
	for _, raw := range []string{"", "https://example.test/menu.html", "https://example.test/menu.html#other=1"} {
		if _, err := Extract(raw); !errors.Is(err, ErrNoToken) {
			t.Fatalf("Extract(%q): expected ErrNoToken, got %v", raw, err)
		}
	}
}

func TestParsePlacement(t *testing.T) {
	if p, err := ParsePlacement(""); err != nil || p != Fragment {
		t.Fatalf("expected fragment default, got %q (%v)", p, err)
	}
	if p, err := ParsePlacement("QUERY"); err != nil || p != Query {
		t.Fatalf("expected query, got %q (%v)", p, err)
	}
	if _, err := ParsePlacement("hash"); !errors.Is(err, ErrUnknownPlacement) {
		t.Fatalf("expected ErrUnknownPlacement, got %v", err)
	}
}

func TestPreviewMessageValidate(t *testing.T) {
	if err := NewPreviewMessage("https://x/menu.html#data=a").Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (PreviewMessage{Type: "resize"}).Validate(); !errors.Is(err, ErrUnknownMessage) {
		t.Fatalf("expected ErrUnknownMessage, got %v", err)
	}
}
