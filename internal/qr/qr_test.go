package qr

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/menuqr/internal/capacity"
	"github.com/danmuck/menuqr/internal/testutil/testlog"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestPNGRendererProducesPNG(t *testing.T) {
	testlog.Start(t)

	img, err := NewPNGRenderer(0).Render("https://menus.example.test/menu.html#data=eJyrVkrLz1eyUkpKLFKqBQAdegQ0")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(img, pngSignature) {
		t.Fatalf("output is not a PNG")
	}
}

func TestRenderLinkHonoursCapacity(t *testing.T) {
	testlog.Start(t)

	r := NewPNGRenderer(128)
	if _, err := RenderLink(r, ""); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	over := "https://x.test/#data=" + strings.Repeat("A", capacity.Threshold)
	if _, err := RenderLink(r, over); !errors.Is(err, capacity.ErrOversizedPayload) {
		t.Fatalf("expected ErrOversizedPayload, got %v", err)
	}
	if _, err := RenderLink(r, "https://x.test/#data=abc"); err != nil {
		t.Fatalf("within budget render: %v", err)
	}
}
