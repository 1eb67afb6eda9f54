// Package qr renders shareable links as scannable images.
package qr

import (
	"errors"
	"fmt"

	"github.com/danmuck/menuqr/internal/capacity"
	"github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

var ErrEmptyContent = errors.New("qr: nothing to render")

// Renderer turns a string into an image.
type Renderer interface {
	Render(content string) ([]byte, error)
	ContentType() string
}

// PNGRenderer encodes at the lowest error-correction level, which leaves the
// most room for long links.
type PNGRenderer struct {
	Size int
}

func NewPNGRenderer(size int) PNGRenderer {
	if size <= 0 {
		size = DefaultSize
	}
	return PNGRenderer{Size: size}
}

func (r PNGRenderer) ContentType() string {
	return "image/png"
}

func (r PNGRenderer) Render(content string) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	size := r.Size
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(content, qrcode.Low, size)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	return png, nil
}

// RenderLink applies the capacity gate before rendering. Over-budget links
// fail with capacity.ErrOversizedPayload and nothing is rendered.
func RenderLink(r Renderer, url string) ([]byte, error) {
	switch capacity.Classify(url) {
	case capacity.Empty:
		return nil, ErrEmptyContent
	case capacity.OverBudget:
		return nil, capacity.ErrOversizedPayload
	}
	return r.Render(url)
}
