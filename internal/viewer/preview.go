package viewer

import (
	"sync"
	"time"

	"github.com/danmuck/menuqr/internal/link"
	"github.com/danmuck/menuqr/internal/protocol"
)

// PreviewState is the menu currently shown by the preview surface.
type PreviewState struct {
	URL      string
	Envelope protocol.Envelope
	LoadedAt time.Time
}

// Preview acts on loadMenu messages and remembers the last menu it loaded.
type Preview struct {
	mu      sync.RWMutex
	current *PreviewState
}

func NewPreview() *Preview {
	return &Preview{}
}

// Load decodes the link carried by msg. Messages of any other type fail with
// link.ErrUnknownMessage and leave the preview unchanged.
func (p *Preview) Load(msg link.PreviewMessage) (PreviewState, error) {
	if err := msg.Validate(); err != nil {
		return PreviewState{}, err
	}
	token, err := link.Extract(msg.URL)
	if err != nil {
		return PreviewState{}, err
	}
	env, err := protocol.Decode(token)
	if err != nil {
		return PreviewState{}, err
	}
	state := PreviewState{URL: msg.URL, Envelope: env, LoadedAt: time.Now()}
	p.mu.Lock()
	p.current = &state
	p.mu.Unlock()
	return state, nil
}

func (p *Preview) Current() (PreviewState, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return PreviewState{}, false
	}
	return *p.current, true
}
