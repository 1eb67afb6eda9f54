package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/danmuck/menuqr/internal/capacity"
	"github.com/danmuck/menuqr/internal/link"
	"github.com/danmuck/menuqr/internal/menu"
	"github.com/danmuck/menuqr/internal/observability"
	"github.com/danmuck/menuqr/internal/protocol"
	"github.com/danmuck/menuqr/internal/provenance"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Stamper issues provenance metadata for one publish cycle.
type Stamper interface {
	Stamp(ctx context.Context) (provenance.Metadata, error)
}

// Result is one completed publish. An empty menu yields a Result with an empty
// Token and URL and the Empty outcome.
type Result struct {
	Seq      uint64
	CycleID  string
	Version  menu.Version
	Menu     menu.Menu
	Token    string
	URL      string
	Meta     provenance.Metadata
	Outcome  capacity.Outcome
	IssuedAt time.Time
}

// Sink receives applied results in sequence order.
type Sink func(Result)

// PublisherConfig describes where issued links point.
type PublisherConfig struct {
	ViewerURL string
	Placement link.Placement
}

// Publisher encodes menu snapshots into shareable links.
type Publisher struct {
	stamper Stamper
	cfg     PublisherConfig
	sinks   []Sink

	mu        sync.Mutex
	seq       uint64
	cancel    context.CancelFunc
	applied   uint64
	latest    Result
	hasLatest bool

	deliverMu sync.Mutex
	wg        sync.WaitGroup
}

func NewPublisher(stamper Stamper, cfg PublisherConfig, sinks ...Sink) *Publisher {
	return &Publisher{stamper: stamper, cfg: cfg, sinks: sinks}
}

// AddSink registers a sink for results applied after this call.
func (p *Publisher) AddSink(sink Sink) {
	p.deliverMu.Lock()
	p.sinks = append(p.sinks, sink)
	p.deliverMu.Unlock()
}

// Publish starts an encode cycle for m and returns its sequence number. The
// previous in-flight cycle, if any, is cancelled.
func (p *Publisher) Publish(ctx context.Context, m menu.Menu) uint64 {
	snapshot := m.Clone()
	cycleCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.seq++
	seq := p.seq
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.mu.Unlock()

	cycleID := uuid.NewString()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		res, err := p.build(cycleCtx, seq, cycleID, snapshot)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Debug().Uint64("seq", seq).Str("cycle_id", cycleID).Msg("publish_cancelled")
				observability.RecordPublishSuperseded()
				return
			}
			log.Error().Err(err).Uint64("seq", seq).Str("cycle_id", cycleID).Msg("publish_failed")
			return
		}
		p.apply(res)
	}()
	return seq
}

func (p *Publisher) build(ctx context.Context, seq uint64, cycleID string, m menu.Menu) (Result, error) {
	res := Result{Seq: seq, CycleID: cycleID, Version: m.Version, Menu: m, Outcome: capacity.Empty}
	if m.IsEmpty() {
		res.IssuedAt = time.Now()
		return res, nil
	}

	meta, err := p.stamper.Stamp(ctx)
	if err != nil {
		return Result{}, err
	}
	token, err := protocol.Encode(protocol.NewEnvelope(m, meta))
	if err != nil {
		return Result{}, err
	}
	url, err := link.Build(p.cfg.ViewerURL, token, p.cfg.Placement)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res.Token = token
	res.URL = url
	res.Meta = meta
	res.Outcome = capacity.Classify(url)
	res.IssuedAt = time.Now()
	return res, nil
}

// Issue runs one publish cycle synchronously, outside any sequencing. It
// serves callers that own a single request, such as an HTTP handler.
func Issue(ctx context.Context, stamper Stamper, cfg PublisherConfig, m menu.Menu) (Result, error) {
	p := &Publisher{stamper: stamper, cfg: cfg}
	return p.build(ctx, 1, uuid.NewString(), m.Clone())
}

// apply installs res unless a newer result was already applied.
func (p *Publisher) apply(res Result) bool {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	p.mu.Lock()
	if applied := p.applied; res.Seq <= applied {
		p.mu.Unlock()
		log.Debug().Uint64("seq", res.Seq).Uint64("applied", applied).Msg("publish_superseded")
		observability.RecordPublishSuperseded()
		return false
	}
	p.applied = res.Seq
	p.latest = res
	p.hasLatest = true
	sinks := p.sinks
	p.mu.Unlock()

	observability.RecordEncode(res.Version.String(), len([]rune(res.URL)), res.Outcome.String())
	log.Info().
		Uint64("seq", res.Seq).
		Str("cycle_id", res.CycleID).
		Str("version", res.Version.String()).
		Int("link_len", len([]rune(res.URL))).
		Str("outcome", res.Outcome.String()).
		Msg("publish_applied")
	for _, sink := range sinks {
		sink(res)
	}
	return true
}

// Latest returns the most recently applied result.
func (p *Publisher) Latest() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.hasLatest
}

// Wait blocks until every started cycle has finished or been dropped.
func (p *Publisher) Wait() {
	p.wg.Wait()
}

// Close cancels the in-flight cycle and waits for all cycles to return.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// PreviewSink forwards every non-empty link to a preview surface as a loadMenu message.
func PreviewSink(send func(link.PreviewMessage)) Sink {
	return func(res Result) {
		if res.URL == "" {
			return
		}
		send(link.NewPreviewMessage(res.URL))
	}
}
