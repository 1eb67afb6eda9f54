package provenance

import (
	"context"
	"io"
	"time"

	"github.com/danmuck/menuqr/internal/observability"
	"github.com/rs/zerolog/log"
)

// Metadata is the provenance pair written into every envelope.
type Metadata struct {
	Timestamp   string `json:"ts"`
	EncryptedID string `json:"eid"`
}

// IsZero reports whether no provenance was recorded (e.g. bare V1 payloads).
func (m Metadata) IsZero() bool {
	return m.Timestamp == "" && m.EncryptedID == ""
}

// Reveal decrypts the embedded address using the visible timestamp.
func (m Metadata) Reveal() (string, error) {
	return Open(m.EncryptedID, m.Timestamp)
}

// Stamper produces fresh Metadata for one encode cycle.
type Stamper struct {
	Resolver Resolver
	Now      func() time.Time
	Rand     io.Reader
}

func NewStamper(resolver Resolver) *Stamper {
	return &Stamper{Resolver: resolver}
}

// Stamp looks up the caller address once, substitutes Sentinel on failure, and
// encrypts it under the current timestamp. Only context cancellation or a
// cipher failure is returned as an error.
func (s *Stamper) Stamp(ctx context.Context) (Metadata, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := Timestamp(now())

	address := Sentinel
	if s.Resolver != nil {
		ip, err := s.Resolver.Lookup(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Metadata{}, ctxErr
			}
			log.Warn().Err(err).Msg("provenance_lookup_failed")
			observability.RecordIPLookup(false)
		} else {
			address = ip
			observability.RecordIPLookup(true)
		}
	}
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}

	eid, err := Seal(address, ts, s.Rand)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{Timestamp: ts, EncryptedID: eid}, nil
}
