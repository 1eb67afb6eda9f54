package provenance

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danmuck/menuqr/internal/testutil/testlog"
)

func TestTimestampFormat(t *testing.T) {
	testlog.Start(t)

	at := time.Date(2025, 3, 4, 5, 6, 7, 891_000_000, time.FixedZone("x", 3600))
	if got := Timestamp(at); got != "2025-03-04T04:06:07.891Z" {
		t.Fatalf("unexpected timestamp: %q", got)
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	testlog.Start(t)

	ts := "2025-01-01T00:00:00.000Z"
	token, err := Seal("203.0.113.9", ts, nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token not std base64: %v", err)
	}
	if len(raw) != NonceSize+len("203.0.113.9")+16 {
		t.Fatalf("unexpected sealed length %d", len(raw))
	}
	got, err := Open(token, ts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got != "203.0.113.9" {
		t.Fatalf("unexpected plaintext: %q", got)
	}
}

func TestOpenWrongTimestampFails(t *testing.T) {
	testlog.Start(t)

	token, err := Seal("198.51.100.1", "2025-01-01T00:00:00.000Z", nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := Open(token, "2025-01-01T00:00:00.001Z"); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt, got %v", err)
	}
	if _, err := Open("!!", "x"); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
	if _, err := Open(base64.StdEncoding.EncodeToString([]byte("short")), "x"); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken for short token, got %v", err)
	}
}

func TestDistinctTimestampsGiveDistinctKeysAndCiphertexts(t *testing.T) {
	testlog.Start(t)

	tsA := "2025-06-01T10:00:00.000Z"
	tsB := "2025-06-01T10:00:00.001Z"
	if bytes.Equal(DeriveKey(tsA), DeriveKey(tsB)) {
		t.Fatalf("expected distinct keys for distinct timestamps")
	}
	if !bytes.Equal(DeriveKey(tsA), DeriveKey(tsA)) {
		t.Fatalf("key derivation must be deterministic")
	}

	a, err := Seal("192.0.2.1", tsA, nil)
	if err != nil {
		t.Fatalf("seal a: %v", err)
	}
	b, err := Seal("192.0.2.1", tsB, nil)
	if err != nil {
		t.Fatalf("seal b: %v", err)
	}
	again, err := Seal("192.0.2.1", tsA, nil)
	if err != nil {
		t.Fatalf("seal again: %v", err)
	}
	if a == b || a == again {
		t.Fatalf("expected fresh ciphertexts, got %q %q %q", a, b, again)
	}
}

func TestHTTPResolverSuccess(t *testing.T) {
	testlog.Start(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ip":"203.0.113.77"}`))
	}))
	defer srv.Close()

	ip, err := NewHTTPResolver(srv.URL, time.Second).Lookup(context.Background())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if ip != "203.0.113.77" {
		t.Fatalf("unexpected ip: %q", ip)
	}
}

func TestHTTPResolverFailuresAreNetworkUnavailable(t *testing.T) {
	testlog.Start(t)

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPResolver(srv.URL, time.Second).Lookup(context.Background())
	if !errors.Is(err, ErrNetworkUnavailable) {
		t.Fatalf("expected ErrNetworkUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one request, got %d", calls)
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()
	if _, err := NewHTTPResolver(url, time.Second).Lookup(context.Background()); !errors.Is(err, ErrNetworkUnavailable) {
		t.Fatalf("expected ErrNetworkUnavailable for closed server, got %v", err)
	}
}

type failingResolver struct{}

func (failingResolver) Lookup(context.Context) (string, error) {
	return "", ErrNetworkUnavailable
}

func TestStampSubstitutesSentinel(t *testing.T) {
	testlog.Start(t)

	fixed := time.Date(2025, 2, 2, 2, 2, 2, 0, time.UTC)
	s := &Stamper{Resolver: failingResolver{}, Now: func() time.Time { return fixed }}
	meta, err := s.Stamp(context.Background())
	if err != nil {
		t.Fatalf("stamp: %v", err)
	}
	if meta.Timestamp != "2025-02-02T02:02:02.000Z" {
		t.Fatalf("unexpected ts: %q", meta.Timestamp)
	}
	got, err := meta.Reveal()
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if got != Sentinel {
		t.Fatalf("expected sentinel, got %q", got)
	}
}

func TestStampUsesResolvedAddress(t *testing.T) {
	testlog.Start(t)

	meta, err := NewStamper(StaticResolver("198.51.100.23")).Stamp(context.Background())
	if err != nil {
		t.Fatalf("stamp: %v", err)
	}
	got, err := meta.Reveal()
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if got != "198.51.100.23" {
		t.Fatalf("unexpected address: %q", got)
	}
}

func TestStampHonoursCancellation(t *testing.T) {
	testlog.Start(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStamper(StaticResolver("192.0.2.4")).Stamp(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
