package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/menuqr/internal/capacity"
	"github.com/danmuck/menuqr/internal/editor"
	"github.com/danmuck/menuqr/internal/menu"
	"github.com/danmuck/menuqr/internal/provenance"
	"github.com/danmuck/menuqr/internal/testutil/testlog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordListAndFind(t *testing.T) {
	testlog.Start(t)
	store := openTestStore(t)
	ctx := context.Background()

	for i, ts := range []string{"2025-01-01T00:00:00.000Z", "2025-01-01T00:00:01.000Z"} {
		e := Entry{CycleID: "cycle", Seq: uint64(i + 1), Timestamp: ts, EncryptedID: "eid", Version: "v2", LinkLen: 40, Outcome: "within_budget", URL: "https://x.test/#data=abc"}
		if err := store.Record(ctx, &e); err != nil {
			t.Fatalf("record: %v", err)
		}
		if e.ID == 0 {
			t.Fatalf("expected id to be assigned")
		}
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Seq != 2 {
		t.Fatalf("expected newest first, got %+v", entries)
	}

	found, err := store.FindByTimestamp(ctx, "2025-01-01T00:00:00.000Z")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Seq != 1 || found.CreatedAt.IsZero() {
		t.Fatalf("unexpected entry: %+v", found)
	}

	if _, err := store.FindByTimestamp(ctx, "never"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecorderStoresRevealableEntries(t *testing.T) {
	testlog.Start(t)
	store := openTestStore(t)
	ctx := context.Background()

	ts := provenance.Timestamp(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC))
	eid, err := provenance.Seal("203.0.113.9", ts, nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	sink := store.Recorder(ctx)
	sink(editor.Result{Seq: 1, URL: ""})
	sink(editor.Result{
		Seq:      2,
		CycleID:  "c-2",
		Version:  menu.V1,
		URL:      "https://x.test/menu.html?data=abc",
		Meta:     provenance.Metadata{Timestamp: ts, EncryptedID: eid},
		Outcome:  capacity.WithinBudget,
		IssuedAt: time.Now(),
	})

	entries, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the non-empty link recorded, got %d", len(entries))
	}
	got := entries[0]
	if got.CycleID != "c-2" || got.Version != "v1" || got.Outcome != "within_budget" || got.LinkLen != len(got.URL) {
		t.Fatalf("unexpected entry: %+v", got)
	}
	ip, err := got.Meta().Reveal()
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if ip != "203.0.113.9" {
		t.Fatalf("expected revealed address, got %q", ip)
	}
}
