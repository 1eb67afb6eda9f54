// Package ledger keeps a local record of issued links so their provenance can
// be inspected later without the link itself.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/menuqr/internal/editor"
	"github.com/danmuck/menuqr/internal/provenance"
	"github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

var ErrNotFound = errors.New("ledger: entry not found")

// Entry is one issued link.
type Entry struct {
	ID          int64
	CycleID     string
	Seq         uint64
	Timestamp   string
	EncryptedID string
	Version     string
	LinkLen     int
	Outcome     string
	URL         string
	CreatedAt   time.Time
}

// Meta returns the provenance pair stored with the entry.
func (e Entry) Meta() provenance.Metadata {
	return provenance.Metadata{Timestamp: e.Timestamp, EncryptedID: e.EncryptedID}
}

// EntryFromResult converts an applied publish into a ledger row.
func EntryFromResult(res editor.Result) Entry {
	return Entry{
		CycleID:     res.CycleID,
		Seq:         res.Seq,
		Timestamp:   res.Meta.Timestamp,
		EncryptedID: res.Meta.EncryptedID,
		Version:     res.Version.String(),
		LinkLen:     len([]rune(res.URL)),
		Outcome:     res.Outcome.String(),
		URL:         res.URL,
		CreatedAt:   res.IssuedAt,
	}
}

// Store is the SQLite-backed ledger.
type Store struct {
	db *sql.DB
}

// Open creates or opens the ledger database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %q: %w", path, err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		ts TEXT NOT NULL,
		eid TEXT NOT NULL,
		version TEXT NOT NULL,
		link_len INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		url TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_links_ts ON links(ts);
	CREATE INDEX IF NOT EXISTS idx_links_cycle ON links(cycle_id);
	`
	_, err := db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts e and fills in its ID.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO links(cycle_id, seq, ts, eid, version, link_len, outcome, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CycleID, int64(e.Seq), e.Timestamp, e.EncryptedID, e.Version, e.LinkLen, e.Outcome, e.URL,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("ledger: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

const selectColumns = `SELECT id, cycle_id, seq, ts, eid, version, link_len, outcome, url, created_at FROM links`

// List returns the newest entries first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the entry with id.
func (s *Store) Get(ctx context.Context, id int64) (Entry, error) {
	return s.one(ctx, selectColumns+` WHERE id = ?`, id)
}

// FindByTimestamp returns the newest entry issued at ts.
func (s *Store) FindByTimestamp(ctx context.Context, ts string) (Entry, error) {
	return s.one(ctx, selectColumns+` WHERE ts = ? ORDER BY id DESC LIMIT 1`, ts)
}

func (s *Store) one(ctx context.Context, query string, args ...any) (Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e       Entry
		seq     int64
		created string
	)
	if err := row.Scan(&e.ID, &e.CycleID, &seq, &e.Timestamp, &e.EncryptedID, &e.Version, &e.LinkLen, &e.Outcome, &e.URL, &created); err != nil {
		return Entry{}, err
	}
	e.Seq = uint64(seq)
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		e.CreatedAt = t
	}
	return e, nil
}

// Recorder returns an editor sink that stores every non-empty link.
func (s *Store) Recorder(ctx context.Context) editor.Sink {
	return func(res editor.Result) {
		if res.URL == "" {
			return
		}
		entry := EntryFromResult(res)
		if err := s.Record(ctx, &entry); err != nil {
			log.Error().Err(err).Str("cycle_id", res.CycleID).Msg("ledger_record_failed")
			return
		}
		log.Debug().Int64("id", entry.ID).Str("cycle_id", res.CycleID).Msg("ledger_recorded")
	}
}
