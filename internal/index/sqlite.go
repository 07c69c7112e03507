// Package index provides the local search index over memory cards: the sole
// query surface for finding past sessions. It never stores or sees session
// plaintext, only cards and crypto/redaction metadata.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/cascadehq/memvault/internal/blob"
	"github.com/cascadehq/memvault/internal/model"
)

// NotFoundError reports a session id or locator with no index entry.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("index entry not found: %s", e.Key)
}

// SQLiteIndex implements the search index using SQLite with an FTS5
// projection of each memory card.
type SQLiteIndex struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteIndex opens or creates the index database at the given path.
func NewSQLiteIndex(dbPath string) (*SQLiteIndex, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	idx := &SQLiteIndex{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return idx, nil
}

func (i *SQLiteIndex) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), i.entropy).String()
}

func (i *SQLiteIndex) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id          TEXT NOT NULL,
		session_id  TEXT PRIMARY KEY,
		locator     TEXT NOT NULL,
		card        TEXT NOT NULL,
		tags        TEXT,
		crypto      TEXT NOT NULL,
		report      TEXT NOT NULL,
		meta        TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_locator ON entries(locator);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);

	CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
		session_id UNINDEXED,
		text
	);
	`
	_, err := i.db.Exec(schema)
	return err
}

// StoreParams holds everything the index records per session.
type StoreParams struct {
	SessionID string
	Locator   string
	Card      model.MemoryCard
	Tags      []string
	Crypto    model.CryptoSummary
	Report    model.RedactionReport
	Metadata  map[string]string
}

// Store upserts the entry keyed by session id. The structured row and the
// searchable text projection are replaced in one transaction, so a re-store
// is never observable half-applied.
func (i *SQLiteIndex) Store(ctx context.Context, p StoreParams) (*model.IndexEntry, error) {
	if p.SessionID == "" {
		return nil, fmt.Errorf("store: empty session id")
	}
	if _, err := blob.ParseLocator(p.Locator); err != nil {
		return nil, err
	}

	// RFC3339 storage is second-granular; truncate so returned timestamps
	// round-trip exactly.
	now := time.Now().UTC().Truncate(time.Second)
	cardJSON, _ := json.Marshal(p.Card)
	cryptoJSON, _ := json.Marshal(p.Crypto)
	reportJSON, _ := json.Marshal(p.Report)

	var tagsJSON, metaJSON *string
	if len(p.Tags) > 0 {
		b, _ := json.Marshal(p.Tags)
		s := string(b)
		tagsJSON = &s
	}
	if len(p.Metadata) > 0 {
		b, _ := json.Marshal(p.Metadata)
		s := string(b)
		metaJSON = &s
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := i.newID()
	created := now
	var prevID, prevCreated string
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM entries WHERE session_id = ?`, p.SessionID).
		Scan(&prevID, &prevCreated)
	if err == nil {
		// Re-store keeps the original identity and creation time.
		id = prevID
		if t, perr := time.Parse(time.RFC3339, prevCreated); perr == nil {
			created = t
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (id, session_id, locator, card, tags, crypto, report, meta, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   locator = excluded.locator,
		   card = excluded.card,
		   tags = excluded.tags,
		   crypto = excluded.crypto,
		   report = excluded.report,
		   meta = excluded.meta,
		   updated_at = excluded.updated_at`,
		id, p.SessionID, p.Locator, string(cardJSON), tagsJSON, string(cryptoJSON),
		string(reportJSON), metaJSON, created.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("upsert entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM entries_fts WHERE session_id = ?`, p.SessionID)
	if err != nil {
		return nil, fmt.Errorf("clear projection: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries_fts (session_id, text) VALUES (?, ?)`,
		p.SessionID, projection(p.Card))
	if err != nil {
		return nil, fmt.Errorf("index projection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.IndexEntry{
		ID:        id,
		SessionID: p.SessionID,
		Locator:   p.Locator,
		Card:      p.Card,
		Tags:      p.Tags,
		Crypto:    p.Crypto,
		Report:    p.Report,
		Metadata:  p.Metadata,
		CreatedAt: created,
		UpdatedAt: now,
	}, nil
}

// projection is the searchable text surface of a card: title, summary
// bullets, and keywords.
func projection(c model.MemoryCard) string {
	parts := make([]string, 0, 1+len(c.Summary)+len(c.Keywords))
	parts = append(parts, c.Title)
	parts = append(parts, c.Summary...)
	parts = append(parts, c.Keywords...)
	return strings.Join(parts, "\n")
}

// GetByLocator is the retrieval path's exact-match lookup: the only way
// decryption metadata is recovered.
func (i *SQLiteIndex) GetByLocator(ctx context.Context, locator string) (*model.IndexEntry, error) {
	if _, err := blob.ParseLocator(locator); err != nil {
		return nil, err
	}
	return i.getOne(ctx, `locator = ?`, locator)
}

// GetBySessionID returns the entry for a session id.
func (i *SQLiteIndex) GetBySessionID(ctx context.Context, sessionID string) (*model.IndexEntry, error) {
	return i.getOne(ctx, `session_id = ?`, sessionID)
}

func (i *SQLiteIndex) getOne(ctx context.Context, where string, arg string) (*model.IndexEntry, error) {
	row := i.db.QueryRowContext(ctx,
		`SELECT id, session_id, locator, card, tags, crypto, report, meta, created_at, updated_at
		 FROM entries WHERE `+where+` LIMIT 1`, arg)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Key: arg}
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// LocatorRefCount returns how many entries reference a locator. Deduplicated
// content can be shared by several sessions.
func (i *SQLiteIndex) LocatorRefCount(ctx context.Context, locator string) (int, error) {
	var n int
	err := i.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE locator = ?`, locator).Scan(&n)
	return n, err
}

// Delete removes an entry and its projection. Returns the removed entry so
// callers can decide what to do with the underlying blob.
func (i *SQLiteIndex) Delete(ctx context.Context, sessionID string) (*model.IndexEntry, error) {
	e, err := i.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE session_id = ?`, sessionID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries_fts WHERE session_id = ?`, sessionID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

// Close closes the index database.
func (i *SQLiteIndex) Close() error {
	return i.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*model.IndexEntry, error) {
	var e model.IndexEntry
	var cardJSON, cryptoJSON, reportJSON string
	var tagsJSON, metaJSON sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&e.ID, &e.SessionID, &e.Locator, &cardJSON, &tagsJSON,
		&cryptoJSON, &reportJSON, &metaJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(cardJSON), &e.Card)
	json.Unmarshal([]byte(cryptoJSON), &e.Crypto)
	json.Unmarshal([]byte(reportJSON), &e.Report)
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &e.Tags)
	}
	if metaJSON.Valid {
		json.Unmarshal([]byte(metaJSON.String), &e.Metadata)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &e, nil
}
