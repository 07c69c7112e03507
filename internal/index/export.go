package index

import (
	"context"

	"github.com/cascadehq/memvault/internal/model"
)

// ExportAll returns every index entry ordered by creation time. The export
// surface is the index's public record: cards, locators, tags, and crypto
// provenance — never plaintext and never keys.
func (i *SQLiteIndex) ExportAll(ctx context.Context) ([]model.IndexEntry, error) {
	rows, err := i.db.QueryContext(ctx,
		`SELECT id, session_id, locator, card, tags, crypto, report, meta, created_at, updated_at
		 FROM entries ORDER BY created_at, session_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.IndexEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Import upserts entries from an export. Re-imported session ids replace
// their existing entries, matching Store semantics.
func (i *SQLiteIndex) Import(ctx context.Context, entries []model.IndexEntry) (int, error) {
	imported := 0
	for _, e := range entries {
		_, err := i.Store(ctx, StoreParams{
			SessionID: e.SessionID,
			Locator:   e.Locator,
			Card:      e.Card,
			Tags:      e.Tags,
			Crypto:    e.Crypto,
			Report:    e.Report,
			Metadata:  e.Metadata,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
