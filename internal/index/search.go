package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/cascadehq/memvault/internal/model"
)

// SearchParams holds parameters for querying the index.
type SearchParams struct {
	Query string
	Tags  []string  // entry must carry at least one
	Start time.Time // inclusive; zero means unbounded
	End   time.Time // inclusive; zero means unbounded
	Limit int
}

// Hit is one ranked search result.
type Hit struct {
	Entry   model.IndexEntry `json:"entry"`
	Snippet string           `json:"snippet"`
	Score   float64          `json:"score"`
}

// Search runs a relevance-ranked full-text match over the card projections,
// with optional tag membership and inclusive creation-time filtering. Limit
// truncates the result list, never the scan.
func (i *SQLiteIndex) Search(ctx context.Context, p SearchParams) ([]Hit, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}

	match := ftsQuery(p.Query)
	if match == "" {
		return nil, fmt.Errorf("search: empty query")
	}

	where := []string{"entries_fts MATCH ?"}
	args := []interface{}{match}

	if len(p.Tags) > 0 {
		var tagPreds []string
		for _, tag := range p.Tags {
			tagPreds = append(tagPreds, "e.tags LIKE ?")
			args = append(args, "%\""+tag+"\"%")
		}
		where = append(where, "("+strings.Join(tagPreds, " OR ")+")")
	}
	if !p.Start.IsZero() {
		where = append(where, "e.created_at >= ?")
		args = append(args, p.Start.UTC().Format(time.RFC3339))
	}
	if !p.End.IsZero() {
		where = append(where, "e.created_at <= ?")
		args = append(args, p.End.UTC().Format(time.RFC3339))
	}

	query := fmt.Sprintf(`
		SELECT e.id, e.session_id, e.locator, e.card, e.tags, e.crypto, e.report, e.meta,
		       e.created_at, e.updated_at, snippet(entries_fts, 1, '', '', '…', 12), bm25(entries_fts)
		FROM entries_fts
		JOIN entries e ON e.session_id = entries_fts.session_id
		WHERE %s
		ORDER BY bm25(entries_fts)
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var e model.IndexEntry
		var cardJSON, cryptoJSON, reportJSON string
		var tagsJSON, metaJSON sql.NullString
		var createdAt, updatedAt, snip string
		var rank float64

		err := rows.Scan(&e.ID, &e.SessionID, &e.Locator, &cardJSON, &tagsJSON,
			&cryptoJSON, &reportJSON, &metaJSON, &createdAt, &updatedAt, &snip, &rank)
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

		// bm25 is smaller-is-better; flip the sign so callers see best-first
		// descending scores.
		hits = append(hits, Hit{Entry: e, Snippet: snip, Score: -rank})
	}
	return hits, rows.Err()
}

// ftsQuery reduces each whitespace-delimited term to its word characters and
// quotes it, so user input can never be parsed as FTS5 syntax. Terms are ORed
// for recall.
func ftsQuery(q string) string {
	var quoted []string
	for _, f := range strings.Fields(q) {
		var b strings.Builder
		for _, r := range f {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				b.WriteRune(r)
			}
		}
		if b.Len() == 0 {
			continue
		}
		quoted = append(quoted, `"`+b.String()+`"`)
	}
	return strings.Join(quoted, " OR ")
}
