package index

import (
	"context"
	"os"
)

// Stats holds index statistics.
type Stats struct {
	DBPath       string     `json:"db_path"`
	DBSizeBytes  int64      `json:"db_size_bytes"`
	TotalEntries int        `json:"total_entries"`
	Tags         []TagStats `json:"tags,omitempty"`
}

// TagStats counts entries per tag.
type TagStats struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Stats returns index statistics.
func (i *SQLiteIndex) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	i.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&st.TotalEntries)

	// tags is a JSON array column; json_each unpacks it per entry.
	rows, err := i.db.QueryContext(ctx, `
		SELECT j.value, COUNT(*) AS cnt
		FROM entries e, json_each(e.tags) j
		WHERE e.tags IS NOT NULL
		GROUP BY j.value ORDER BY cnt DESC`)
	if err != nil {
		return st, nil
	}
	defer rows.Close()

	for rows.Next() {
		var ts TagStats
		rows.Scan(&ts.Tag, &ts.Count)
		st.Tags = append(st.Tags, ts)
	}

	return st, nil
}
