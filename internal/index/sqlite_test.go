package index

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/cascadehq/memvault/internal/blob"
	"github.com/cascadehq/memvault/internal/model"
)

func newTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func testLocator(n int) string {
	return blob.NewLocator(fmt.Sprintf("%064x", n))
}

func testCard(title string, keywords ...string) model.MemoryCard {
	return model.MemoryCard{
		Title:    title,
		Summary:  []string{"user: " + title},
		Keywords: keywords,
	}
}

func storeParams(sessionID string, locator string, c model.MemoryCard, tags ...string) StoreParams {
	return StoreParams{
		SessionID: sessionID,
		Locator:   locator,
		Card:      c,
		Tags:      tags,
		Crypto: model.CryptoSummary{
			Algorithm:        "AES-256-GCM",
			KeyID:            "default",
			PlaintextSHA256:  fmt.Sprintf("%064x", 1),
			CiphertextSHA256: fmt.Sprintf("%064x", 2),
		},
		Report: model.RedactionReport{},
	}
}

func TestStoreAndGetByLocator(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	loc := testLocator(1)
	entry, err := idx.Store(ctx, storeParams("sess-1", loc, testCard("migrate billing", "billing"), "infra"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if entry.ID == "" {
		t.Error("expected a ULID entry id")
	}

	got, err := idx.GetByLocator(ctx, loc)
	if err != nil {
		t.Fatalf("get by locator: %v", err)
	}
	if got.SessionID != "sess-1" || got.Card.Title != "migrate billing" {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got.Crypto.KeyID != "default" {
		t.Errorf("crypto metadata not recovered: %+v", got.Crypto)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not recorded")
	}
}

func TestGetByLocatorMissing(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.GetByLocator(context.Background(), testLocator(99))
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
}

func TestGetByLocatorMalformed(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.GetByLocator(context.Background(), "cascade://sha256:nope")
	var fe *blob.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *blob.FormatError, got %v", err)
	}
}

func TestUpsertReplacesEntryAndProjection(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	first, err := idx.Store(ctx, storeParams("sess-1", testLocator(1), testCard("old title", "obsoleteword")))
	if err != nil {
		t.Fatalf("first store: %v", err)
	}
	second, err := idx.Store(ctx, storeParams("sess-1", testLocator(2), testCard("new title", "freshword")))
	if err != nil {
		t.Fatalf("second store: %v", err)
	}

	// Identity and creation time survive the upsert.
	if second.ID != first.ID {
		t.Errorf("upsert changed entry id: %s vs %s", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("upsert changed created_at")
	}

	got, err := idx.GetBySessionID(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Locator != testLocator(2) || got.Card.Title != "new title" {
		t.Errorf("structured record not replaced: %+v", got)
	}

	// The old projection must be gone with it.
	stale, err := idx.Search(ctx, SearchParams{Query: "obsoleteword"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("stale projection still searchable: %+v", stale)
	}
	fresh, err := idx.Search(ctx, SearchParams{Query: "freshword"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(fresh) != 1 {
		t.Errorf("expected the replaced projection, got %d hits", len(fresh))
	}
}

func TestDeleteRemovesEntryAndProjection(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	idx.Store(ctx, storeParams("sess-1", testLocator(1), testCard("ephemeral", "vanishingword")))

	removed, err := idx.Delete(ctx, "sess-1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.SessionID != "sess-1" {
		t.Errorf("unexpected removed entry: %+v", removed)
	}

	if _, err := idx.GetBySessionID(ctx, "sess-1"); err == nil {
		t.Error("entry still present after delete")
	}
	hits, _ := idx.Search(ctx, SearchParams{Query: "vanishingword"})
	if len(hits) != 0 {
		t.Error("projection still present after delete")
	}

	var nf *NotFoundError
	if _, err := idx.Delete(ctx, "sess-1"); !errors.As(err, &nf) {
		t.Errorf("expected *NotFoundError on double delete, got %v", err)
	}
}

func TestLocatorRefCount(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	loc := testLocator(7)
	idx.Store(ctx, storeParams("sess-a", loc, testCard("alpha")))
	idx.Store(ctx, storeParams("sess-b", loc, testCard("beta")))

	n, err := idx.LocatorRefCount(ctx, loc)
	if err != nil {
		t.Fatalf("refcount: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 refs, got %d", n)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestIndex(t)

	src.Store(ctx, storeParams("sess-1", testLocator(1), testCard("first", "uniqueone"), "infra"))
	src.Store(ctx, storeParams("sess-2", testLocator(2), testCard("second", "uniquetwo"), "billing"))

	entries, err := src.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	dst := newTestIndex(t)
	n, err := dst.Import(ctx, entries)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported, got %d", n)
	}

	hits, err := dst.Search(ctx, SearchParams{Query: "uniquetwo"})
	if err != nil {
		t.Fatalf("search imported: %v", err)
	}
	if len(hits) != 1 || hits[0].Entry.SessionID != "sess-2" {
		t.Errorf("imported entry not searchable: %+v", hits)
	}
}

func TestStatsCountsEntriesAndTags(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	idx.Store(ctx, storeParams("sess-1", testLocator(1), testCard("a"), "infra", "urgent"))
	idx.Store(ctx, storeParams("sess-2", testLocator(2), testCard("b"), "infra"))

	st, err := idx.Stats(ctx, filepath.Join(t.TempDir(), "missing.db"))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalEntries != 2 {
		t.Errorf("expected 2 entries, got %d", st.TotalEntries)
	}
	if len(st.Tags) == 0 || st.Tags[0].Tag != "infra" || st.Tags[0].Count != 2 {
		t.Errorf("unexpected tag stats: %+v", st.Tags)
	}
}
