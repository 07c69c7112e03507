// Package vault sequences redaction, card generation, encryption, blob
// storage, and indexing into the store / retrieve / search operations.
//
// Two structural rules hold throughout: search never touches the blob store,
// and retrieval never skips the ciphertext integrity check.
package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/cascadehq/memvault/internal/blob"
	"github.com/cascadehq/memvault/internal/card"
	"github.com/cascadehq/memvault/internal/cryptobox"
	"github.com/cascadehq/memvault/internal/index"
	"github.com/cascadehq/memvault/internal/model"
	"github.com/cascadehq/memvault/internal/redact"
)

const sessionContentType = "application/octet-stream"

// Vault owns the storage pipeline. Each call is synchronous; a stage failure
// aborts every later stage and nothing earlier is surfaced as success.
type Vault struct {
	box   *cryptobox.Box
	blobs *blob.Store
	idx   *index.SQLiteIndex
	keyID string
}

// New assembles a vault from its collaborators. keyID selects the symmetric
// key used for all stores; the keyring generates it lazily.
func New(box *cryptobox.Box, blobs *blob.Store, idx *index.SQLiteIndex, keyID string) *Vault {
	return &Vault{box: box, blobs: blobs, idx: idx, keyID: keyID}
}

// StoreResult is the public outcome of a successful store.
type StoreResult struct {
	SessionID string                `json:"session_id"`
	Locator   string                `json:"locator"`
	Card      model.MemoryCard      `json:"memory_card"`
	Report    model.RedactionReport `json:"redaction_report"`
	Crypto    model.CryptoSummary   `json:"crypto_summary"`
}

// StoreSession runs the storage pipeline: redact (may abort fail-closed) →
// derive card from redacted content → encrypt redacted content → upload →
// index. The card and ciphertext are both derived from the redaction
// engine's output, never the raw session.
func (v *Vault) StoreSession(ctx context.Context, session *model.Session, tags []string, metadata map[string]string) (*StoreResult, error) {
	if session.ID == "" {
		return nil, fmt.Errorf("store session: empty session id")
	}

	redacted, report, err := redact.Redact(session)
	if err != nil {
		return nil, err
	}

	memCard := card.Generate(redacted)

	plaintext, err := redacted.Serialize()
	if err != nil {
		return nil, err
	}
	enc, err := v.box.Encrypt(plaintext, v.keyID)
	if err != nil {
		return nil, fmt.Errorf("encrypt session %s: %w", session.ID, err)
	}

	locator, err := v.blobs.Upload(enc.Ciphertext, sessionContentType, map[string]string{
		"session_id": session.ID,
		"algorithm":  enc.Algorithm,
	})
	if err != nil {
		return nil, err
	}

	summary := model.CryptoSummary{
		Algorithm:        enc.Algorithm,
		KeyID:            enc.KeyID,
		PlaintextSHA256:  enc.PlaintextSHA256,
		CiphertextSHA256: enc.CiphertextSHA256,
		CiphertextBytes:  int64(len(enc.Ciphertext)),
	}

	if _, err := v.idx.Store(ctx, index.StoreParams{
		SessionID: session.ID,
		Locator:   locator,
		Card:      memCard,
		Tags:      tags,
		Crypto:    summary,
		Report:    *report,
		Metadata:  metadata,
	}); err != nil {
		return nil, fmt.Errorf("index session %s: %w", session.ID, err)
	}

	return &StoreResult{
		SessionID: session.ID,
		Locator:   locator,
		Card:      memCard,
		Report:    *report,
		Crypto:    summary,
	}, nil
}

// RetrieveResult is the public outcome of a successful retrieve.
type RetrieveResult struct {
	Session        *model.Session   `json:"session"`
	Card           model.MemoryCard `json:"memory_card"`
	CryptoVerified bool             `json:"crypto_verified"`
}

// RetrieveSession is the inverse of StoreSession: look the locator up in the
// index (the only source of decryption metadata), download the ciphertext,
// verify its hash, decrypt, and unmarshal. The memory card comes from the
// index; nothing is re-derived.
func (v *Vault) RetrieveSession(ctx context.Context, locator string) (*RetrieveResult, error) {
	entry, err := v.idx.GetByLocator(ctx, locator)
	if err != nil {
		return nil, err
	}

	ciphertext, err := v.blobs.Download(locator)
	if err != nil {
		return nil, err
	}

	plaintext, err := v.box.Decrypt(ciphertext, entry.Crypto.KeyID, entry.Crypto.CiphertextSHA256)
	if err != nil {
		return nil, err
	}

	session, err := model.ParseSession(plaintext)
	if err != nil {
		return nil, err
	}

	return &RetrieveResult{
		Session:        session,
		Card:           entry.Card,
		CryptoVerified: true,
	}, nil
}

// TimeRange bounds a query by entry creation time, inclusive on both ends.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// QueryHit is one search result: everything needed to decide whether to
// retrieve, without touching the blob store.
type QueryHit struct {
	SessionID string    `json:"session_id"`
	Locator   string    `json:"locator"`
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Score     float64   `json:"score"`
}

// QueryMemories searches the index over memory cards. limit defaults to 10.
func (v *Vault) QueryMemories(ctx context.Context, query string, tags []string, timeRange *TimeRange, limit int) ([]QueryHit, error) {
	p := index.SearchParams{Query: query, Tags: tags, Limit: limit}
	if timeRange != nil {
		p.Start = timeRange.Start
		p.End = timeRange.End
	}

	hits, err := v.idx.Search(ctx, p)
	if err != nil {
		return nil, err
	}

	out := make([]QueryHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, QueryHit{
			SessionID: h.Entry.SessionID,
			Locator:   h.Entry.Locator,
			Title:     h.Entry.Card.Title,
			Snippet:   h.Snippet,
			Tags:      h.Entry.Tags,
			CreatedAt: h.Entry.CreatedAt,
			Score:     h.Score,
		})
	}
	return out, nil
}

// DeleteSession removes a session's index entry, and its blob unless the
// same ciphertext is still referenced by another session (content addressing
// can alias identical uploads). Returns whether the blob was removed.
func (v *Vault) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	entry, err := v.idx.Delete(ctx, sessionID)
	if err != nil {
		return false, err
	}

	refs, err := v.idx.LocatorRefCount(ctx, entry.Locator)
	if err != nil {
		return false, fmt.Errorf("count locator refs: %w", err)
	}
	if refs > 0 {
		return false, nil
	}
	return v.blobs.Delete(entry.Locator)
}
