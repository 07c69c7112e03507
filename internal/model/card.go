package model

import "time"

// MemoryCard is a deterministic, non-sensitive summary of a redacted session.
// Created once at store time and never regenerated on retrieve; the index is
// authoritative for the human-readable summary.
type MemoryCard struct {
	Title     string   `json:"title"`
	Summary   []string `json:"summary,omitempty"`   // max 3 bullets
	Decisions []string `json:"decisions,omitempty"` // max 3
	Todos     []string `json:"todos,omitempty"`     // max 3
	Entities  []string `json:"entities,omitempty"`  // max 10
	Keywords  []string `json:"keywords,omitempty"`  // max 10
	Quotes    []string `json:"quotes,omitempty"`    // max 3
}

// RuleHit records one redaction rule that fired.
type RuleHit struct {
	Rule     string `json:"rule"`
	Count    int    `json:"count"`
	Severity string `json:"severity"`
}

// RedactionReport summarizes a single redaction pass. It is embedded in the
// index entry metadata, never persisted on its own.
type RedactionReport struct {
	Hits             []RuleHit `json:"hits,omitempty"`
	CriticalDetected bool      `json:"critical_detected"`
}

// CryptoSummary carries the provenance of an encrypted blob: everything the
// retrieval path needs to verify and decrypt it, minus the key itself.
type CryptoSummary struct {
	Algorithm        string `json:"algorithm"`
	KeyID            string `json:"key_id"`
	PlaintextSHA256  string `json:"plaintext_sha256"`
	CiphertextSHA256 string `json:"ciphertext_sha256"`
	CiphertextBytes  int64  `json:"ciphertext_bytes"`
}

// IndexEntry is the structured record the search index owns per session: the
// single source of truth mapping a session id to its blob locator and its
// public summary.
type IndexEntry struct {
	ID        string            `json:"id"` // ULID assigned by the index
	SessionID string            `json:"session_id"`
	Locator   string            `json:"locator"`
	Card      MemoryCard        `json:"card"`
	Tags      []string          `json:"tags,omitempty"`
	Crypto    CryptoSummary     `json:"crypto"`
	Report    RedactionReport   `json:"redaction_report"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
