// Package blob implements a content-addressed, deduplicated store for
// encrypted session blobs.
package blob

import (
	"fmt"
	"regexp"
	"strings"
)

// Scheme is the locator scheme tag for this store.
const Scheme = "cascade"

// FormatError reports a malformed locator string. Distinct from NotFoundError:
// a well-formed locator for absent content is not a format problem.
type FormatError struct {
	Locator string
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed locator %q: %s", e.Locator, e.Reason)
}

// NotFoundError reports a well-formed locator whose content is absent.
type NotFoundError struct {
	Locator string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("blob not found: %s", e.Locator)
}

// StorageError wraps an underlying persistence failure. Callers may retry
// with backoff; the store never retries internally.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

var digestRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NewLocator builds the canonical locator for a ciphertext digest:
// cascade://sha256:<64 lowercase hex chars>.
func NewLocator(digest string) string {
	return Scheme + "://sha256:" + digest
}

// ParseLocator validates a locator and returns its hex digest.
func ParseLocator(locator string) (string, error) {
	rest, ok := strings.CutPrefix(locator, Scheme+"://")
	if !ok {
		return "", &FormatError{Locator: locator, Reason: "expected scheme " + Scheme + "://"}
	}
	digest, ok := strings.CutPrefix(rest, "sha256:")
	if !ok {
		return "", &FormatError{Locator: locator, Reason: "expected sha256: digest prefix"}
	}
	if !digestRe.MatchString(digest) {
		return "", &FormatError{Locator: locator, Reason: "digest must be 64 lowercase hex chars"}
	}
	return digest, nil
}
