package vault

import (
	"errors"

	"github.com/cascadehq/memvault/internal/blob"
	"github.com/cascadehq/memvault/internal/cryptobox"
	"github.com/cascadehq/memvault/internal/index"
	"github.com/cascadehq/memvault/internal/redact"
)

// Kind classifies a pipeline failure so callers can branch on policy
// violations versus transient storage issues without matching error strings.
type Kind string

const (
	KindPolicyViolation Kind = "policy_violation"
	KindIntegrity       Kind = "integrity"
	KindCrypto          Kind = "crypto"
	KindNotFound        Kind = "not_found"
	KindFormat          Kind = "format"
	KindStorage         Kind = "storage"
	KindInternal        Kind = "internal"
)

// KindOf maps an error from any pipeline stage to its taxonomy kind.
func KindOf(err error) Kind {
	var (
		policyErr    *redact.PolicyViolationError
		integrityErr *cryptobox.IntegrityError
		cryptoErr    *cryptobox.CryptoError
		blobMissing  *blob.NotFoundError
		idxMissing   *index.NotFoundError
		formatErr    *blob.FormatError
		storageErr   *blob.StorageError
	)
	switch {
	case errors.As(err, &policyErr):
		return KindPolicyViolation
	case errors.As(err, &integrityErr):
		return KindIntegrity
	case errors.As(err, &cryptoErr):
		return KindCrypto
	case errors.As(err, &blobMissing), errors.As(err, &idxMissing):
		return KindNotFound
	case errors.As(err, &formatErr):
		return KindFormat
	case errors.As(err, &storageErr):
		return KindStorage
	default:
		return KindInternal
	}
}
