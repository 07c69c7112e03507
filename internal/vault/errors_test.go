package vault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cascadehq/memvault/internal/blob"
	"github.com/cascadehq/memvault/internal/cryptobox"
	"github.com/cascadehq/memvault/internal/index"
	"github.com/cascadehq/memvault/internal/redact"
)

func TestKindOfClassifiesWrappedErrors(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{&redact.PolicyViolationError{Rule: "email", Count: 1}, KindPolicyViolation},
		{&cryptobox.IntegrityError{Expected: "a", Actual: "b"}, KindIntegrity},
		{&cryptobox.CryptoError{KeyID: "k", Err: errors.New("tag mismatch")}, KindCrypto},
		{&blob.NotFoundError{Locator: "cascade://sha256:x"}, KindNotFound},
		{&index.NotFoundError{Key: "sess-1"}, KindNotFound},
		{&blob.FormatError{Locator: "x", Reason: "scheme"}, KindFormat},
		{&blob.StorageError{Op: "upload", Err: errors.New("disk full")}, KindStorage},
		{errors.New("anything else"), KindInternal},
	}

	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("KindOf(%v) = %s, want %s", c.err, got, c.want)
		}
		// Wrapping must not change the classification.
		wrapped := fmt.Errorf("stage failed: %w", c.err)
		if got := KindOf(wrapped); got != c.want {
			t.Errorf("KindOf(wrapped %v) = %s, want %s", c.err, got, c.want)
		}
	}
}
