package cryptobox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Algorithm identifies the AEAD scheme used for all blobs.
const Algorithm = "AES-256-GCM"

// NonceSize is the GCM nonce length in bytes, prepended to every ciphertext.
const NonceSize = 12

// Result carries the storage-ready ciphertext and its provenance hashes.
// CiphertextSHA256 must be recomputed and compared before any decrypted
// content is trusted; PlaintextSHA256 is advisory provenance only.
type Result struct {
	Ciphertext       []byte // nonce || ciphertext+tag
	Algorithm        string
	KeyID            string
	PlaintextSHA256  string
	CiphertextSHA256 string
}

// IntegrityError reports a ciphertext hash mismatch detected before
// decryption was attempted.
type IntegrityError struct {
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ciphertext integrity check failed: expected sha256 %s, got %s", e.Expected, e.Actual)
}

// CryptoError reports an authentication failure during decryption: the
// ciphertext was tampered with or the wrong key was used.
type CryptoError struct {
	KeyID string
	Err   error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("decrypt with key %q failed: %v", e.KeyID, e.Err)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// Box encrypts and decrypts payloads using keys from an injected Keyring.
type Box struct {
	keyring Keyring
}

// NewBox wraps a keyring.
func NewBox(keyring Keyring) *Box {
	return &Box{keyring: keyring}
}

// Encrypt seals plaintext under the key for keyID. A fresh random nonce is
// generated per call; encrypting the same plaintext twice yields different
// ciphertexts.
func (b *Box) Encrypt(plaintext []byte, keyID string) (*Result, error) {
	aead, err := b.aead(keyID)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	// Seal appends to nonce, producing nonce || ciphertext+tag in one buffer.
	sealed := aead.Seal(nonce, nonce, plaintext, nil)

	return &Result{
		Ciphertext:       sealed,
		Algorithm:        Algorithm,
		KeyID:            keyID,
		PlaintextSHA256:  HashHex(plaintext),
		CiphertextSHA256: HashHex(sealed),
	}, nil
}

// Decrypt opens a nonce-prefixed ciphertext. If expectedHash is non-empty the
// input's SHA-256 is compared against it before decryption; a mismatch fails
// closed with *IntegrityError. Tag verification failure returns *CryptoError.
func (b *Box) Decrypt(data []byte, keyID, expectedHash string) ([]byte, error) {
	if expectedHash != "" {
		if actual := HashHex(data); actual != expectedHash {
			return nil, &IntegrityError{Expected: expectedHash, Actual: actual}
		}
	}

	aead, err := b.aead(keyID)
	if err != nil {
		return nil, err
	}
	if len(data) < NonceSize {
		return nil, &CryptoError{KeyID: keyID, Err: fmt.Errorf("ciphertext shorter than nonce (%d bytes)", len(data))}
	}

	nonce, ciphertext := data[:NonceSize], data[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, &CryptoError{KeyID: keyID, Err: err}
	}
	return plaintext, nil
}

func (b *Box) aead(keyID string) (cipher.AEAD, error) {
	key, err := b.keyring.GetOrCreate(keyID)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return aead, nil
}

// HashHex returns the lowercase hex SHA-256 of data.
func HashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
