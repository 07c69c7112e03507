package cryptobox

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func newTestBox() *Box {
	return NewBox(NewMemoryKeyring())
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	box := newTestBox()
	plaintext := []byte(`{"id":"sess-1","messages":[]}`)

	enc, err := box.Encrypt(plaintext, "k1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if enc.Algorithm != Algorithm || enc.KeyID != "k1" {
		t.Errorf("unexpected result metadata: %+v", enc)
	}
	if enc.PlaintextSHA256 != HashHex(plaintext) {
		t.Error("plaintext hash mismatch")
	}
	if enc.CiphertextSHA256 != HashHex(enc.Ciphertext) {
		t.Error("ciphertext hash mismatch")
	}

	got, err := box.Decrypt(enc.Ciphertext, "k1", enc.CiphertextSHA256)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip mismatch: %q", got)
	}
}

func TestFreshNoncePerCall(t *testing.T) {
	box := newTestBox()
	plaintext := []byte("same input twice")

	a, err := box.Encrypt(plaintext, "k1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := box.Encrypt(plaintext, "k1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(a.Ciphertext, b.Ciphertext) {
		t.Error("identical ciphertexts imply nonce reuse")
	}
	if bytes.Equal(a.Ciphertext[:NonceSize], b.Ciphertext[:NonceSize]) {
		t.Error("nonce repeated across calls")
	}
}

func TestTamperDetection(t *testing.T) {
	box := newTestBox()
	enc, err := box.Encrypt([]byte("integrity matters"), "k1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	for _, i := range []int{0, NonceSize, len(enc.Ciphertext) - 1} {
		tampered := bytes.Clone(enc.Ciphertext)
		tampered[i] ^= 0x01

		_, err := box.Decrypt(tampered, "k1", "")
		var ce *CryptoError
		if !errors.As(err, &ce) {
			t.Errorf("bit flip at %d: expected *CryptoError, got %v", i, err)
		}
	}
}

func TestIntegrityCheckBeforeDecrypt(t *testing.T) {
	box := newTestBox()
	enc, err := box.Encrypt([]byte("hash gate"), "k1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	tampered := bytes.Clone(enc.Ciphertext)
	tampered[len(tampered)-1] ^= 0x01

	_, err = box.Decrypt(tampered, "k1", enc.CiphertextSHA256)
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IntegrityError before decryption, got %v", err)
	}
	if ie.Expected != enc.CiphertextSHA256 {
		t.Errorf("error does not carry expected hash: %+v", ie)
	}
}

func TestWrongKeyFails(t *testing.T) {
	box := newTestBox()
	enc, err := box.Encrypt([]byte("keyed"), "k1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	_, err = box.Decrypt(enc.Ciphertext, "other", "")
	var ce *CryptoError
	if !errors.As(err, &ce) {
		t.Errorf("expected *CryptoError with wrong key, got %v", err)
	}
}

func TestShortCiphertextRejected(t *testing.T) {
	box := newTestBox()
	_, err := box.Decrypt([]byte("tiny"), "k1", "")
	var ce *CryptoError
	if !errors.As(err, &ce) {
		t.Errorf("expected *CryptoError for short input, got %v", err)
	}
}

func TestMemoryKeyringStableKeys(t *testing.T) {
	kr := NewMemoryKeyring()
	a, err := kr.GetOrCreate("id")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, err := kr.GetOrCreate("id")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same id returned different keys")
	}
	if len(a) != KeySize {
		t.Errorf("expected %d-byte key, got %d", KeySize, len(a))
	}
}

func TestFileKeyringPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keys")

	kr1, err := NewFileKeyring(dir)
	if err != nil {
		t.Fatalf("open keyring: %v", err)
	}
	key1, err := kr1.GetOrCreate("default")
	if err != nil {
		t.Fatalf("create key: %v", err)
	}

	// A second keyring over the same directory sees the same key, so blobs
	// stored in one process decrypt in another.
	kr2, err := NewFileKeyring(dir)
	if err != nil {
		t.Fatalf("reopen keyring: %v", err)
	}
	key2, err := kr2.GetOrCreate("default")
	if err != nil {
		t.Fatalf("load key: %v", err)
	}
	if !bytes.Equal(key1, key2) {
		t.Error("key did not persist across keyring instances")
	}
}
