// Package cryptobox provides authenticated encryption for redacted session
// payloads, with dual plaintext/ciphertext content hashing.
package cryptobox

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KeySize is the symmetric key length in bytes (AES-256).
const KeySize = 32

// Keyring is the key-management capability injected into the encryption
// module. Keys are generated lazily on first use; custody beyond a single
// process is out of scope.
type Keyring interface {
	// GetOrCreate returns the key for id, generating a fresh 256-bit key if
	// none exists yet.
	GetOrCreate(id string) ([]byte, error)
}

// MemoryKeyring keeps keys in process memory. Suitable for tests and
// single-shot use; keys do not survive the process.
type MemoryKeyring struct {
	mu   sync.Mutex
	keys map[string][]byte
}

// NewMemoryKeyring returns an empty in-memory keyring.
func NewMemoryKeyring() *MemoryKeyring {
	return &MemoryKeyring{keys: make(map[string][]byte)}
}

func (k *MemoryKeyring) GetOrCreate(id string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if key, ok := k.keys[id]; ok {
		return key, nil
	}
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key %q: %w", id, err)
	}
	k.keys[id] = key
	return key, nil
}

// FileKeyring persists keys as 0600 files under a directory, so sessions
// stored in one process can be retrieved in another.
type FileKeyring struct {
	dir string
	mu  sync.Mutex
}

// NewFileKeyring creates the key directory if needed.
func NewFileKeyring(dir string) (*FileKeyring, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	return &FileKeyring{dir: dir}, nil
}

func (k *FileKeyring) GetOrCreate(id string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	path := filepath.Join(k.dir, id+".key")
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("key file %s: expected %d bytes, got %d", path, KeySize, len(key))
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read key %q: %w", id, err)
	}

	key = make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key %q: %w", id, err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("persist key %q: %w", id, err)
	}
	return key, nil
}
