package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Meta is the out-of-band sidecar written next to each blob.
type Meta struct {
	ContentType string            `json:"content_type,omitempty"`
	Size        int64             `json:"size"`
	StoredAt    time.Time         `json:"stored_at"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Store persists blobs keyed by the SHA-256 of their bytes. Writes are
// write-once: uploading identical content a second time is a no-op that
// returns the same locator.
type Store struct {
	root string
}

// NewStore opens or creates a blob store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "init", Err: err}
	}
	return &Store{root: dir}, nil
}

// Upload writes data at its content address and returns the locator. If the
// digest already exists the existing blob is kept untouched; identical
// concurrent uploads race harmlessly since the content is byte-identical.
func (s *Store) Upload(data []byte, contentType string, extra map[string]string) (string, error) {
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	locator := NewLocator(digest)

	path := s.blobPath(digest)
	if _, err := os.Stat(path); err == nil {
		return locator, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &StorageError{Op: "upload", Err: err}
	}

	// Temp file + rename so a partial write is never visible at the digest.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+digest+".tmp-*")
	if err != nil {
		return "", &StorageError{Op: "upload", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", &StorageError{Op: "upload", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", &StorageError{Op: "upload", Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", &StorageError{Op: "upload", Err: err}
	}

	meta := Meta{
		ContentType: contentType,
		Size:        int64(len(data)),
		StoredAt:    time.Now().UTC(),
		Extra:       extra,
	}
	b, _ := json.Marshal(meta)
	if err := os.WriteFile(s.metaPath(digest), b, 0o644); err != nil {
		return "", &StorageError{Op: "upload meta", Err: err}
	}

	return locator, nil
}

// Download returns the bytes addressed by locator.
func (s *Store) Download(locator string) ([]byte, error) {
	digest, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.blobPath(digest))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Locator: locator}
	}
	if err != nil {
		return nil, &StorageError{Op: "download", Err: err}
	}
	return data, nil
}

// ReadMeta returns the sidecar for a stored blob, if present.
func (s *Store) ReadMeta(locator string) (*Meta, error) {
	digest, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.metaPath(digest))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Locator: locator}
	}
	if err != nil {
		return nil, &StorageError{Op: "read meta", Err: err}
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode meta for %s: %w", locator, err)
	}
	return &m, nil
}

// Delete removes the blob and its sidecar. Idempotent: deleting an absent
// locator returns false without error.
func (s *Store) Delete(locator string) (bool, error) {
	digest, err := ParseLocator(locator)
	if err != nil {
		return false, err
	}

	path := s.blobPath(digest)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, &StorageError{Op: "delete", Err: err}
	}
	os.Remove(s.metaPath(digest))
	return true, nil
}

// Stats reports blob count and total stored bytes.
func (s *Store) Stats() (count int, bytes int64, err error) {
	err = filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) == ".json" {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		count++
		bytes += info.Size()
		return nil
	})
	if err != nil {
		return 0, 0, &StorageError{Op: "stats", Err: err}
	}
	return count, bytes, nil
}

// blobPath shards by the first two hex chars to keep directory fan-out sane.
func (s *Store) blobPath(digest string) string {
	return filepath.Join(s.root, digest[:2], digest)
}

func (s *Store) metaPath(digest string) string {
	return s.blobPath(digest) + ".meta.json"
}
