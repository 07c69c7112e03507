package blob

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return s
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	data := []byte("ciphertext bytes")

	locator, err := s.Upload(data, "application/octet-stream", map[string]string{"session_id": "s1"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(locator, "cascade://sha256:") {
		t.Errorf("unexpected locator %q", locator)
	}

	got, err := s.Download(locator)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip mismatch: %q", got)
	}

	meta, err := s.ReadMeta(locator)
	if err != nil {
		t.Fatalf("read meta: %v", err)
	}
	if meta.Size != int64(len(data)) || meta.Extra["session_id"] != "s1" {
		t.Errorf("unexpected meta: %+v", meta)
	}
}

func TestUploadDeduplicates(t *testing.T) {
	s := newTestStore(t)
	data := []byte("identical content")

	loc1, err := s.Upload(data, "", nil)
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	loc2, err := s.Upload(data, "", nil)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if loc1 != loc2 {
		t.Errorf("same bytes produced different locators: %s vs %s", loc1, loc2)
	}

	count, _, err := s.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 1 {
		t.Errorf("expected a single physical blob, found %d", count)
	}
}

func TestDownloadNotFound(t *testing.T) {
	s := newTestStore(t)
	locator := NewLocator(strings.Repeat("ab", 32))

	_, err := s.Download(locator)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if nf.Locator != locator {
		t.Errorf("error names wrong locator: %s", nf.Locator)
	}
}

func TestMalformedLocatorIsFormatError(t *testing.T) {
	s := newTestStore(t)

	cases := []string{
		"s3://sha256:" + strings.Repeat("ab", 32), // wrong scheme
		"cascade://md5:" + strings.Repeat("ab", 32),
		"cascade://sha256:notahexdigest",
		"cascade://sha256:" + strings.Repeat("AB", 32), // uppercase
		"cascade://sha256:" + strings.Repeat("ab", 16), // too short
	}
	for _, locator := range cases {
		_, err := s.Download(locator)
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("%q: expected *FormatError, got %v", locator, err)
		}
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t)

	locator, err := s.Upload([]byte("to be removed"), "", nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	removed, err := s.Delete(locator)
	if err != nil || !removed {
		t.Fatalf("first delete: removed=%t err=%v", removed, err)
	}

	removed, err = s.Delete(locator)
	if err != nil {
		t.Fatalf("second delete errored: %v", err)
	}
	if removed {
		t.Error("deleting an absent locator must return false")
	}

	if _, err := s.ReadMeta(locator); err == nil {
		t.Error("sidecar survived delete")
	}
}

func TestShardedLayout(t *testing.T) {
	s := newTestStore(t)

	locator, err := s.Upload([]byte("fan out"), "", nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	digest, err := ParseLocator(locator)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if _, err := os.Stat(filepath.Join(s.root, digest[:2], digest)); err != nil {
		t.Errorf("blob not at sharded path: %v", err)
	}
}

func TestParseLocatorRoundTrip(t *testing.T) {
	digest := strings.Repeat("0123456789abcdef", 4)
	got, err := ParseLocator(NewLocator(digest))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != digest {
		t.Errorf("digest mangled: %s", got)
	}
}
