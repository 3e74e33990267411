package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore writes uploaded files under a date-partitioned directory tree and
// hands back the stored path relative to its root.
type BlobStore struct {
	root string
}

func NewBlobStore(root string) *BlobStore {
	return &BlobStore{root: root}
}

// Root returns the directory all blobs live under.
func (b *BlobStore) Root() string { return b.root }

// Save streams one upload to <root>/<YYYYMMDD>/<uuid><ext>, preserving the
// original extension. The returned path starts with "/" and is relative to
// the root.
func (b *BlobStore) Save(originalName string, src io.Reader) (string, error) {
	day := time.Now().UTC().Format("20060102")
	dir := filepath.Join(b.root, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 8 {
		ext = ext[:8]
	}
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return "/" + day + "/" + name, nil
}
