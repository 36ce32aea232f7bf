package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore uploads binary content under a generated path and returns a
// durable public URL for it. Implementations must tolerate concurrent calls.
type BlobStore interface {
	Upload(prefix, filename string, r io.Reader) (string, error)
}

// DiskStore writes blobs under a local directory served as static files.
type DiskStore struct {
	Dir     string
	BaseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Upload stores the content under prefix/<uuid><ext> and returns its URL.
func (s *DiskStore) Upload(prefix, filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	name := uuid.NewString() + ext
	dir := filepath.Join(s.Dir, prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.BaseURL + "/" + prefix + "/" + name, nil
}
