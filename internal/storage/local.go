package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BlobStore persists attachment contents. Stored names are generated, never
// taken from user input, so they cannot collide or escape the store root.
type BlobStore interface {
	// Save writes the blob and returns its generated stored name.
	Save(src io.Reader, originalName string) (string, error)
	// Remove deletes a blob. Removing a missing blob is an error the caller
	// may tolerate via os.IsNotExist.
	Remove(storedName string) error
	// Path resolves a stored name to an absolute path inside the store.
	Path(storedName string) string
	// Exists reports whether the blob is present on disk.
	Exists(storedName string) bool
}

// LocalStore keeps blobs as flat files under a single directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed and returns a store
// rooted there.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: abs}, nil
}

// Save streams the blob to disk under a random name that keeps only the
// original extension.
func (s *LocalStore) Save(src io.Reader, originalName string) (string, error) {
	storedName := uuid.NewString() + filepath.Ext(originalName)

	dst, err := os.Create(filepath.Join(s.dir, storedName))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	return storedName, nil
}

// Remove deletes the blob from disk.
func (s *LocalStore) Remove(storedName string) error {
	return os.Remove(s.Path(storedName))
}

// Path resolves the stored name inside the store root. The name is always
// generated by Save, so no traversal check is needed beyond Base.
func (s *LocalStore) Path(storedName string) string {
	return filepath.Join(s.dir, filepath.Base(storedName))
}

// Exists reports whether the blob is present on disk.
func (s *LocalStore) Exists(storedName string) bool {
	_, err := os.Stat(s.Path(storedName))
	return err == nil
}
