// Package blob is the binary asset boundary: bytes in, stable URL out.
// The rest of the core treats the URL as an opaque durable string.
package blob

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"bloxmarket/internal/domain"
)

type Store interface {
	Store(data []byte, pathHint string) (url string, err error)
}

// FSStore writes assets under Root and addresses them below BaseURL, which
// the HTTP layer serves with the guarded /media handler.
type FSStore struct {
	Root    string
	BaseURL string
}

func NewFSStore(root string) *FSStore {
	return &FSStore{Root: root, BaseURL: "/media"}
}

func (s *FSStore) Store(data []byte, pathHint string) (string, error) {
	clean := filepath.Clean(strings.TrimPrefix(pathHint, "/"))
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", &domain.ValidationError{Field: "pathHint", Reason: "invalid path"}
	}
	full := filepath.Join(s.Root, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", &domain.DependencyError{Op: "blob.store", Err: err}
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", &domain.DependencyError{Op: "blob.store", Err: err}
	}
	return s.BaseURL + "/" + filepath.ToSlash(clean), nil
}

var _ Store = (*FSStore)(nil)

// ErrEmpty rejects zero-byte uploads before they reach the store.
var ErrEmpty = errors.New("empty upload")
