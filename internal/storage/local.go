package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

var _ Backend = (*localBackend)(nil)

// localBackend writes files under a local root directory. Used for
// development and tests.
type localBackend struct {
	root string
}

func newLocalBackend(root string) *localBackend {
	if root == "" {
		root = "data"
	}
	return &localBackend{root: root}
}

func (b *localBackend) Upload(_ context.Context, key string, data []byte) (string, error) {
	path := filepath.Join(b.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %q: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file %q: %w", key, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + abs, nil
}

func (b *localBackend) Delete(_ context.Context, key string) error {
	path := filepath.Join(b.root, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove file %q: %w", key, err)
	}
	return nil
}
