package kv

import (
	"context"
	"errors"
	"fmt"
	"how-far-is-it/internal/ports"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one JSON file per key under a directory.
// Writes go to a temp file and are renamed into place, so a crash never
// leaves a half-written payload behind.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("file store: directory must be non-empty")
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the payload files.
func (f *FileStore) Dir() string {
	return f.dir
}

// Path returns the file backing key. Keys are query-escaped, which turns
// ':' into %3A and '/' into %2F, so the default keys are valid file names
// on every platform and never add directories.
func (f *FileStore) Path(key string) string {
	return filepath.Join(f.dir, url.QueryEscape(key)+".json")
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	payload, err := os.ReadFile(f.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ports.ErrKeyNotFound
		}
		return nil, fmt.Errorf("file store: read %q: %w", key, err)
	}
	return payload, nil
}

func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("file store: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("file store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file store: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: close %q: %w", key, err)
	}
	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		return fmt.Errorf("file store: replace %q: %w", key, err)
	}
	return nil
}
