// Package storage writes search result exports to object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrStoreUnavailable indicates the exporter has no object store.
var ErrStoreUnavailable = errors.New("export: object store unavailable")

// ObjectStore persists a named blob and returns where it can be fetched.
type ObjectStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// Exporter writes JSON documents under a dated prefix.
type Exporter struct {
	store  ObjectStore
	prefix string
	now    func() time.Time
}

// NewExporter constructs an Exporter. prefix defaults to "exports".
func NewExporter(store ObjectStore, prefix string) *Exporter {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "exports"
	}
	return &Exporter{store: store, prefix: prefix, now: time.Now}
}

// Key returns a fresh object key such as exports/2024/05/01/<uuid>.json.
func (e *Exporter) Key() string {
	return fmt.Sprintf("%s/%s/%s.json", e.prefix, e.now().UTC().Format("2006/01/02"), uuid.NewString())
}

// ExportJSON encodes v and stores it under a fresh key.
func (e *Exporter) ExportJSON(ctx context.Context, v any) (string, error) {
	data, err := encodeJSON(v)
	if err != nil {
		return "", err
	}
	return e.Put(ctx, e.Key(), data)
}

// Put stores an already encoded document under key.
func (e *Exporter) Put(ctx context.Context, key string, data []byte) (string, error) {
	if e == nil || e.store == nil {
		return "", ErrStoreUnavailable
	}
	return e.store.Save(ctx, key, "application/json", bytes.NewReader(data))
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode: %w", err)
	}
	return data, nil
}

// LocalStorage implements ObjectStore on the local filesystem.
type LocalStorage struct {
	root string
}

// NewLocalStorage stores objects below root.
func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

// Save writes r to root/name and returns the file path.
func (s *LocalStorage) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	key := strings.TrimLeft(name, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("local storage: invalid key %q", name)
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("local storage: create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("local storage: create %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("local storage: write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("local storage: close %s: %w", key, err)
	}
	return path, nil
}
