package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestExporterKey(t *testing.T) {
	exporter := NewExporter(nil, "/snapshots/")
	exporter.now = func() time.Time { return time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC) }

	key := exporter.Key()
	pattern := regexp.MustCompile(`^snapshots/2024/05/01/[0-9a-f-]{36}\.json$`)
	if !pattern.MatchString(key) {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestExporterWritesJSON(t *testing.T) {
	root := t.TempDir()
	exporter := NewExporter(NewLocalStorage(root), "")

	location, err := exporter.ExportJSON(context.Background(), map[string]any{"animals": []int{1, 2}})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	rel, err := filepath.Rel(root, location)
	if err != nil || !strings.HasPrefix(filepath.ToSlash(rel), "exports/") {
		t.Fatalf("unexpected location %q", location)
	}

	data, err := os.ReadFile(location)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var decoded map[string][]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(decoded["animals"]) != 2 {
		t.Fatalf("unexpected export %s", data)
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store := NewLocalStorage(t.TempDir())
	if _, err := store.Save(context.Background(), "../escape.json", "", nil); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}

func TestExporterWithoutStore(t *testing.T) {
	if _, err := NewExporter(nil, "").ExportJSON(context.Background(), 1); err == nil {
		t.Fatal("expected error without store")
	}
}
