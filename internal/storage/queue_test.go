package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type blockingStore struct {
	release chan struct{}

	mu    sync.Mutex
	saved map[string][]byte
}

func (s *blockingStore) Save(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[name] = data
	return "mem://" + name, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExportQueueWritesInBackground(t *testing.T) {
	root := t.TempDir()
	queue := NewExportQueue(NewExporter(NewLocalStorage(root), ""), ExportQueueConfig{QueueSize: 2, Workers: 1}, quietLogger())

	state := map[string]int{"page": 1}
	key, err := queue.Enqueue(context.Background(), state)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	state["page"] = 2

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := queue.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "{\n  \"page\": 1\n}" {
		t.Fatalf("expected snapshot taken at enqueue got %s", data)
	}
}

func TestExportQueueFullAndClosed(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	queue := NewExportQueue(NewExporter(store, ""), ExportQueueConfig{QueueSize: 1, Workers: 1}, quietLogger())

	// The worker takes the first job and blocks; the second fills the buffer.
	if _, err := queue.Enqueue(context.Background(), 1); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for len(queue.jobs) != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if _, err := queue.Enqueue(context.Background(), 2); err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if _, err := queue.Enqueue(context.Background(), 3); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull got %v", err)
	}

	close(store.release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := queue.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if len(store.saved) != 2 {
		t.Fatalf("expected 2 saved exports got %d", len(store.saved))
	}

	if _, err := queue.Enqueue(context.Background(), 4); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed got %v", err)
	}
}

func TestExportQueueShutdownTimeoutCancelsUploads(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	queue := NewExportQueue(NewExporter(store, ""), ExportQueueConfig{}, quietLogger())

	if _, err := queue.Enqueue(context.Background(), "stuck"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := queue.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded got %v", err)
	}

	done := make(chan struct{})
	go func() {
		queue.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
