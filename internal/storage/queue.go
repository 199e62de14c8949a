package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrQueueClosed is returned by Enqueue after Shutdown.
	ErrQueueClosed = errors.New("export queue closed")
	// ErrQueueFull is returned when every queue slot is taken.
	ErrQueueFull = errors.New("export queue full")
)

// writeTimeout bounds a single background upload.
const writeTimeout = 2 * time.Minute

// ExportQueueConfig controls the concurrency characteristics of the queue.
type ExportQueueConfig struct {
	QueueSize int
	Workers   int
}

// ExportQueue writes exports in the background. Documents are encoded when
// enqueued so later changes to the source do not leak into the export.
type ExportQueue struct {
	exporter *Exporter
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool
	jobs   chan exportJob

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type exportJob struct {
	key  string
	data []byte
}

// NewExportQueue starts the worker pool.
func NewExportQueue(exporter *Exporter, cfg ExportQueueConfig, logger *slog.Logger) *ExportQueue {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &ExportQueue{
		exporter: exporter,
		logger:   logger,
		jobs:     make(chan exportJob, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	q.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go q.worker()
	}
	return q
}

// Enqueue encodes v and schedules it for upload. It returns the object key the
// document will be stored under.
func (q *ExportQueue) Enqueue(ctx context.Context, v any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := encodeJSON(v)
	if err != nil {
		return "", err
	}
	job := exportJob{key: q.exporter.Key(), data: data}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return "", ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return job.key, nil
	default:
		return "", ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish. When ctx
// expires first, in-flight uploads are canceled.
func (q *ExportQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		q.cancel()
		return ctx.Err()
	case <-done:
		q.cancel()
		return nil
	}
}

func (q *ExportQueue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.handleJob(job)
	}
}

func (q *ExportQueue) handleJob(job exportJob) {
	ctx, cancel := context.WithTimeout(q.ctx, writeTimeout)
	defer cancel()

	location, err := q.exporter.Put(ctx, job.key, job.data)
	if err != nil {
		q.logger.Error("export failed", "key", job.key, "error", err)
		return
	}
	q.logger.Info("export stored", "key", job.key, "location", location, "bytes", len(job.data))
}
