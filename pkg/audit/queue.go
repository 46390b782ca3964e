package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config contains audit queue configuration.
type Config struct {
	// BatchSize is the number of events per bulk write. Reaching it on
	// enqueue triggers a flush. Default: 100.
	BatchSize int

	// FlushInterval is the periodic flush cadence. Default: 5s.
	FlushInterval time.Duration

	// MaxQueueSize bounds the in-memory buffer. Default: 1000.
	MaxQueueSize int
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:     100,
		FlushInterval: 5 * time.Second,
		MaxQueueSize:  1000,
	}
}

// Queue is a bounded, non-blocking audit event buffer with batched
// flushes to a Sink.
//
// The queue owns its event buffer exclusively: callers interact only
// through Enqueue, Flush, and the Start/Stop lifecycle.
type Queue struct {
	sink   Sink
	config Config
	logger *slog.Logger

	mu         sync.Mutex
	events     []Event
	processing bool
	started    bool

	enqueued int64
	flushed  int64
	failed   int64
	dropped  int64

	timerDone chan struct{}
}

// NewQueue creates an audit queue writing to sink. Zero-valued config
// fields fall back to defaults (batch 100, interval 5s, capacity 1000).
func NewQueue(sink Sink, cfg Config) *Queue {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = def.MaxQueueSize
	}

	return &Queue{
		sink:   sink,
		config: cfg,
		logger: slog.Default().With("component", "audit.queue"),
	}
}

// Enqueue appends an event to the queue. It never blocks and never
// fails: when the queue is at capacity the event is dropped and the
// drop counter incremented. Reaching the batch size triggers an
// asynchronous flush.
func (q *Queue) Enqueue(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	q.mu.Lock()

	if len(q.events) >= q.config.MaxQueueSize {
		q.dropped++
		q.mu.Unlock()
		q.logger.Warn("audit queue full, dropping event",
			"capacity", q.config.MaxQueueSize,
			"account_id", event.AccountID,
		)
		return
	}

	q.events = append(q.events, event)
	q.enqueued++
	shouldFlush := len(q.events) >= q.config.BatchSize

	q.mu.Unlock()

	if shouldFlush {
		go func() {
			if err := q.Flush(context.Background()); err != nil {
				q.logger.Error("size-triggered flush failed", "error", err)
			}
		}()
	}
}

// Flush writes the oldest batch to the sink. Concurrent flush attempts
// are serialized by the processing guard: a flush that finds another in
// progress returns immediately.
//
// On a sink failure the batch is re-queued at the front to preserve
// FIFO order, unless that would overflow the queue, in which case the
// batch is dropped with a warning. The sink error is returned either
// way so lifecycle callers can observe it; request-path callers never
// invoke Flush directly.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	if q.processing || len(q.events) == 0 {
		q.mu.Unlock()
		return nil
	}
	q.processing = true

	n := q.config.BatchSize
	if n > len(q.events) {
		n = len(q.events)
	}
	batch := make([]Event, n)
	copy(batch, q.events[:n])
	q.events = q.events[n:]
	q.mu.Unlock()

	records := make([]Record, len(batch))
	for i, event := range batch {
		records[i] = toRecord(event)
	}

	err := q.sink.WriteBatch(ctx, records)

	q.mu.Lock()
	if err == nil {
		q.flushed += int64(len(batch))
	} else {
		q.failed += int64(len(batch))
		if len(q.events)+len(batch) <= q.config.MaxQueueSize {
			// Front of the queue so a retry preserves order.
			q.events = append(batch, q.events...)
		} else {
			q.dropped += int64(len(batch))
			q.logger.Warn("audit queue too full to retry failed batch, dropping",
				"batch_size", len(batch),
			)
		}
	}
	q.processing = false
	q.mu.Unlock()

	if err != nil {
		q.logger.Error("audit batch write failed", "batch_size", len(batch), "error", err)
	}

	return err
}

// Start begins the periodic flush timer. Calling Start on a started
// queue is a no-op.
func (q *Queue) Start() {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.timerDone = make(chan struct{})
	done := q.timerDone
	q.mu.Unlock()

	go func() {
		ticker := time.NewTicker(q.config.FlushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := q.Flush(context.Background()); err != nil {
					q.logger.Error("periodic flush failed", "error", err)
				}
			case <-done:
				return
			}
		}
	}()
}

// Stop cancels the flush timer and synchronously drains the queue so no
// buffered events are lost on graceful shutdown. Draining stops early
// when the sink keeps failing; delivery stays best-effort even here.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return nil
	}
	q.started = false
	close(q.timerDone)
	q.mu.Unlock()

	for {
		q.mu.Lock()
		remaining := len(q.events)
		q.mu.Unlock()

		if remaining == 0 {
			return nil
		}

		if err := q.Flush(ctx); err != nil {
			return err
		}

		q.mu.Lock()
		madeProgress := len(q.events) < remaining
		inFlight := q.processing
		q.mu.Unlock()
		if madeProgress {
			continue
		}
		if !inFlight {
			return nil
		}

		// A size-triggered flush holds the processing guard; wait for
		// it to settle instead of abandoning buffered events.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

// Size returns the number of buffered events.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Stats returns the queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := Stats{
		QueueSize: len(q.events),
		Enqueued:  q.enqueued,
		Flushed:   q.flushed,
		Failed:    q.failed,
		Dropped:   q.dropped,
	}
	if q.enqueued > 0 {
		stats.SuccessRate = float64(q.flushed) / float64(q.enqueued)
	}
	return stats
}
