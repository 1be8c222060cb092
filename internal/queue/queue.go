// Package queue implements the review write queue: the buffer that
// decouples the latency-sensitive answer path from the retry-prone
// persistence path. Outcomes accumulate in a single-owner buffer and are
// flushed to the review store in bounded batches on a size-or-time
// trigger, with at-least-once delivery.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/hanzideck/hanzideck-api/internal/domain"
	"github.com/hanzideck/hanzideck-api/internal/domain/srs"
	"github.com/hanzideck/hanzideck-api/internal/store"
)

// Common errors returned by the ReviewWriteQueue
var (
	ErrQueueClosed = errors.New("review write queue is closed")
)

// PersistFunc submits one computed batch to the review store.
type PersistFunc func(ctx context.Context, updates []domain.ComputedUpdate) error

// RecordSource returns the current review record for a card the queue
// has not yet computed an update for. It must be fast and local (a
// snapshot lookup, never a network call); when it has no record it
// should return the default new-card record.
type RecordSource func(cardID string) domain.ReviewRecord

// Config holds configuration for the review write queue.
type Config struct {
	// BatchSize is the buffer threshold that triggers an immediate flush
	// and the maximum number of outcomes handed to one persistence call.
	BatchSize int

	// FlushDelay is how long a partial batch waits before being flushed.
	FlushDelay time.Duration

	// FlushTimeout bounds each individual persistence attempt.
	FlushTimeout time.Duration

	// RetryDelay is the pause before re-flushing a batch that was
	// requeued after its transient retries were exhausted.
	RetryDelay time.Duration

	// MaxAttempts is the number of persistence attempts per flush before
	// a transient batch is requeued or a permanent batch is dropped.
	MaxAttempts int

	// Now is the injectable clock used for scheduling computations.
	// Defaults to time.Now in UTC.
	Now func() time.Time
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:    10,
		FlushDelay:   2 * time.Second,
		FlushTimeout: 10 * time.Second,
		RetryDelay:   5 * time.Second,
		MaxAttempts:  5,
	}
}

// Stats holds observability counters for a queue instance. Repeated
// flush failures and dropped batches are diagnosable from these even
// though they are never surfaced as caller-facing errors.
type Stats struct {
	Enqueued        uint64
	FlushedBatches  uint64
	FlushedOutcomes uint64
	FlushFailures   uint64
	DroppedBatches  uint64
	DroppedOutcomes uint64
}

// ReviewWriteQueue buffers review outcomes and flushes them to the
// review store in bounded batches. The buffer is the only shared mutable
// resource and is owned exclusively by the queue; Enqueue never blocks
// on network I/O, and at most one flush is in flight at a time.
type ReviewWriteQueue struct {
	cfg       Config
	persist   PersistFunc
	source    RecordSource
	scheduler *srs.Scheduler
	logger    *slog.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	buf      []domain.ReviewOutcome
	timer    *time.Timer
	flushing bool
	closed   bool
	stats    Stats

	// projection holds the last successfully persisted record per card,
	// so outcomes in later batches are computed against the result of
	// earlier ones rather than stale pre-batch state. It is committed
	// only after a successful persist; a retried batch recomputes from
	// the same base and stays idempotent.
	projection map[string]domain.ReviewRecord
}

// NewReviewWriteQueue creates a queue that computes next states with the
// given scheduler and submits them through persist. If logger is nil, a
// default logger will be used.
func NewReviewWriteQueue(
	persist PersistFunc,
	source RecordSource,
	scheduler *srs.Scheduler,
	cfg Config,
	logger *slog.Logger,
) *ReviewWriteQueue {
	// Validate inputs
	if persist == nil {
		panic("persist cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "review_write_queue"))

	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushDelay <= 0 {
		cfg.FlushDelay = def.FlushDelay
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = def.FlushTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if source == nil {
		source = domain.NewReviewRecord
	}

	q := &ReviewWriteQueue{
		cfg:        cfg,
		persist:    persist,
		source:     source,
		scheduler:  scheduler,
		logger:     logger,
		projection: make(map[string]domain.ReviewRecord),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an outcome to the current buffer. It is synchronous
// and non-blocking from the caller's perspective: reaching the batch
// threshold triggers an asynchronous flush, and the first outcome in an
// empty buffer arms the delay timer so partial batches still flush.
func (q *ReviewWriteQueue) Enqueue(outcome domain.ReviewOutcome) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.buf = append(q.buf, outcome)
	q.stats.Enqueued++

	if len(q.buf) >= q.cfg.BatchSize {
		if !q.flushing {
			go func() {
				if err := q.Flush(context.Background()); err != nil {
					q.logger.Debug("threshold flush did not complete", slog.String("error", err.Error()))
				}
			}()
		}
		return nil
	}

	if q.timer == nil {
		q.armTimerLocked(q.cfg.FlushDelay)
	}
	return nil
}

// Flush detaches the current batch, computes the next state for each
// outcome in arrival order, and submits the batch to the store. New
// outcomes keep accumulating in a fresh buffer while the flush is in
// flight. Transient failures are retried with backoff; if attempts are
// exhausted the batch is requeued at the front of the buffer and a retry
// is scheduled, preserving at-least-once delivery. Permanent failures
// drop the batch after the bounded attempts; the loss is counted and
// logged. A Flush that finds another flush in progress returns
// immediately.
func (q *ReviewWriteQueue) Flush(ctx context.Context) error {
	q.mu.Lock()
	if q.flushing || len(q.buf) == 0 {
		q.mu.Unlock()
		return nil
	}
	q.flushing = true
	q.stopTimerLocked()

	n := len(q.buf)
	if n > q.cfg.BatchSize {
		n = q.cfg.BatchSize
	}
	batch := make([]domain.ReviewOutcome, n)
	copy(batch, q.buf[:n])
	q.buf = append([]domain.ReviewOutcome(nil), q.buf[n:]...)

	// Seed the working set from the projection so this batch continues
	// from the last persisted state of each card.
	working := make(map[string]domain.ReviewRecord, len(batch))
	for _, o := range batch {
		if _, seen := working[o.CardID]; seen {
			continue
		}
		if rec, ok := q.projection[o.CardID]; ok {
			working[o.CardID] = rec
		}
	}
	q.mu.Unlock()

	// Compute updates sequentially; a later outcome for the same card is
	// applied to the result of the earlier one.
	updates := make([]domain.ComputedUpdate, 0, len(batch))
	for _, o := range batch {
		rec, ok := working[o.CardID]
		if !ok {
			rec = q.source(o.CardID)
		}
		upd := q.scheduler.Apply(rec, o, q.cfg.Now())
		working[o.CardID] = upd.Record()
		updates = append(updates, upd)
	}

	err := q.submit(ctx, updates)
	return q.settle(batch, working, err)
}

// submit runs the persistence call with per-attempt timeouts and
// backoff, stopping early on permanent errors.
func (q *ReviewWriteQueue) submit(ctx context.Context, updates []domain.ComputedUpdate) error {
	var lastErr error
	retryErr := retry.Do(
		func() error {
			attemptCtx, cancel := context.WithTimeout(ctx, q.cfg.FlushTimeout)
			defer cancel()

			err := q.persist(attemptCtx, updates)
			if err == nil {
				return nil
			}
			lastErr = err

			q.mu.Lock()
			q.stats.FlushFailures++
			q.mu.Unlock()

			if !store.IsTransient(err) {
				q.logger.Error("persist rejected batch permanently",
					slog.String("error", err.Error()),
					slog.Int("batch_size", len(updates)))
				return retry.Unrecoverable(err)
			}

			q.logger.Warn("persist attempt failed, will retry",
				slog.String("error", err.Error()),
				slog.Int("batch_size", len(updates)))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(q.cfg.MaxAttempts)),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)

	if retryErr == nil {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return retryErr
}

// settle finishes a flush under the lock: committing the projection on
// success, requeueing on transient exhaustion, dropping on permanent
// failure, and re-arming triggers for whatever is still buffered.
func (q *ReviewWriteQueue) settle(
	batch []domain.ReviewOutcome,
	working map[string]domain.ReviewRecord,
	err error,
) error {
	q.mu.Lock()
	defer func() {
		q.flushing = false
		q.cond.Broadcast()
		q.mu.Unlock()
	}()

	if err == nil {
		for id, rec := range working {
			q.projection[id] = rec
		}
		q.stats.FlushedBatches++
		q.stats.FlushedOutcomes += uint64(len(batch))

		if len(q.buf) >= q.cfg.BatchSize {
			go func() {
				if flushErr := q.Flush(context.Background()); flushErr != nil {
					q.logger.Debug("follow-up flush did not complete", slog.String("error", flushErr.Error()))
				}
			}()
		} else if len(q.buf) > 0 {
			q.armTimerLocked(q.cfg.FlushDelay)
		}
		return nil
	}

	if store.IsTransient(err) {
		// Prepend the failed batch so original arrival order is kept;
		// nothing is dropped.
		q.buf = append(batch, q.buf...)
		q.armTimerLocked(q.cfg.RetryDelay)
		q.logger.Warn("flush failed, batch requeued",
			slog.String("error", err.Error()),
			slog.Int("requeued", len(batch)),
			slog.Int("buffered", len(q.buf)))
		return fmt.Errorf("flush failed, batch requeued: %w", err)
	}

	// Permanent failure: the one case where data loss is accepted.
	q.stats.DroppedBatches++
	q.stats.DroppedOutcomes += uint64(len(batch))
	q.logger.Error("dropping poison batch after permanent store failure",
		slog.String("error", err.Error()),
		slog.Int("dropped", len(batch)))
	if len(q.buf) > 0 {
		q.armTimerLocked(q.cfg.FlushDelay)
	}
	return fmt.Errorf("batch dropped after permanent store failure: %w", err)
}

// ForceDrain synchronously flushes everything that is buffered,
// bypassing the delay timer, and waits for completion. It is called on
// shutdown so buffered outcomes are not lost when the process is torn
// down. The context bounds the wait so an unreachable store cannot block
// shutdown indefinitely.
func (q *ReviewWriteQueue) ForceDrain(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- q.drain(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ReviewWriteQueue) drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		q.mu.Lock()
		for q.flushing {
			q.cond.Wait()
		}
		empty := len(q.buf) == 0
		q.mu.Unlock()

		if empty {
			return nil
		}
		if err := q.Flush(ctx); err != nil {
			return err
		}
	}
}

// Invalidate drops the queue's last-persisted state for a card, so the
// next outcome for it is computed from the record source again. Used
// when a card is reset outside the queue.
func (q *ReviewWriteQueue) Invalidate(cardID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.projection, cardID)
}

// Close marks the queue closed, rejecting further Enqueue calls. Callers
// should ForceDrain first; Close does not flush.
func (q *ReviewWriteQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		q.stopTimerLocked()
		q.logger.Info("review write queue closed")
	}
}

// Len returns the number of buffered outcomes.
func (q *ReviewWriteQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Stats returns a snapshot of the queue's observability counters.
func (q *ReviewWriteQueue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

// armTimerLocked schedules a flush after d unless a timer is already
// pending. Callers must hold q.mu.
func (q *ReviewWriteQueue) armTimerLocked(d time.Duration) {
	if q.timer != nil || q.closed {
		return
	}
	q.timer = time.AfterFunc(d, func() {
		q.mu.Lock()
		q.timer = nil
		q.mu.Unlock()
		if err := q.Flush(context.Background()); err != nil {
			q.logger.Debug("timer flush did not complete", slog.String("error", err.Error()))
		}
	})
}

// stopTimerLocked cancels any pending flush timer. Callers must hold
// q.mu.
func (q *ReviewWriteQueue) stopTimerLocked() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}
