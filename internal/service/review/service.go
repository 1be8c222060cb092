package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/hanzideck/hanzideck-api/internal/catalog"
	"github.com/hanzideck/hanzideck-api/internal/domain"
	"github.com/hanzideck/hanzideck-api/internal/domain/srs"
	"github.com/hanzideck/hanzideck-api/internal/platform/logger"
	"github.com/hanzideck/hanzideck-api/internal/queue"
	"github.com/hanzideck/hanzideck-api/internal/store"
)

// ReviewService is the status engine facade exposed to the UI layer.
// Card reads are static-first and never block on the review store;
// outcome writes are fire-and-forget from the caller's perspective.
// Version: 1.0
type ReviewService interface {
	// GetMergedCards returns the cards of a lesson merged with the user's
	// review state. When the review store is unreachable the cards are
	// returned immediately with default new-card records and the loading
	// flag set; display is never blocked on a fetch failure.
	GetMergedCards(ctx context.Context, userID uuid.UUID, lessonID string) ([]domain.MergedCard, error)

	// GetDueCards returns every card across the catalog that is currently
	// due for the user.
	GetDueCards(ctx context.Context, userID uuid.UUID) ([]domain.MergedCard, error)

	// GetDueCount returns how many cards are currently due for the user.
	// The result is served from a short-TTL cache so it is cheap to poll.
	GetDueCount(ctx context.Context, userID uuid.UUID) (int, error)

	// SubmitOutcome validates the outcome against the catalog and buffers
	// it for persistence. It returns immediately; persistence failures
	// are retried inside the queue and never surface here. An outcome
	// referencing an unknown card is rejected with ErrUnknownCard.
	SubmitOutcome(ctx context.Context, userID uuid.UUID, outcome domain.ReviewOutcome) error

	// ResetCard mutates a card's review state back to the new-card
	// defaults. Records are never hard-deleted.
	ResetCard(ctx context.Context, userID uuid.UUID, cardID string) error

	// Flush triggers an immediate flush of the user's buffered outcomes.
	Flush(ctx context.Context, userID uuid.UUID) error

	// ForceDrain flushes every user's buffered outcomes and waits,
	// bounded by the context. Called on shutdown.
	ForceDrain(ctx context.Context) error

	// QueueStats returns the write-queue observability counters for a
	// user. A user with no queue yet reports zero counters.
	QueueStats(userID uuid.UUID) queue.Stats

	// Close stops background refreshers and closes all queues. Callers
	// should ForceDrain first.
	Close()
}

// Config holds tuning for the review service.
type Config struct {
	// Queue configures each per-user write queue.
	Queue queue.Config

	// DueCountTTL is how long a computed due count is served from cache.
	// Zero disables caching.
	DueCountTTL time.Duration

	// DueCountRefreshInterval is the fixed period of the background job
	// that re-warms due counts for active users. Zero disables the job.
	DueCountRefreshInterval time.Duration

	// Now is the injectable clock. Defaults to time.Now in UTC.
	Now func() time.Time
}

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

type dueCacheEntry struct {
	count   int
	expires time.Time
}

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	catalog   *catalog.Catalog
	store     store.ReviewStore
	scheduler *srs.Scheduler
	cfg       Config
	logger    *slog.Logger

	mu        sync.Mutex
	queues    map[uuid.UUID]*queue.ReviewWriteQueue
	snapshots map[uuid.UUID]map[string]domain.ReviewRecord
	dueCache  map[uuid.UUID]dueCacheEntry

	cron *gocron.Scheduler
}

// NewReviewService creates a new ReviewService implementation.
func NewReviewService(
	cat *catalog.Catalog,
	reviewStore store.ReviewStore,
	scheduler *srs.Scheduler,
	cfg Config,
	log *slog.Logger,
) ReviewService {
	// Validate inputs
	if cat == nil {
		panic("catalog cannot be nil")
	}
	if reviewStore == nil {
		panic("reviewStore cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}

	// Use provided logger or create default
	if log == nil {
		log = slog.Default()
	}

	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Queue.Now == nil {
		cfg.Queue.Now = cfg.Now
	}

	s := &reviewServiceImpl{
		catalog:   cat,
		store:     reviewStore,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    log.With(slog.String("component", "review_service")),
		queues:    make(map[uuid.UUID]*queue.ReviewWriteQueue),
		snapshots: make(map[uuid.UUID]map[string]domain.ReviewRecord),
		dueCache:  make(map[uuid.UUID]dueCacheEntry),
	}

	if cfg.DueCountRefreshInterval > 0 {
		s.cron = gocron.NewScheduler(time.UTC)
		if _, err := s.cron.Every(cfg.DueCountRefreshInterval).Do(s.refreshDueCounts); err != nil {
			s.logger.Error("failed to schedule due-count refresh job",
				slog.String("error", err.Error()))
		} else {
			s.cron.StartAsync()
		}
	}

	return s
}

// GetMergedCards implements ReviewService.GetMergedCards.
func (s *reviewServiceImpl) GetMergedCards(
	ctx context.Context,
	userID uuid.UUID,
	lessonID string,
) ([]domain.MergedCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards := s.catalog.Lesson(lessonID)
	if len(cards) == 0 {
		return []domain.MergedCard{}, nil
	}

	ids := make([]string, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
	}

	records, err := s.store.FetchStatuses(ctx, userID, ids)
	if err != nil {
		// Degrade gracefully: show the static cards with default records
		// and flag them as not yet reconciled.
		log.Warn("status fetch failed, serving defaults",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID))
		merged := Merge(cards, nil)
		for i := range merged {
			merged[i].Loading = true
		}
		return merged, nil
	}

	s.rememberRecords(userID, records)
	return Merge(cards, records), nil
}

// GetDueCards implements ReviewService.GetDueCards.
func (s *reviewServiceImpl) GetDueCards(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.MergedCard, error) {
	merged, err := s.mergeAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return DueCards(merged, s.cfg.Now()), nil
}

// GetDueCount implements ReviewService.GetDueCount.
func (s *reviewServiceImpl) GetDueCount(ctx context.Context, userID uuid.UUID) (int, error) {
	now := s.cfg.Now()

	if s.cfg.DueCountTTL > 0 {
		s.mu.Lock()
		entry, ok := s.dueCache[userID]
		s.mu.Unlock()
		if ok && now.Before(entry.expires) {
			return entry.count, nil
		}
	}

	merged, err := s.mergeAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := CountDue(merged, now)

	if s.cfg.DueCountTTL > 0 {
		s.mu.Lock()
		s.dueCache[userID] = dueCacheEntry{count: count, expires: now.Add(s.cfg.DueCountTTL)}
		s.mu.Unlock()
	}
	return count, nil
}

// SubmitOutcome implements ReviewService.SubmitOutcome.
func (s *reviewServiceImpl) SubmitOutcome(
	ctx context.Context,
	userID uuid.UUID,
	outcome domain.ReviewOutcome,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := outcome.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutcome, err)
	}
	if !s.catalog.Has(outcome.CardID) {
		log.Warn("outcome rejected for unknown card",
			slog.String("user_id", userID.String()),
			slog.String("card_id", outcome.CardID))
		return fmt.Errorf("%w: %s", ErrUnknownCard, outcome.CardID)
	}
	if outcome.Strength == "" {
		outcome.Strength = domain.StrengthMedium
	}

	q := s.queueFor(userID)
	if err := q.Enqueue(outcome); err != nil {
		return NewServiceError("submit_outcome", "failed to enqueue outcome", err)
	}

	log.Debug("outcome enqueued",
		slog.String("user_id", userID.String()),
		slog.String("card_id", outcome.CardID),
		slog.Bool("correct", outcome.Correct),
		slog.String("strength", string(outcome.Strength)))
	return nil
}

// ResetCard implements ReviewService.ResetCard. The reset is written
// through the store directly as an already-decided default state; it
// does not pass through the scheduler.
func (s *reviewServiceImpl) ResetCard(ctx context.Context, userID uuid.UUID, cardID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !s.catalog.Has(cardID) {
		return fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}

	reset := domain.ComputedUpdate{
		CardID:       cardID,
		Status:       domain.StatusNew,
		IntervalDays: 1,
		ReviewCount:  0,
	}
	if err := s.store.PersistBatch(ctx, userID, []domain.ComputedUpdate{reset}); err != nil {
		log.Error("failed to reset card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID))
		return NewServiceError("reset_card", "failed to persist reset", err)
	}

	s.mu.Lock()
	if snap, ok := s.snapshots[userID]; ok {
		snap[cardID] = domain.NewReviewRecord(cardID)
	}
	q := s.queues[userID]
	s.mu.Unlock()
	if q != nil {
		q.Invalidate(cardID)
	}

	log.Info("card reset to defaults",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID))
	return nil
}

// Flush implements ReviewService.Flush.
func (s *reviewServiceImpl) Flush(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	q := s.queues[userID]
	s.mu.Unlock()
	if q == nil {
		return nil
	}
	return q.Flush(ctx)
}

// ForceDrain implements ReviewService.ForceDrain.
func (s *reviewServiceImpl) ForceDrain(ctx context.Context) error {
	s.mu.Lock()
	queues := make([]*queue.ReviewWriteQueue, 0, len(s.queues))
	for _, q := range s.queues {
		queues = append(queues, q)
	}
	s.mu.Unlock()

	var errs []error
	for _, q := range queues {
		if err := q.ForceDrain(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// QueueStats implements ReviewService.QueueStats.
func (s *reviewServiceImpl) QueueStats(userID uuid.UUID) queue.Stats {
	s.mu.Lock()
	q := s.queues[userID]
	s.mu.Unlock()
	if q == nil {
		return queue.Stats{}
	}
	return q.Stats()
}

// Close implements ReviewService.Close.
func (s *reviewServiceImpl) Close() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.mu.Lock()
	for _, q := range s.queues {
		q.Close()
	}
	s.mu.Unlock()
}

// queueFor returns the user's write queue, creating it on first use.
// The queue's record source reads the service's last fetched snapshot so
// flush-time computations never touch the network.
func (s *reviewServiceImpl) queueFor(userID uuid.UUID) *queue.ReviewWriteQueue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q, ok := s.queues[userID]; ok {
		return q
	}

	persist := func(ctx context.Context, updates []domain.ComputedUpdate) error {
		return s.store.PersistBatch(ctx, userID, updates)
	}
	source := func(cardID string) domain.ReviewRecord {
		s.mu.Lock()
		defer s.mu.Unlock()
		if snap, ok := s.snapshots[userID]; ok {
			if rec, ok := snap[cardID]; ok {
				return rec
			}
		}
		return domain.NewReviewRecord(cardID)
	}

	q := queue.NewReviewWriteQueue(persist, source, s.scheduler, s.cfg.Queue, s.logger)
	s.queues[userID] = q
	return q
}

// mergeAll merges the full catalog with the user's review state,
// degrading to the last snapshot (or defaults) when the fetch fails.
func (s *reviewServiceImpl) mergeAll(ctx context.Context, userID uuid.UUID) ([]domain.MergedCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards := s.catalog.All()
	records, err := s.store.FetchStatuses(ctx, userID, s.catalog.IDs())
	if err != nil {
		log.Warn("status fetch failed, using last snapshot",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))

		s.mu.Lock()
		snap := s.snapshots[userID]
		records = make(map[string]domain.ReviewRecord, len(snap))
		for id, rec := range snap {
			records[id] = rec
		}
		s.mu.Unlock()

		merged := Merge(cards, records)
		for i := range merged {
			merged[i].Loading = true
		}
		return merged, nil
	}

	s.rememberRecords(userID, records)
	return Merge(cards, records), nil
}

// rememberRecords folds freshly fetched records into the user's
// snapshot. The fetched map itself is treated as immutable.
func (s *reviewServiceImpl) rememberRecords(userID uuid.UUID, records map[string]domain.ReviewRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[userID]
	if !ok {
		snap = make(map[string]domain.ReviewRecord, len(records))
		s.snapshots[userID] = snap
	}
	for id, rec := range records {
		snap[id] = rec
	}
}

// refreshDueCounts re-warms the due-count cache for every user with a
// live queue, on the fixed refresh schedule.
func (s *reviewServiceImpl) refreshDueCounts() {
	s.mu.Lock()
	users := make([]uuid.UUID, 0, len(s.queues))
	for id := range s.queues {
		users = append(users, id)
	}
	s.mu.Unlock()

	for _, userID := range users {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		merged, err := s.mergeAll(ctx, userID)
		cancel()
		if err != nil {
			s.logger.Debug("due-count refresh failed",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			continue
		}

		now := s.cfg.Now()
		count := CountDue(merged, now)
		s.mu.Lock()
		s.dueCache[userID] = dueCacheEntry{count: count, expires: now.Add(s.cfg.DueCountTTL)}
		s.mu.Unlock()
	}
}
