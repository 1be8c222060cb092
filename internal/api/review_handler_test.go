package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hanzideck/hanzideck-api/internal/api/shared"
	"github.com/hanzideck/hanzideck-api/internal/domain"
	"github.com/hanzideck/hanzideck-api/internal/queue"
	"github.com/hanzideck/hanzideck-api/internal/service/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockReviewService lets each test plug in just the behavior it needs.
type mockReviewService struct {
	getMergedCardsFn func(ctx context.Context, userID uuid.UUID, lessonID string) ([]domain.MergedCard, error)
	getDueCardsFn    func(ctx context.Context, userID uuid.UUID) ([]domain.MergedCard, error)
	getDueCountFn    func(ctx context.Context, userID uuid.UUID) (int, error)
	submitOutcomeFn  func(ctx context.Context, userID uuid.UUID, outcome domain.ReviewOutcome) error
	resetCardFn      func(ctx context.Context, userID uuid.UUID, cardID string) error
	flushFn          func(ctx context.Context, userID uuid.UUID) error
	queueStatsFn     func(userID uuid.UUID) queue.Stats
}

var _ review.ReviewService = (*mockReviewService)(nil)

func (m *mockReviewService) GetMergedCards(ctx context.Context, userID uuid.UUID, lessonID string) ([]domain.MergedCard, error) {
	if m.getMergedCardsFn != nil {
		return m.getMergedCardsFn(ctx, userID, lessonID)
	}
	return []domain.MergedCard{}, nil
}

func (m *mockReviewService) GetDueCards(ctx context.Context, userID uuid.UUID) ([]domain.MergedCard, error) {
	if m.getDueCardsFn != nil {
		return m.getDueCardsFn(ctx, userID)
	}
	return []domain.MergedCard{}, nil
}

func (m *mockReviewService) GetDueCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.getDueCountFn != nil {
		return m.getDueCountFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockReviewService) SubmitOutcome(ctx context.Context, userID uuid.UUID, outcome domain.ReviewOutcome) error {
	if m.submitOutcomeFn != nil {
		return m.submitOutcomeFn(ctx, userID, outcome)
	}
	return nil
}

func (m *mockReviewService) ResetCard(ctx context.Context, userID uuid.UUID, cardID string) error {
	if m.resetCardFn != nil {
		return m.resetCardFn(ctx, userID, cardID)
	}
	return nil
}

func (m *mockReviewService) Flush(ctx context.Context, userID uuid.UUID) error {
	if m.flushFn != nil {
		return m.flushFn(ctx, userID)
	}
	return nil
}

func (m *mockReviewService) ForceDrain(_ context.Context) error { return nil }

func (m *mockReviewService) QueueStats(userID uuid.UUID) queue.Stats {
	if m.queueStatsFn != nil {
		return m.queueStatsFn(userID)
	}
	return queue.Stats{}
}

func (m *mockReviewService) Close() {}

func newTestRouter(svc review.ReviewService) http.Handler {
	h := NewReviewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/lessons/{lessonID}/cards", h.GetLessonCards)
		r.Get("/reviews/due", h.GetDueCards)
		r.Get("/reviews/due-count", h.GetDueCount)
		r.Get("/reviews/queue-stats", h.GetQueueStats)
		r.Post("/reviews", h.SubmitReview)
		r.Post("/reviews/flush", h.FlushReviews)
		r.Post("/reviews/{cardID}/reset", h.ResetCard)
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, userID string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMissingUserIDHeader(t *testing.T) {
	t.Parallel()
	router := newTestRouter(&mockReviewService{})

	rec := doRequest(t, router, http.MethodGet, "/api/reviews/due-count", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "missing user identity", resp.Error)
}

func TestMalformedUserIDHeader(t *testing.T) {
	t.Parallel()
	router := newTestRouter(&mockReviewService{})

	rec := doRequest(t, router, http.MethodGet, "/api/reviews/due-count", "not-a-uuid", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetLessonCards(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	reviewed := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	svc := &mockReviewService{
		getMergedCardsFn: func(_ context.Context, gotUser uuid.UUID, lessonID string) ([]domain.MergedCard, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, "hsk1-lesson1", lessonID)
			return []domain.MergedCard{
				{
					Card: domain.Card{ID: "hsk1-001", LessonID: lessonID, Hanzi: "你好", Translation: "hello"},
					Record: domain.ReviewRecord{
						CardID: "hsk1-001", Status: domain.StatusKnown,
						LastReviewedAt: &reviewed, IntervalDays: 6, ReviewCount: 2,
					},
				},
			}, nil
		},
	}
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/api/lessons/hsk1-lesson1/cards", userID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var merged []domain.MergedCard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &merged))
	require.Len(t, merged, 1)
	assert.Equal(t, "hsk1-001", merged[0].Card.ID)
	assert.Equal(t, domain.StatusKnown, merged[0].Record.Status)
}

func TestGetDueCount(t *testing.T) {
	t.Parallel()

	svc := &mockReviewService{
		getDueCountFn: func(_ context.Context, _ uuid.UUID) (int, error) {
			return 7, nil
		},
	}
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/api/reviews/due-count", uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DueCountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.DueCount)
}

func TestSubmitReview(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		var got domain.ReviewOutcome
		svc := &mockReviewService{
			submitOutcomeFn: func(_ context.Context, _ uuid.UUID, outcome domain.ReviewOutcome) error {
				got = outcome
				return nil
			},
		}
		router := newTestRouter(svc)

		body := []byte(`{"card_id": "hsk1-001", "correct": true, "strength": "high"}`)
		rec := doRequest(t, router, http.MethodPost, "/api/reviews", uuid.NewString(), body)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "hsk1-001", got.CardID)
		assert.True(t, got.Correct)
		assert.Equal(t, domain.StrengthHigh, got.Strength)
	})

	t.Run("correct false is a valid value", func(t *testing.T) {
		svc := &mockReviewService{}
		router := newTestRouter(svc)

		body := []byte(`{"card_id": "hsk1-001", "correct": false}`)
		rec := doRequest(t, router, http.MethodPost, "/api/reviews", uuid.NewString(), body)
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(&mockReviewService{})

		rec := doRequest(t, router, http.MethodPost, "/api/reviews", uuid.NewString(), []byte("{not json"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing correct field", func(t *testing.T) {
		router := newTestRouter(&mockReviewService{})

		rec := doRequest(t, router, http.MethodPost, "/api/reviews", uuid.NewString(), []byte(`{"card_id": "hsk1-001"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid strength", func(t *testing.T) {
		router := newTestRouter(&mockReviewService{})

		body := []byte(`{"card_id": "hsk1-001", "correct": true, "strength": "extreme"}`)
		rec := doRequest(t, router, http.MethodPost, "/api/reviews", uuid.NewString(), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown card", func(t *testing.T) {
		svc := &mockReviewService{
			submitOutcomeFn: func(_ context.Context, _ uuid.UUID, _ domain.ReviewOutcome) error {
				return review.ErrUnknownCard
			},
		}
		router := newTestRouter(svc)

		body := []byte(`{"card_id": "ghost", "correct": true}`)
		rec := doRequest(t, router, http.MethodPost, "/api/reviews", uuid.NewString(), body)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestResetCardEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("reset succeeds", func(t *testing.T) {
		var gotCardID string
		svc := &mockReviewService{
			resetCardFn: func(_ context.Context, _ uuid.UUID, cardID string) error {
				gotCardID = cardID
				return nil
			},
		}
		router := newTestRouter(svc)

		rec := doRequest(t, router, http.MethodPost, "/api/reviews/hsk1-001/reset", uuid.NewString(), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "hsk1-001", gotCardID)
	})

	t.Run("unknown card", func(t *testing.T) {
		svc := &mockReviewService{
			resetCardFn: func(_ context.Context, _ uuid.UUID, _ string) error {
				return review.ErrUnknownCard
			},
		}
		router := newTestRouter(svc)

		rec := doRequest(t, router, http.MethodPost, "/api/reviews/ghost/reset", uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestFlushReviewsAlwaysAccepted(t *testing.T) {
	t.Parallel()

	svc := &mockReviewService{
		flushFn: func(_ context.Context, _ uuid.UUID) error {
			return context.DeadlineExceeded
		},
	}
	router := newTestRouter(svc)

	// Flush failures stay inside the queue's retry loop; the client gets
	// 202 either way.
	rec := doRequest(t, router, http.MethodPost, "/api/reviews/flush", uuid.NewString(), nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestGetQueueStats(t *testing.T) {
	t.Parallel()

	svc := &mockReviewService{
		queueStatsFn: func(_ uuid.UUID) queue.Stats {
			return queue.Stats{Enqueued: 12, FlushedBatches: 2, FlushedOutcomes: 10, FlushFailures: 1}
		},
	}
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/api/reviews/queue-stats", uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp QueueStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(12), resp.Enqueued)
	assert.Equal(t, uint64(2), resp.FlushedBatches)
	assert.Equal(t, uint64(10), resp.FlushedOutcomes)
	assert.Equal(t, uint64(1), resp.FlushFailures)
}
