// Package api contains the HTTP handlers that expose the review status
// engine to the UI layer. Authentication is an upstream collaborator:
// requests arrive with the authenticated user's ID in the X-User-ID
// header.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hanzideck/hanzideck-api/internal/api/shared"
	"github.com/hanzideck/hanzideck-api/internal/domain"
	"github.com/hanzideck/hanzideck-api/internal/platform/logger"
	"github.com/hanzideck/hanzideck-api/internal/service/review"
)

// userIDHeader carries the authenticated user's ID, injected by the
// upstream auth layer.
const userIDHeader = "X-User-ID"

// ReviewHandler handles the review engine endpoints.
type ReviewHandler struct {
	service  review.ReviewService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
// If log is nil, a default logger will be used.
func NewReviewHandler(service review.ReviewService, log *slog.Logger) *ReviewHandler {
	// Validate inputs
	if service == nil {
		panic("service cannot be nil")
	}

	// Use provided logger or create default
	if log == nil {
		log = slog.Default()
	}

	return &ReviewHandler{
		service:  service,
		validate: validator.New(),
		logger:   log.With(slog.String("component", "review_handler")),
	}
}

// GetLessonCards handles GET /api/lessons/{lessonID}/cards.
// The response is static-first: cards render even when the review store
// is unreachable, flagged as still loading their review state.
func (h *ReviewHandler) GetLessonCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	lessonID := chi.URLParam(r, "lessonID")
	merged, err := h.service.GetMergedCards(r.Context(), userID, lessonID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "failed to load cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, merged)
}

// GetDueCards handles GET /api/reviews/due.
func (h *ReviewHandler) GetDueCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	merged, err := h.service.GetDueCards(r.Context(), userID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "failed to load due cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, merged)
}

// GetDueCount handles GET /api/reviews/due-count.
func (h *ReviewHandler) GetDueCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	count, err := h.service.GetDueCount(r.Context(), userID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "failed to compute due count")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DueCountResponse{DueCount: count})
}

// SubmitReview handles POST /api/reviews. The outcome is validated
// synchronously and then buffered; persistence happens asynchronously,
// so a 202 here means "accepted", not "persisted".
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid review submission")
		return
	}

	outcome := domain.ReviewOutcome{
		CardID:   req.CardID,
		Correct:  *req.Correct,
		Strength: domain.StrengthLevel(req.Strength),
	}

	if err := h.service.SubmitOutcome(r.Context(), userID, outcome); err != nil {
		switch {
		case errors.Is(err, review.ErrUnknownCard):
			shared.RespondWithError(w, r, http.StatusNotFound, "card not found")
		case errors.Is(err, review.ErrInvalidOutcome):
			shared.RespondWithError(w, r, http.StatusBadRequest, "invalid review submission")
		default:
			log.Error("failed to submit outcome",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()),
				slog.String("card_id", req.CardID))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "failed to submit review")
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// ResetCard handles POST /api/reviews/{cardID}/reset.
func (h *ReviewHandler) ResetCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	cardID := chi.URLParam(r, "cardID")
	if err := h.service.ResetCard(r.Context(), userID, cardID); err != nil {
		if errors.Is(err, review.ErrUnknownCard) {
			shared.RespondWithError(w, r, http.StatusNotFound, "card not found")
			return
		}
		log.Error("failed to reset card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "failed to reset card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FlushReviews handles POST /api/reviews/flush. The UI calls this on
// suspend or navigation-away so buffered outcomes reach the store before
// the client goes quiet.
func (h *ReviewHandler) FlushReviews(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Flush(r.Context(), userID); err != nil {
		// Flush failures are retried inside the queue; the client does
		// not need to act on them.
		log.Warn("explicit flush did not complete",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
	}

	w.WriteHeader(http.StatusAccepted)
}

// GetQueueStats handles GET /api/reviews/queue-stats.
func (h *ReviewHandler) GetQueueStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	stats := h.service.QueueStats(userID)
	shared.RespondWithJSON(w, r, http.StatusOK, QueueStatsResponse{
		Enqueued:        stats.Enqueued,
		FlushedBatches:  stats.FlushedBatches,
		FlushedOutcomes: stats.FlushedOutcomes,
		FlushFailures:   stats.FlushFailures,
		DroppedBatches:  stats.DroppedBatches,
		DroppedOutcomes: stats.DroppedOutcomes,
	})
}

// userID extracts and parses the authenticated user ID header. On
// failure it writes the error response and returns ok=false.
func (h *ReviewHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "missing user identity")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "invalid user identity")
		return uuid.Nil, false
	}
	return userID, true
}
