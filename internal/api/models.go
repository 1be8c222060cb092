package api

// SubmitReviewRequest is the request body for submitting a review
// outcome. Strength is optional and defaults to "medium".
type SubmitReviewRequest struct {
	CardID   string `json:"card_id" validate:"required"`
	Correct  *bool  `json:"correct" validate:"required"`
	Strength string `json:"strength" validate:"omitempty,oneof=low medium high"`
}

// DueCountResponse is the response body for the due-count endpoint.
type DueCountResponse struct {
	DueCount int `json:"due_count"`
}

// QueueStatsResponse exposes the write-queue counters for diagnostics.
type QueueStatsResponse struct {
	Enqueued        uint64 `json:"enqueued"`
	FlushedBatches  uint64 `json:"flushed_batches"`
	FlushedOutcomes uint64 `json:"flushed_outcomes"`
	FlushFailures   uint64 `json:"flush_failures"`
	DroppedBatches  uint64 `json:"dropped_batches"`
	DroppedOutcomes uint64 `json:"dropped_outcomes"`
}
