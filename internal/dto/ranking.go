package dto

import "github.com/mrth-run/mrth-api/internal/models"

// UploadRunRecordResponse acknowledges a screenshot upload. Extraction runs
// in the background; the client polls or confirms later with the record ID.
type UploadRunRecordResponse struct {
	RecordID string `json:"record_id"`
	Status   string `json:"status"`
}

// ConfirmRunRecordRequest finalises an extracted record. Any field present
// overrides the OCR figure, so users can correct misreads.
type ConfirmRunRecordRequest struct {
	RecordID        string   `json:"record_id" validate:"required"`
	Nickname        string   `json:"nickname" validate:"required,max=30"`
	DistanceKm      *float64 `json:"distance_km" validate:"omitempty,gt=0,lt=1000"`
	PaceSeconds     *int     `json:"pace_seconds" validate:"omitempty,gt=0"`
	DurationSeconds *int     `json:"duration_seconds" validate:"omitempty,gt=0"`
	Calories        *int     `json:"calories" validate:"omitempty,gt=0"`
}

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	Rank            int      `json:"rank"`
	Nickname        string   `json:"nickname"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	PaceSeconds     *int     `json:"pace_seconds,omitempty"`
	DurationSeconds *int     `json:"duration_seconds,omitempty"`
	Calories        *int     `json:"calories,omitempty"`
}

// RunRecordView exposes a record's extraction state for polling.
type RunRecordView struct {
	models.RunRecord
	ScreenshotURL string `json:"screenshot_url,omitempty"`
}
