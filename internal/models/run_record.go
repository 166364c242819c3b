package models

import "time"

// RunRecordStatus tracks the leaderboard entry lifecycle: uploaded
// screenshots start PENDING until OCR extraction finishes, then the owner
// confirms the extracted figures.
type RunRecordStatus string

const (
	RunRecordPending   RunRecordStatus = "PENDING"
	RunRecordExtracted RunRecordStatus = "EXTRACTED"
	RunRecordConfirmed RunRecordStatus = "CONFIRMED"
	RunRecordFailed    RunRecordStatus = "FAILED"
)

// RunRecord is one running-activity screenshot and its extracted metrics.
type RunRecord struct {
	ID              string          `db:"id" json:"id"`
	Nickname        string          `db:"nickname" json:"nickname"`
	ScreenshotPath  string          `db:"screenshot_path" json:"-"`
	Status          RunRecordStatus `db:"status" json:"status"`
	DistanceKm      *float64        `db:"distance_km" json:"distance_km,omitempty"`
	PaceSeconds     *int            `db:"pace_seconds" json:"pace_seconds,omitempty"`
	DurationSeconds *int            `db:"duration_seconds" json:"duration_seconds,omitempty"`
	Calories        *int            `db:"calories" json:"calories,omitempty"`
	RawText         *string         `db:"raw_text" json:"-"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
