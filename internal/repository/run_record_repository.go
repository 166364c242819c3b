package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mrth-run/mrth-api/internal/models"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
)

const runRecordColumns = "id, nickname, screenshot_path, status, distance_km, pace_seconds, duration_seconds, calories, raw_text, created_at, updated_at"

// RunRecordRepository persists leaderboard run records.
type RunRecordRepository struct {
	db *sqlx.DB
}

// NewRunRecordRepository constructs a run record repository.
func NewRunRecordRepository(db *sqlx.DB) *RunRecordRepository {
	return &RunRecordRepository{db: db}
}

// Create inserts a fresh PENDING record.
func (r *RunRecordRepository) Create(ctx context.Context, record *models.RunRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = models.RunRecordPending
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO run_records (id, nickname, screenshot_path, status, distance_km, pace_seconds, duration_seconds, calories, raw_text, created_at, updated_at)
VALUES (:id, :nickname, :screenshot_path, :status, :distance_km, :pace_seconds, :duration_seconds, :calories, :raw_text, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create run record: %w", err)
	}
	return nil
}

// GetByID fetches one record.
func (r *RunRecordRepository) GetByID(ctx context.Context, id string) (*models.RunRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM run_records WHERE id = $1", runRecordColumns)
	var record models.RunRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get run record %s: %w", id, err)
	}
	return &record, nil
}

// SaveExtraction stores OCR results and flips the record to EXTRACTED, or
// FAILED when no metric could be read.
func (r *RunRecordRepository) SaveExtraction(ctx context.Context, record *models.RunRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE run_records SET status = :status, distance_km = :distance_km, pace_seconds = :pace_seconds,
duration_seconds = :duration_seconds, calories = :calories, raw_text = :raw_text, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("save extraction %s: %w", record.ID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrRecordNotFound
	}
	return nil
}

// Confirm finalises an EXTRACTED record with the figures the owner accepted.
func (r *RunRecordRepository) Confirm(ctx context.Context, record *models.RunRecord) error {
	record.Status = models.RunRecordConfirmed
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE run_records SET status = :status, nickname = :nickname, distance_km = :distance_km,
pace_seconds = :pace_seconds, duration_seconds = :duration_seconds, calories = :calories, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("confirm run record %s: %w", record.ID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrRecordNotFound
	}
	return nil
}

// ListConfirmed returns the leaderboard ordered by distance, longest first,
// ties broken by faster pace.
func (r *RunRecordRepository) ListConfirmed(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM run_records WHERE status = 'CONFIRMED'
ORDER BY distance_km DESC NULLS LAST, pace_seconds ASC NULLS LAST LIMIT %d`, runRecordColumns, limit)
	var records []models.RunRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list confirmed run records: %w", err)
	}
	return records, nil
}

// CountByStatus returns the number of records in the given status.
func (r *RunRecordRepository) CountByStatus(ctx context.Context, status models.RunRecordStatus) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM run_records WHERE status = $1", status); err != nil {
		return 0, fmt.Errorf("count run records: %w", err)
	}
	return total, nil
}
