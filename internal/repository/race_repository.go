package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mrth-run/mrth-api/internal/models"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
)

const raceColumns = `id, title, title_en, description, event_start_at, event_time, timezone, country, region, city, venue,
organizer, phone, email, website, general_guide, is_featured, is_urgent,
registration_start_at, registration_end_at, registration_status, created_at, updated_at`

// RaceRepository persists races with their categories and schedules.
type RaceRepository struct {
	db *sqlx.DB
}

// NewRaceRepository constructs a race repository.
func NewRaceRepository(db *sqlx.DB) *RaceRepository {
	return &RaceRepository{db: db}
}

// List returns races matching the SQL-expressible parts of the filter:
// region, distance, free-text query and the future-only cutoff. Status
// filtering and ordering happen on the derived window, so the caller
// applies those in memory.
func (r *RaceRepository) List(ctx context.Context, filter models.RaceFilter, now time.Time) ([]models.Race, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Region != "" {
		where = append(where, fmt.Sprintf("region = $%d", len(args)+1))
		args = append(args, filter.Region)
	}
	if filter.Query != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR COALESCE(city, '') ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.FutureOnly {
		where = append(where, fmt.Sprintf("event_start_at >= $%d", len(args)+1))
		args = append(args, now)
	}
	if lo, hi, ok := distanceBounds(filter.Distance); ok {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM race_categories rc WHERE rc.race_id = races.id AND rc.distance_km >= $%d AND rc.distance_km <= $%d)",
			len(args)+1, len(args)+2))
		args = append(args, lo, hi)
	}

	query := fmt.Sprintf("SELECT %s FROM races WHERE %s ORDER BY event_start_at ASC", raceColumns, strings.Join(where, " AND "))
	var races []models.Race
	if err := r.db.SelectContext(ctx, &races, query, args...); err != nil {
		return nil, fmt.Errorf("list races: %w", err)
	}
	if err := r.attachCategories(ctx, races); err != nil {
		return nil, err
	}
	return races, nil
}

// GetByID fetches one race including categories and schedules.
func (r *RaceRepository) GetByID(ctx context.Context, id string) (*models.Race, error) {
	query := fmt.Sprintf("SELECT %s FROM races WHERE id = $1", raceColumns)
	var race models.Race
	if err := r.db.GetContext(ctx, &race, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRaceNotFound
		}
		return nil, fmt.Errorf("get race %s: %w", id, err)
	}
	races := []models.Race{race}
	if err := r.attachCategories(ctx, races); err != nil {
		return nil, err
	}
	return &races[0], nil
}

// ListFeatured returns featured races with an event date at or after now.
func (r *RaceRepository) ListFeatured(ctx context.Context, now time.Time, limit int) ([]models.Race, error) {
	if limit <= 0 {
		limit = 6
	}
	query := fmt.Sprintf("SELECT %s FROM races WHERE is_featured = TRUE AND event_start_at >= $1 ORDER BY event_start_at ASC LIMIT %d", raceColumns, limit)
	var races []models.Race
	if err := r.db.SelectContext(ctx, &races, query, now); err != nil {
		return nil, fmt.Errorf("list featured races: %w", err)
	}
	if err := r.attachCategories(ctx, races); err != nil {
		return nil, err
	}
	return races, nil
}

// ListOpeningBetween returns races whose registration may open inside the
// given range, judged on either a structured REGISTRATION schedule start or
// the flat fallback start. The caller re-derives the canonical window; this
// is only a coarse SQL prefilter.
func (r *RaceRepository) ListOpeningBetween(ctx context.Context, from, to time.Time) ([]models.Race, error) {
	query := fmt.Sprintf(`SELECT %s FROM races
WHERE EXISTS (
    SELECT 1 FROM race_schedules rs
    JOIN race_categories rc ON rc.id = rs.category_id
    WHERE rc.race_id = races.id AND rs.type = 'REGISTRATION' AND rs.start_at BETWEEN $1 AND $2
) OR registration_start_at BETWEEN $1 AND $2
ORDER BY event_start_at ASC`, raceColumns)
	var races []models.Race
	if err := r.db.SelectContext(ctx, &races, query, from, to); err != nil {
		return nil, fmt.Errorf("list races opening between: %w", err)
	}
	if err := r.attachCategories(ctx, races); err != nil {
		return nil, err
	}
	return races, nil
}

// ListClosingBetween returns races whose registration may close inside the
// given range, on the same coarse terms as ListOpeningBetween.
func (r *RaceRepository) ListClosingBetween(ctx context.Context, from, to time.Time) ([]models.Race, error) {
	query := fmt.Sprintf(`SELECT %s FROM races
WHERE EXISTS (
    SELECT 1 FROM race_schedules rs
    JOIN race_categories rc ON rc.id = rs.category_id
    WHERE rc.race_id = races.id AND rs.type = 'REGISTRATION' AND rs.end_at BETWEEN $1 AND $2
) OR registration_end_at BETWEEN $1 AND $2
ORDER BY event_start_at ASC`, raceColumns)
	var races []models.Race
	if err := r.db.SelectContext(ctx, &races, query, from, to); err != nil {
		return nil, fmt.Errorf("list races closing between: %w", err)
	}
	if err := r.attachCategories(ctx, races); err != nil {
		return nil, err
	}
	return races, nil
}

// Regions aggregates upcoming races per region.
func (r *RaceRepository) Regions(ctx context.Context, now time.Time) ([]models.RegionCount, error) {
	const query = `SELECT region, COUNT(*) AS count FROM races
WHERE region IS NOT NULL AND event_start_at >= $1
GROUP BY region ORDER BY count DESC, region ASC`
	var counts []models.RegionCount
	if err := r.db.SelectContext(ctx, &counts, query, now); err != nil {
		return nil, fmt.Errorf("aggregate regions: %w", err)
	}
	return counts, nil
}

// Count returns the total number of races.
func (r *RaceRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM races"); err != nil {
		return 0, fmt.Errorf("count races: %w", err)
	}
	return total, nil
}

// Update rewrites the race row and replaces its categories and schedules
// atomically. Passing categories as nil leaves the existing ones untouched.
func (r *RaceRepository) Update(ctx context.Context, race *models.Race) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin race update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	race.UpdatedAt = time.Now().UTC()
	const query = `UPDATE races SET title = :title, title_en = :title_en, description = :description,
event_start_at = :event_start_at, event_time = :event_time, timezone = :timezone,
country = :country, region = :region, city = :city, venue = :venue,
organizer = :organizer, phone = :phone, email = :email, website = :website, general_guide = :general_guide,
is_featured = :is_featured, is_urgent = :is_urgent,
registration_start_at = :registration_start_at, registration_end_at = :registration_end_at,
registration_status = :registration_status, updated_at = :updated_at
WHERE id = :id`
	result, err := tx.NamedExecContext(ctx, query, race)
	if err != nil {
		return fmt.Errorf("update race %s: %w", race.ID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrRaceNotFound
	}

	if race.Categories != nil {
		if err := r.replaceCategories(ctx, tx, race); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit race update: %w", err)
	}
	return nil
}

// Delete removes a race. Categories and schedules cascade in the schema.
func (r *RaceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM races WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete race %s: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrRaceNotFound
	}
	return nil
}

func (r *RaceRepository) replaceCategories(ctx context.Context, tx *sqlx.Tx, race *models.Race) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM race_schedules WHERE category_id IN (SELECT id FROM race_categories WHERE race_id = $1)", race.ID); err != nil {
		return fmt.Errorf("clear race schedules: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM race_categories WHERE race_id = $1", race.ID); err != nil {
		return fmt.Errorf("clear race categories: %w", err)
	}

	now := time.Now().UTC()
	for i := range race.Categories {
		cat := &race.Categories[i]
		if cat.ID == "" {
			cat.ID = uuid.NewString()
		}
		cat.RaceID = race.ID
		cat.CreatedAt = now
		cat.UpdatedAt = now
		const catQuery = `INSERT INTO race_categories (id, race_id, raw_name, canonical_name, distance_km, category_type, status, start_time, created_at, updated_at)
VALUES (:id, :race_id, :raw_name, :canonical_name, :distance_km, :category_type, :status, :start_time, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, catQuery, cat); err != nil {
			return fmt.Errorf("insert race category: %w", err)
		}
		for j := range cat.Schedules {
			sched := &cat.Schedules[j]
			if sched.ID == "" {
				sched.ID = uuid.NewString()
			}
			sched.CategoryID = cat.ID
			sched.CreatedAt = now
			const schedQuery = `INSERT INTO race_schedules (id, category_id, type, start_at, end_at, label, created_at)
VALUES (:id, :category_id, :type, :start_at, :end_at, :label, :created_at)`
			if _, err := tx.NamedExecContext(ctx, schedQuery, sched); err != nil {
				return fmt.Errorf("insert race schedule: %w", err)
			}
		}
	}
	return nil
}

func (r *RaceRepository) attachCategories(ctx context.Context, races []models.Race) error {
	if len(races) == 0 {
		return nil
	}
	ids := make([]string, len(races))
	index := make(map[string]*models.Race, len(races))
	for i := range races {
		ids[i] = races[i].ID
		index[races[i].ID] = &races[i]
	}

	const catQuery = `SELECT id, race_id, raw_name, canonical_name, distance_km, category_type, status, start_time, created_at, updated_at
FROM race_categories WHERE race_id = ANY($1) ORDER BY distance_km DESC NULLS LAST, raw_name ASC`
	var categories []models.RaceCategory
	if err := r.db.SelectContext(ctx, &categories, catQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("load race categories: %w", err)
	}
	if len(categories) == 0 {
		return nil
	}

	catIDs := make([]string, len(categories))
	catIndex := make(map[string]*models.RaceCategory, len(categories))
	for i := range categories {
		catIDs[i] = categories[i].ID
		catIndex[categories[i].ID] = &categories[i]
	}

	const schedQuery = `SELECT id, category_id, type, start_at, end_at, label, created_at
FROM race_schedules WHERE category_id = ANY($1) ORDER BY start_at ASC NULLS LAST`
	var schedules []models.RaceSchedule
	if err := r.db.SelectContext(ctx, &schedules, schedQuery, pq.Array(catIDs)); err != nil {
		return fmt.Errorf("load race schedules: %w", err)
	}
	for _, sched := range schedules {
		if cat, ok := catIndex[sched.CategoryID]; ok {
			cat.Schedules = append(cat.Schedules, sched)
		}
	}
	for i := range categories {
		if race, ok := index[categories[i].RaceID]; ok {
			race.Categories = append(race.Categories, categories[i])
		}
	}
	return nil
}

// distanceBounds maps a distance keyword to an inclusive km range wide
// enough to absorb crawler rounding (42.195 stored as 42.0 and so on).
func distanceBounds(keyword string) (float64, float64, bool) {
	switch strings.ToLower(keyword) {
	case "full":
		return 41.0, 43.0, true
	case "half":
		return 20.0, 22.0, true
	case "10km", "10k":
		return 9.5, 10.5, true
	case "5km", "5k":
		return 4.5, 5.5, true
	default:
		return 0, 0, false
	}
}
