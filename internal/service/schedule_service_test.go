package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrth-run/mrth-api/internal/models"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
	"github.com/mrth-run/mrth-api/pkg/kst"
)

type stubScheduleRepo struct {
	opening []models.Race
	closing []models.Race
}

func (s *stubScheduleRepo) ListOpeningBetween(_ context.Context, _, _ time.Time) ([]models.Race, error) {
	return s.opening, nil
}

func (s *stubScheduleRepo) ListClosingBetween(_ context.Context, _, _ time.Time) ([]models.Race, error) {
	return s.closing, nil
}

func newTestScheduleService(repo *stubScheduleRepo, now time.Time) *ScheduleService {
	svc := NewScheduleService(repo, nil, 24)
	svc.now = func() time.Time { return now }
	return svc
}

func TestScheduleServiceWeeklyBucketsMondayToSunday(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, kst.Zone) // Wednesday
	monday := time.Date(2025, 3, 10, 10, 0, 0, 0, kst.Zone)

	repo := &stubScheduleRepo{opening: []models.Race{
		flatRace("monday-race", now.AddDate(0, 2, 0), timePtr(monday), timePtr(monday.AddDate(0, 0, 14))),
	}}
	svc := newTestScheduleService(repo, now)

	resp, err := svc.Weekly(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, resp.Days, 7)
	assert.Equal(t, "2025-03-10", resp.WeekStart)
	assert.Equal(t, "2025-03-16", resp.WeekEnd)

	require.Len(t, resp.Days[0].Entries, 1)
	assert.Equal(t, "monday-race", resp.Days[0].Entries[0].Title)
	assert.Equal(t, "10:00", resp.Days[0].Entries[0].Time)
	assert.True(t, resp.Days[2].IsToday)
	assert.True(t, resp.Days[3].IsTomorrow)
}

func TestScheduleServiceWeeklyRejectsBadAnchor(t *testing.T) {
	svc := newTestScheduleService(&stubScheduleRepo{}, time.Date(2025, 3, 12, 9, 0, 0, 0, kst.Zone))

	_, err := svc.Weekly(context.Background(), "12-03-2025")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceWeeklyExplicitAnchorSelectsThatWeek(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, kst.Zone)
	svc := newTestScheduleService(&stubScheduleRepo{}, now)

	resp, err := svc.Weekly(context.Background(), "2025-03-23") // a Sunday
	require.NoError(t, err)
	assert.Equal(t, "2025-03-17", resp.WeekStart)
	assert.Equal(t, "2025-03-23", resp.WeekEnd)
}

func TestScheduleServiceUrgentKeepsOnlyOpenClosingSoon(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, kst.Zone)
	repo := &stubScheduleRepo{closing: []models.Race{
		flatRace("closes-in-2h", now.AddDate(0, 1, 0), timePtr(now.AddDate(0, 0, -10)), timePtr(now.Add(2*time.Hour))),
		flatRace("closes-in-20h", now.AddDate(0, 1, 0), timePtr(now.AddDate(0, 0, -10)), timePtr(now.Add(20*time.Hour))),
		flatRace("already-closed", now.AddDate(0, 1, 0), timePtr(now.AddDate(0, 0, -10)), timePtr(now.Add(-time.Hour))),
		flatRace("not-yet-open", now.AddDate(0, 1, 0), timePtr(now.Add(2*time.Hour)), timePtr(now.Add(10*time.Hour))),
	}}
	svc := newTestScheduleService(repo, now)

	resp, err := svc.Urgent(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Races, 2)
	assert.Equal(t, "closes-in-2h", resp.Races[0].Title)
	assert.Equal(t, "closes-in-20h", resp.Races[1].Title)
	assert.Equal(t, "2시간 0분", resp.Races[0].ClosesIn)
}
