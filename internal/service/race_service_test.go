package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrth-run/mrth-api/internal/dto"
	"github.com/mrth-run/mrth-api/internal/models"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
	"github.com/mrth-run/mrth-api/pkg/kst"
)

type stubRaceRepo struct {
	races   []models.Race
	updated *models.Race
	deleted string
}

func (s *stubRaceRepo) List(_ context.Context, _ models.RaceFilter, _ time.Time) ([]models.Race, error) {
	return s.races, nil
}

func (s *stubRaceRepo) GetByID(_ context.Context, id string) (*models.Race, error) {
	for i := range s.races {
		if s.races[i].ID == id {
			race := s.races[i]
			return &race, nil
		}
	}
	return nil, appErrors.ErrRaceNotFound
}

func (s *stubRaceRepo) ListFeatured(_ context.Context, _ time.Time, _ int) ([]models.Race, error) {
	var featured []models.Race
	for _, race := range s.races {
		if race.IsFeatured {
			featured = append(featured, race)
		}
	}
	return featured, nil
}

func (s *stubRaceRepo) Regions(_ context.Context, _ time.Time) ([]models.RegionCount, error) {
	return []models.RegionCount{{Region: "서울", Count: 2}}, nil
}

func (s *stubRaceRepo) Update(_ context.Context, race *models.Race) error {
	s.updated = race
	return nil
}

func (s *stubRaceRepo) Delete(_ context.Context, id string) error {
	s.deleted = id
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }

func flatRace(id string, eventAt time.Time, regStart, regEnd *time.Time) models.Race {
	return models.Race{
		ID:                  id,
		Title:               id,
		EventStartAt:        eventAt,
		RegistrationStartAt: regStart,
		RegistrationEndAt:   regEnd,
	}
}

func newTestRaceService(repo *stubRaceRepo, now time.Time) *RaceService {
	svc := NewRaceService(repo, NewCacheService(nil, nil, 0, nil, false), nil, nil, 0)
	svc.now = func() time.Time { return now }
	return svc
}

func TestRaceServiceListFiltersByDerivedStatus(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, kst.Zone)
	repo := &stubRaceRepo{races: []models.Race{
		flatRace("open", now.AddDate(0, 2, 0), timePtr(now.AddDate(0, 0, -5)), timePtr(now.AddDate(0, 0, 5))),
		flatRace("upcoming", now.AddDate(0, 3, 0), timePtr(now.AddDate(0, 0, 10)), timePtr(now.AddDate(0, 0, 20))),
		flatRace("closed", now.AddDate(0, 1, 0), timePtr(now.AddDate(0, 0, -20)), timePtr(now.AddDate(0, 0, -10))),
	}}
	svc := newTestRaceService(repo, now)

	summaries, pagination, err := svc.List(context.Background(), dto.ListRacesQuery{Status: "open"})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "open", summaries[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestRaceServiceListRegistrationSortOrdersOpenFirst(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, kst.Zone)
	repo := &stubRaceRepo{races: []models.Race{
		flatRace("upcoming-late", now.AddDate(0, 3, 0), timePtr(now.AddDate(0, 0, 20)), nil),
		flatRace("open-closing-soon", now.AddDate(0, 2, 0), timePtr(now.AddDate(0, 0, -5)), timePtr(now.AddDate(0, 0, 2))),
		flatRace("upcoming-soon", now.AddDate(0, 3, 0), timePtr(now.AddDate(0, 0, 3)), nil),
		flatRace("open-closing-later", now.AddDate(0, 2, 0), timePtr(now.AddDate(0, 0, -5)), timePtr(now.AddDate(0, 0, 9))),
		flatRace("closed", now.AddDate(0, 1, 0), timePtr(now.AddDate(0, 0, -20)), timePtr(now.AddDate(0, 0, -10))),
	}}
	svc := newTestRaceService(repo, now)

	summaries, _, err := svc.List(context.Background(), dto.ListRacesQuery{Sort: "registration"})
	require.NoError(t, err)
	require.Len(t, summaries, 5)
	assert.Equal(t, "open-closing-soon", summaries[0].ID)
	assert.Equal(t, "open-closing-later", summaries[1].ID)
	assert.Equal(t, "upcoming-soon", summaries[2].ID)
	assert.Equal(t, "upcoming-late", summaries[3].ID)
	assert.Equal(t, "closed", summaries[4].ID)
}

func TestRaceServiceListPaginates(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, kst.Zone)
	repo := &stubRaceRepo{}
	for i := 0; i < 25; i++ {
		repo.races = append(repo.races, flatRace(string(rune('a'+i)), now.AddDate(0, 1, i), nil, nil))
	}
	svc := newTestRaceService(repo, now)

	summaries, pagination, err := svc.List(context.Background(), dto.ListRacesQuery{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, summaries, 10)
	assert.Equal(t, 25, pagination.TotalCount)
	assert.Equal(t, 2, pagination.Page)
}

func TestRaceServiceGetDerivesWindow(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, kst.Zone)
	start := now.AddDate(0, 0, -1)
	end := now.AddDate(0, 0, 6)
	repo := &stubRaceRepo{races: []models.Race{flatRace("race-1", now.AddDate(0, 2, 0), timePtr(start), timePtr(end))}}
	svc := newTestRaceService(repo, now)

	detail, err := svc.Get(context.Background(), "race-1")
	require.NoError(t, err)
	assert.Equal(t, "open", detail.Status)
	require.NotNil(t, detail.RegStartAt)
	assert.True(t, detail.RegStartAt.Equal(start))
}

func TestRaceServiceUpdateRejectsBadTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, kst.Zone)
	repo := &stubRaceRepo{races: []models.Race{flatRace("race-1", now, nil, nil)}}
	svc := newTestRaceService(repo, now)

	_, err := svc.Update(context.Background(), "race-1", dto.UpdateRaceRequest{
		Title:        "Updated",
		EventStartAt: "not-a-date",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Nil(t, repo.updated)
}

func TestRaceServiceUpdateParsesDateOnlyAsKSTMidnight(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, kst.Zone)
	repo := &stubRaceRepo{races: []models.Race{flatRace("race-1", now, nil, nil)}}
	svc := newTestRaceService(repo, now)

	_, err := svc.Update(context.Background(), "race-1", dto.UpdateRaceRequest{
		Title:        "Updated",
		EventStartAt: "2025-05-18",
	})
	require.NoError(t, err)
	require.NotNil(t, repo.updated)
	want := time.Date(2025, 5, 18, 0, 0, 0, 0, kst.Zone)
	assert.True(t, repo.updated.EventStartAt.Equal(want))
}
