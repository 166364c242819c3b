package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/internal/regwindow"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
	"github.com/mrth-run/mrth-api/pkg/kst"
)

type dashboardRaceRepository interface {
	List(ctx context.Context, filter models.RaceFilter, now time.Time) ([]models.Race, error)
	Count(ctx context.Context) (int, error)
}

type dashboardPostRepository interface {
	CountPublished(ctx context.Context) (int, error)
}

type dashboardRunRecordRepository interface {
	CountByStatus(ctx context.Context, status models.RunRecordStatus) (int, error)
}

// DashboardService composes the admin landing summary.
type DashboardService struct {
	races      dashboardRaceRepository
	posts      dashboardPostRepository
	runRecords dashboardRunRecordRepository
	logger     *zap.Logger
	opts       regwindow.Options
	now        func() time.Time
}

// NewDashboardService constructs a dashboard service.
func NewDashboardService(races dashboardRaceRepository, posts dashboardPostRepository, runRecords dashboardRunRecordRepository, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		races:      races,
		posts:      posts,
		runRecords: runRecords,
		logger:     logger,
		opts:       regwindow.DefaultOptions(),
		now:        func() time.Time { return kst.Now() },
	}
}

// Summary counts races per derived status plus content and leaderboard
// backlog figures.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	now := s.now()

	total, err := s.races.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count races")
	}

	future, err := s.races.List(ctx, models.RaceFilter{FutureOnly: true}, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load races")
	}

	summary := &models.DashboardSummary{TotalRaces: total, GeneratedAt: now}
	for _, race := range future {
		switch regwindow.ClassifyRace(race, now, s.opts) {
		case regwindow.StatusOpen:
			summary.OpenRaces++
		case regwindow.StatusUpcoming:
			summary.UpcomingRaces++
		default:
			summary.ClosedRaces++
		}
	}

	if summary.PublishedPosts, err = s.posts.CountPublished(ctx); err != nil {
		s.logger.Warn("failed to count published posts", zap.Error(err))
	}
	if summary.PendingRunRecords, err = s.runRecords.CountByStatus(ctx, models.RunRecordPending); err != nil {
		s.logger.Warn("failed to count pending run records", zap.Error(err))
	}

	return summary, nil
}
