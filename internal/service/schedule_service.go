package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mrth-run/mrth-api/internal/dto"
	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/internal/regwindow"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
	"github.com/mrth-run/mrth-api/pkg/kst"
)

type scheduleRaceRepository interface {
	ListOpeningBetween(ctx context.Context, from, to time.Time) ([]models.Race, error)
	ListClosingBetween(ctx context.Context, from, to time.Time) ([]models.Race, error)
}

// ScheduleService builds the weekly registration timeline and the urgent
// closing-soon list. All calendar math runs in fixed KST.
type ScheduleService struct {
	repo        scheduleRaceRepository
	logger      *zap.Logger
	opts        regwindow.Options
	urgentHours int
	now         func() time.Time
}

// NewScheduleService constructs a schedule service.
func NewScheduleService(repo scheduleRaceRepository, logger *zap.Logger, urgentHours int) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if urgentHours <= 0 {
		urgentHours = 24
	}
	return &ScheduleService{
		repo:        repo,
		logger:      logger,
		opts:        regwindow.DefaultOptions(),
		urgentHours: urgentHours,
		now:         func() time.Time { return kst.Now() },
	}
}

// Weekly returns the seven-day registration timeline for the week holding
// the given anchor date, or the current week when weekParam is empty. The
// anchor accepts YYYY-MM-DD only; anything else fails fast.
func (s *ScheduleService) Weekly(ctx context.Context, weekParam string) (*dto.WeeklyScheduleResponse, error) {
	now := s.now()
	anchor := now
	if weekParam != "" {
		parsed, err := time.ParseInLocation("2006-01-02", weekParam, kst.Zone)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid week %q, expected YYYY-MM-DD", weekParam))
		}
		anchor = parsed
	}

	weekStart, weekEnd := kst.WeekRange(anchor)
	races, err := s.repo.ListOpeningBetween(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly races")
	}

	dates := kst.DatesInRange(weekStart, weekEnd)
	buckets := regwindow.BucketByOpeningDay(races, dates, now, s.opts)

	days := make([]dto.ScheduleDay, 0, len(buckets))
	for _, bucket := range buckets {
		entries := make([]dto.ScheduleEntry, 0, len(bucket.Entries))
		for _, entry := range bucket.Entries {
			entries = append(entries, dto.ScheduleEntry{
				RaceID:    entry.Race.ID,
				Title:     entry.Race.Title,
				Region:    entry.Race.Region,
				EventDate: kst.FormatDateShort(entry.Race.EventStartAt),
				Time:      entry.TimeLabel,
				Status:    string(entry.Status),
			})
		}
		days = append(days, dto.ScheduleDay{
			Date:       kst.FormatDateKey(bucket.Date),
			Label:      kst.FormatDateWithDay(bucket.Date),
			IsPast:     bucket.IsPast,
			IsToday:    bucket.IsToday,
			IsTomorrow: bucket.IsTomorrow,
			OpenCount:  bucket.OpenCount,
			Entries:    entries,
		})
	}

	return &dto.WeeklyScheduleResponse{
		WeekStart:   kst.FormatDateKey(weekStart),
		WeekEnd:     kst.FormatDateKey(weekEnd),
		CurrentTime: kst.FormatCurrentTimeKorean(now),
		Days:        days,
	}, nil
}

// Urgent lists races whose derived registration window closes within the
// configured horizon and is still open right now, soonest deadline first.
func (s *ScheduleService) Urgent(ctx context.Context) (*dto.UrgentScheduleResponse, error) {
	now := s.now()
	horizon := now.Add(time.Duration(s.urgentHours) * time.Hour)

	races, err := s.repo.ListClosingBetween(ctx, now, horizon)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load urgent races")
	}

	urgent := make([]dto.UrgentRace, 0, len(races))
	for _, race := range races {
		w := regwindow.DeriveWindow(race, s.opts)
		if w.End == nil || w.End.Before(now) || w.End.After(horizon) {
			continue
		}
		if regwindow.Classify(w, now, regwindow.CategoryStatuses(race)) != regwindow.StatusOpen {
			continue
		}
		urgent = append(urgent, dto.UrgentRace{
			RaceID:     race.ID,
			Title:      race.Title,
			Region:     race.Region,
			EventDate:  kst.FormatDateDot(race.EventStartAt),
			ClosesAt:   *w.End,
			ClosesIn:   formatCountdown(w.End.Sub(now)),
			RegStartAt: w.Start,
		})
	}

	// Prefilter order is by event date; deadlines drive this page.
	sort.SliceStable(urgent, func(i, j int) bool {
		return urgent[i].ClosesAt.Before(urgent[j].ClosesAt)
	})

	return &dto.UrgentScheduleResponse{
		CurrentTime: kst.FormatCurrentTimeKorean(now),
		WithinHours: s.urgentHours,
		Races:       urgent,
	}, nil
}

// formatCountdown renders a remaining duration as "N시간 M분".
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%d시간 %d분", hours, minutes)
	}
	return fmt.Sprintf("%d분", minutes)
}
