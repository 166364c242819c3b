package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mrth-run/mrth-api/internal/dto"
	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/internal/regwindow"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
	"github.com/mrth-run/mrth-api/pkg/kst"
)

type raceRepository interface {
	List(ctx context.Context, filter models.RaceFilter, now time.Time) ([]models.Race, error)
	GetByID(ctx context.Context, id string) (*models.Race, error)
	ListFeatured(ctx context.Context, now time.Time, limit int) ([]models.Race, error)
	Regions(ctx context.Context, now time.Time) ([]models.RegionCount, error)
	Update(ctx context.Context, race *models.Race) error
	Delete(ctx context.Context, id string) error
}

// RaceService serves public race listings and admin race management. Status
// is always derived from the canonical registration window at the supplied
// clock, never read off stored flags alone.
type RaceService struct {
	repo      raceRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	opts      regwindow.Options
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewRaceService constructs a race service.
func NewRaceService(repo raceRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *RaceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RaceService{
		repo:      repo,
		cache:     cache,
		validator: validate,
		logger:    logger,
		opts:      regwindow.DefaultOptions(),
		cacheTTL:  cacheTTL,
		now:       func() time.Time { return kst.Now() },
	}
}

// List returns filtered, sorted and paginated race summaries. Region,
// distance and free-text filters narrow the query in SQL; status filtering
// and every ordering except "date" depend on the derived window and run in
// memory on the (bounded) future-race set.
func (s *RaceService) List(ctx context.Context, query dto.ListRacesQuery) ([]dto.RaceSummary, *models.Pagination, error) {
	now := s.now()
	filter := models.RaceFilter{
		Region:     query.Region,
		Status:     query.Status,
		Distance:   query.Distance,
		Query:      query.Query,
		FutureOnly: true,
		Sort:       models.RaceSort(query.Sort),
	}

	races, err := s.repo.List(ctx, filter, now)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list races")
	}

	type scored struct {
		race    models.Race
		window  regwindow.Window
		status  regwindow.Status
		summary dto.RaceSummary
	}

	items := make([]scored, 0, len(races))
	for _, race := range races {
		w := regwindow.DeriveWindow(race, s.opts)
		status := regwindow.Classify(w, now, regwindow.CategoryStatuses(race))
		if query.Status != "" && string(status) != query.Status {
			continue
		}
		items = append(items, scored{race: race, window: w, status: status, summary: s.summarize(race, w, status)})
	}

	switch models.RaceSort(query.Sort) {
	case models.SortByRegistration:
		sort.SliceStable(items, func(i, j int) bool {
			si, sj := registrationRank(items[i].status), registrationRank(items[j].status)
			if si != sj {
				return si < sj
			}
			return registrationSortKey(items[i].window, items[i].status).
				Before(registrationSortKey(items[j].window, items[j].status))
		})
	case models.SortByPopular:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].race.IsFeatured != items[j].race.IsFeatured {
				return items[i].race.IsFeatured
			}
			return items[i].race.EventStartAt.Before(items[j].race.EventStartAt)
		})
	default:
		// repo already orders by event date
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	total := len(items)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	summaries := make([]dto.RaceSummary, 0, end-start)
	for _, item := range items[start:end] {
		summaries = append(summaries, item.summary)
	}
	return summaries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns the full race detail with its derived window and status.
func (s *RaceService) Get(ctx context.Context, id string) (*dto.RaceDetail, error) {
	race, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	w := regwindow.DeriveWindow(*race, s.opts)
	status := regwindow.Classify(w, now, regwindow.CategoryStatuses(*race))
	return &dto.RaceDetail{
		Race:       *race,
		EventDate:  kst.FormatDateWithDay(race.EventStartAt),
		Status:     string(status),
		RegStartAt: w.Start,
		RegEndAt:   w.End,
	}, nil
}

// Featured returns the featured race carousel.
func (s *RaceService) Featured(ctx context.Context, limit int) ([]dto.RaceSummary, error) {
	now := s.now()
	races, err := s.repo.ListFeatured(ctx, now, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list featured races")
	}
	summaries := make([]dto.RaceSummary, 0, len(races))
	for _, race := range races {
		w := regwindow.DeriveWindow(race, s.opts)
		status := regwindow.Classify(w, now, regwindow.CategoryStatuses(race))
		summaries = append(summaries, s.summarize(race, w, status))
	}
	return summaries, nil
}

// Regions aggregates upcoming races per region, cached behind Redis.
func (s *RaceService) Regions(ctx context.Context) ([]models.RegionCount, error) {
	var cached []models.RegionCount
	if hit, _ := s.cache.Get(ctx, CacheKeyRegions, &cached); hit {
		return cached, nil
	}

	counts, err := s.repo.Regions(ctx, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate regions")
	}
	if err := s.cache.Set(ctx, CacheKeyRegions, counts, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache regions", zap.Error(err))
	}
	return counts, nil
}

// Update applies an admin race edit and invalidates cached listings.
func (s *RaceService) Update(ctx context.Context, id string, req dto.UpdateRaceRequest) (*dto.RaceDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid race payload")
	}

	race, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyRaceUpdate(race, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, race); err != nil {
		return nil, err
	}

	s.cache.InvalidateRaceListings(ctx)
	return s.Get(ctx, id)
}

// Delete removes a race and invalidates cached listings.
func (s *RaceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateRaceListings(ctx)
	return nil
}

func (s *RaceService) summarize(race models.Race, w regwindow.Window, status regwindow.Status) dto.RaceSummary {
	names := make([]string, 0, len(race.Categories))
	for _, cat := range race.Categories {
		names = append(names, cat.DisplayName())
	}
	return dto.RaceSummary{
		ID:         race.ID,
		Title:      race.Title,
		EventDate:  kst.FormatDateWithDay(race.EventStartAt),
		EventAt:    race.EventStartAt,
		Region:     race.Region,
		City:       race.City,
		Venue:      race.Venue,
		Categories: names,
		Status:     string(status),
		RegStartAt: w.Start,
		RegEndAt:   w.End,
		IsFeatured: race.IsFeatured,
		IsUrgent:   race.IsUrgent,
	}
}

// registrationRank orders open before upcoming before closed.
func registrationRank(status regwindow.Status) int {
	switch status {
	case regwindow.StatusOpen:
		return 0
	case regwindow.StatusUpcoming:
		return 1
	default:
		return 2
	}
}

// registrationSortKey picks the secondary key within a rank: open races by
// soonest close, upcoming by soonest open. Missing ends sort last.
func registrationSortKey(w regwindow.Window, status regwindow.Status) time.Time {
	farFuture := time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	switch status {
	case regwindow.StatusOpen:
		if w.End != nil {
			return *w.End
		}
	case regwindow.StatusUpcoming:
		if w.Start != nil {
			return *w.Start
		}
	}
	return farFuture
}

func applyRaceUpdate(race *models.Race, req dto.UpdateRaceRequest) error {
	eventAt, err := parseEventTime(req.EventStartAt)
	if err != nil {
		return err
	}

	race.Title = req.Title
	race.TitleEn = req.TitleEn
	race.Description = req.Description
	race.EventStartAt = eventAt
	race.EventTime = req.EventTime
	race.Country = req.Country
	race.Region = req.Region
	race.City = req.City
	race.Venue = req.Venue
	race.Organizer = req.Organizer
	race.Phone = req.Phone
	race.Email = req.Email
	race.Website = req.Website
	race.GeneralGuide = req.GeneralGuide
	race.IsFeatured = req.IsFeatured
	race.IsUrgent = req.IsUrgent

	if race.RegistrationStartAt, err = parseOptionalTime(req.RegistrationStartAt); err != nil {
		return err
	}
	if race.RegistrationEndAt, err = parseOptionalTime(req.RegistrationEndAt); err != nil {
		return err
	}
	race.RegistrationStatus = nil
	if req.RegistrationStatus != nil {
		status := models.RegistrationStatus(*req.RegistrationStatus)
		switch status {
		case models.RegistrationOpen, models.RegistrationClosed, models.RegistrationUnknown:
			race.RegistrationStatus = &status
		default:
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown registration status %q", *req.RegistrationStatus))
		}
	}

	if req.Categories == nil {
		race.Categories = nil // leave stored categories untouched
		return nil
	}
	categories := make([]models.RaceCategory, 0, len(req.Categories))
	for _, catReq := range req.Categories {
		cat := models.RaceCategory{
			RawName:       catReq.RawName,
			CanonicalName: catReq.CanonicalName,
			DistanceKm:    catReq.DistanceKm,
			CategoryType:  catReq.CategoryType,
			StartTime:     catReq.StartTime,
		}
		if catReq.Status != nil {
			status := models.CategoryStatus(*catReq.Status)
			switch status {
			case models.CategoryUpcoming, models.CategoryOpen, models.CategoryClosed, models.CategoryCancelled:
				cat.Status = &status
			default:
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category status %q", *catReq.Status))
			}
		}
		for _, schedReq := range catReq.Schedules {
			sched := models.RaceSchedule{Type: models.ScheduleType(schedReq.Type), Label: schedReq.Label}
			if sched.StartAt, err = parseOptionalTime(schedReq.StartAt); err != nil {
				return err
			}
			if sched.EndAt, err = parseOptionalTime(schedReq.EndAt); err != nil {
				return err
			}
			cat.Schedules = append(cat.Schedules, sched)
		}
		categories = append(categories, cat)
	}
	race.Categories = categories
	return nil
}

// parseEventTime accepts RFC3339 or a bare date, the latter interpreted at
// KST civil midnight. Anything else is rejected up front.
func parseEventTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, kst.Zone); err == nil {
		return t, nil
	}
	return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid timestamp %q, expected RFC3339 or YYYY-MM-DD", raw))
}

func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := parseEventTime(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
