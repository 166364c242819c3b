package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/internal/regwindow"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
	"github.com/mrth-run/mrth-api/pkg/export"
	"github.com/mrth-run/mrth-api/pkg/kst"
)

type exportRaceRepository interface {
	List(ctx context.Context, filter models.RaceFilter, now time.Time) ([]models.Race, error)
}

// ExportResult carries rendered export bytes plus response metadata.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the admin race table as CSV or PDF.
type ExportService struct {
	repo    exportRaceRepository
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
	enabled bool
	opts    regwindow.Options
	now     func() time.Time
}

// NewExportService constructs an export service.
func NewExportService(repo exportRaceRepository, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:    repo,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		enabled: enabled,
		opts:    regwindow.DefaultOptions(),
		now:     func() time.Time { return kst.Now() },
	}
}

var exportHeaders = []string{"Title", "Event Date", "Region", "City", "Categories", "Registration Start", "Registration End", "Status"}

// Races renders every race, past ones included, in the requested format.
func (s *ExportService) Races(ctx context.Context, format string) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.ErrFeatureDisabled
	}

	now := s.now()
	races, err := s.repo.List(ctx, models.RaceFilter{}, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load races for export")
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(races))}
	for _, race := range races {
		w := regwindow.DeriveWindow(race, s.opts)
		status := regwindow.Classify(w, now, regwindow.CategoryStatuses(race))

		names := make([]string, 0, len(race.Categories))
		for _, cat := range race.Categories {
			names = append(names, cat.DisplayName())
		}

		row := map[string]string{
			"Title":      race.Title,
			"Event Date": kst.FormatDateDot(race.EventStartAt),
			"Categories": strings.Join(names, ", "),
			"Status":     string(status),
		}
		if race.Region != nil {
			row["Region"] = *race.Region
		}
		if race.City != nil {
			row["City"] = *race.City
		}
		if w.Start != nil {
			row["Registration Start"] = kst.FormatDateDot(*w.Start)
		}
		if w.End != nil {
			row["Registration End"] = kst.FormatDateDot(*w.End)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	stamp := kst.FormatDateKey(now)
	switch strings.ToLower(format) {
	case "csv", "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("races-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case "pdf":
		data, err := s.pdf.Render(dataset, "Race Registrations")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("races-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
