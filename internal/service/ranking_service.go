package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrth-run/mrth-api/internal/dto"
	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/internal/ocr"
	"github.com/mrth-run/mrth-api/pkg/config"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
	"github.com/mrth-run/mrth-api/pkg/jobs"
	"github.com/mrth-run/mrth-api/pkg/storage"
)

type runRecordRepository interface {
	Create(ctx context.Context, record *models.RunRecord) error
	GetByID(ctx context.Context, id string) (*models.RunRecord, error)
	SaveExtraction(ctx context.Context, record *models.RunRecord) error
	Confirm(ctx context.Context, record *models.RunRecord) error
	ListConfirmed(ctx context.Context, limit int) ([]models.RunRecord, error)
}

// ScreenshotStore persists and reads back uploaded screenshots.
type ScreenshotStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (io.ReadCloser, error)
}

// localScreenshotStore adapts storage.LocalStorage, whose Open returns a
// concrete *os.File, to the narrower interface used here.
type localScreenshotStore struct {
	inner *storage.LocalStorage
}

func (s localScreenshotStore) SaveStream(filename string, r io.Reader) (string, error) {
	return s.inner.SaveStream(filename, r)
}

func (s localScreenshotStore) Open(filename string) (io.ReadCloser, error) {
	return s.inner.Open(filename)
}

// NewScreenshotStore wraps a LocalStorage for ranking uploads.
func NewScreenshotStore(inner *storage.LocalStorage) ScreenshotStore {
	return localScreenshotStore{inner: inner}
}

// RankingService handles screenshot uploads, background OCR extraction and
// the confirmed-record leaderboard.
type RankingService struct {
	repo      runRecordRepository
	store     ScreenshotStore
	signer    *storage.SignedURLSigner
	extractor ocr.TextExtractor
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.RankingConfig
	queue     *jobs.Queue
}

// NewRankingService constructs a ranking service. Call StartWorkers before
// serving uploads and StopWorkers on shutdown.
func NewRankingService(repo runRecordRepository, store ScreenshotStore, signer *storage.SignedURLSigner, extractor ocr.TextExtractor, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg config.RankingConfig) *RankingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RankingService{
		repo:      repo,
		store:     store,
		signer:    signer,
		extractor: extractor,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
	s.queue = jobs.NewQueue("ocr-extraction", s.handleExtractionJob, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// StartWorkers spins up the OCR worker pool.
func (s *RankingService) StartWorkers(ctx context.Context) {
	s.queue.Start(ctx)
}

// StopWorkers drains the queue and stops the workers.
func (s *RankingService) StopWorkers() {
	s.queue.Stop()
}

// Upload stores a screenshot, creates a PENDING record and queues the OCR
// extraction job.
func (s *RankingService) Upload(ctx context.Context, nickname string, header *multipart.FileHeader) (*dto.UploadRunRecordResponse, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.ErrFeatureDisabled
	}
	if strings.TrimSpace(nickname) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nickname is required")
	}
	if header == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "screenshot file is required")
	}
	if s.cfg.MaxFileSizeBytes > 0 && header.Size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.ErrPayloadTooLarge
	}
	if !s.mimeAllowed(header.Header.Get("Content-Type")) {
		return nil, appErrors.ErrUnsupportedMedia
	}

	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload")
	}
	defer file.Close() //nolint:errcheck

	recordID := uuid.NewString()
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".png"
	}
	relPath := filepath.Join("screenshots", recordID+ext)
	if _, err := s.store.SaveStream(relPath, file); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store screenshot")
	}

	record := &models.RunRecord{
		ID:             recordID,
		Nickname:       strings.TrimSpace(nickname),
		ScreenshotPath: relPath,
		Status:         models.RunRecordPending,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create run record")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: recordID, Type: "ocr", Payload: recordID}); err != nil {
		s.logger.Warn("failed to enqueue ocr job", zap.String("record_id", recordID), zap.Error(err))
	}

	return &dto.UploadRunRecordResponse{RecordID: recordID, Status: string(models.RunRecordPending)}, nil
}

// Get returns one record with a short-lived signed screenshot URL.
func (s *RankingService) Get(ctx context.Context, id string) (*dto.RunRecordView, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &dto.RunRecordView{RunRecord: *record}
	if s.signer != nil {
		if token, _, err := s.signer.Generate(record.ID, record.ScreenshotPath); err == nil {
			view.ScreenshotURL = "/api/v1/ranking/screenshots/" + token
		}
	}
	return view, nil
}

// OpenScreenshot validates a signed token and streams the referenced image.
// The returned content type is inferred from the stored file extension.
func (s *RankingService) OpenScreenshot(token string) (io.ReadCloser, string, error) {
	if s.signer == nil {
		return nil, "", appErrors.ErrNotFound
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired screenshot token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "screenshot not found")
	}
	contentType := mime.TypeByExtension(filepath.Ext(relPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return file, contentType, nil
}

// Confirm finalises an extracted record with user-approved figures.
func (s *RankingService) Confirm(ctx context.Context, req dto.ConfirmRunRecordRequest) (*models.RunRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirm payload")
	}

	record, err := s.repo.GetByID(ctx, req.RecordID)
	if err != nil {
		return nil, err
	}
	if record.Status != models.RunRecordExtracted {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("record is %s, only EXTRACTED records can be confirmed", record.Status))
	}

	record.Nickname = req.Nickname
	if req.DistanceKm != nil {
		record.DistanceKm = req.DistanceKm
	}
	if req.PaceSeconds != nil {
		record.PaceSeconds = req.PaceSeconds
	}
	if req.DurationSeconds != nil {
		record.DurationSeconds = req.DurationSeconds
	}
	if req.Calories != nil {
		record.Calories = req.Calories
	}
	if err := s.repo.Confirm(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Leaderboard returns ranked confirmed records.
func (s *RankingService) Leaderboard(ctx context.Context, limit int) ([]dto.RankingEntry, error) {
	records, err := s.repo.ListConfirmed(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leaderboard")
	}
	entries := make([]dto.RankingEntry, 0, len(records))
	for i, record := range records {
		entries = append(entries, dto.RankingEntry{
			Rank:            i + 1,
			Nickname:        record.Nickname,
			DistanceKm:      record.DistanceKm,
			PaceSeconds:     record.PaceSeconds,
			DurationSeconds: record.DurationSeconds,
			Calories:        record.Calories,
		})
	}
	return entries, nil
}

// handleExtractionJob runs in the worker pool: read the screenshot, call
// the vision API, parse metrics and persist the outcome.
func (s *RankingService) handleExtractionJob(ctx context.Context, job jobs.Job) error {
	recordID, _ := job.Payload.(string)
	if recordID == "" {
		recordID = job.ID
	}

	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("load record for extraction: %w", err)
	}

	file, err := s.store.Open(record.ScreenshotPath)
	if err != nil {
		return s.failExtraction(ctx, record, fmt.Errorf("open screenshot: %w", err))
	}
	reader := io.Reader(file)
	if s.cfg.MaxFileSizeBytes > 0 {
		reader = io.LimitReader(file, s.cfg.MaxFileSizeBytes+1)
	}
	image, err := io.ReadAll(reader)
	file.Close() //nolint:errcheck
	if err != nil {
		return s.failExtraction(ctx, record, fmt.Errorf("read screenshot: %w", err))
	}

	text, err := s.extractor.ExtractText(ctx, image)
	if err != nil {
		return s.failExtraction(ctx, record, fmt.Errorf("extract text: %w", err))
	}

	metrics := ocr.Parse(text)
	record.RawText = &text
	if metrics.Empty() {
		record.Status = models.RunRecordFailed
		if err := s.repo.SaveExtraction(ctx, record); err != nil {
			return err
		}
		s.metrics.RecordOCRJob("empty")
		return nil
	}

	record.Status = models.RunRecordExtracted
	record.DistanceKm = metrics.DistanceKm
	record.PaceSeconds = metrics.PaceSeconds
	record.DurationSeconds = metrics.DurationSeconds
	record.Calories = metrics.Calories
	if err := s.repo.SaveExtraction(ctx, record); err != nil {
		return err
	}
	s.metrics.RecordOCRJob("extracted")
	return nil
}

// failExtraction marks the record FAILED and reports the cause for retry
// accounting. Returning the error lets the queue retry transient failures;
// the record flips back on a later success.
func (s *RankingService) failExtraction(ctx context.Context, record *models.RunRecord, cause error) error {
	record.Status = models.RunRecordFailed
	if saveErr := s.repo.SaveExtraction(ctx, record); saveErr != nil {
		s.logger.Error("failed to mark record failed", zap.String("record_id", record.ID), zap.Error(saveErr))
	}
	s.metrics.RecordOCRJob("failed")
	return cause
}

func (s *RankingService) mimeAllowed(contentType string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return strings.HasPrefix(contentType, "image/")
	}
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}
