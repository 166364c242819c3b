package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrth-run/mrth-api/internal/dto"
	"github.com/mrth-run/mrth-api/internal/models"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
	"github.com/mrth-run/mrth-api/pkg/response"
)

type rankingService interface {
	Upload(ctx context.Context, nickname string, header *multipart.FileHeader) (*dto.UploadRunRecordResponse, error)
	Get(ctx context.Context, id string) (*dto.RunRecordView, error)
	Confirm(ctx context.Context, req dto.ConfirmRunRecordRequest) (*models.RunRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]dto.RankingEntry, error)
	OpenScreenshot(token string) (io.ReadCloser, string, error)
}

// RankingHandler serves the run-record upload and leaderboard endpoints.
type RankingHandler struct {
	service rankingService
}

// NewRankingHandler constructs the handler.
func NewRankingHandler(service rankingService) *RankingHandler {
	return &RankingHandler{service: service}
}

// Upload godoc
// @Summary Upload a run screenshot
// @Tags Ranking
// @Accept multipart/form-data
// @Produce json
// @Param nickname formData string true "Runner nickname"
// @Param screenshot formData file true "Run record screenshot"
// @Success 202 {object} response.Envelope
// @Router /ranking/upload [post]
func (h *RankingHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("screenshot")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "screenshot file is required"))
		return
	}
	result, err := h.service.Upload(c.Request.Context(), c.PostForm("nickname"), header)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}

// Get godoc
// @Summary Run record status
// @Tags Ranking
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /ranking/records/{id} [get]
func (h *RankingHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Confirm godoc
// @Summary Confirm extracted metrics
// @Tags Ranking
// @Accept json
// @Produce json
// @Param request body dto.ConfirmRunRecordRequest true "Confirmation payload"
// @Success 200 {object} response.Envelope
// @Router /ranking/confirm [post]
func (h *RankingHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmRunRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	record, err := h.service.Confirm(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Leaderboard godoc
// @Summary Confirmed-record leaderboard
// @Tags Ranking
// @Produce json
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /ranking/leaderboard [get]
func (h *RankingHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.service.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Screenshot godoc
// @Summary Download a screenshot via signed token
// @Tags Ranking
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /ranking/screenshots/{token} [get]
func (h *RankingHandler) Screenshot(c *gin.Context) {
	file, contentType, err := h.service.OpenScreenshot(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
