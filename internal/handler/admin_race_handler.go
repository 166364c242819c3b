package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrth-run/mrth-api/internal/dto"
	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/internal/service"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
	"github.com/mrth-run/mrth-api/pkg/response"
)

type adminRaceService interface {
	List(ctx context.Context, query dto.ListRacesQuery) ([]dto.RaceSummary, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.RaceDetail, error)
	Update(ctx context.Context, id string, req dto.UpdateRaceRequest) (*dto.RaceDetail, error)
	Delete(ctx context.Context, id string) error
}

type raceExportService interface {
	Races(ctx context.Context, format string) (*service.ExportResult, error)
}

// AdminRaceHandler serves race management endpoints behind JWT auth.
type AdminRaceHandler struct {
	races   adminRaceService
	exports raceExportService
}

// NewAdminRaceHandler constructs the handler.
func NewAdminRaceHandler(races adminRaceService, exports raceExportService) *AdminRaceHandler {
	return &AdminRaceHandler{races: races, exports: exports}
}

// List godoc
// @Summary List races (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param region query string false "Region filter"
// @Param status query string false "Registration status filter"
// @Param q query string false "Free-text search"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/races [get]
func (h *AdminRaceHandler) List(c *gin.Context) {
	var query dto.ListRacesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	summaries, pagination, err := h.races.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, pagination)
}

// Get godoc
// @Summary Race detail (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Race ID"
// @Success 200 {object} response.Envelope
// @Router /admin/races/{id} [get]
func (h *AdminRaceHandler) Get(c *gin.Context) {
	detail, err := h.races.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update a race
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Race ID"
// @Param request body dto.UpdateRaceRequest true "Race fields"
// @Success 200 {object} response.Envelope
// @Router /admin/races/{id} [put]
func (h *AdminRaceHandler) Update(c *gin.Context) {
	var req dto.UpdateRaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	detail, err := h.races.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete a race
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Race ID"
// @Success 204
// @Router /admin/races/{id} [delete]
func (h *AdminRaceHandler) Delete(c *gin.Context) {
	if err := h.races.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the race catalogue
// @Tags Admin
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "Export format" Enums(csv, pdf)
// @Success 200 {file} binary
// @Router /admin/races/export [get]
func (h *AdminRaceHandler) Export(c *gin.Context) {
	result, err := h.exports.Races(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
