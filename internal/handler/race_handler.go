package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrth-run/mrth-api/internal/dto"
	"github.com/mrth-run/mrth-api/internal/models"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
	"github.com/mrth-run/mrth-api/pkg/response"
)

type raceService interface {
	List(ctx context.Context, query dto.ListRacesQuery) ([]dto.RaceSummary, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.RaceDetail, error)
	Featured(ctx context.Context, limit int) ([]dto.RaceSummary, error)
	Regions(ctx context.Context) ([]models.RegionCount, error)
}

// RaceHandler exposes the public race endpoints.
type RaceHandler struct {
	service raceService
}

// NewRaceHandler constructs the handler.
func NewRaceHandler(service raceService) *RaceHandler {
	return &RaceHandler{service: service}
}

// List godoc
// @Summary List races
// @Tags Races
// @Produce json
// @Param region query string false "Region filter"
// @Param status query string false "Registration status filter" Enums(upcoming, open, closed)
// @Param distance query string false "Distance filter" Enums(full, half, 10km, 5km)
// @Param q query string false "Free-text search"
// @Param sort query string false "Sort order" Enums(date, registration, popular)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /races [get]
func (h *RaceHandler) List(c *gin.Context) {
	var query dto.ListRacesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	if query.Status != "" && query.Status != "upcoming" && query.Status != "open" && query.Status != "closed" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be upcoming, open or closed"))
		return
	}

	summaries, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, pagination)
}

// Get godoc
// @Summary Race detail
// @Tags Races
// @Produce json
// @Param id path string true "Race ID"
// @Success 200 {object} response.Envelope
// @Router /races/{id} [get]
func (h *RaceHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Featured godoc
// @Summary Featured races
// @Tags Races
// @Produce json
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /races/featured [get]
func (h *RaceHandler) Featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	summaries, err := h.service.Featured(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// Regions godoc
// @Summary Region aggregates
// @Tags Races
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /regions [get]
func (h *RaceHandler) Regions(c *gin.Context) {
	counts, err := h.service.Regions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}
