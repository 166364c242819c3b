package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrth-run/mrth-api/internal/dto"
	"github.com/mrth-run/mrth-api/pkg/response"
)

type scheduleService interface {
	Weekly(ctx context.Context, weekParam string) (*dto.WeeklyScheduleResponse, error)
	Urgent(ctx context.Context) (*dto.UrgentScheduleResponse, error)
}

// ScheduleHandler serves the registration-opening calendar views.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// Weekly godoc
// @Summary Weekly registration timeline
// @Tags Schedule
// @Produce json
// @Param week query string false "Anchor date (YYYY-MM-DD), defaults to the current week"
// @Success 200 {object} response.Envelope
// @Router /schedule/weekly [get]
func (h *ScheduleHandler) Weekly(c *gin.Context) {
	week, err := h.service.Weekly(c.Request.Context(), c.Query("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// Urgent godoc
// @Summary Races closing soon
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/urgent [get]
func (h *ScheduleHandler) Urgent(c *gin.Context) {
	urgent, err := h.service.Urgent(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, urgent, nil)
}
