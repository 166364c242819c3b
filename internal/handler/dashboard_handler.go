package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

type metricsSnapshotter interface {
	Snapshot() models.SystemMetrics
}

// DashboardHandler serves admin overview endpoints.
type DashboardHandler struct {
	dashboard dashboardService
	metrics   metricsSnapshotter
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard dashboardService, metrics metricsSnapshotter) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, metrics: metrics}
}

// Summary godoc
// @Summary Dashboard counters
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Metrics godoc
// @Summary System metrics snapshot
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/metrics [get]
func (h *DashboardHandler) Metrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
