package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrth-run/mrth-api/internal/dto"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
)

type scheduleServiceMock struct {
	weekly   *dto.WeeklyScheduleResponse
	urgent   *dto.UrgentScheduleResponse
	err      error
	lastWeek string
}

func (m *scheduleServiceMock) Weekly(_ context.Context, weekParam string) (*dto.WeeklyScheduleResponse, error) {
	m.lastWeek = weekParam
	if m.err != nil {
		return nil, m.err
	}
	return m.weekly, nil
}

func (m *scheduleServiceMock) Urgent(_ context.Context) (*dto.UrgentScheduleResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.urgent, nil
}

func newScheduleTestRouter(mock *scheduleServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewScheduleHandler(mock)
	router := gin.New()
	router.GET("/schedule/weekly", h.Weekly)
	router.GET("/schedule/urgent", h.Urgent)
	return router
}

func TestScheduleHandlerWeeklyPassesAnchor(t *testing.T) {
	mock := &scheduleServiceMock{
		weekly: &dto.WeeklyScheduleResponse{WeekStart: "2025-03-10", WeekEnd: "2025-03-16"},
	}
	router := newScheduleTestRouter(mock)

	req, _ := http.NewRequest(http.MethodGet, "/schedule/weekly?week=2025-03-12", nil)
	resp := doRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "2025-03-12", mock.lastWeek)
	assert.Contains(t, resp.Body.String(), "2025-03-10")
}

func TestScheduleHandlerWeeklyBadAnchor(t *testing.T) {
	mock := &scheduleServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "week must be YYYY-MM-DD")}
	router := newScheduleTestRouter(mock)

	req, _ := http.NewRequest(http.MethodGet, "/schedule/weekly?week=notadate", nil)
	resp := doRequest(router, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestScheduleHandlerUrgent(t *testing.T) {
	mock := &scheduleServiceMock{
		urgent: &dto.UrgentScheduleResponse{
			WithinHours: 24,
			Races:       []dto.UrgentRace{{RaceID: "r1", Title: "Night Run", ClosesIn: "3시간 20분"}},
		},
	}
	router := newScheduleTestRouter(mock)

	req, _ := http.NewRequest(http.MethodGet, "/schedule/urgent", nil)
	resp := doRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Night Run")
}
