package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrth-run/mrth-api/internal/dto"
	internalmiddleware "github.com/mrth-run/mrth-api/internal/middleware"
	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/internal/service"
	"github.com/mrth-run/mrth-api/pkg/response"
)

type adminUserRepoStub struct {
	user models.User
}

func (s *adminUserRepoStub) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	u := s.user
	return &u, nil
}

func (s *adminUserRepoStub) GetByID(_ context.Context, _ string) (*models.User, error) {
	u := s.user
	return &u, nil
}

func (s *adminUserRepoStub) UpdateLastLogin(_ context.Context, _ string, _ time.Time) error {
	return nil
}

type dashboardServiceMock struct{}

func (dashboardServiceMock) Summary(_ context.Context) (*models.DashboardSummary, error) {
	return &models.DashboardSummary{TotalRaces: 12, OpenRaces: 3}, nil
}

type metricsSnapshotterMock struct{}

func (metricsSnapshotterMock) Snapshot() models.SystemMetrics {
	return models.SystemMetrics{RequestsTotal: 42}
}

type adminPostServiceMock struct{}

func (adminPostServiceMock) List(_ context.Context, _, _ int, _ bool) ([]models.Post, *models.Pagination, error) {
	return []models.Post{{ID: "p1", Title: "Training tips"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (adminPostServiceMock) GetBySlug(_ context.Context, _ string) (*models.Post, error) {
	return &models.Post{ID: "p1"}, nil
}

func (adminPostServiceMock) Create(_ context.Context, req dto.CreatePostRequest) (*models.Post, error) {
	return &models.Post{ID: "p2", Title: req.Title}, nil
}

func (adminPostServiceMock) Update(_ context.Context, id string, req dto.UpdatePostRequest) (*models.Post, error) {
	return &models.Post{ID: id, Title: req.Title}, nil
}

func (adminPostServiceMock) Delete(_ context.Context, _ string) error {
	return nil
}

func buildAdminRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("marathon42"), bcrypt.MinCost)
	require.NoError(t, err)
	authService := service.NewAuthService(&adminUserRepoStub{user: models.User{
		ID:           "admin-1",
		Email:        "admin@mrth.run",
		PasswordHash: string(hash),
		FullName:     "Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	}}, nil, nil, service.AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "mrth-api"})

	authHandler := NewAuthHandler(authService)
	dashboardHandler := NewDashboardHandler(dashboardServiceMock{}, metricsSnapshotterMock{})
	postHandler := NewAdminPostHandler(adminPostServiceMock{})

	router := gin.New()
	admin := router.Group("/admin")
	admin.POST("/auth/login", authHandler.Login)
	admin.POST("/auth/refresh", authHandler.Refresh)

	secured := admin.Group("", internalmiddleware.JWT(authService))
	secured.GET("/dashboard", dashboardHandler.Summary)
	secured.GET("/metrics", dashboardHandler.Metrics)
	secured.GET("/posts", postHandler.List)
	secured.POST("/posts", postHandler.Create)
	secured.DELETE("/posts/:id", postHandler.Delete)

	return router, authService
}

func loginToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, "/admin/auth/login", strings.NewReader(`{"email":"admin@mrth.run","password":"marathon42"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := doRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(data, &login))
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken
}

func TestAdminRoutesIntegration(t *testing.T) {
	router, _ := buildAdminRouter(t)
	token := loginToken(t, router)

	t.Run("dashboard requires token", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		resp := doRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("dashboard with token", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := doRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"total_races":12`)
	})

	t.Run("metrics with token", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/admin/metrics", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := doRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("rejects malformed bearer", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req.Header.Set("Authorization", "Token abc")
		resp := doRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("create post", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/posts", strings.NewReader(`{"title":"New course","content":"body"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp := doRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		assert.Contains(t, resp.Body.String(), "New course")
	})

	t.Run("delete post", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, "/admin/posts/p1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := doRequest(router, req)
		require.Equal(t, http.StatusNoContent, resp.Code)
	})

	t.Run("refresh reissues token", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/auth/refresh", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := doRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "access_token")
	})

	t.Run("refresh without bearer", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/auth/refresh", nil)
		resp := doRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}
