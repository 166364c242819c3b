package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrth-run/mrth-api/internal/dto"
	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/pkg/response"
)

type postService interface {
	List(ctx context.Context, page, pageSize int, publishedOnly bool) ([]models.Post, *models.Pagination, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	Create(ctx context.Context, req dto.CreatePostRequest) (*models.Post, error)
	Update(ctx context.Context, id string, req dto.UpdatePostRequest) (*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// PostHandler serves the public blog endpoints.
type PostHandler struct {
	service postService
}

// NewPostHandler constructs the handler.
func NewPostHandler(service postService) *PostHandler {
	return &PostHandler{service: service}
}

// List godoc
// @Summary List published posts
// @Tags Posts
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /posts [get]
func (h *PostHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	posts, pagination, err := h.service.List(c.Request.Context(), page, pageSize, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, pagination)
}

// GetBySlug godoc
// @Summary Post detail by slug
// @Tags Posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} response.Envelope
// @Router /posts/{slug} [get]
func (h *PostHandler) GetBySlug(c *gin.Context) {
	post, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}
