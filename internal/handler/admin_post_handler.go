package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrth-run/mrth-api/internal/dto"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
	"github.com/mrth-run/mrth-api/pkg/response"
)

// AdminPostHandler serves post management endpoints behind JWT auth.
type AdminPostHandler struct {
	service postService
}

// NewAdminPostHandler constructs the handler.
func NewAdminPostHandler(service postService) *AdminPostHandler {
	return &AdminPostHandler{service: service}
}

// List godoc
// @Summary List all posts including drafts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/posts [get]
func (h *AdminPostHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	posts, pagination, err := h.service.List(c.Request.Context(), page, pageSize, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, pagination)
}

// Create godoc
// @Summary Create a post
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePostRequest true "Post fields"
// @Success 201 {object} response.Envelope
// @Router /admin/posts [post]
func (h *AdminPostHandler) Create(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	post, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// Update godoc
// @Summary Update a post
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body dto.UpdatePostRequest true "Post fields"
// @Success 200 {object} response.Envelope
// @Router /admin/posts/{id} [put]
func (h *AdminPostHandler) Update(c *gin.Context) {
	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	post, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}

// Delete godoc
// @Summary Delete a post
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 204
// @Router /admin/posts/{id} [delete]
func (h *AdminPostHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
