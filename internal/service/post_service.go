package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/mrth-run/mrth-api/internal/dto"
	"github.com/mrth-run/mrth-api/internal/models"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
)

type postRepository interface {
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}

// PostService manages blog posts. Public reads only see published posts;
// the admin surface sees everything.
type PostService struct {
	repo      postRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPostService constructs a post service.
func NewPostService(repo postRepository, validate *validator.Validate, logger *zap.Logger) *PostService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{repo: repo, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns posts. Admin callers pass publishedOnly=false.
func (s *PostService) List(ctx context.Context, page, pageSize int, publishedOnly bool) ([]models.Post, *models.Pagination, error) {
	posts, total, err := s.repo.List(ctx, models.PostFilter{PublishedOnly: publishedOnly, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list posts")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return posts, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// GetBySlug returns one published post by slug.
func (s *PostService) GetBySlug(ctx context.Context, slugParam string) (*models.Post, error) {
	post, err := s.repo.GetBySlug(ctx, slugParam)
	if err != nil {
		return nil, err
	}
	if !post.Published {
		return nil, appErrors.ErrPostNotFound
	}
	return post, nil
}

// Create inserts a new post, slugging the title when no slug was supplied.
func (s *PostService) Create(ctx context.Context, req dto.CreatePostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid post payload")
	}

	post := &models.Post{
		Slug:       s.resolveSlug(req.Slug, req.Title),
		Title:      req.Title,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Published:  req.Published,
	}
	if req.Published {
		now := s.now()
		post.PublishedAt = &now
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update rewrites a post, stamping PublishedAt on the first publish.
func (s *PostService) Update(ctx context.Context, id string, req dto.UpdatePostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid post payload")
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Title = req.Title
	post.Slug = s.resolveSlug(req.Slug, req.Title)
	post.Excerpt = req.Excerpt
	post.Content = req.Content
	post.CoverImage = req.CoverImage
	if req.Published && !post.Published {
		now := s.now()
		post.PublishedAt = &now
	}
	post.Published = req.Published

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *PostService) resolveSlug(explicit, title string) string {
	if explicit != "" {
		return slug.Make(explicit)
	}
	return slug.Make(title)
}
