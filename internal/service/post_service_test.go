package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrth-run/mrth-api/internal/dto"
	"github.com/mrth-run/mrth-api/internal/models"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
)

type stubPostRepo struct {
	posts map[string]*models.Post
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{posts: map[string]*models.Post{}}
}

func (s *stubPostRepo) List(_ context.Context, filter models.PostFilter) ([]models.Post, int, error) {
	var out []models.Post
	for _, post := range s.posts {
		if filter.PublishedOnly && !post.Published {
			continue
		}
		out = append(out, *post)
	}
	return out, len(out), nil
}

func (s *stubPostRepo) GetBySlug(_ context.Context, slug string) (*models.Post, error) {
	for _, post := range s.posts {
		if post.Slug == slug {
			copied := *post
			return &copied, nil
		}
	}
	return nil, appErrors.ErrPostNotFound
}

func (s *stubPostRepo) GetByID(_ context.Context, id string) (*models.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, appErrors.ErrPostNotFound
	}
	copied := *post
	return &copied, nil
}

func (s *stubPostRepo) Create(_ context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = "post-" + post.Slug
	}
	copied := *post
	s.posts[post.ID] = &copied
	return nil
}

func (s *stubPostRepo) Update(_ context.Context, post *models.Post) error {
	copied := *post
	s.posts[post.ID] = &copied
	return nil
}

func (s *stubPostRepo) Delete(_ context.Context, id string) error {
	delete(s.posts, id)
	return nil
}

func TestPostServiceCreateSlugsTitle(t *testing.T) {
	repo := newStubPostRepo()
	svc := NewPostService(repo, nil, nil)

	post, err := svc.Create(context.Background(), dto.CreatePostRequest{
		Title:   "Spring Marathon Guide 2025",
		Content: "body",
	})
	require.NoError(t, err)
	assert.Equal(t, "spring-marathon-guide-2025", post.Slug)
	assert.Nil(t, post.PublishedAt)
}

func TestPostServiceCreatePublishedStampsTime(t *testing.T) {
	repo := newStubPostRepo()
	svc := NewPostService(repo, nil, nil)
	fixed := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	post, err := svc.Create(context.Background(), dto.CreatePostRequest{
		Title:     "Launch",
		Content:   "body",
		Published: true,
	})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	assert.True(t, post.PublishedAt.Equal(fixed))
}

func TestPostServiceGetBySlugHidesDrafts(t *testing.T) {
	repo := newStubPostRepo()
	require.NoError(t, repo.Create(context.Background(), &models.Post{ID: "p1", Slug: "draft", Title: "Draft", Published: false}))
	svc := NewPostService(repo, nil, nil)

	_, err := svc.GetBySlug(context.Background(), "draft")
	assert.ErrorIs(t, appErrors.FromError(err), appErrors.ErrPostNotFound)
}

func TestPostServiceUpdateFirstPublishStampsOnce(t *testing.T) {
	repo := newStubPostRepo()
	require.NoError(t, repo.Create(context.Background(), &models.Post{ID: "p1", Slug: "draft", Title: "Draft", Content: "body"}))
	svc := NewPostService(repo, nil, nil)
	fixed := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	post, err := svc.Update(context.Background(), "p1", dto.UpdatePostRequest{
		Title:     "Draft",
		Content:   "body",
		Published: true,
	})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)

	svc.now = func() time.Time { return fixed.AddDate(0, 0, 7) }
	post, err = svc.Update(context.Background(), "p1", dto.UpdatePostRequest{
		Title:     "Draft v2",
		Content:   "body",
		Published: true,
	})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	assert.True(t, post.PublishedAt.Equal(fixed), "republish must keep the original publish time")
}
