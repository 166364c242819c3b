package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrth-run/mrth-api/internal/models"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
)

func postRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "slug", "title", "excerpt", "content", "cover_image",
		"published", "published_at", "created_at", "updated_at",
	})
}

func TestPostRepositoryListPublishedOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM posts WHERE 1=1 AND published = TRUE").
		WillReturnRows(postRows().AddRow(
			"post-1", "first-run", "First Run", nil, "body", nil, true, now, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM posts WHERE 1=1 AND published = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	posts, total, err := repo.List(context.Background(), models.PostFilter{PublishedOnly: true})
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryGetBySlugNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	mock.ExpectQuery("SELECT .+ FROM posts WHERE slug = \\$1").
		WithArgs("missing").
		WillReturnRows(postRows())

	_, err := repo.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrPostNotFound)
}

func TestPostRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO posts")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	post := &models.Post{Slug: "spring-races", Title: "Spring Races", Content: "..."}
	err := repo.Create(context.Background(), post)
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Post{ID: "missing", Slug: "x", Title: "x"})
	assert.ErrorIs(t, err, appErrors.ErrPostNotFound)
}
