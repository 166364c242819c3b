package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mrth-run/mrth-api/internal/models"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
)

const postColumns = "id, slug, title, excerpt, content, cover_image, published, published_at, created_at, updated_at"

// PostRepository persists blog posts.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository constructs a post repository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// List returns posts newest first, with the total row count.
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error) {
	where := []string{"1=1"}
	if filter.PublishedOnly {
		where = append(where, "published = TRUE")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM posts WHERE %s
ORDER BY COALESCE(published_at, created_at) DESC LIMIT %d OFFSET %d`, postColumns, whereClause, size, offset)
	var posts []models.Post
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM posts WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	return posts, total, nil
}

// GetBySlug fetches a post by its URL slug.
func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query := fmt.Sprintf("SELECT %s FROM posts WHERE slug = $1", postColumns)
	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post %s: %w", slug, err)
	}
	return &post, nil
}

// GetByID fetches a post by primary key.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := fmt.Sprintf("SELECT %s FROM posts WHERE id = $1", postColumns)
	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	return &post, nil
}

// Create inserts a post.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	const query = `INSERT INTO posts (id, slug, title, excerpt, content, cover_image, published, published_at, created_at, updated_at)
VALUES (:id, :slug, :title, :excerpt, :content, :cover_image, :published, :published_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "slug already in use")
		}
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update rewrites a post.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	const query = `UPDATE posts SET slug = :slug, title = :title, excerpt = :excerpt, content = :content,
cover_image = :cover_image, published = :published, published_at = :published_at, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "slug already in use")
		}
		return fmt.Errorf("update post %s: %w", post.ID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrPostNotFound
	}
	return nil
}

// Delete removes a post.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.ErrPostNotFound
	}
	return nil
}

// CountPublished returns the number of published posts.
func (r *PostRepository) CountPublished(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM posts WHERE published = TRUE"); err != nil {
		return 0, fmt.Errorf("count published posts: %w", err)
	}
	return total, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
