package models

import "time"

// Post is a blog entry managed through the admin panel.
type Post struct {
	ID          string     `db:"id" json:"id"`
	Slug        string     `db:"slug" json:"slug"`
	Title       string     `db:"title" json:"title"`
	Excerpt     *string    `db:"excerpt" json:"excerpt,omitempty"`
	Content     string     `db:"content" json:"content"`
	CoverImage  *string    `db:"cover_image" json:"cover_image,omitempty"`
	Published   bool       `db:"published" json:"published"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// PostFilter narrows down post listings.
type PostFilter struct {
	PublishedOnly bool
	Page          int
	PageSize      int
}
