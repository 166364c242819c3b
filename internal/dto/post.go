package dto

// CreatePostRequest is the admin payload for a new blog post. The slug is
// derived from the title when omitted.
type CreatePostRequest struct {
	Title      string  `json:"title" validate:"required"`
	Slug       string  `json:"slug"`
	Excerpt    *string `json:"excerpt"`
	Content    string  `json:"content" validate:"required"`
	CoverImage *string `json:"cover_image"`
	Published  bool    `json:"published"`
}

// UpdatePostRequest mirrors CreatePostRequest for edits.
type UpdatePostRequest struct {
	Title      string  `json:"title" validate:"required"`
	Slug       string  `json:"slug"`
	Excerpt    *string `json:"excerpt"`
	Content    string  `json:"content" validate:"required"`
	CoverImage *string `json:"cover_image"`
	Published  bool    `json:"published"`
}
