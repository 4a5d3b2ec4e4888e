// Package news manages the club's articles: admin-edited HTML content,
// sanitized before storage, published to the public site newest-first.
package news

import "time"

// Article is a news post. BodyHTML is editor-generated rich text, run
// through the sanitizer before it ever reaches the database.
type Article struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	BodyHTML    string     `json:"body_html"`
	CoverPath   string     `json:"cover_path"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ArticleRequest holds the fields for creating or updating an article.
type ArticleRequest struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	BodyHTML  string `json:"body_html"`
	CoverPath string `json:"cover_path"`
	Published bool   `json:"published"`
}

// ArticlePage is one page of the public news listing.
type ArticlePage struct {
	Articles []Article `json:"articles"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PerPage  int       `json:"per_page"`
}
