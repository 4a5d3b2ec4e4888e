package news

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// Repository defines persistence operations for articles.
type Repository interface {
	ListPublished(ctx context.Context, limit, offset int) ([]Article, int, error)
	ListAll(ctx context.Context) ([]Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	Get(ctx context.Context, id int64) (*Article, error)
	Create(ctx context.Context, a *Article) error
	Update(ctx context.Context, a *Article) error
	Delete(ctx context.Context, id int64) error
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

type repository struct {
	db *sql.DB
}

// NewRepository creates a new MariaDB-backed news repository.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const articleCols = `id, title, slug, body_html, cover_path, published, published_at, created_at, updated_at`

func scanArticle(scanner interface{ Scan(...any) error }) (*Article, error) {
	a := &Article{}
	err := scanner.Scan(&a.ID, &a.Title, &a.Slug, &a.BodyHTML, &a.CoverPath,
		&a.Published, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("article not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning article row: %w", err)
	}
	return a, nil
}

func (r *repository) queryArticles(ctx context.Context, query string, args ...any) ([]Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ListPublished returns one page of published articles, newest first, plus
// the total published count for pagination.
func (r *repository) ListPublished(ctx context.Context, limit, offset int) ([]Article, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE published = 1`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting published articles: %w", err)
	}

	articles, err := r.queryArticles(ctx,
		`SELECT `+articleCols+` FROM articles WHERE published = 1
		 ORDER BY published_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Article, error) {
	return r.queryArticles(ctx,
		`SELECT `+articleCols+` FROM articles ORDER BY created_at DESC, id DESC`)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	return scanArticle(r.db.QueryRowContext(ctx,
		`SELECT `+articleCols+` FROM articles WHERE slug = ?`, slug))
}

func (r *repository) Get(ctx context.Context, id int64) (*Article, error) {
	return scanArticle(r.db.QueryRowContext(ctx,
		`SELECT `+articleCols+` FROM articles WHERE id = ?`, id))
}

func (r *repository) Create(ctx context.Context, a *Article) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (title, slug, body_html, cover_path, published,
		                       published_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Title, a.Slug, a.BodyHTML, a.CoverPath, a.Published,
		a.PublishedAt, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting article: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading article id: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, a *Article) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE articles SET title = ?, slug = ?, body_html = ?, cover_path = ?,
		        published = ?, published_at = ?, updated_at = ?
		 WHERE id = ?`,
		a.Title, a.Slug, a.BodyHTML, a.CoverPath, a.Published,
		a.PublishedAt, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("updating article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("article not found")
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("article not found")
	}
	return nil
}

func (r *repository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE slug = ? AND id != ?`,
		slug, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting articles by slug: %w", err)
	}
	return count > 0, nil
}
