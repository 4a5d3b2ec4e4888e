package news

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/audit"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
	"github.com/clubcasares/clubserver/internal/sanitize"
)

// defaultPerPage is the public listing page size.
const defaultPerPage = 12

// Service holds the news business logic. Article HTML is sanitized on
// every write path, never on read.
type Service interface {
	ListPublished(ctx context.Context, page int) (*ArticlePage, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*Article, error)

	ListAll(ctx context.Context) ([]Article, error)
	Create(ctx context.Context, session *auth.Session, req ArticleRequest) (*Article, error)
	Update(ctx context.Context, session *auth.Session, id int64, req ArticleRequest) (*Article, error)
	Delete(ctx context.Context, session *auth.Session, id int64) error
}

type service struct {
	repo  Repository
	audit audit.Recorder
}

// NewService creates the news service.
func NewService(repo Repository, recorder audit.Recorder) Service {
	return &service{repo: repo, audit: recorder}
}

func (s *service) ListPublished(ctx context.Context, page int) (*ArticlePage, error) {
	if page < 1 {
		page = 1
	}
	articles, total, err := s.repo.ListPublished(ctx, defaultPerPage, (page-1)*defaultPerPage)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing published articles: %w", err))
	}
	if articles == nil {
		articles = []Article{}
	}
	return &ArticlePage{
		Articles: articles,
		Total:    total,
		Page:     page,
		PerPage:  defaultPerPage,
	}, nil
}

// GetPublishedBySlug returns an article only if it is published. Drafts
// look identical to missing articles from the public side.
func (s *service) GetPublishedBySlug(ctx context.Context, slug string) (*Article, error) {
	a, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !a.Published {
		return nil, apperror.NewNotFound("article not found")
	}
	return a, nil
}

func (s *service) ListAll(ctx context.Context) ([]Article, error) {
	out, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing articles: %w", err))
	}
	return out, nil
}

// prepare validates a request and builds the sanitized article.
func (s *service) prepare(ctx context.Context, req ArticleRequest, excludeID int64) (*Article, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.NewValidation("article title is required")
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, apperror.NewValidation("article slug is required")
	}

	exists, err := s.repo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking slug: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("an article with this slug already exists")
	}

	return &Article{
		Title:     title,
		Slug:      slug,
		BodyHTML:  sanitize.HTML(req.BodyHTML),
		CoverPath: strings.TrimSpace(req.CoverPath),
		Published: req.Published,
	}, nil
}

func (s *service) Create(ctx context.Context, session *auth.Session, req ArticleRequest) (*Article, error) {
	a, err := s.prepare(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Published {
		a.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating article: %w", err))
	}
	s.audit.Record(ctx, session.UserID, audit.ActionCreate, "article",
		strconv.FormatInt(a.ID, 10), a.Title)
	return a, nil
}

func (s *service) Update(ctx context.Context, session *auth.Session, id int64, req ArticleRequest) (*Article, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	a, err := s.prepare(ctx, req, id)
	if err != nil {
		return nil, err
	}
	a.ID = id
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()

	// The first transition to published stamps the publication time; later
	// edits keep it.
	a.PublishedAt = existing.PublishedAt
	if a.Published && existing.PublishedAt == nil {
		now := a.UpdatedAt
		a.PublishedAt = &now
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionUpdate, "article",
		strconv.FormatInt(id, 10), a.Title)
	return a, nil
}

func (s *service) Delete(ctx context.Context, session *auth.Session, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionDelete, "article",
		strconv.FormatInt(id, 10), existing.Title)
	return nil
}
