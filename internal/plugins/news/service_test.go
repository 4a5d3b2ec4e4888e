package news

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

type mockRepo struct {
	getBySlugFn  func(ctx context.Context, slug string) (*Article, error)
	getFn        func(ctx context.Context, id int64) (*Article, error)
	createFn     func(ctx context.Context, a *Article) error
	updateFn     func(ctx context.Context, a *Article) error
	slugExistsFn func(ctx context.Context, slug string, excludeID int64) (bool, error)
}

func (m *mockRepo) ListPublished(ctx context.Context, limit, offset int) ([]Article, int, error) {
	return nil, 0, nil
}
func (m *mockRepo) ListAll(ctx context.Context) ([]Article, error) { return nil, nil }
func (m *mockRepo) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, slug)
	}
	return nil, apperror.NewNotFound("article not found")
}
func (m *mockRepo) Get(ctx context.Context, id int64) (*Article, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, apperror.NewNotFound("article not found")
}
func (m *mockRepo) Create(ctx context.Context, a *Article) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	a.ID = 1
	return nil
}
func (m *mockRepo) Update(ctx context.Context, a *Article) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, a)
	}
	return nil
}
func (m *mockRepo) Delete(ctx context.Context, id int64) error { return nil }
func (m *mockRepo) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	if m.slugExistsFn != nil {
		return m.slugExistsFn(ctx, slug, excludeID)
	}
	return false, nil
}

type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, userID, action, targetType, targetID, detail string) {
}

func assertAppError(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected AppError with code %d, got nil", code)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %d, got %d (%v)", code, appErr.Code, appErr)
	}
}

func adminSession() *auth.Session {
	return &auth.Session{UserID: "admin", IsAdmin: true, CanManage: true}
}

func TestCreateSanitizesBody(t *testing.T) {
	svc := NewService(&mockRepo{}, noopRecorder{})

	a, err := svc.Create(context.Background(), adminSession(), ArticleRequest{
		Title:    "Triunfo en casa",
		Slug:     "triunfo-en-casa",
		BodyHTML: `<p>Gran partido</p><script>alert("xss")</script><img src=x onerror="alert(1)">`,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if strings.Contains(a.BodyHTML, "<script") || strings.Contains(a.BodyHTML, "onerror") {
		t.Errorf("dangerous HTML survived sanitization: %q", a.BodyHTML)
	}
	if !strings.Contains(a.BodyHTML, "<p>Gran partido</p>") {
		t.Errorf("safe formatting stripped: %q", a.BodyHTML)
	}
}

func TestCreateSlugConflict(t *testing.T) {
	repo := &mockRepo{
		slugExistsFn: func(ctx context.Context, slug string, excludeID int64) (bool, error) {
			return true, nil
		},
	}
	svc := NewService(repo, noopRecorder{})

	_, err := svc.Create(context.Background(), adminSession(), ArticleRequest{
		Title: "Dup", Slug: "dup",
	})
	assertAppError(t, err, http.StatusConflict)
}

func TestCreateStampsPublishedAt(t *testing.T) {
	svc := NewService(&mockRepo{}, noopRecorder{})

	draft, err := svc.Create(context.Background(), adminSession(), ArticleRequest{
		Title: "Borrador", Slug: "borrador",
	})
	if err != nil {
		t.Fatalf("Create draft: %v", err)
	}
	if draft.PublishedAt != nil {
		t.Error("draft must not carry a publication time")
	}

	pub, err := svc.Create(context.Background(), adminSession(), ArticleRequest{
		Title: "Publicada", Slug: "publicada", Published: true,
	})
	if err != nil {
		t.Fatalf("Create published: %v", err)
	}
	if pub.PublishedAt == nil {
		t.Error("published article must carry a publication time")
	}
}

func TestUpdateKeepsOriginalPublicationTime(t *testing.T) {
	first := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockRepo{
		getFn: func(ctx context.Context, id int64) (*Article, error) {
			return &Article{ID: id, Title: "Old", Slug: "old",
				Published: true, PublishedAt: &first}, nil
		},
	}
	svc := NewService(repo, noopRecorder{})

	a, err := svc.Update(context.Background(), adminSession(), 1, ArticleRequest{
		Title: "Edited", Slug: "old", Published: true,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if a.PublishedAt == nil || !a.PublishedAt.Equal(first) {
		t.Errorf("PublishedAt changed on edit: %v", a.PublishedAt)
	}
}

func TestDraftsHiddenFromPublic(t *testing.T) {
	repo := &mockRepo{
		getBySlugFn: func(ctx context.Context, slug string) (*Article, error) {
			return &Article{ID: 1, Slug: slug, Published: false}, nil
		},
	}
	svc := NewService(repo, noopRecorder{})

	_, err := svc.GetPublishedBySlug(context.Background(), "draft-post")
	assertAppError(t, err, http.StatusNotFound)
}
