package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// memRepo is an in-memory settings store.
type memRepo struct {
	values map[string]string
	getErr error
}

func newMemRepo() *memRepo { return &memRepo{values: map[string]string{}} }

func (r *memRepo) Get(ctx context.Context, key string) (string, error) {
	if r.getErr != nil {
		return "", r.getErr
	}
	return r.values[key], nil
}
func (r *memRepo) Set(ctx context.Context, key, value string) error {
	r.values[key] = value
	return nil
}
func (r *memRepo) All(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range r.values {
		out[k] = v
	}
	return out, nil
}

type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, userID, action, targetType, targetID, detail string) {
}

func adminSession() *auth.Session {
	return &auth.Session{UserID: "admin", IsAdmin: true, CanManage: true}
}

func TestConfigRoundTrip(t *testing.T) {
	svc := NewService(newMemRepo(), noopRecorder{})
	ctx := context.Background()

	req := SiteConfigRequest{
		Banners: []Banner{{ImagePath: "/media/banner1.jpg", Title: "Bienvenidos"}},
		Popup:   Popup{Enabled: true, Title: "Inscripciones abiertas"},
		NavbarLinks: []NavLink{
			{Label: "Inicio", URL: "/", Order: 1},
			{Label: "Tienda", URL: "/tienda", Order: 2},
		},
		MaintenanceMode: false,
		ComingSoon:      true,
	}

	cfg, err := svc.UpdateConfig(ctx, adminSession(), req)
	if err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if len(cfg.Banners) != 1 || cfg.Banners[0].Title != "Bienvenidos" {
		t.Errorf("banners lost in round trip: %+v", cfg.Banners)
	}
	if !cfg.Popup.Enabled || cfg.Popup.Title != "Inscripciones abiertas" {
		t.Errorf("popup lost in round trip: %+v", cfg.Popup)
	}
	if len(cfg.NavbarLinks) != 2 {
		t.Errorf("navbar links lost: %+v", cfg.NavbarLinks)
	}
	if !cfg.ComingSoon || cfg.MaintenanceMode {
		t.Errorf("flags wrong: %+v", cfg)
	}
}

func TestGetConfigDefaultsWhenEmpty(t *testing.T) {
	svc := NewService(newMemRepo(), noopRecorder{})

	cfg, err := svc.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Banners == nil || cfg.NavbarLinks == nil {
		t.Error("empty config must serialize as [] not null")
	}
	if cfg.MaintenanceMode || cfg.ComingSoon {
		t.Error("flags must default to off")
	}
}

func TestGetConfigIgnoresCorruptValues(t *testing.T) {
	repo := newMemRepo()
	repo.values[keyBanners] = `{not json`
	repo.values[keyPopup], _ = jsonString(Popup{Enabled: true, Title: "OK"})
	svc := NewService(repo, noopRecorder{})

	cfg, err := svc.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if len(cfg.Banners) != 0 {
		t.Errorf("corrupt banners should fall back to empty, got %+v", cfg.Banners)
	}
	if !cfg.Popup.Enabled {
		t.Error("valid settings alongside corrupt ones must still resolve")
	}
}

func jsonString(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func TestMaintenanceMiddleware(t *testing.T) {
	repo := newMemRepo()
	repo.values[keyMaintenance] = "true"
	svc := NewService(repo, noopRecorder{})

	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	mw := Maintenance(svc)(next)

	call := func(path string) error {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		return mw(e.NewContext(req, rec))
	}

	// Public routes are blocked with a typed 503.
	err := call("/api/noticias")
	appErr, ok := err.(*apperror.AppError)
	if !ok || appErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 AppError on public route, got %v", err)
	}

	// Auth and admin stay reachable so staff can turn it off.
	if err := call("/api/auth/login"); err != nil {
		t.Errorf("auth route blocked during maintenance: %v", err)
	}
	if err := call("/api/admin/config"); err != nil {
		t.Errorf("admin route blocked during maintenance: %v", err)
	}
}

func TestMaintenanceFlagCachesLastValueOnError(t *testing.T) {
	repo := newMemRepo()
	repo.values[keyMaintenance] = "false"
	svc := NewService(repo, noopRecorder{})
	ctx := context.Background()

	if svc.MaintenanceEnabled(ctx) {
		t.Fatal("maintenance should be off")
	}

	// Database blips must not flip the site into maintenance.
	repo.getErr = context.DeadlineExceeded
	if svc.MaintenanceEnabled(ctx) {
		t.Error("read failure flipped the maintenance flag")
	}
}
