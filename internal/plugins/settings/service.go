package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/audit"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// maintenanceCacheTTL bounds how long a maintenance-flag read may be
// served from memory. The middleware consults the flag on every request,
// so it cannot hit the database each time.
const maintenanceCacheTTL = 15 * time.Second

// Service resolves and updates the site configuration.
type Service interface {
	GetConfig(ctx context.Context) (*SiteConfig, error)
	UpdateConfig(ctx context.Context, session *auth.Session, req SiteConfigRequest) (*SiteConfig, error)

	// MaintenanceEnabled reports the maintenance flag, served from a
	// short-lived cache.
	MaintenanceEnabled(ctx context.Context) bool
}

type service struct {
	repo  Repository
	audit audit.Recorder

	mu            sync.Mutex
	maintenance   bool
	maintCheckedAt time.Time
}

// NewService creates the settings service.
func NewService(repo Repository, recorder audit.Recorder) Service {
	return &service{repo: repo, audit: recorder}
}

// GetConfig loads every setting and resolves the typed config. Missing or
// corrupt values fall back to zero values rather than failing the site.
func (s *service) GetConfig(ctx context.Context) (*SiteConfig, error) {
	raw, err := s.repo.All(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading settings: %w", err))
	}

	cfg := &SiteConfig{
		Banners:     []Banner{},
		NavbarLinks: []NavLink{},
	}
	decodeJSONSetting(raw[keyBanners], &cfg.Banners)
	decodeJSONSetting(raw[keyPopup], &cfg.Popup)
	decodeJSONSetting(raw[keyNavbar], &cfg.NavbarLinks)
	cfg.MaintenanceMode = raw[keyMaintenance] == "true"
	cfg.ComingSoon = raw[keyComingSoon] == "true"
	return cfg, nil
}

// decodeJSONSetting unmarshals a stored value, logging and keeping the
// zero value on corrupt data.
func decodeJSONSetting(raw string, dst any) {
	if raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.Warn("corrupt site setting ignored", slog.Any("error", err))
	}
}

// UpdateConfig replaces the whole configuration. Each key is written
// separately; the payload was validated as a unit by the JSON binding.
func (s *service) UpdateConfig(ctx context.Context, session *auth.Session, req SiteConfigRequest) (*SiteConfig, error) {
	writes := []struct {
		key   string
		value any
	}{
		{keyBanners, req.Banners},
		{keyPopup, req.Popup},
		{keyNavbar, req.NavbarLinks},
	}
	for _, w := range writes {
		encoded, err := json.Marshal(w.value)
		if err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("encoding setting %s: %w", w.key, err))
		}
		if err := s.repo.Set(ctx, w.key, string(encoded)); err != nil {
			return nil, apperror.NewInternal(err)
		}
	}
	if err := s.repo.Set(ctx, keyMaintenance, strconv.FormatBool(req.MaintenanceMode)); err != nil {
		return nil, apperror.NewInternal(err)
	}
	if err := s.repo.Set(ctx, keyComingSoon, strconv.FormatBool(req.ComingSoon)); err != nil {
		return nil, apperror.NewInternal(err)
	}

	// Refresh the maintenance cache immediately so the flip is visible on
	// the instance that made it.
	s.mu.Lock()
	s.maintenance = req.MaintenanceMode
	s.maintCheckedAt = time.Now()
	s.mu.Unlock()

	slog.Info("site configuration updated",
		slog.Bool("maintenance", req.MaintenanceMode),
		slog.Bool("coming_soon", req.ComingSoon),
	)
	s.audit.Record(ctx, session.UserID, audit.ActionUpdate, "site_config", "", "")

	return s.GetConfig(ctx)
}

// MaintenanceEnabled serves the maintenance flag from a short TTL cache.
// A failed read keeps the last-known value: a database blip must not flip
// the whole site into (or out of) maintenance.
func (s *service) MaintenanceEnabled(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.maintCheckedAt) < maintenanceCacheTTL {
		return s.maintenance
	}

	raw, err := s.repo.Get(ctx, keyMaintenance)
	if err != nil {
		slog.Warn("maintenance flag read failed, keeping last value",
			slog.Any("error", err))
		s.maintCheckedAt = time.Now()
		return s.maintenance
	}
	s.maintenance = raw == "true"
	s.maintCheckedAt = time.Now()
	return s.maintenance
}
