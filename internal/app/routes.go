package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/plugins/audit"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
	"github.com/clubcasares/clubserver/internal/plugins/disciplines"
	"github.com/clubcasares/clubserver/internal/plugins/locations"
	"github.com/clubcasares/clubserver/internal/plugins/matches"
	"github.com/clubcasares/clubserver/internal/plugins/media"
	"github.com/clubcasares/clubserver/internal/plugins/news"
	"github.com/clubcasares/clubserver/internal/plugins/settings"
	"github.com/clubcasares/clubserver/internal/plugins/store"
)

// RegisterRoutes builds every plugin (repository, service, handler) and
// registers its routes. This is the single place where the dependency
// graph is assembled.
func (a *App) RegisterRoutes() error {
	e := a.Echo

	// Health check endpoint for container orchestration.
	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db unreachable"})
		}
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "redis unreachable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Audit trail, shared by every mutating service.
	auditService := audit.NewService(audit.NewRepository(a.DB))

	// Auth: argon2id credentials in MariaDB, sessions in Redis.
	authService := auth.NewAuthService(auth.NewUserRepository(a.DB), a.Redis, a.Config.Auth.SessionTTL)
	auth.RegisterRoutes(e, auth.NewAuthHandler(authService), authService)

	if err := a.bootstrapAdmin(authService); err != nil {
		return err
	}

	audit.RegisterRoutes(e, audit.NewHandler(auditService),
		auth.RequireAuth(authService), auth.RequireAdmin())

	// Site configuration, including the maintenance switch. The middleware
	// goes on the global chain so every public route honors it.
	settingsService := settings.NewService(settings.NewRepository(a.DB), auditService)
	settings.RegisterRoutes(e, settings.NewHandler(settingsService), authService)
	e.Use(settings.Maintenance(settingsService))

	// Disciplines, rosters, and per-discipline manager assignments.
	disciplinesService := disciplines.NewService(disciplines.NewRepository(a.DB), auditService)
	disciplines.RegisterRoutes(e, disciplines.NewHandler(disciplinesService), authService)

	// Match schedule: repository feeds the Redis-versioned window cache.
	matchRepo := matches.NewRepository(a.DB)
	matchCache := matches.NewCache(matchRepo, a.Redis)
	matchesService := matches.NewService(matchRepo, matchCache, auditService, a.Config.BaseURL)
	matches.RegisterRoutes(e, matches.NewHandler(matchesService), authService)

	locationsService := locations.NewService(locations.NewRepository(a.DB), auditService)
	locations.RegisterRoutes(e, locations.NewHandler(locationsService), authService)

	newsService := news.NewService(news.NewRepository(a.DB), auditService)
	news.RegisterRoutes(e, news.NewHandler(newsService), authService)

	storeService := store.NewService(store.NewRepository(a.DB), auditService)
	store.RegisterRoutes(e, store.NewHandler(storeService), authService)

	mediaService, err := media.NewService(media.NewRepository(a.DB), auditService,
		a.Config.Upload.MediaPath, a.Config.Upload.MaxSize)
	if err != nil {
		return fmt.Errorf("initializing media storage: %w", err)
	}
	media.RegisterRoutes(e, media.NewHandler(mediaService), authService)

	return nil
}

// bootstrapAdmin seeds the first admin account when the users table is
// empty. Without it a fresh deployment has no way to log in.
func (a *App) bootstrapAdmin(authService auth.AuthService) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users, err := authService.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("checking existing users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}
	if a.Config.Auth.AdminPassword == "" {
		slog.Warn("no users exist and ADMIN_PASSWORD is unset, skipping admin bootstrap")
		return nil
	}

	user, err := authService.CreateUser(ctx, auth.CreateUserInput{
		Email:       a.Config.Auth.AdminEmail,
		DisplayName: "Administrador",
		Password:    a.Config.Auth.AdminPassword,
		IsAdmin:     true,
	})
	if err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}
	slog.Info("seeded initial admin user", slog.String("email", user.Email))
	return nil
}
