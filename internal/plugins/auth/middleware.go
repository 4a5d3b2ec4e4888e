package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// Context keys for storing session data in Echo context. Other plugins
// use these keys (via the exported getter functions below) to access
// the authenticated user's information.
const (
	contextKeySession = "auth_session"
	contextKeyUserID  = "auth_user_id"
)

// sessionCookieName is the HTTP cookie used to store the session token.
const sessionCookieName = "casares_session"

// RequireAuth returns middleware that validates the session cookie and
// injects session data into the request context. Requests without a valid
// session get a 401 JSON response.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := getSessionToken(c)
			if token == "" {
				return apperror.NewUnauthorized("authentication required")
			}

			session, err := service.ValidateSession(c.Request().Context(), token)
			if err != nil {
				// Invalid or expired session -- clear the stale cookie.
				clearSessionCookie(c)
				return apperror.NewUnauthorized("authentication required")
			}

			// Store session data in context for downstream handlers.
			c.Set(contextKeySession, session)
			c.Set(contextKeyUserID, session.UserID)

			return next(c)
		}
	}
}

// RequireAdmin returns middleware that rejects non-admin sessions.
// Must be applied AFTER RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := GetSession(c)
			if session == nil {
				return apperror.NewUnauthorized("authentication required")
			}
			if !session.IsAdmin {
				return apperror.NewForbidden("admin rights required")
			}
			return next(c)
		}
	}
}

// RequireManager returns middleware that rejects sessions without any
// management rights. This is the COARSE gate: it does not check which
// disciplines the user manages -- services apply the per-discipline
// predicate on each mutation. Must be applied AFTER RequireAuth.
func RequireManager() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := GetSession(c)
			if session == nil {
				return apperror.NewUnauthorized("authentication required")
			}
			if !session.CanManage {
				return apperror.NewForbidden("management rights required")
			}
			return next(c)
		}
	}
}

// --- Exported getters for other plugins ---

// GetSession retrieves the authenticated session from the Echo context.
// Returns nil if the request is not authenticated (middleware not applied).
func GetSession(c echo.Context) *Session {
	session, ok := c.Get(contextKeySession).(*Session)
	if !ok {
		return nil
	}
	return session
}

// GetUserID retrieves the authenticated user's ID from the Echo context.
// Returns empty string if the request is not authenticated.
func GetUserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}

// --- Cookie helpers ---

// getSessionToken reads the session token from the request cookie.
func getSessionToken(c echo.Context) string {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setSessionCookie writes the session token cookie on the response.
func setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
