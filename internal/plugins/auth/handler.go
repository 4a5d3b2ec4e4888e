package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// AuthHandler handles HTTP requests for authentication and user management.
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login authenticates a user and sets the session cookie.
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	token, session, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	setSessionCookie(c, token)

	return c.JSON(http.StatusOK, session)
}

// Logout destroys the current session and clears the cookie.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := getSessionToken(c); token != "" {
		if err := h.service.DestroySession(c.Request().Context(), token); err != nil {
			return err
		}
	}

	clearSessionCookie(c)

	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated session's identity and permissions. The
// dashboard calls this on load to decide which controls to show. The
// server still enforces every permission on mutation -- this endpoint
// only informs the UI.
// GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	session := GetSession(c)
	if session == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	return c.JSON(http.StatusOK, session)
}

// --- Admin user management ---

// ListUsers returns all staff accounts.
// GET /api/admin/users
func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []User{}
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser creates a new staff account.
// POST /api/admin/users
func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user, err := h.service.CreateUser(c.Request().Context(), CreateUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

// DeleteUser removes a staff account. Admins cannot delete themselves,
// which prevents locking everyone out of the dashboard.
// DELETE /api/admin/users/:id
func (h *AuthHandler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	if id == GetUserID(c) {
		return apperror.NewBadRequest("you cannot delete your own account")
	}

	if err := h.service.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
