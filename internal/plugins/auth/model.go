// Package auth handles user authentication, session management, and password
// security for the club server. It provides login, logout, session validation
// via random tokens stored in Redis, and the permission model the admin
// dashboards are gated on.
//
// This is a CORE plugin -- always enabled, cannot be disabled.
package auth

import (
	"time"
)

// User represents a dashboard user (club staff). This is the domain model
// used throughout the application. Database scanning and JSON marshaling use
// this struct directly.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"` // Never expose in JSON responses.
	IsAdmin      bool       `json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// --- Request DTOs (bound from HTTP requests) ---

// LoginRequest holds the credentials submitted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// CreateUserRequest holds the data an admin submits to create a staff account.
type CreateUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	IsAdmin     bool   `json:"is_admin"`
}

// --- Service Input DTOs (passed from handler to service) ---

// CreateUserInput is the validated input for creating a new user.
type CreateUserInput struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// LoginInput is the validated input for authenticating a user.
type LoginInput struct {
	Email    string
	Password string
}

// --- Session ---

// Session represents an authenticated user session stored in Redis.
// The session token is the key, and this struct is the value (JSON-encoded).
//
// Management rights are resolved at login time: IsAdmin grants everything,
// and a user with rows in discipline_managers gets CanManage=true plus the
// list of discipline IDs they are scoped to. An admin carries CanManage=true
// with an EMPTY ManagedDisciplineIDs list, which means unrestricted.
type Session struct {
	UserID               string    `json:"user_id"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	IsAdmin              bool      `json:"is_admin"`
	CanManage            bool      `json:"can_manage"`
	ManagedDisciplineIDs []int64   `json:"managed_discipline_ids"`
	CreatedAt            time.Time `json:"created_at"`
}

// CanManageDiscipline reports whether this session may mutate matches and
// rosters belonging to the given discipline. An empty managed set with
// CanManage=true means unrestricted rights.
func (s *Session) CanManageDiscipline(disciplineID int64) bool {
	if !s.CanManage {
		return false
	}
	if len(s.ManagedDisciplineIDs) == 0 {
		return true
	}
	for _, id := range s.ManagedDisciplineIDs {
		if id == disciplineID {
			return true
		}
	}
	return false
}
