// Package disciplines manages the club's sports sections: the disciplines
// themselves, their player and staff rosters, and the assignment of scoped
// managers. Discipline and roster reads are public; mutations are gated on
// the session's management rights, checked server-side in the service layer.
package disciplines

import "time"

// Discipline is a sports section of the club (football, basketball, ...).
// The slug is used in public URLs and the icon names the pictogram the
// frontend renders in filters and match cards.
type Discipline struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// Player is a roster entry for a discipline.
type Player struct {
	ID           int64  `json:"id"`
	DisciplineID int64  `json:"discipline_id"`
	Name         string `json:"name"`
	Position     string `json:"position"`
	JerseyNumber *int   `json:"jersey_number,omitempty"`
}

// Staff is a coaching or support staff entry for a discipline.
type Staff struct {
	ID           int64  `json:"id"`
	DisciplineID int64  `json:"discipline_id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
}

// Manager is a user_id/discipline_id assignment row, returned with the
// user's display data for the admin dashboard.
type Manager struct {
	UserID       string `json:"user_id"`
	DisciplineID int64  `json:"discipline_id"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
}

// --- Request DTOs ---

// DisciplineRequest holds the fields for creating or updating a discipline.
type DisciplineRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

// PlayerRequest holds the fields for creating or updating a player.
type PlayerRequest struct {
	Name         string `json:"name"`
	Position     string `json:"position"`
	JerseyNumber *int   `json:"jersey_number"`
}

// StaffRequest holds the fields for creating or updating a staff member.
type StaffRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// AssignManagerRequest holds the user to grant management rights to.
type AssignManagerRequest struct {
	UserID string `json:"user_id"`
}
