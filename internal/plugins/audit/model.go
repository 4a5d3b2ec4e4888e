// Package audit records who changed what in the admin dashboard. Every
// mutating service calls Record after a successful write; recording is
// best-effort and never fails the caller's request.
package audit

import "time"

// Entry is a single audit log row.
type Entry struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Detail     string    `json:"detail,omitempty"`
	IP         string    `json:"ip,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Common action verbs. Target types are the plugin's entity names
// ("match", "article", "product", ...).
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)
