package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository defines persistence for audit log entries.
type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, limit, offset int) ([]Entry, error)
}

type repository struct {
	db *sql.DB
}

// NewRepository creates a new MariaDB-backed audit repository.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, e *Entry) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (user_id, action, target_type, target_id, detail, ip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Action, e.TargetType, e.TargetID, e.Detail, e.IP, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading audit entry id: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, action, target_type, target_id, detail, ip, created_at
		 FROM audit_log ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.TargetType,
			&e.TargetID, &e.Detail, &e.IP, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
