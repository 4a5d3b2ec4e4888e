package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository defines persistence for site settings. Values are opaque
// strings (JSON documents) keyed by setting name.
type Repository interface {
	// Get returns the value for a key, or ("", nil) when unset.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}

type repository struct {
	db *sql.DB
}

// NewRepository creates a new MariaDB-backed settings repository.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM site_settings WHERE `+"`key`"+` = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading setting %s: %w", key, err)
	}
	return value, nil
}

func (r *repository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO site_settings (`+"`key`"+`, value) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE value = VALUES(value)`, key, value)
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

func (r *repository) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+"`key`"+`, value FROM site_settings`)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning setting row: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
