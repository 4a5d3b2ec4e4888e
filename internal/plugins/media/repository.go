package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// Repository defines persistence for media records.
type Repository interface {
	Insert(ctx context.Context, m *Media) error
	Get(ctx context.Context, id int64) (*Media, error)
	List(ctx context.Context) ([]Media, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

// NewRepository creates a new MariaDB-backed media repository.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const mediaCols = `id, file_name, path, mime_type, size_bytes, uploaded_by, created_at`

func scanMedia(scanner interface{ Scan(...any) error }) (*Media, error) {
	m := &Media{}
	err := scanner.Scan(&m.ID, &m.FileName, &m.Path, &m.MimeType,
		&m.SizeBytes, &m.UploadedBy, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("media not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning media row: %w", err)
	}
	return m, nil
}

func (r *repository) Insert(ctx context.Context, m *Media) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO media (file_name, path, mime_type, size_bytes, uploaded_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.FileName, m.Path, m.MimeType, m.SizeBytes, m.UploadedBy, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting media: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading media id: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Media, error) {
	return scanMedia(r.db.QueryRowContext(ctx,
		`SELECT `+mediaCols+` FROM media WHERE id = ?`, id))
}

func (r *repository) List(ctx context.Context) ([]Media, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mediaCols+` FROM media ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying media: %w", err)
	}
	defer rows.Close()

	var out []Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting media: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("media not found")
	}
	return nil
}
