package locations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// Repository defines persistence operations for locations.
type Repository interface {
	List(ctx context.Context) ([]Location, error)
	Get(ctx context.Context, id int64) (*Location, error)
	Create(ctx context.Context, l *Location) error
	Update(ctx context.Context, l *Location) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

// NewRepository creates a new MariaDB-backed locations repository.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const locationCols = `id, name, city, google_maps_url`

func scanLocation(scanner interface{ Scan(...any) error }) (*Location, error) {
	l := &Location{}
	err := scanner.Scan(&l.ID, &l.Name, &l.City, &l.GoogleMapsURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("location not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning location row: %w", err)
	}
	return l, nil
}

func (r *repository) List(ctx context.Context) ([]Location, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+locationCols+` FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Location, error) {
	return scanLocation(r.db.QueryRowContext(ctx,
		`SELECT `+locationCols+` FROM locations WHERE id = ?`, id))
}

func (r *repository) Create(ctx context.Context, l *Location) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO locations (name, city, google_maps_url) VALUES (?, ?, ?)`,
		l.Name, l.City, l.GoogleMapsURL)
	if err != nil {
		return fmt.Errorf("inserting location: %w", err)
	}
	l.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading location id: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, l *Location) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE locations SET name = ?, city = ?, google_maps_url = ? WHERE id = ?`,
		l.Name, l.City, l.GoogleMapsURL, l.ID)
	if err != nil {
		return fmt.Errorf("updating location: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("location not found")
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("location not found")
	}
	return nil
}
