package disciplines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// Repository defines persistence operations for disciplines, rosters,
// and manager assignments.
type Repository interface {
	// Disciplines
	ListDisciplines(ctx context.Context) ([]Discipline, error)
	GetDiscipline(ctx context.Context, id int64) (*Discipline, error)
	GetDisciplineBySlug(ctx context.Context, slug string) (*Discipline, error)
	CreateDiscipline(ctx context.Context, d *Discipline) error
	UpdateDiscipline(ctx context.Context, d *Discipline) error
	DeleteDiscipline(ctx context.Context, id int64) error

	// Rosters
	ListPlayers(ctx context.Context, disciplineID int64) ([]Player, error)
	GetPlayer(ctx context.Context, id int64) (*Player, error)
	CreatePlayer(ctx context.Context, p *Player) error
	UpdatePlayer(ctx context.Context, p *Player) error
	DeletePlayer(ctx context.Context, id int64) error

	ListStaff(ctx context.Context, disciplineID int64) ([]Staff, error)
	GetStaff(ctx context.Context, id int64) (*Staff, error)
	CreateStaff(ctx context.Context, s *Staff) error
	UpdateStaff(ctx context.Context, s *Staff) error
	DeleteStaff(ctx context.Context, id int64) error

	// Manager assignments
	ListManagers(ctx context.Context, disciplineID int64) ([]Manager, error)
	AssignManager(ctx context.Context, userID string, disciplineID int64) error
	RemoveManager(ctx context.Context, userID string, disciplineID int64) error
}

// repository is the MariaDB implementation of Repository.
type repository struct {
	db *sql.DB
}

// NewRepository creates a new MariaDB-backed disciplines repository.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// --- Disciplines ---

const disciplineCols = `id, name, slug, icon, created_at`

func scanDiscipline(scanner interface{ Scan(...any) error }) (*Discipline, error) {
	d := &Discipline{}
	err := scanner.Scan(&d.ID, &d.Name, &d.Slug, &d.Icon, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("discipline not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning discipline row: %w", err)
	}
	return d, nil
}

func (r *repository) ListDisciplines(ctx context.Context) ([]Discipline, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+disciplineCols+` FROM disciplines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying disciplines: %w", err)
	}
	defer rows.Close()

	var out []Discipline
	for rows.Next() {
		d, err := scanDiscipline(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *repository) GetDiscipline(ctx context.Context, id int64) (*Discipline, error) {
	return scanDiscipline(r.db.QueryRowContext(ctx,
		`SELECT `+disciplineCols+` FROM disciplines WHERE id = ?`, id))
}

func (r *repository) GetDisciplineBySlug(ctx context.Context, slug string) (*Discipline, error) {
	return scanDiscipline(r.db.QueryRowContext(ctx,
		`SELECT `+disciplineCols+` FROM disciplines WHERE slug = ?`, slug))
}

func (r *repository) CreateDiscipline(ctx context.Context, d *Discipline) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO disciplines (name, slug, icon, created_at) VALUES (?, ?, ?, ?)`,
		d.Name, d.Slug, d.Icon, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting discipline: %w", err)
	}
	d.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading discipline id: %w", err)
	}
	return nil
}

func (r *repository) UpdateDiscipline(ctx context.Context, d *Discipline) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE disciplines SET name = ?, slug = ?, icon = ? WHERE id = ?`,
		d.Name, d.Slug, d.Icon, d.ID)
	if err != nil {
		return fmt.Errorf("updating discipline: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("discipline not found")
	}
	return nil
}

func (r *repository) DeleteDiscipline(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM disciplines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting discipline: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("discipline not found")
	}
	return nil
}

// --- Players ---

const playerCols = `id, discipline_id, name, position, jersey_number`

func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	p := &Player{}
	err := scanner.Scan(&p.ID, &p.DisciplineID, &p.Name, &p.Position, &p.JerseyNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("player not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning player row: %w", err)
	}
	return p, nil
}

func (r *repository) ListPlayers(ctx context.Context, disciplineID int64) ([]Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playerCols+` FROM players WHERE discipline_id = ?
		 ORDER BY jersey_number IS NULL, jersey_number, name`, disciplineID)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	var out []Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *repository) GetPlayer(ctx context.Context, id int64) (*Player, error) {
	return scanPlayer(r.db.QueryRowContext(ctx,
		`SELECT `+playerCols+` FROM players WHERE id = ?`, id))
}

func (r *repository) CreatePlayer(ctx context.Context, p *Player) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO players (discipline_id, name, position, jersey_number)
		 VALUES (?, ?, ?, ?)`,
		p.DisciplineID, p.Name, p.Position, p.JerseyNumber)
	if err != nil {
		return fmt.Errorf("inserting player: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading player id: %w", err)
	}
	return nil
}

func (r *repository) UpdatePlayer(ctx context.Context, p *Player) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE players SET name = ?, position = ?, jersey_number = ? WHERE id = ?`,
		p.Name, p.Position, p.JerseyNumber, p.ID)
	if err != nil {
		return fmt.Errorf("updating player: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("player not found")
	}
	return nil
}

func (r *repository) DeletePlayer(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("player not found")
	}
	return nil
}

// --- Staff ---

const staffCols = `id, discipline_id, name, role`

func scanStaff(scanner interface{ Scan(...any) error }) (*Staff, error) {
	s := &Staff{}
	err := scanner.Scan(&s.ID, &s.DisciplineID, &s.Name, &s.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("staff member not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning staff row: %w", err)
	}
	return s, nil
}

func (r *repository) ListStaff(ctx context.Context, disciplineID int64) ([]Staff, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+staffCols+` FROM staff WHERE discipline_id = ? ORDER BY name`,
		disciplineID)
	if err != nil {
		return nil, fmt.Errorf("querying staff: %w", err)
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *repository) GetStaff(ctx context.Context, id int64) (*Staff, error) {
	return scanStaff(r.db.QueryRowContext(ctx,
		`SELECT `+staffCols+` FROM staff WHERE id = ?`, id))
}

func (r *repository) CreateStaff(ctx context.Context, s *Staff) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO staff (discipline_id, name, role) VALUES (?, ?, ?)`,
		s.DisciplineID, s.Name, s.Role)
	if err != nil {
		return fmt.Errorf("inserting staff: %w", err)
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading staff id: %w", err)
	}
	return nil
}

func (r *repository) UpdateStaff(ctx context.Context, s *Staff) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff SET name = ?, role = ? WHERE id = ?`, s.Name, s.Role, s.ID)
	if err != nil {
		return fmt.Errorf("updating staff: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("staff member not found")
	}
	return nil
}

func (r *repository) DeleteStaff(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting staff: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("staff member not found")
	}
	return nil
}

// --- Manager assignments ---

func (r *repository) ListManagers(ctx context.Context, disciplineID int64) ([]Manager, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT dm.user_id, dm.discipline_id, u.email, u.display_name
		 FROM discipline_managers dm
		 JOIN users u ON u.id = dm.user_id
		 WHERE dm.discipline_id = ?
		 ORDER BY u.email`, disciplineID)
	if err != nil {
		return nil, fmt.Errorf("querying managers: %w", err)
	}
	defer rows.Close()

	var out []Manager
	for rows.Next() {
		var m Manager
		if err := rows.Scan(&m.UserID, &m.DisciplineID, &m.Email, &m.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning manager row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) AssignManager(ctx context.Context, userID string, disciplineID int64) error {
	// INSERT IGNORE makes re-assignment idempotent (PK on user_id+discipline_id).
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO discipline_managers (user_id, discipline_id) VALUES (?, ?)`,
		userID, disciplineID)
	if err != nil {
		return fmt.Errorf("assigning manager: %w", err)
	}
	return nil
}

func (r *repository) RemoveManager(ctx context.Context, userID string, disciplineID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM discipline_managers WHERE user_id = ? AND discipline_id = ?`,
		userID, disciplineID)
	if err != nil {
		return fmt.Errorf("removing manager: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("manager assignment not found")
	}
	return nil
}
