package matches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// Repository defines persistence operations for matches, results, and
// tournaments.
type Repository interface {
	// ListWindow returns all matches with match_date in [from, to]
	// inclusive, results eager-attached, ordered by date then time.
	ListWindow(ctx context.Context, from, to Date) ([]Match, error)

	// ListUpcoming returns matches with match_date >= from, ascending by
	// date then time, capped at limit.
	ListUpcoming(ctx context.Context, from Date, limit int) ([]Match, error)

	// ListDay returns the matches of a single calendar day.
	ListDay(ctx context.Context, day Date) ([]Match, error)

	GetMatch(ctx context.Context, id int64) (*Match, error)
	CreateMatch(ctx context.Context, m *Match) error
	UpdateMatch(ctx context.Context, m *Match) error

	// DeleteMatch removes the match's result row and the match row in a
	// single transaction, so a partial failure can never orphan either side.
	DeleteMatch(ctx context.Context, id int64) error

	UpsertResult(ctx context.Context, r *MatchResult) error
	DeleteResult(ctx context.Context, matchID int64) error

	ListTournaments(ctx context.Context) ([]Tournament, error)
	CreateTournament(ctx context.Context, t *Tournament) error
	DeleteTournament(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

// NewRepository creates a new MariaDB-backed matches repository.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// matchSelect joins each match with its optional result row. Scorers come
// back as a JSON array so list order is preserved.
const matchSelect = `
	SELECT m.id, m.discipline_id, m.match_date, m.match_time, m.rival_team,
	       m.match_type, m.status, m.tournament_id, m.location_id, m.created_at,
	       r.match_id, r.our_score, r.rival_score, r.scorers
	FROM matches m
	LEFT JOIN match_results r ON r.match_id = m.id`

// scanMatch reads one joined row. The result columns are nullable; a row
// without a result leaves Match.Result nil.
func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	m := &Match{}
	var (
		resMatchID sql.NullInt64
		ourScore   sql.NullInt64
		rivalScore sql.NullInt64
		scorersRaw []byte
	)
	err := scanner.Scan(&m.ID, &m.DisciplineID, &m.MatchDate, &m.MatchTime,
		&m.RivalTeam, &m.MatchType, &m.Status, &m.TournamentID, &m.LocationID,
		&m.CreatedAt, &resMatchID, &ourScore, &rivalScore, &scorersRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("match not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning match row: %w", err)
	}

	if resMatchID.Valid {
		r := &MatchResult{
			MatchID:    resMatchID.Int64,
			OurScore:   int(ourScore.Int64),
			RivalScore: int(rivalScore.Int64),
		}
		if len(scorersRaw) > 0 {
			if err := json.Unmarshal(scorersRaw, &r.Scorers); err != nil {
				return nil, fmt.Errorf("decoding scorers for match %d: %w", m.ID, err)
			}
		}
		m.Result = r
	}
	return m, nil
}

func (r *repository) queryMatches(ctx context.Context, query string, args ...any) ([]Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *repository) ListWindow(ctx context.Context, from, to Date) ([]Match, error) {
	return r.queryMatches(ctx,
		matchSelect+` WHERE m.match_date BETWEEN ? AND ?
		 ORDER BY m.match_date, m.match_time, m.id`, from, to)
}

func (r *repository) ListUpcoming(ctx context.Context, from Date, limit int) ([]Match, error) {
	return r.queryMatches(ctx,
		matchSelect+` WHERE m.match_date >= ?
		 ORDER BY m.match_date, m.match_time, m.id LIMIT ?`, from, limit)
}

func (r *repository) ListDay(ctx context.Context, day Date) ([]Match, error) {
	return r.queryMatches(ctx,
		matchSelect+` WHERE m.match_date = ?
		 ORDER BY m.match_time, m.id`, day)
}

func (r *repository) GetMatch(ctx context.Context, id int64) (*Match, error) {
	return scanMatch(r.db.QueryRowContext(ctx, matchSelect+` WHERE m.id = ?`, id))
}

func (r *repository) CreateMatch(ctx context.Context, m *Match) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (discipline_id, match_date, match_time, rival_team,
		                      match_type, status, tournament_id, location_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.DisciplineID, m.MatchDate, m.MatchTime, m.RivalTeam,
		m.MatchType, m.Status, m.TournamentID, m.LocationID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting match: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading match id: %w", err)
	}
	return nil
}

func (r *repository) UpdateMatch(ctx context.Context, m *Match) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE matches SET discipline_id = ?, match_date = ?, match_time = ?,
		        rival_team = ?, match_type = ?, status = ?, tournament_id = ?,
		        location_id = ?
		 WHERE id = ?`,
		m.DisciplineID, m.MatchDate, m.MatchTime, m.RivalTeam, m.MatchType,
		m.Status, m.TournamentID, m.LocationID, m.ID)
	if err != nil {
		return fmt.Errorf("updating match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("match not found")
	}
	return nil
}

// DeleteMatch removes the result row and the match row in one transaction.
// Either both rows go or neither does.
func (r *repository) DeleteMatch(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM match_results WHERE match_id = ?`, id); err != nil {
		return fmt.Errorf("deleting match result: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("match not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete transaction: %w", err)
	}
	return nil
}

func (r *repository) UpsertResult(ctx context.Context, result *MatchResult) error {
	scorers, err := json.Marshal(result.Scorers)
	if err != nil {
		return fmt.Errorf("encoding scorers: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO match_results (match_id, our_score, rival_score, scorers)
		 VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE our_score = VALUES(our_score),
		                         rival_score = VALUES(rival_score),
		                         scorers = VALUES(scorers)`,
		result.MatchID, result.OurScore, result.RivalScore, scorers)
	if err != nil {
		return fmt.Errorf("upserting match result: %w", err)
	}
	return nil
}

func (r *repository) DeleteResult(ctx context.Context, matchID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM match_results WHERE match_id = ?`, matchID)
	if err != nil {
		return fmt.Errorf("deleting match result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("match result not found")
	}
	return nil
}

// --- Tournaments ---

func (r *repository) ListTournaments(ctx context.Context) ([]Tournament, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, year FROM tournaments ORDER BY year DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("querying tournaments: %w", err)
	}
	defer rows.Close()

	var out []Tournament
	for rows.Next() {
		var t Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.Year); err != nil {
			return nil, fmt.Errorf("scanning tournament row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) CreateTournament(ctx context.Context, t *Tournament) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tournaments (name, year) VALUES (?, ?)`, t.Name, t.Year)
	if err != nil {
		return fmt.Errorf("inserting tournament: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading tournament id: %w", err)
	}
	return nil
}

func (r *repository) DeleteTournament(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting tournament: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("tournament not found")
	}
	return nil
}
