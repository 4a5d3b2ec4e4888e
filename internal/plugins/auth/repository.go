package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// UserRepository defines persistence operations for dashboard users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string) error
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error

	// ListManagedDisciplineIDs returns the discipline IDs the user is a
	// scoped manager of (rows in discipline_managers). Empty for admins
	// and for users with no management rights.
	ListManagedDisciplineIDs(ctx context.Context, userID string) ([]int64, error)
}

// userRepository is the MariaDB implementation of UserRepository.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new MariaDB-backed user repository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// userCols is the column list for user queries.
const userCols = `id, email, display_name, password_hash, is_admin, created_at, last_login_at`

// scanUser reads a row into a User struct.
func scanUser(scanner interface{ Scan(...any) error }) (*User, error) {
	u := &User{}
	err := scanner.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash,
		&u.IsAdmin, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user row: %w", err)
	}
	return u, nil
}

// Create inserts a new user.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, is_admin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.IsAdmin, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// FindByEmail returns the user with the given email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email = ?`, email))
}

// FindByID returns a user by their ID.
func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id = ?`, id))
}

// EmailExists reports whether a user with the given email already exists.
func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting users by email: %w", err)
	}
	return count > 0, nil
}

// UpdateLastLogin stamps the user's last login time.
func (r *userRepository) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = NOW() WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

// List returns all users ordered by creation date.
func (r *userRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userCols+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Delete removes a user. Their discipline_managers rows cascade via FK.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("user not found")
	}
	return nil
}

// ListManagedDisciplineIDs returns the discipline IDs the user manages.
func (r *userRepository) ListManagedDisciplineIDs(ctx context.Context, userID string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT discipline_id FROM discipline_managers WHERE user_id = ? ORDER BY discipline_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying managed disciplines: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning discipline id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
