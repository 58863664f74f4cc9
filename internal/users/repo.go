package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository persists users in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, name, email, password_hash, role, department, semester, roll_no, reg_no, onboarded, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Department,
		&u.Semester, &u.RollNo, &u.RegNo, &u.Onboarded, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, u User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Department,
		u.Semester, u.RollNo, u.RegNo, u.Onboarded, u.CreatedAt)
	if err != nil && strings.Contains(err.Error(), "users_email_key") {
		return ErrDuplicateEmail
	}
	return err
}

// ByID returns a single user by id.
func (r *Repository) ByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// ByEmail returns a single user by email.
func (r *Repository) ByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// CompleteOnboarding fills the profile fields and flips the flag.
func (r *Repository) CompleteOnboarding(ctx context.Context, id string, p Profile) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET department = $2, semester = $3, roll_no = $4, reg_no = $5, onboarded = TRUE
		WHERE id = $1 AND onboarded = FALSE
	`, id, p.Department, p.Semester, p.RollNo, p.RegNo)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return errors.New("onboarding already completed")
	}
	return err
}

// Students returns student accounts matching department and semester. Ordering
// by roll number is the roster resolver's job; the row order here is incidental.
func (r *Repository) Students(ctx context.Context, department string, semester int) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE role = $1 AND department = $2 AND semester = $3
	`, RoleStudent, department, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
