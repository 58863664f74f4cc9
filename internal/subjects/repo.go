package subjects

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists subjects in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const subjectColumns = `id, name, code, teacher_id, department, semester, created_at`

// Create inserts a new subject.
func (r *Repository) Create(ctx context.Context, s Subject) (Subject, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subjects (`+subjectColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, s.ID, s.Name, s.Code, s.TeacherID, s.Department, s.Semester, s.CreatedAt)
	if err != nil {
		return Subject{}, err
	}
	return s, nil
}

// Get returns a single subject by id.
func (r *Repository) Get(ctx context.Context, id string) (*Subject, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id)
	var s Subject
	if err := row.Scan(&s.ID, &s.Name, &s.Code, &s.TeacherID, &s.Department, &s.Semester, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Rename updates the display name; the derived code is kept stable.
func (r *Repository) Rename(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE subjects SET name = $2 WHERE id = $1`, id, name)
	return err
}

// Delete removes the subject; session records cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	return err
}

// ByTeacher lists a teacher's subjects, newest first.
func (r *Repository) ByTeacher(ctx context.Context, teacherID string) ([]Subject, error) {
	return r.list(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE teacher_id = $1 ORDER BY created_at DESC`, teacherID)
}

// ByCohort lists the subjects a student's department+semester enrolls them in.
func (r *Repository) ByCohort(ctx context.Context, department string, semester int) ([]Subject, error) {
	return r.list(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE department = $1 AND semester = $2 ORDER BY created_at DESC`, department, semester)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Subject, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.TeacherID, &s.Department, &s.Semester, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
