package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Repository persists session records in Postgres. The status mapping is a
// JSONB column so a save replaces it atomically, matching the overwrite
// contract.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the record for subject+date or ErrNotFound.
func (r *Repository) Get(ctx context.Context, subjectID, date string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT subject_id, to_char(date, 'YYYY-MM-DD'), start_time, end_time, statuses, updated_at
		FROM attendance_records
		WHERE subject_id = $1 AND date = $2
	`, subjectID, date)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// Put overwrites the full record for its key.
func (r *Repository) Put(ctx context.Context, rec Record) (Record, error) {
	raw, err := json.Marshal(rec.Statuses)
	if err != nil {
		return Record{}, err
	}
	rec.UpdatedAt = time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (subject_id, date, start_time, end_time, statuses, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (subject_id, date) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time   = EXCLUDED.end_time,
			statuses   = EXCLUDED.statuses,
			updated_at = EXCLUDED.updated_at
	`, rec.SubjectID, rec.Date, rec.StartTime, rec.EndTime, raw, rec.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// BySubject returns every record for the subject, oldest first. The scan is
// unbounded; expected per-subject session counts are small.
func (r *Repository) BySubject(ctx context.Context, subjectID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT subject_id, to_char(date, 'YYYY-MM-DD'), start_time, end_time, statuses, updated_at
		FROM attendance_records
		WHERE subject_id = $1
		ORDER BY date ASC
	`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var rec Record
	var raw []byte
	if err := row.Scan(&rec.SubjectID, &rec.Date, &rec.StartTime, &rec.EndTime, &raw, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(raw, &rec.Statuses); err != nil {
		return Record{}, err
	}
	if rec.Statuses == nil {
		rec.Statuses = map[string]Status{}
	}
	return rec, nil
}
