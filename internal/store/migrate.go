package store

import "database/sql"

// Migrate applies the schema. Statements are idempotent so startup can run
// them unconditionally.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL,
			department    TEXT NOT NULL DEFAULT '',
			semester      INT NOT NULL DEFAULT 0,
			roll_no       TEXT NOT NULL DEFAULT '',
			reg_no        TEXT NOT NULL DEFAULT '',
			onboarded     BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_roster ON users (role, department, semester)`,
		`CREATE TABLE IF NOT EXISTS subjects (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			code       TEXT NOT NULL,
			teacher_id TEXT NOT NULL REFERENCES users(id),
			department TEXT NOT NULL,
			semester   INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subjects_teacher ON subjects (teacher_id)`,
		`CREATE INDEX IF NOT EXISTS idx_subjects_roster ON subjects (department, semester)`,
		`CREATE TABLE IF NOT EXISTS attendance_records (
			subject_id TEXT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
			date       DATE NOT NULL,
			start_time TEXT NOT NULL DEFAULT '',
			end_time   TEXT NOT NULL DEFAULT '',
			statuses   JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (subject_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			token      TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			revoked    BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS password_resets (
			token      TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			used       BOOLEAN NOT NULL DEFAULT FALSE
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
