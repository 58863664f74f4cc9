package auth

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"
)

// TokenStore persists refresh and password-reset tokens.
type TokenStore interface {
	SaveRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	// RefreshTokenUser returns the owning user id for a live, unrevoked token.
	RefreshTokenUser(ctx context.Context, token string) (string, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	SaveResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error
}

// ErrTokenInvalid covers unknown, expired and revoked refresh tokens.
var ErrTokenInvalid = errors.New("refresh token invalid")

// Repository persists tokens in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) SaveRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	return err
}

func (r *Repository) RefreshTokenUser(ctx context.Context, token string) (string, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id FROM refresh_tokens
		WHERE token = $1 AND NOT revoked AND expires_at > NOW()
	`, token)
	var userID string
	if err := row.Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTokenInvalid
		}
		return "", err
	}
	return userID, nil
}

func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}

func (r *Repository) SaveResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO password_resets (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	return err
}

// MemoryTokens is a map-backed TokenStore for dev/testing.
type MemoryTokens struct {
	mu      sync.Mutex
	refresh map[string]memToken
	resets  map[string]memToken
}

type memToken struct {
	userID    string
	expiresAt time.Time
	revoked   bool
}

// NewMemoryTokens creates an empty store.
func NewMemoryTokens() *MemoryTokens {
	return &MemoryTokens{refresh: make(map[string]memToken), resets: make(map[string]memToken)}
}

func (m *MemoryTokens) SaveRefreshToken(_ context.Context, userID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh[token] = memToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (m *MemoryTokens) RefreshTokenUser(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.refresh[token]
	if !ok || t.revoked || time.Now().After(t.expiresAt) {
		return "", ErrTokenInvalid
	}
	return t.userID, nil
}

func (m *MemoryTokens) RevokeRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.refresh[token]; ok {
		t.revoked = true
		m.refresh[token] = t
	}
	return nil
}

func (m *MemoryTokens) SaveResetToken(_ context.Context, userID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[token] = memToken{userID: userID, expiresAt: expiresAt}
	return nil
}
