package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"uniattend/internal/users"
)

func TestIssueParseRoundTrip(t *testing.T) {
	pair, err := Issue("user-1", users.RoleTeacher, "uniattend", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := Parse(pair.AccessToken, "secret", "uniattend")
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user-1" || claims.Role != users.RoleTeacher {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongKeyAndIssuer(t *testing.T) {
	pair, err := Issue("user-1", users.RoleStudent, "uniattend", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(pair.AccessToken, "other", "uniattend"); err == nil {
		t.Error("token accepted with wrong key")
	}
	if _, err := Parse(pair.AccessToken, "secret", "someone-else"); err == nil {
		t.Error("token accepted with wrong issuer")
	}
}

func testService() *Service {
	return NewService(users.NewMemory(), NewMemoryTokens(), Config{
		Issuer: "uniattend", SigningKey: "secret",
		AccessTTL: time.Minute, RefreshTTL: time.Hour, ResetTokenTTL: time.Hour,
	}, nil)
}

func TestSignUpSignIn(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	u, pair, err := svc.SignUp(ctx, "Teach", "teach@test.edu", "password123", users.RoleTeacher)
	if err != nil {
		t.Fatal(err)
	}
	if u.Onboarded {
		t.Error("new account already onboarded")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("no tokens issued at sign-up")
	}

	if _, _, err := svc.SignUp(ctx, "Dup", "teach@test.edu", "password123", users.RoleTeacher); !errors.Is(err, users.ErrDuplicateEmail) {
		t.Errorf("duplicate sign-up err = %v", err)
	}

	if _, _, err := svc.SignIn(ctx, "teach@test.edu", "password123"); err != nil {
		t.Errorf("sign-in failed: %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "teach@test.edu", "wrong-password"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "nobody@test.edu", "password123"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("unknown email err = %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	cases := []struct {
		name, email, password string
		role                  users.Role
	}{
		{"", "a@test.edu", "password123", users.RoleStudent},
		{"A", "not-an-email", "password123", users.RoleStudent},
		{"A", "a@test.edu", "short", users.RoleStudent},
		{"A", "a@test.edu", "password123", "admin"},
	}
	for _, c := range cases {
		if _, _, err := svc.SignUp(ctx, c.name, c.email, c.password, c.role); err == nil {
			t.Errorf("sign-up accepted %+v", c)
		}
	}
}

func TestRefreshRotation(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	_, pair, err := svc.SignUp(ctx, "S", "s@test.edu", "password123", users.RoleStudent)
	if err != nil {
		t.Fatal(err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("refresh token not rotated")
	}
	// Old token was revoked by rotation.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("revoked token err = %v", err)
	}
	// Sign-out revokes the current one.
	if err := svc.SignOut(ctx, next.RefreshToken); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Refresh(ctx, next.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("signed-out token err = %v", err)
	}
}

func TestPasswordResetDoesNotLeakExistence(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	if _, _, err := svc.SignUp(ctx, "S", "s@test.edu", "password123", users.RoleStudent); err != nil {
		t.Fatal(err)
	}
	if err := svc.SendPasswordReset(ctx, "s@test.edu"); err != nil {
		t.Errorf("reset for known email: %v", err)
	}
	if err := svc.SendPasswordReset(ctx, "unknown@test.edu"); err != nil {
		t.Errorf("reset for unknown email must not error: %v", err)
	}
}
