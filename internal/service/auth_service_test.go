package service

import (
	"context"
	"testing"
	"time"

	"github.com/tsystem/tracker/internal/config"
	"github.com/tsystem/tracker/internal/domain"
	"github.com/tsystem/tracker/pkg/errorutil"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4, // bcrypt.MinCost keeps tests fast
		AdminUsername:         "admin",
		AdminEmail:            "admin@example.com",
		AdminPassword:         "admin-password",
	}
}

func newAuthFixture() (*AuthService, *memUserRepo) {
	store := &memStore{}
	users := &memUserRepo{store: store}
	return NewAuthService(testAuthConfig(), users), users
}

func TestAuthRegisterAndLogin(t *testing.T) {
	authService, _ := newAuthFixture()
	ctx := context.Background()

	user, token, exp, err := authService.Register(ctx, RegisterInput{
		Username: "clara",
		Email:    "clara@example.com",
		Name:     "Clara",
		Surname:  "Meier",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("new accounts must be %s, got %s", domain.RoleUser, user.Role)
	}
	if token == "" || !exp.After(time.Now()) {
		t.Fatalf("expected a token with a future expiry")
	}
	if user.PasswordHash == "hunter22" {
		t.Fatalf("password stored in plaintext")
	}

	logged, loginToken, _, err := authService.Login(ctx, "clara", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID || loginToken == "" {
		t.Fatalf("login returned wrong identity")
	}

	claims, err := authService.TokenManager().ParseToken(loginToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != user.ID || claims.Role != domain.RoleUser {
		t.Fatalf("token claims wrong: %+v", claims)
	}
}

func TestAuthRegister_Conflicts(t *testing.T) {
	authService, _ := newAuthFixture()
	ctx := context.Background()

	input := RegisterInput{Username: "boris", Email: "boris@example.com", Name: "B", Surname: "P", Password: "password1"}
	if _, _, _, err := authService.Register(ctx, input); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, _, err := authService.Register(ctx, RegisterInput{
		Username: "boris", Email: "other@example.com", Name: "B", Surname: "P", Password: "password1",
	})
	wantCode(t, err, errorutil.CodeConflict)

	_, _, _, err = authService.Register(ctx, RegisterInput{
		Username: "other", Email: "boris@example.com", Name: "B", Surname: "P", Password: "password1",
	})
	wantCode(t, err, errorutil.CodeConflict)
}

func TestAuthLogin_InvalidCredentials(t *testing.T) {
	authService, _ := newAuthFixture()
	ctx := context.Background()

	if _, _, _, err := authService.Register(ctx, RegisterInput{
		Username: "elena", Email: "elena@example.com", Name: "E", Surname: "S", Password: "correct-horse",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, _, err := authService.Login(ctx, "elena", "wrong")
	wantCode(t, err, errorutil.CodeUnauthorized)

	_, _, _, err = authService.Login(ctx, "nobody", "whatever")
	wantCode(t, err, errorutil.CodeUnauthorized)
}

func TestAuthChangePassword(t *testing.T) {
	authService, users := newAuthFixture()
	ctx := context.Background()

	user, _, _, err := authService.Register(ctx, RegisterInput{
		Username: "felix", Email: "felix@example.com", Name: "F", Surname: "K", Password: "old-password",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	principal := domain.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}

	err = authService.ChangePassword(ctx, principal, "not-the-password", "new-password")
	wantCode(t, err, errorutil.CodeUnauthorized)

	if err := authService.ChangePassword(ctx, principal, "old-password", "new-password"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, _, _, err := authService.Login(ctx, "felix", "old-password"); err == nil {
		t.Fatalf("old password must stop working")
	}
	if _, _, _, err := authService.Login(ctx, "felix", "new-password"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}

	stored, err := users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.PasswordChangedAt == nil {
		t.Fatalf("password change timestamp must be recorded for token invalidation")
	}
}

func TestAuthEnsureAdmin_Idempotent(t *testing.T) {
	authService, users := newAuthFixture()
	ctx := context.Background()

	if err := authService.EnsureAdmin(ctx, testAuthConfig()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	admin, err := users.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected %s role, got %s", domain.RoleAdmin, admin.Role)
	}

	if err := authService.EnsureAdmin(ctx, testAuthConfig()); err != nil {
		t.Fatalf("second seed must be a no-op: %v", err)
	}
	all, _ := users.ListAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected exactly one admin account, got %d users", len(all))
	}
}
