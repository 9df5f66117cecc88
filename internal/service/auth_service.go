package service

import (
	"context"
	"errors"
	"time"

	"github.com/tsystem/tracker/internal/auth"
	"github.com/tsystem/tracker/internal/config"
	"github.com/tsystem/tracker/internal/domain"
	"github.com/tsystem/tracker/internal/repository"
	"github.com/tsystem/tracker/pkg/errorutil"
)

// AuthService coordinates registration, login and password changes.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// TokenManager exposes the token manager for the HTTP middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Username string
	Email    string
	Name     string
	Surname  string
	Password string
}

// Register creates a SYSTEM_USER account and issues a token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	if err := s.ensureFree(ctx, input.Username, input.Email); err != nil {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		Name:         input.Name,
		Surname:      input.Surname,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates by username and password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", time.Time{}, errorutil.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errorutil.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// ChangePassword verifies the current password and stores a new hash.
// Recording password_changed_at invalidates tokens issued before the
// change.
func (s *AuthService) ChangePassword(ctx context.Context, actor domain.Principal, current, next string) error {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return errorutil.NewNotFound("user")
	}
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		return errorutil.NewUnauthorized("current password does not match")
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash, time.Now())
}

// EnsureAdmin seeds the configured admin account if it does not exist.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AuthConfig) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}
	_, err := s.users.GetByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(cfg.AdminPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		Name:         "System",
		Surname:      "Admin",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	return s.users.Create(ctx, admin)
}

func (s *AuthService) ensureFree(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return errorutil.NewConflict("username already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return errorutil.NewConflict("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}
