package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
	"github.com/shashiranjanraj/bistro-boss-server/app/repositories"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/token"
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EnsureExists(ctx context.Context, email, name string) error
}

// AuthService mints session tokens and answers role questions. Roles live
// in the users collection, not in the token, so a promotion or demotion
// takes effect on the next request rather than the next sign-in.
type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// SignIn creates the user on first sign-in and returns a signed session
// token for the identity.
func (s *AuthService) SignIn(ctx context.Context, email, name string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("auth: empty email")
	}
	if err := s.users.EnsureExists(ctx, email, name); err != nil {
		return "", fmt.Errorf("auth: ensure user: %w", err)
	}
	return token.Issue(email)
}

// IsAdmin reports whether the identity carries the admin role. An unknown
// email is simply not an admin, not an error.
func (s *AuthService) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin(), nil
}

// Authorize is the capability check: does identity hold requiredRole?
// Returns nil when allowed and ErrForbidden when denied. Read-only; no
// side effects.
func (s *AuthService) Authorize(ctx context.Context, email, requiredRole string) error {
	if requiredRole == models.RoleGuest {
		return nil
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	if user.Role != requiredRole {
		return ErrForbidden
	}
	return nil
}
