package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleetwatch/fleetwatch/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates an account with role USER and issues a token. Input is
// assumed validated; the database still has the last word on email uniqueness.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, string, time.Time, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user, err := s.repo.Create(ctx, User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         RoleUser,
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Login validates credentials and issues a token. Unknown email and wrong
// password return the identical error so responses cannot be used to probe
// which addresses exist.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, string, time.Time, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, "", time.Time{}, shared.ErrInvalidCredentials
		}
		return nil, "", time.Time{}, fmt.Errorf("auth: find user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", time.Time{}, shared.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Profile loads the live user record for the authenticated identity. The
// token is trusted for routing, but the profile view reflects the store, so
// a removed account surfaces as not found.
func (s *Service) Profile(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// ChangePassword verifies the old password and replaces the stored hash.
// Outstanding tokens stay valid until expiry; there is no revocation list.
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, oldPassword) {
		return nil, shared.ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID)
}

// ListUsers returns every account ordered by id. Role gating happens in the
// middleware layer; the service itself has no opinion on the caller.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}
