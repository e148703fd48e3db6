package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/staffdir/staffdir/internal/token"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials and returns the account
// the token codec should sign.
func (s *Service) Authenticate(ctx context.Context, email, password string) (token.Account, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return token.Account{}, ErrInvalidCredentials
		}
		return token.Account{}, err
	}
	if !user.IsActive {
		return token.Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return token.Account{}, ErrInvalidCredentials
	}
	groups, err := s.repo.GroupIDs(ctx, user.ID)
	if err != nil {
		return token.Account{}, err
	}
	return token.Account{ID: user.ID, Groups: groups}, nil
}
