package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/ssu-portal/internal/auth"
	"github.com/spec-kit/ssu-portal/internal/domain"
	apperrors "github.com/spec-kit/ssu-portal/pkg/util"
)

// AuthService authenticates dashboard users against the directory.
type AuthService struct {
	directory auth.UserDirectory
	tokens    *auth.TokenManager
}

// NewAuthService constructs the service.
func NewAuthService(directory auth.UserDirectory, tokens *auth.TokenManager) *AuthService {
	return &AuthService{directory: directory, tokens: tokens}
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return "", time.Time{}, nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, user, nil
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
