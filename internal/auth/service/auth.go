// Package service implements authentication and account management.
package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/medistock/medistock-backend/internal/auth/jwt"
	"github.com/medistock/medistock-backend/internal/auth/repository"
	"github.com/medistock/medistock-backend/pkg/access"
	"github.com/medistock/medistock-backend/pkg/errors"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// AuthService handles registration, login and profile lookup
type AuthService struct {
	users      *repository.UserRepository
	jwtManager *jwt.Manager
	logger     *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users *repository.UserRepository, jwtManager *jwt.Manager, log *logger.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtManager: jwtManager,
		logger:     log,
	}
}

// RegisterRequest holds registration input
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone,omitempty"`
}

// LoginRequest holds login input
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthenticatedUser is the profile plus role assignments returned to clients
type AuthenticatedUser struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName *string  `json:"first_name,omitempty"`
	LastName  *string  `json:"last_name,omitempty"`
	Phone     *string  `json:"phone,omitempty"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
	Roles     []string `json:"roles"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	User   *AuthenticatedUser `json:"user"`
	Tokens *jwt.TokenPair     `json:"tokens"`
}

// Register creates a new profile with no roles assigned.
// New accounts are pending until an administrator grants a role.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthenticatedUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}

	user := &repository.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    &req.FirstName,
		LastName:     &req.LastName,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("user registered, pending role assignment")

	return &AuthenticatedUser{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Roles:     []string{},
	}, nil
}

// Login verifies credentials and issues a token pair.
// Accounts without any role are rejected as pending approval.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidCredentials()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.InvalidCredentials()
	}

	roles, err := s.users.ListRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if !access.IsStaff(access.FromStrings(roles)) {
		return nil, errors.Forbidden("account is pending approval")
	}

	tokens, err := s.jwtManager.GenerateTokenPair(&jwt.UserInfo{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.FullName(),
		Roles: roles,
	})
	if err != nil {
		return nil, errors.Internal("failed to generate tokens")
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Strs("roles", roles).
		Msg("user logged in")

	return &LoginResponse{
		User: &AuthenticatedUser{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Phone:     user.Phone,
			AvatarURL: user.AvatarURL,
			Roles:     roles,
		},
		Tokens: tokens,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.TokenInvalid()
		}
		return nil, err
	}

	roles, err := s.users.ListRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if !access.IsStaff(access.FromStrings(roles)) {
		return nil, errors.Forbidden("account is pending approval")
	}

	return s.jwtManager.GenerateTokenPair(&jwt.UserInfo{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.FullName(),
		Roles: roles,
	})
}

// Me returns the profile and roles for the given user ID
func (s *AuthService) Me(ctx context.Context, userID string) (*AuthenticatedUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles, err := s.users.ListRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthenticatedUser{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		AvatarURL: user.AvatarURL,
		Roles:     roles,
	}, nil
}
