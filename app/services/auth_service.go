package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adforge/adforge/app/models"
	"github.com/adforge/adforge/app/repositories"
	"github.com/adforge/adforge/pkg/auth"
)

// ErrBadCredentials is returned for an unknown email or wrong password.
// Deliberately indistinguishable to the caller.
var ErrBadCredentials = errors.New("services: invalid email or password")

// AuthService registers users and issues access tokens.
type AuthService struct {
	users     UserStore
	lifecycle *Lifecycle
	tokens    *auth.Tokens
	log       *slog.Logger
}

func NewAuthService(users UserStore, lifecycle *Lifecycle, tokens *auth.Tokens, log *slog.Logger) *AuthService {
	return &AuthService{users: users, lifecycle: lifecycle, tokens: tokens, log: log}
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"omitempty,max=255"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is what both register and login hand back to the controller.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates the user and bootstraps their default business so a fresh
// account can create products immediately.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// First-login bootstrap: a default business named after the user.
	businessName := in.Name
	if businessName == "" {
		businessName = "My Business"
	}
	if _, err := s.lifecycle.CreateBusiness(ctx, user.ID, CreateBusinessInput{Name: businessName}); err != nil {
		s.log.Error("auth: default business bootstrap failed", "uid", user.ID, "error", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, ErrBadCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Profile returns the authenticated user's own record.
func (s *AuthService) Profile(ctx context.Context, uid string) (*models.User, error) {
	return s.users.FindByID(ctx, uid)
}
