package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	autherrors "roadbook/internal/auth/errors"
	"roadbook/internal/auth/repository"
	"roadbook/pkg/config"
	apperrors "roadbook/pkg/errors"
	"roadbook/pkg/model"
)

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Logout(ctx context.Context, userID string) error
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionStore
	validate *govalidator.Validate
	cfg      *config.Config
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionStore, cfg *config.Config) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		validate: govalidator.New(),
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Request body cannot be empty")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation("Registration validation failed", map[string]any{"error": err.Error()})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		GivenNames:   strings.TrimSpace(req.GivenNames),
		LastName:     strings.TrimSpace(req.LastName),
		Username:     strings.ToLower(strings.TrimSpace(req.Username)),
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, autherrors.ErrUsernameTaken) {
			return nil, apperrors.Conflict(fmt.Sprintf("Username '%s' is already taken", user.Username))
		}
		s.cfg.Log.Error("Failed to create user", "username", user.Username, "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Request body cannot be empty")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation("Login validation failed", map[string]any{"error": err.Error()})
	}

	user, err := s.users.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		if errors.Is(err, autherrors.ErrUserNotFound) {
			return nil, apperrors.Unauthorized("Invalid username or password")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid username or password")
	}

	expiresAt := time.Now().UTC().Add(s.cfg.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"iat":      time.Now().UTC().Unix(),
		"exp":      expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, apperrors.Internal("Failed to sign token", err)
	}

	if err := s.sessions.Start(ctx, user.ID, s.cfg.SessionTTL); err != nil {
		s.cfg.Log.Error("Failed to start session", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to start session", err)
	}

	s.cfg.Log.Info("User logged in", "user_id", user.ID, "username", user.Username)
	return &model.LoginResponse{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.Unauthorized("Caller identity is missing")
	}
	if err := s.sessions.End(ctx, userID); err != nil {
		s.cfg.Log.Error("Failed to end session", "user_id", userID, "error", err)
		return apperrors.Internal("Failed to end session", err)
	}
	return nil
}
