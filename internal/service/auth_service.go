package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/classdesk/classdesk-api/internal/dto"
	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/storage"
)

// ErrEmailTaken indicates an account with the email already exists.
var ErrEmailTaken = errors.New("user with this email already exists")

// ErrInvalidCredentials indicates the email/password pair did not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserNotFound indicates the requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// AuthService exposes account registration, login and profile sync. Passwords
// are stored as bcrypt hashes and compared with constant-time verification,
// never as plain text.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	SyncProfile(ctx context.Context, payload dto.ProfileSyncRequest) (dto.UserResponse, error)
	GetUser(ctx context.Context, id string) (dto.UserResponse, error)
}

type authService struct {
	store     storage.Store
	validator *validator.Validate
	secret    []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService builds a new auth service.
func NewAuthService(store storage.Store, validate *validator.Validate, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		store:     store,
		validator: validate,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	_, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return dto.UserResponse{}, ErrEmailTaken
	case !errors.Is(err, storage.ErrNotFound):
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.UpsertUser(ctx, models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		PasswordHash: string(hash),
		Role:         payload.Role,
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user registered")

	return dto.NewUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)) != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")

	return dto.LoginResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) SyncProfile(ctx context.Context, payload dto.ProfileSyncRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		ID:              payload.ID,
		Email:           strings.ToLower(strings.TrimSpace(payload.Email)),
		FirstName:       payload.FirstName,
		LastName:        payload.LastName,
		Role:            payload.Role,
		ProfileImageURL: payload.ProfileImageURL,
	}

	existing, err := s.store.GetUser(ctx, payload.ID)
	switch {
	case err == nil:
		// Provider syncs never downgrade local state the provider does not own.
		user.PasswordHash = existing.PasswordHash
		if user.Role == "" {
			user.Role = existing.Role
		}
	case errors.Is(err, storage.ErrNotFound):
		if user.Role == "" {
			user.Role = models.RoleStudent
		}
	default:
		return dto.UserResponse{}, err
	}

	updated, err := s.store.UpsertUser(ctx, user)
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Str("user_id", updated.ID).Msg("profile synced")

	return dto.NewUserResponse(updated), nil
}

func (s *authService) GetUser(ctx context.Context, id string) (dto.UserResponse, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *authService) issueToken(user models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
