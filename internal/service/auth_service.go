package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rei-nationwide/platform-api/internal/dto"
	"github.com/rei-nationwide/platform-api/internal/models"
	"github.com/rei-nationwide/platform-api/internal/repository"
	"github.com/rei-nationwide/platform-api/internal/token"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates correct credentials on a deactivated account.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrTooManyAttempts indicates the login throttle tripped.
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// AuthService owns registration, credential authentication and user lookups.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest, ip string) (dto.TokenResponse, error)
	Login(ctx context.Context, req dto.LoginRequest, ip string) (dto.TokenResponse, error)
	CurrentUser(ctx context.Context, userID uint) (dto.UserResponse, error)
	ListUsers(ctx context.Context) (dto.UserListResponse, error)
}

type authService struct {
	users     repository.UserRepository
	issuer    *token.Issuer
	activity  ActivityRecorder
	throttle  *LoginThrottle
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService constructs the authentication service. throttle may be nil
// when redis is not configured.
func NewAuthService(users repository.UserRepository, issuer *token.Issuer, activity ActivityRecorder, throttle *LoginThrottle, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		issuer:    issuer,
		activity:  activity,
		throttle:  throttle,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest, ip string) (dto.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TokenResponse{}, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.TokenResponse{}, err
	}

	signed, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:    &user.ID,
		Action:    "register",
		Endpoint:  "/api/v1/auth/register",
		IPAddress: ip,
	})

	return dto.TokenResponse{AccessToken: signed, TokenType: "bearer", User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest, ip string) (dto.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	if s.throttle != nil && s.throttle.Blocked(ctx, req.Email, ip) {
		return dto.TokenResponse{}, ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.recordFailure(ctx, req.Email, ip)
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		return dto.TokenResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.recordFailure(ctx, req.Email, ip)
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return dto.TokenResponse{}, ErrAccountDisabled
	}

	// Best effort: a failed timestamp update must not block the login.
	now := time.Now().UTC()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to update last login")
	} else {
		user.LastLoginAt = &now
	}

	signed, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	if s.throttle != nil {
		s.throttle.Reset(ctx, req.Email, ip)
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:    &user.ID,
		Action:    "login",
		Endpoint:  "/api/v1/auth/login",
		IPAddress: ip,
	})

	return dto.TokenResponse{AccessToken: signed, TokenType: "bearer", User: dto.NewUserResponse(user)}, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *authService) ListUsers(ctx context.Context) (dto.UserListResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}

	return dto.UserListResponse{Users: responses}, nil
}

func (s *authService) recordFailure(ctx context.Context, email, ip string) {
	if s.throttle != nil {
		s.throttle.RecordFailure(ctx, email, ip)
	}
}
