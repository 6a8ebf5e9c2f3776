package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/internal/dto"
	"github.com/jrbailey528/solanasign/internal/repository"
	"github.com/jrbailey528/solanasign/pkg/middleware"
	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

// AuthService defines the interface for identity business logic
type AuthService interface {
	// Register creates a new account and returns a signed token
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)

	// Login verifies credentials and returns a signed token
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)

	// GetProfile retrieves the authenticated user's profile
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)

	// UpdateProfile applies profile changes
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

// authService implements AuthService
type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, cfg *AuthServiceConfig) AuthService {
	ttl := 24 * time.Hour
	secret := ""
	if cfg != nil {
		if cfg.TokenTTL > 0 {
			ttl = cfg.TokenTTL
		}
		secret = cfg.JWTSecret
	}
	return &authService{
		userRepo:  userRepo,
		jwtSecret: secret,
		tokenTTL:  ttl,
	}
}

// Register creates a new account and returns a signed token
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	user := &domain.User{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(strings.ToLower(req.Email)),
		WalletAddress: strings.TrimSpace(req.WalletAddress),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if len(req.Password) < 8 {
		return nil, domain.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	user.PasswordHash = string(hash)

	if err := s.userRepo.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))

	token, err := middleware.GenerateAccessToken(s.jwtSecret, user.ID, user.Email, s.tokenTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.AuthResponse{Token: token, User: dto.UserFromDomain(user)}, nil
}

// Login verifies credentials and returns a signed token
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same failure as a bad password; do not leak which emails exist
			return nil, domain.ErrInvalidCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := middleware.GenerateAccessToken(s.jwtSecret, user.ID, user.Email, s.tokenTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.AuthResponse{Token: token, User: dto.UserFromDomain(user)}, nil
}

// GetProfile retrieves the authenticated user's profile
func (s *authService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.get_profile")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.UserFromDomain(user), nil
}

// UpdateProfile applies profile changes
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.update_profile")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		user.Email = strings.TrimSpace(strings.ToLower(req.Email))
	}
	if req.WalletAddress != "" {
		user.WalletAddress = strings.TrimSpace(req.WalletAddress)
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.UserFromDomain(user), nil
}
