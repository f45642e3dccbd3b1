package usecase

import (
	"context"
	"fmt"
	"time"

	"studio-booking/internal/data/repository"
	"studio-booking/internal/dto/request"
	"studio-booking/internal/dto/response"
	"studio-booking/pkg/apperrors"
	"studio-booking/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, config *utils.Config, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, utils.FormatValidationErrors(errs))
	}

	provider, err := s.repo.Provider.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find provider: %w", err)
	}
	if provider == nil {
		// Same error as a bad password so login does not leak which
		// emails exist.
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(provider.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Warn("Failed login attempt", zap.String("email", req.Email))
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}

	expiresAt := time.Now().Add(time.Duration(s.config.JWT.ExpiryHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub": provider.ID.String(),
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info("Provider logged in", zap.String("provider_id", provider.ID.String()))

	return &response.LoginResponse{Token: signed, ExpiresAt: expiresAt}, nil
}
