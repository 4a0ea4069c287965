package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/config"
	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/repository"
	apperrors "github.com/spec-kit/fleet-service/pkg/util/errorutil"
)

// refreshRotationWindow is the policy threshold below which a still-valid
// refresh token is proactively replaced during refresh, extending the
// session before it can lapse.
const refreshRotationWindow = 72 * time.Hour

// AuthService coordinates registration, login and the credential lifecycle.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	providers  map[string]string
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL()),
		providers:  cfg.Auth.ProviderSecrets,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// TokenManager exposes the underlying token manager for middleware and
// issuer construction.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.UserRole) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user with direct credentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewForbidden("account suspended")
	}
	return user, nil
}

// providerClaims is the payload of an external provider login assertion.
type providerClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// LoginExternal authenticates a user from a provider-signed identity
// assertion, auto-provisioning a driver account on first login. Callers
// attach the resulting credential pair through the same cookie issuer as
// the direct login path.
func (s *AuthService) LoginExternal(ctx context.Context, provider, assertion string) (*domain.User, error) {
	secret, ok := s.providers[provider]
	if !ok {
		return nil, apperrors.NewUnauthorized("unknown identity provider")
	}

	parsed, err := jwt.ParseWithClaims(assertion, &providerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid provider assertion")
	}
	claims, ok := parsed.Claims.(*providerClaims)
	if !ok || !parsed.Valid || claims.Email == "" {
		return nil, apperrors.NewUnauthorized("invalid provider assertion")
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		user = &domain.User{
			Name:   claims.Name,
			Email:  claims.Email,
			Role:   domain.RoleDriver,
			Status: domain.UserStatusActive,
		}
		if user.Name == "" {
			user.Name = claims.Email
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewForbidden("account suspended")
	}
	return user, nil
}

// RefreshResult reports the outcome of one refresh request. RefreshToken is
// empty unless the refresh token was rotated.
type RefreshResult struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	Rotated          bool
}

// Refresh validates a refresh token and mints a new access token. When the
// refresh token has less than the rotation window left it is replaced as
// well; a failure inside that rotation sub-step is logged and swallowed so
// the access refresh still succeeds.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*RefreshResult, error) {
	claims, err := s.tokens.Decode(rawRefresh)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.NewValidationError("token expired or invalid", nil)
		}
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	if claims.Kind != auth.TokenKindRefresh {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, err
	}

	accessToken, accessExp, err := s.tokens.MintAccess(userID)
	if err != nil {
		return nil, err
	}
	result := &RefreshResult{AccessToken: accessToken, AccessExpiresAt: accessExp}

	if time.Until(claims.ExpiresAt.Time) < refreshRotationWindow {
		if err := s.rotateRefresh(ctx, result); err != nil {
			s.logger.Warn("refresh rotation skipped", zap.Error(err))
		}
	}
	return result, nil
}

// rotateRefresh re-derives the subject from the freshly minted access token
// and issues a replacement refresh token. The re-decode and re-lookup are a
// defensive cross-check; the caller only logs an error from here.
func (s *AuthService) rotateRefresh(ctx context.Context, result *RefreshResult) error {
	claims, err := s.tokens.Decode(result.AccessToken)
	if err != nil {
		return fmt.Errorf("decode minted access token: %w", err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return fmt.Errorf("re-resolve subject %d: %w", userID, err)
	}

	refreshToken, refreshExp, err := s.tokens.MintRefresh(userID)
	if err != nil {
		return err
	}
	result.RefreshToken = refreshToken
	result.RefreshExpiresAt = refreshExp
	result.Rotated = true
	return nil
}

// Verify reports whether the caller holds a currently valid credential,
// preferring the access token and falling back to the refresh token. It
// never mints or writes anything.
func (s *AuthService) Verify(ctx context.Context, rawAccess, rawRefresh string) error {
	if rawAccess == "" && rawRefresh == "" {
		return apperrors.NewValidationError("credentials required", nil)
	}

	if rawAccess != "" && s.accessValid(ctx, rawAccess) {
		return nil
	}

	// A bad or absent access token falls through to the refresh check.
	if rawRefresh == "" {
		return apperrors.NewUnauthorized("no valid credentials")
	}

	claims, err := s.tokens.Decode(rawRefresh)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return apperrors.NewValidationError("token is expired or invalid", nil)
		}
		return apperrors.NewValidationError("invalid refresh token", nil)
	}
	if claims.Kind != auth.TokenKindRefresh {
		return apperrors.NewValidationError("invalid refresh token", nil)
	}

	userID, err := claims.UserID()
	if err != nil {
		return apperrors.NewValidationError("invalid refresh token", nil)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return err
	}
	return nil
}

func (s *AuthService) accessValid(ctx context.Context, rawAccess string) bool {
	claims, err := s.tokens.Decode(rawAccess)
	if err != nil || claims.Kind != auth.TokenKindAccess {
		return false
	}
	userID, err := claims.UserID()
	if err != nil {
		return false
	}
	_, err = s.users.GetByID(ctx, userID)
	return err == nil
}
