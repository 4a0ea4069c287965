package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/config"
	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/repository"
	"github.com/spec-kit/fleet-service/internal/repository/repositorytest"
	"github.com/spec-kit/fleet-service/internal/service"
	apperrors "github.com/spec-kit/fleet-service/pkg/util/errorutil"
)

func newAuthService(store repository.UserRepository) *service.AuthService {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 10,
			RefreshTokenTTLDays:   30,
			BcryptCost:            4,
			ProviderSecrets:       map[string]string{"partner": "provider-secret"},
		},
	}
	return service.NewAuthService(cfg, store, zap.NewNop())
}

func seedUser(store *repositorytest.UserStore) *domain.User {
	hash, _ := auth.HashPassword("hunter22", 4)
	return store.Add(&domain.User{
		Name:         "Dana",
		Email:        "dana@example.com",
		PasswordHash: hash,
		Role:         domain.RoleDispatcher,
	})
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestLogin(t *testing.T) {
	store := repositorytest.NewUserStore()
	user := seedUser(store)
	svc := newAuthService(store)

	got, err := svc.Login(context.Background(), user.Email, "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("user id = %d, want %d", got.ID, user.ID)
	}

	if _, err := svc.Login(context.Background(), user.Email, "wrong"); statusOf(t, err) != 401 {
		t.Errorf("wrong password status = %d, want 401", statusOf(t, err))
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "hunter22"); statusOf(t, err) != 401 {
		t.Errorf("unknown email status = %d, want 401", statusOf(t, err))
	}
}

func externalAssertion(t *testing.T, secret, email, name string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"name":  name,
		"exp":   time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign assertion: %v", err)
	}
	return signed
}

func TestLoginExternal(t *testing.T) {
	store := repositorytest.NewUserStore()
	svc := newAuthService(store)

	assertion := externalAssertion(t, "provider-secret", "rae@example.com", "Rae")
	user, err := svc.LoginExternal(context.Background(), "partner", assertion)
	if err != nil {
		t.Fatalf("external login: %v", err)
	}
	if user.Email != "rae@example.com" || user.Role != domain.RoleDriver {
		t.Errorf("provisioned user = %+v", user)
	}

	// Second login resolves the same account.
	again, err := svc.LoginExternal(context.Background(), "partner", assertion)
	if err != nil {
		t.Fatalf("repeat external login: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("repeat login id = %d, want %d", again.ID, user.ID)
	}

	badSig := externalAssertion(t, "wrong-secret", "rae@example.com", "Rae")
	if _, err := svc.LoginExternal(context.Background(), "partner", badSig); statusOf(t, err) != 401 {
		t.Errorf("bad signature status = %d, want 401", statusOf(t, err))
	}
	if _, err := svc.LoginExternal(context.Background(), "unknown", assertion); statusOf(t, err) != 401 {
		t.Errorf("unknown provider status = %d, want 401", statusOf(t, err))
	}
}

func TestRefreshIssuesAccessWithoutRotation(t *testing.T) {
	store := repositorytest.NewUserStore()
	user := seedUser(store)
	svc := newAuthService(store)

	// Plenty of lifetime left: well above the three-day rotation window.
	refresh, _, err := svc.TokenManager().Mint(user.ID, auth.TokenKindRefresh, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}

	result, err := svc.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("expected new access token")
	}
	if result.Rotated || result.RefreshToken != "" {
		t.Error("refresh token must not rotate far from expiry")
	}

	claims, err := svc.TokenManager().Decode(result.AccessToken)
	if err != nil {
		t.Fatalf("decode minted access: %v", err)
	}
	if claims.Kind != auth.TokenKindAccess {
		t.Errorf("minted kind = %s, want access", claims.Kind)
	}
}

func TestRefreshRotatesNearExpiry(t *testing.T) {
	store := repositorytest.NewUserStore()
	user := seedUser(store)
	svc := newAuthService(store)

	oldRefresh, oldExp, err := svc.TokenManager().Mint(user.ID, auth.TokenKindRefresh, 48*time.Hour)
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}

	result, err := svc.Refresh(context.Background(), oldRefresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !result.Rotated || result.RefreshToken == "" {
		t.Fatal("expected rotation inside the three-day window")
	}
	if !result.RefreshExpiresAt.After(oldExp) {
		t.Errorf("rotated expiry %v not after old expiry %v", result.RefreshExpiresAt, oldExp)
	}

	claims, err := svc.TokenManager().Decode(result.RefreshToken)
	if err != nil {
		t.Fatalf("decode rotated refresh: %v", err)
	}
	if claims.Kind != auth.TokenKindRefresh {
		t.Errorf("rotated kind = %s, want refresh", claims.Kind)
	}
	userID, _ := claims.UserID()
	if userID != user.ID {
		t.Errorf("rotated subject = %d, want %d", userID, user.ID)
	}
}

// flakyUserStore fails every GetByID after the first, so the subject
// resolves for the access mint but not for the rotation re-check.
type flakyUserStore struct {
	*repositorytest.UserStore
	lookups int
}

func (s *flakyUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s.lookups++
	if s.lookups > 1 {
		return nil, errors.New("connection reset by peer")
	}
	return s.UserStore.GetByID(ctx, id)
}

func TestRefreshRotationFailureIsSwallowed(t *testing.T) {
	store := repositorytest.NewUserStore()
	user := seedUser(store)
	flaky := &flakyUserStore{UserStore: store}
	svc := newAuthService(flaky)

	nearExpiry, _, err := svc.TokenManager().Mint(user.ID, auth.TokenKindRefresh, 48*time.Hour)
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}

	result, err := svc.Refresh(context.Background(), nearExpiry)
	if err != nil {
		t.Fatalf("refresh must succeed despite rotation failure: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("access token missing")
	}
	if result.Rotated {
		t.Error("rotation must be reported skipped when the re-lookup fails")
	}
	if result.RefreshToken != "" {
		t.Errorf("no replacement refresh token expected, got %q", result.RefreshToken)
	}
}

func TestRefreshErrors(t *testing.T) {
	store := repositorytest.NewUserStore()
	user := seedUser(store)
	svc := newAuthService(store)

	expired, _, _ := svc.TokenManager().Mint(user.ID, auth.TokenKindRefresh, -time.Minute)
	accessKind, _, _ := svc.TokenManager().Mint(user.ID, auth.TokenKindAccess, time.Minute)
	ghost, _, _ := svc.TokenManager().Mint(9999, auth.TokenKindRefresh, 24*time.Hour)

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"expired", expired, 400},
		{"malformed", "not-a-token", 401},
		{"access kind rejected", accessKind, 401},
		{"subject gone", ghost, 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Refresh(context.Background(), tc.token)
			if got := statusOf(t, err); got != tc.status {
				t.Errorf("status = %d, want %d", got, tc.status)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	store := repositorytest.NewUserStore()
	user := seedUser(store)
	svc := newAuthService(store)
	tm := svc.TokenManager()

	access, _, _ := tm.Mint(user.ID, auth.TokenKindAccess, time.Minute)
	refresh, _, _ := tm.Mint(user.ID, auth.TokenKindRefresh, 24*time.Hour)
	expiredAccess, _, _ := tm.Mint(user.ID, auth.TokenKindAccess, -time.Minute)
	expiredRefresh, _, _ := tm.Mint(user.ID, auth.TokenKindRefresh, -time.Minute)
	ghostRefresh, _, _ := tm.Mint(9999, auth.TokenKindRefresh, 24*time.Hour)

	cases := []struct {
		name    string
		access  string
		refresh string
		status  int // 0 means success
	}{
		{"valid access only", access, "", 0},
		{"valid access and refresh", access, refresh, 0},
		{"expired access falls back to refresh", expiredAccess, refresh, 0},
		{"refresh possession alone suffices", "", refresh, 0},
		{"neither credential", "", "", 400},
		{"expired access, no refresh", expiredAccess, "", 401},
		{"expired refresh", expiredAccess, expiredRefresh, 400},
		{"malformed refresh", "", "garbage", 400},
		{"refresh subject gone", "", ghostRefresh, 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Verify(context.Background(), tc.access, tc.refresh)
			if tc.status == 0 {
				if err != nil {
					t.Fatalf("verify: %v", err)
				}
				return
			}
			if got := statusOf(t, err); got != tc.status {
				t.Errorf("status = %d, want %d", got, tc.status)
			}
		})
	}
}

func TestVerifyAccessSubjectGoneFallsBackToRefresh(t *testing.T) {
	store := repositorytest.NewUserStore()
	user := seedUser(store)
	other := store.Add(&domain.User{Name: "Sam", Email: "sam@example.com", Role: domain.RoleDriver})
	svc := newAuthService(store)
	tm := svc.TokenManager()

	access, _, _ := tm.Mint(user.ID, auth.TokenKindAccess, time.Minute)
	refresh, _, _ := tm.Mint(other.ID, auth.TokenKindRefresh, 24*time.Hour)
	store.Remove(user.ID)

	if err := svc.Verify(context.Background(), access, refresh); err != nil {
		t.Fatalf("verify should fall through to the valid refresh: %v", err)
	}
}
