package ws_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/fleet-service/internal/api/ws"
	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/repository/repositorytest"
)

func setupAuthenticator(t *testing.T) (*ws.Authenticator, *auth.TokenManager, *domain.User, *domain.User) {
	t.Helper()

	store := repositorytest.NewUserStore()
	driver := store.Add(&domain.User{Name: "Dana", Email: "dana@example.com", Role: domain.RoleDriver})
	manager := store.Add(&domain.User{Name: "Morgan", Email: "morgan@example.com", Role: domain.RoleManager})

	tokens := auth.NewTokenManager("test-secret", 10*time.Minute, 30*24*time.Hour)
	return ws.NewAuthenticator(tokens, store, zap.NewNop()), tokens, driver, manager
}

func TestResolveQueryTokenWinsOverCookies(t *testing.T) {
	authn, tokens, driver, manager := setupAuthenticator(t)

	queryToken, _, err := tokens.MintAccess(driver.ID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	cookieToken, _, err := tokens.MintAccess(manager.ID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	identity := authn.Resolve(context.Background(), queryToken,
		auth.AccessCookieName+"="+cookieToken)
	if identity.Anonymous() {
		t.Fatal("expected a bound identity")
	}
	if identity.User.ID != driver.ID {
		t.Errorf("bound user %d, want query-token subject %d", identity.User.ID, driver.ID)
	}
}

func TestResolveBadQueryTokenFallsBackToAccessCookie(t *testing.T) {
	authn, tokens, driver, _ := setupAuthenticator(t)

	cookieToken, _, err := tokens.MintAccess(driver.ID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	identity := authn.Resolve(context.Background(), "not-a-token",
		auth.AccessCookieName+"="+cookieToken)
	if identity.Anonymous() || identity.User.ID != driver.ID {
		t.Errorf("expected fallback to access cookie subject %d, got %+v", driver.ID, identity)
	}
}

func TestResolveRefreshCookieAlone(t *testing.T) {
	authn, tokens, driver, _ := setupAuthenticator(t)

	refresh, _, err := tokens.MintRefresh(driver.ID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	identity := authn.Resolve(context.Background(), "",
		auth.RefreshCookieName+"="+refresh)
	if identity.Anonymous() || identity.User.ID != driver.ID {
		t.Errorf("expected refresh cookie to bind subject %d, got %+v", driver.ID, identity)
	}
}

func TestResolveNothingIsAnonymous(t *testing.T) {
	authn, _, _, _ := setupAuthenticator(t)

	cases := []struct {
		name         string
		queryToken   string
		cookieHeader string
	}{
		{"no credentials", "", ""},
		{"garbage everywhere", "junk", auth.AccessCookieName + "=junk; " + auth.RefreshCookieName + "=junk"},
		{"unrelated cookies", "", "theme=dark; lang=en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			identity := authn.Resolve(context.Background(), tc.queryToken, tc.cookieHeader)
			if !identity.Anonymous() {
				t.Errorf("expected anonymous identity, got user %+v", identity.User)
			}
		})
	}
}

func TestResolveExpiredCredentialsAreAnonymous(t *testing.T) {
	authn, tokens, driver, _ := setupAuthenticator(t)

	expired, _, err := tokens.Mint(driver.ID, auth.TokenKindAccess, -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	identity := authn.Resolve(context.Background(), expired, "")
	if !identity.Anonymous() {
		t.Error("expired query token must not bind an identity")
	}
}

func TestResolveParsesMultiCookieHeader(t *testing.T) {
	authn, tokens, driver, _ := setupAuthenticator(t)

	access, _, err := tokens.MintAccess(driver.ID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	header := "theme=dark; " + auth.AccessCookieName + "=" + access + "; lang=en"
	identity := authn.Resolve(context.Background(), "", header)
	if identity.Anonymous() || identity.User.ID != driver.ID {
		t.Errorf("expected subject %d from multi-cookie header, got %+v", driver.ID, identity)
	}
}

func TestResolveDeletedSubjectIsAnonymous(t *testing.T) {
	store := repositorytest.NewUserStore()
	tokens := auth.NewTokenManager("test-secret", 10*time.Minute, 30*24*time.Hour)
	authn := ws.NewAuthenticator(tokens, store, zap.NewNop())

	access, _, err := tokens.MintAccess(42)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	identity := authn.Resolve(context.Background(), access, "")
	if !identity.Anonymous() {
		t.Error("token for a missing subject must not bind an identity")
	}
}
