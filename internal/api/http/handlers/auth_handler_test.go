package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/fleet-service/internal/api/http"
	"github.com/spec-kit/fleet-service/internal/api/http/handlers"
	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/config"
	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/observability"
	"github.com/spec-kit/fleet-service/internal/repository/repositorytest"
	"github.com/spec-kit/fleet-service/internal/service"
)

type authEnv struct {
	app   *fiber.App
	store *repositorytest.UserStore
	svc   *service.AuthService
	user  *domain.User
}

func setupAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 10,
			RefreshTokenTTLDays:   30,
			CookieDomain:          "fleet.example.com",
			CookiePath:            "/",
			CookieSecure:          true,
			CookieSameSite:        "Lax",
			BcryptCost:            4,
			ProviderSecrets:       map[string]string{"partner": "provider-secret"},
		},
	}

	store := repositorytest.NewUserStore()
	hash, err := auth.HashPassword("hunter22", 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := store.Add(&domain.User{
		Name:         "Dana",
		Email:        "dana@example.com",
		PasswordHash: hash,
		Role:         domain.RoleDispatcher,
	})

	svc := service.NewAuthService(cfg, store, zap.NewNop())
	issuer := auth.NewCookieIssuer(svc.TokenManager(), auth.CookiePolicy{
		Domain:   cfg.Auth.CookieDomain,
		Path:     cfg.Auth.CookiePath,
		Secure:   cfg.Auth.CookieSecure,
		HTTPOnly: true,
		SameSite: cfg.Auth.CookieSameSite,
	})
	handler := handlers.NewAuthHandler(svc, issuer)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Post("/auth/register", handler.Register)
	app.Post("/auth/login", handler.Login)
	app.Post("/auth/login/external", handler.LoginExternal)
	app.Post("/auth/refresh", handler.Refresh)
	app.Get("/auth/verify", handler.Verify)
	app.Post("/auth/logout", handler.Logout)

	return &authEnv{app: app, store: store, svc: svc, user: user}
}

func (env *authEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func responseCookies(resp *http.Response) map[string]*http.Cookie {
	cookies := make(map[string]*http.Cookie)
	for _, cookie := range resp.Cookies() {
		cookies[cookie.Name] = cookie
	}
	return cookies
}

func TestLoginSetsCredentialPair(t *testing.T) {
	env := setupAuthEnv(t)

	resp := env.do(t, http.MethodPost, "/auth/login", `{"email":"dana@example.com","password":"hunter22"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	cookies := responseCookies(resp)
	if _, ok := cookies[auth.AccessCookieName]; !ok {
		t.Error("access cookie missing")
	}
	if _, ok := cookies[auth.RefreshCookieName]; !ok {
		t.Error("refresh cookie missing")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := setupAuthEnv(t)

	resp := env.do(t, http.MethodPost, "/auth/login", `{"email":"dana@example.com","password":"wrong"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if len(resp.Cookies()) != 0 {
		t.Error("failed login must not set cookies")
	}
}

func TestExternalLoginMatchesDirectLoginCookieShape(t *testing.T) {
	env := setupAuthEnv(t)

	direct := env.do(t, http.MethodPost, "/auth/login", `{"email":"dana@example.com","password":"hunter22"}`)
	defer direct.Body.Close()

	assertion := signAssertion(t, "provider-secret", "rae@example.com")
	external := env.do(t, http.MethodPost, "/auth/login/external",
		`{"provider":"partner","assertion":"`+assertion+`"}`)
	defer external.Body.Close()
	if external.StatusCode != http.StatusOK {
		t.Fatalf("external login status = %d, want 200", external.StatusCode)
	}

	directCookies := responseCookies(direct)
	externalCookies := responseCookies(external)
	for _, name := range []string{auth.AccessCookieName, auth.RefreshCookieName} {
		d, e := directCookies[name], externalCookies[name]
		if d == nil || e == nil {
			t.Fatalf("%s cookie missing from one of the paths", name)
		}
		// Any divergence in attributes between the two login paths is a defect.
		if d.Domain != e.Domain || d.Path != e.Path || d.Secure != e.Secure ||
			d.HttpOnly != e.HttpOnly || d.SameSite != e.SameSite || d.MaxAge != e.MaxAge {
			t.Errorf("%s cookie attributes diverge: direct=%+v external=%+v", name, d, e)
		}
	}
}

func signAssertion(t *testing.T, secret, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"name":  "Rae",
		"exp":   time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign assertion: %v", err)
	}
	return signed
}

func TestRefreshWithoutCookie(t *testing.T) {
	env := setupAuthEnv(t)

	resp := env.do(t, http.MethodPost, "/auth/refresh", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRefreshFarFromExpiry(t *testing.T) {
	env := setupAuthEnv(t)

	refresh, _, err := env.svc.TokenManager().Mint(env.user.ID, auth.TokenKindRefresh, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	resp := env.do(t, http.MethodPost, "/auth/refresh", "",
		&http.Cookie{Name: auth.RefreshCookieName, Value: refresh})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	cookies := responseCookies(resp)
	if _, ok := cookies[auth.AccessCookieName]; !ok {
		t.Error("access cookie missing")
	}
	if _, ok := cookies[auth.RefreshCookieName]; ok {
		t.Error("refresh cookie must not be reissued far from expiry")
	}
}

func TestRefreshRotatesNearExpiry(t *testing.T) {
	env := setupAuthEnv(t)

	refresh, oldExp, err := env.svc.TokenManager().Mint(env.user.ID, auth.TokenKindRefresh, 48*time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	resp := env.do(t, http.MethodPost, "/auth/refresh", "",
		&http.Cookie{Name: auth.RefreshCookieName, Value: refresh})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	cookies := responseCookies(resp)
	if _, ok := cookies[auth.AccessCookieName]; !ok {
		t.Error("access cookie missing")
	}
	rotated, ok := cookies[auth.RefreshCookieName]
	if !ok {
		t.Fatal("refresh cookie must rotate inside the three-day window")
	}

	claims, err := env.svc.TokenManager().Decode(rotated.Value)
	if err != nil {
		t.Fatalf("decode rotated refresh: %v", err)
	}
	if !claims.ExpiresAt.After(oldExp) {
		t.Errorf("rotated expiry %v not after old %v", claims.ExpiresAt.Time, oldExp)
	}
}

func TestRefreshErrorStatuses(t *testing.T) {
	env := setupAuthEnv(t)
	tm := env.svc.TokenManager()

	expired, _, _ := tm.Mint(env.user.ID, auth.TokenKindRefresh, -time.Minute)
	ghost, _, _ := tm.Mint(9999, auth.TokenKindRefresh, 24*time.Hour)

	cases := []struct {
		name   string
		value  string
		status int
	}{
		{"expired", expired, http.StatusBadRequest},
		{"malformed", "garbage", http.StatusUnauthorized},
		{"subject gone", ghost, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/auth/refresh", "",
				&http.Cookie{Name: auth.RefreshCookieName, Value: tc.value})
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.status)
			}
		})
	}
}

func TestVerifyEndpoint(t *testing.T) {
	env := setupAuthEnv(t)
	tm := env.svc.TokenManager()

	access, _, _ := tm.Mint(env.user.ID, auth.TokenKindAccess, time.Minute)
	refresh, _, _ := tm.Mint(env.user.ID, auth.TokenKindRefresh, 24*time.Hour)
	expiredAccess, _, _ := tm.Mint(env.user.ID, auth.TokenKindAccess, -time.Minute)
	expiredRefresh, _, _ := tm.Mint(env.user.ID, auth.TokenKindRefresh, -time.Minute)

	cases := []struct {
		name    string
		cookies []*http.Cookie
		status  int
	}{
		{"valid access", []*http.Cookie{{Name: auth.AccessCookieName, Value: access}}, http.StatusOK},
		{"expired access with valid refresh", []*http.Cookie{
			{Name: auth.AccessCookieName, Value: expiredAccess},
			{Name: auth.RefreshCookieName, Value: refresh},
		}, http.StatusOK},
		{"no credentials", nil, http.StatusBadRequest},
		{"expired refresh only", []*http.Cookie{{Name: auth.RefreshCookieName, Value: expiredRefresh}}, http.StatusBadRequest},
		{"expired access only", []*http.Cookie{{Name: auth.AccessCookieName, Value: expiredAccess}}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, http.MethodGet, "/auth/verify", "", tc.cookies...)
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			if len(resp.Cookies()) != 0 {
				t.Error("verify must never write cookies")
			}
		})
	}
}

func TestLogout(t *testing.T) {
	env := setupAuthEnv(t)

	// Logout succeeds and deletes both cookies whether or not any were sent.
	resp := env.do(t, http.MethodPost, "/auth/logout", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	cookies := responseCookies(resp)
	for _, name := range []string{auth.AccessCookieName, auth.RefreshCookieName} {
		cookie, ok := cookies[name]
		if !ok {
			t.Fatalf("%s delete instruction missing", name)
		}
		if cookie.Value != "" || !cookie.Expires.Before(time.Now()) {
			t.Errorf("%s not expired: %+v", name, cookie)
		}
	}
}

func TestRegister(t *testing.T) {
	env := setupAuthEnv(t)

	resp := env.do(t, http.MethodPost, "/auth/register",
		`{"name":"Sam","email":"sam@example.com","password":"pass1234"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body struct {
		Data struct {
			User struct {
				ID   int64  `json:"id"`
				Role string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.User.Role != string(domain.RoleDriver) {
		t.Errorf("default role = %s, want DRIVER", body.Data.User.Role)
	}

	cookies := responseCookies(resp)
	if len(cookies) != 2 {
		t.Errorf("expected both credential cookies, got %d", len(cookies))
	}

	// Duplicate email conflicts.
	dup := env.do(t, http.MethodPost, "/auth/register",
		`{"name":"Sam","email":"sam@example.com","password":"pass1234"}`)
	defer dup.Body.Close()
	if dup.StatusCode != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", dup.StatusCode)
	}
}
