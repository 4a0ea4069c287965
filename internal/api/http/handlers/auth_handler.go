package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fleet-service/internal/api/dto"
	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/service"
)

// AuthHandler exposes the credential lifecycle endpoints. Both login paths
// attach cookies through the one shared issuer so their cookie shapes can
// never diverge.
type AuthHandler struct {
	auth   *service.AuthService
	issuer *auth.CookieIssuer
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, issuer *auth.CookieIssuer) *AuthHandler {
	return &AuthHandler{auth: authService, issuer: issuer}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email, password required")
	}

	role := domain.RoleDriver
	switch req.Role {
	case "", string(domain.RoleDriver):
	case string(domain.RoleDispatcher):
		role = domain.RoleDispatcher
	default:
		return fiber.NewError(http.StatusBadRequest, "role must be DRIVER or DISPATCHER")
	}

	user, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		return err
	}

	pair, err := h.issuer.Issue(user.ID)
	if err != nil {
		return err
	}
	h.issuer.Attach(c, pair)

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user":    userResponse(user),
			"session": sessionResponse(pair),
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	user, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	pair, err := h.issuer.Issue(user.ID)
	if err != nil {
		return err
	}
	h.issuer.Attach(c, pair)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":    userResponse(user),
			"session": sessionResponse(pair),
		},
	})
}

// LoginExternal handles POST /auth/login/external.
func (h *AuthHandler) LoginExternal(c *fiber.Ctx) error {
	var req dto.ExternalLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Provider == "" || req.Assertion == "" {
		return fiber.NewError(http.StatusBadRequest, "provider and assertion required")
	}

	user, err := h.auth.LoginExternal(c.Context(), req.Provider, req.Assertion)
	if err != nil {
		return err
	}

	pair, err := h.issuer.Issue(user.ID)
	if err != nil {
		return err
	}
	h.issuer.Attach(c, pair)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":    userResponse(user),
			"session": sessionResponse(pair),
		},
	})
}

// Refresh handles POST /auth/refresh: a new access cookie always, a new
// refresh cookie only when the old one was close enough to expiry to
// rotate.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	raw := c.Cookies(auth.RefreshCookieName)
	if raw == "" {
		return fiber.NewError(http.StatusBadRequest, "refresh token required")
	}

	result, err := h.auth.Refresh(c.Context(), raw)
	if err != nil {
		return err
	}

	h.issuer.AttachAccess(c, result.AccessToken)
	response := dto.SessionResponse{AccessExpiresAt: result.AccessExpiresAt}
	if result.Rotated {
		h.issuer.AttachRefresh(c, result.RefreshToken)
		response.RefreshExpiresAt = result.RefreshExpiresAt
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"session": response}})
}

// Verify handles GET /auth/verify. Read-only: no cookie is ever written
// here, even when only the refresh credential is still valid.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	err := h.auth.Verify(c.Context(),
		c.Cookies(auth.AccessCookieName),
		c.Cookies(auth.RefreshCookieName),
	)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"authenticated": true}})
}

// Logout handles POST /auth/logout. Always 204; deleting absent cookies is
// harmless.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.issuer.Clear(c)
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": userResponse(principal.User)}})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}

func sessionResponse(pair *auth.CredentialPair) dto.SessionResponse {
	return dto.SessionResponse{
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}
