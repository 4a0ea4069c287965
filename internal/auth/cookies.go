package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Credential cookie names shared by the HTTP and websocket surfaces.
const (
	AccessCookieName  = "access"
	RefreshCookieName = "refresh"
)

// CookiePolicy configures the attributes applied to every credential
// cookie. Access and refresh cookies share the policy; only MaxAge differs.
type CookiePolicy struct {
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	SameSite string
}

// CredentialPair bundles the access and refresh tokens minted together for
// one subject. It exists only in transit; the client's cookie jar is the
// sole storage.
type CredentialPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// CookieIssuer mints credential pairs and writes them to responses. Every
// login path must go through the same issuer so cookie shapes never diverge.
type CookieIssuer struct {
	tokens *TokenManager
	policy CookiePolicy
}

// NewCookieIssuer builds an issuer around the token manager and policy.
func NewCookieIssuer(tokens *TokenManager, policy CookiePolicy) *CookieIssuer {
	if policy.Path == "" {
		policy.Path = "/"
	}
	return &CookieIssuer{tokens: tokens, policy: policy}
}

// Issue mints a fresh access/refresh pair for the subject.
func (i *CookieIssuer) Issue(userID int64) (*CredentialPair, error) {
	access, accessExp, err := i.tokens.MintAccess(userID)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := i.tokens.MintRefresh(userID)
	if err != nil {
		return nil, err
	}
	return &CredentialPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Attach writes both credential cookies onto the outgoing response.
func (i *CookieIssuer) Attach(c *fiber.Ctx, pair *CredentialPair) {
	i.AttachAccess(c, pair.AccessToken)
	i.AttachRefresh(c, pair.RefreshToken)
}

// AttachAccess writes only the access cookie.
func (i *CookieIssuer) AttachAccess(c *fiber.Ctx, token string) {
	c.Cookie(i.cookie(AccessCookieName, token, i.tokens.AccessTTL()))
}

// AttachRefresh writes only the refresh cookie.
func (i *CookieIssuer) AttachRefresh(c *fiber.Ctx, token string) {
	c.Cookie(i.cookie(RefreshCookieName, token, i.tokens.RefreshTTL()))
}

// Clear expires both credential cookies. Domain and path must match the
// attributes used at set time or the browser treats the delete as a no-op.
func (i *CookieIssuer) Clear(c *fiber.Ctx) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		expired := i.cookie(name, "", 0)
		expired.MaxAge = -1
		expired.Expires = time.Unix(0, 0)
		c.Cookie(expired)
	}
}

func (i *CookieIssuer) cookie(name, value string, maxAge time.Duration) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   int(maxAge / time.Second),
		Domain:   i.policy.Domain,
		Path:     i.policy.Path,
		Secure:   i.policy.Secure,
		HTTPOnly: i.policy.HTTPOnly,
		SameSite: i.policy.SameSite,
	}
}
