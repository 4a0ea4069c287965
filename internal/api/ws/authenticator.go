package ws

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/repository"
)

// Identity is the subject bound to a streaming connection at handshake
// time. It is resolved once and held for the connection's lifetime.
type Identity struct {
	User *domain.User
}

// Anonymous reports whether no subject could be resolved.
func (id Identity) Anonymous() bool {
	return id.User == nil
}

// Authenticator resolves connection identities for the websocket surface.
// Clients that cannot set cookies pass a one-shot token query parameter;
// browser clients reuse the HTTP credential cookies.
type Authenticator struct {
	tokens *auth.TokenManager
	users  repository.UserRepository
	logger *zap.Logger
}

// NewAuthenticator builds the authenticator.
func NewAuthenticator(tokens *auth.TokenManager, users repository.UserRepository, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, logger: logger}
}

// Resolve tries each credential source in order and binds the first subject
// that decodes and resolves: the query token, then the access cookie, then
// the refresh cookie. Possession of a valid refresh token is accepted as
// proof of identity here. Every failure degrades to the next strategy; a
// total miss yields the anonymous identity, never an error, so the
// transport handshake always completes.
func (a *Authenticator) Resolve(ctx context.Context, queryToken, cookieHeader string) Identity {
	if queryToken != "" {
		if identity, ok := a.fromToken(ctx, queryToken); ok {
			return identity
		}
	}

	cookies := parseCookieHeader(cookieHeader)
	if raw := cookies[auth.AccessCookieName]; raw != "" {
		if identity, ok := a.fromToken(ctx, raw); ok {
			return identity
		}
	}
	if raw := cookies[auth.RefreshCookieName]; raw != "" {
		if identity, ok := a.fromToken(ctx, raw); ok {
			return identity
		}
	}
	return Identity{}
}

func (a *Authenticator) fromToken(ctx context.Context, raw string) (Identity, bool) {
	claims, err := a.tokens.Decode(raw)
	if err != nil {
		return Identity{}, false
	}
	userID, err := claims.UserID()
	if err != nil {
		return Identity{}, false
	}
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		a.logger.Debug("streaming auth subject lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return Identity{}, false
	}
	return Identity{User: user}, true
}

// parseCookieHeader parses a raw Cookie header value. The websocket
// handshake is not a plain HTTP request by the time identity is resolved,
// so the header is parsed directly instead of through a request cookie jar.
func parseCookieHeader(header string) map[string]string {
	if header == "" {
		return nil
	}
	req := http.Request{Header: http.Header{"Cookie": []string{header}}}
	cookies := make(map[string]string)
	for _, cookie := range req.Cookies() {
		if _, seen := cookies[cookie.Name]; !seen {
			cookies[cookie.Name] = cookie.Value
		}
	}
	return cookies
}
