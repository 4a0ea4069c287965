package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates access from refresh credentials.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Decode errors. Callers branch on these: an expired refresh token and a
// malformed one map to different HTTP responses.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims describes the signed token payload.
type Claims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject carried by the token.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric token subject %q", c.Subject)
	}
	return id, nil
}

// TokenManager mints and decodes signed credential tokens. It is pure: the
// only inputs are the token bytes, the injected secret and the clock.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a manager with the process-wide signing secret.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 10 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// AccessTTL returns the configured access token lifetime.
func (tm *TokenManager) AccessTTL() time.Duration { return tm.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (tm *TokenManager) RefreshTTL() time.Duration { return tm.refreshTTL }

// Mint signs a token for the subject expiring after ttl.
func (tm *TokenManager) Mint(userID int64, kind TokenKind, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// MintAccess issues an access token with the configured short TTL.
func (tm *TokenManager) MintAccess(userID int64) (string, time.Time, error) {
	return tm.Mint(userID, TokenKindAccess, tm.accessTTL)
}

// MintRefresh issues a refresh token with the configured long TTL.
func (tm *TokenManager) MintRefresh(userID int64) (string, time.Time, error) {
	return tm.Mint(userID, TokenKindRefresh, tm.refreshTTL)
}

// Decode verifies signature and expiry and returns the claims. A bad
// signature or structure yields ErrTokenMalformed; a well-signed token past
// its expiry yields ErrTokenExpired. Signature verification runs before
// claim validation, so a tampered token is never reported as merely expired.
func (tm *TokenManager) Decode(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Kind != TokenKindAccess && claims.Kind != TokenKindRefresh {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
