package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/fleet-service/internal/auth"
)

func newTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", 10*time.Minute, 30*24*time.Hour)
}

func TestMintDecodeRoundTrip(t *testing.T) {
	tm := newTokenManager()

	for _, kind := range []auth.TokenKind{auth.TokenKindAccess, auth.TokenKindRefresh} {
		raw, expiresAt, err := tm.Mint(42, kind, time.Minute)
		if err != nil {
			t.Fatalf("mint %s: %v", kind, err)
		}
		if !expiresAt.After(time.Now()) {
			t.Fatalf("expected future expiry, got %v", expiresAt)
		}

		claims, err := tm.Decode(raw)
		if err != nil {
			t.Fatalf("decode %s: %v", kind, err)
		}
		if claims.Kind != kind {
			t.Errorf("kind = %s, want %s", claims.Kind, kind)
		}
		userID, err := claims.UserID()
		if err != nil {
			t.Fatalf("user id: %v", err)
		}
		if userID != 42 {
			t.Errorf("user id = %d, want 42", userID)
		}
	}
}

func TestDecodeExpired(t *testing.T) {
	tm := newTokenManager()

	raw, _, err := tm.Mint(7, auth.TokenKindRefresh, -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := tm.Decode(raw); !errors.Is(err, auth.ErrTokenExpired) {
		t.Fatalf("decode expired = %v, want ErrTokenExpired", err)
	}
}

func TestDecodeTamperedSignature(t *testing.T) {
	tm := newTokenManager()

	raw, _, err := tm.Mint(7, auth.TokenKindAccess, time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	tampered := tamper(raw)
	if _, err := tm.Decode(tampered); !errors.Is(err, auth.ErrTokenMalformed) {
		t.Fatalf("decode tampered = %v, want ErrTokenMalformed", err)
	}
}

func TestDecodeTamperedWinsOverExpired(t *testing.T) {
	tm := newTokenManager()

	// An expired token with a broken signature must report malformed, never
	// expired: signature trust comes first.
	raw, _, err := tm.Mint(7, auth.TokenKindRefresh, -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := tm.Decode(tamper(raw)); !errors.Is(err, auth.ErrTokenMalformed) {
		t.Fatalf("decode = %v, want ErrTokenMalformed", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	tm := newTokenManager()

	for _, raw := range []string{"", "garbage", "a.b.c", strings.Repeat("x", 500)} {
		if _, err := tm.Decode(raw); !errors.Is(err, auth.ErrTokenMalformed) {
			t.Errorf("decode %q = %v, want ErrTokenMalformed", raw, err)
		}
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	tm := newTokenManager()
	other := auth.NewTokenManager("other-secret", 10*time.Minute, 30*24*time.Hour)

	raw, _, err := other.Mint(7, auth.TokenKindAccess, time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := tm.Decode(raw); !errors.Is(err, auth.ErrTokenMalformed) {
		t.Fatalf("decode = %v, want ErrTokenMalformed", err)
	}
}

// tamper flips the final signature byte.
func tamper(raw string) string {
	last := raw[len(raw)-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	return raw[:len(raw)-1] + string(replacement)
}
