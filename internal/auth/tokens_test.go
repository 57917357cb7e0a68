package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/streamhub/backend/internal/config"
	"github.com/streamhub/backend/internal/models"
)

func testTokenConfig() config.TokenConfig {
	return config.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func testUser() models.User {
	return models.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     models.RoleUser,
	}
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	issuer := NewTokenIssuer(testTokenConfig())

	token, expiresAt, err := issuer.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	claims, err := issuer.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if claims.Subject != "user-1" || claims.Username != "alice" || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Role != models.RoleUser {
		t.Fatalf("unexpected role claim: %q", claims.Role)
	}
}

func TestVerifyAccessTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer(testTokenConfig())

	token, _, err := issuer.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	other := testTokenConfig()
	other.AccessSecret = "different-secret"
	if _, err := NewTokenIssuer(other).VerifyAccessToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyAccessTokenRejectsRefreshToken(t *testing.T) {
	issuer := NewTokenIssuer(testTokenConfig())

	refresh, _, err := issuer.IssueRefreshToken(testUser())
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	if _, err := issuer.VerifyAccessToken(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for cross-secret token, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	issuer := NewTokenIssuer(testTokenConfig()).WithNowFunc(func() time.Time { return past })

	token, _, err := issuer.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	live := NewTokenIssuer(testTokenConfig())
	if _, err := live.VerifyAccessToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
