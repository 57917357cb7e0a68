package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/streamhub/backend/internal/config"
	"github.com/streamhub/backend/internal/models"
)

var (
	// ErrTokenInvalid indicates a token whose signature or shape could not
	// be verified.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired indicates a structurally valid token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// AccessClaims is the claim set carried by access tokens.
type AccessClaims struct {
	Role     models.Role `json:"role"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims is the claim set carried by refresh tokens: only the
// subject, so a stolen refresh token reveals nothing about the account.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the HS256 bearer tokens used for
// sessions. Access and refresh tokens use separate secrets and lifetimes.
type TokenIssuer struct {
	cfg config.TokenConfig
	now func() time.Time
}

// NewTokenIssuer constructs an issuer from the token configuration.
func NewTokenIssuer(cfg config.TokenConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// WithNowFunc overrides the issuer's clock. Tests use this to mint
// already-expired tokens.
func (i *TokenIssuer) WithNowFunc(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

// IssueAccessToken signs a short-lived token carrying the user's identity.
func (i *TokenIssuer) IssueAccessToken(user models.User) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.cfg.AccessTTL)

	claims := AccessClaims{
		Role:     user.Role,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.AccessSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// IssueRefreshToken signs a long-lived token bound only to the user id.
func (i *TokenIssuer) IssueRefreshToken(user models.User) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.cfg.RefreshTTL)

	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.RefreshSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyAccessToken checks signature and expiry and returns the claims.
func (i *TokenIssuer) VerifyAccessToken(token string) (AccessClaims, error) {
	var claims AccessClaims
	if err := i.verify(token, &claims, i.cfg.AccessSecret); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

// VerifyRefreshToken checks signature and expiry and returns the claims.
func (i *TokenIssuer) VerifyRefreshToken(token string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := i.verify(token, &claims, i.cfg.RefreshSecret); err != nil {
		return RefreshClaims{}, err
	}
	return claims, nil
}

func (i *TokenIssuer) verify(token string, claims jwt.Claims, secret string) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}
