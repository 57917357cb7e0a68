package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/streamhub/backend/internal/logging"
	"github.com/streamhub/backend/internal/models"
)

var (
	// ErrUserNotFound indicates the token's subject no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrRefreshReplayed indicates the presented refresh token is not the
	// user's current one: it was already rotated away or revoked.
	ErrRefreshReplayed = errors.New("refresh token expired or used")
)

// SessionStore persists the single currently valid refresh token per
// user. The reference implementation keeps it as a column on the user
// record; the abstraction exists so the rotation and replay check live in
// one routine instead of being scattered across handlers.
type SessionStore interface {
	CurrentRefreshToken(ctx context.Context, userID string) (string, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserSource resolves token subjects back to full user records.
type UserSource interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// SessionManager orchestrates token issuance, single-use refresh rotation
// and revocation over the TokenIssuer and SessionStore.
type SessionManager struct {
	issuer *TokenIssuer
	users  UserSource
	store  SessionStore
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(issuer *TokenIssuer, users UserSource, store SessionStore) *SessionManager {
	if issuer == nil || users == nil || store == nil {
		panic("auth: session manager dependencies must not be nil")
	}
	return &SessionManager{issuer: issuer, users: users, store: store}
}

// Issue mints a fresh access/refresh pair for the user and persists the
// refresh token, invalidating any previously issued one by overwrite.
func (m *SessionManager) Issue(ctx context.Context, user models.User) (models.TokenPair, error) {
	access, accessExp, err := m.issuer.IssueAccessToken(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, refreshExp, err := m.issuer.IssueRefreshToken(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := m.store.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return models.TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Rotate exchanges a presented refresh token for a new pair. Each token
// works exactly once: the presented value must byte-equal the user's
// stored token, and a successful rotation overwrites it. Failures are
// ErrTokenInvalid, ErrTokenExpired, ErrUserNotFound or ErrRefreshReplayed.
func (m *SessionManager) Rotate(ctx context.Context, presented string) (models.User, models.TokenPair, error) {
	ctx, span := logging.StartSpan(ctx, "session.rotate")
	defer span.End()

	claims, err := m.issuer.VerifyRefreshToken(presented)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	user, err := m.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return models.User{}, models.TokenPair{}, ErrUserNotFound
	}

	current, err := m.store.CurrentRefreshToken(ctx, user.ID)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("load current refresh token: %w", err)
	}

	if current == "" || subtle.ConstantTimeCompare([]byte(current), []byte(presented)) != 1 {
		return models.User{}, models.TokenPair{}, ErrRefreshReplayed
	}

	pair, err := m.Issue(ctx, user)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}
	return user, pair, nil
}

// Revoke clears the user's stored refresh token, ending the session.
func (m *SessionManager) Revoke(ctx context.Context, userID string) error {
	return m.store.ClearRefreshToken(ctx, userID)
}
