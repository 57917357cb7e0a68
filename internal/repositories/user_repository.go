package repositories

import (
	"context"

	"github.com/streamhub/backend/internal/models"
)

// UserRepository defines the data access contract for user accounts.
// The refresh-token methods double as the auth.SessionStore: the current
// refresh token is a column on the user record, so at most one is valid
// per user at any time.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, username, email string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	CurrentRefreshToken(ctx context.Context, userID string) (string, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	ClearRefreshToken(ctx context.Context, userID string) error
}
