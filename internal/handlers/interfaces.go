package handlers

import (
	"context"
	"io"

	"github.com/streamhub/backend/internal/models"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, username, email string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// SessionManager issues, rotates and revokes session token pairs.
type SessionManager interface {
	Issue(ctx context.Context, user models.User) (models.TokenPair, error)
	Rotate(ctx context.Context, presented string) (models.User, models.TokenPair, error)
	Revoke(ctx context.Context, userID string) error
}

// MediaStore uploads user media and returns a publicly addressable URL.
type MediaStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// LikeStore captures the operations required by the like handlers.
type LikeStore interface {
	Toggle(ctx context.Context, actorID string, kind models.LikeTargetKind, targetID string) (bool, error)
	CountForTarget(ctx context.Context, kind models.LikeTargetKind, targetID string) (int64, error)
	ListLikedVideos(ctx context.Context, actorID string) ([]models.LikedVideo, error)
}

// SubscriptionStore captures the operations required by the subscription handlers.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error)
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.ChannelSubscriber, error)
	ListSubscribed(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error)
}
