package repositories

import (
	"context"

	"github.com/streamhub/backend/internal/models"
)

// LikeRepository defines data access for like edges. Toggle must be
// atomic per (actor, kind, target): concurrent duplicate creates resolve
// to a single edge and a racing delete is a no-op.
type LikeRepository interface {
	Toggle(ctx context.Context, actorID string, kind models.LikeTargetKind, targetID string) (bool, error)
	CountForTarget(ctx context.Context, kind models.LikeTargetKind, targetID string) (int64, error)
	ListLikedVideos(ctx context.Context, actorID string) ([]models.LikedVideo, error)
}

// SubscriptionRepository defines data access for channel subscriptions.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error)
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.ChannelSubscriber, error)
	ListSubscribed(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error)
}
