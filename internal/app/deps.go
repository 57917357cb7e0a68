package app

import (
	"context"

	"github.com/streamhub/backend/internal/auth"
	"github.com/streamhub/backend/internal/config"
	"github.com/streamhub/backend/internal/db"
	"github.com/streamhub/backend/internal/handlers"
	"github.com/streamhub/backend/internal/middleware"
	"github.com/streamhub/backend/internal/repositories"
	"github.com/streamhub/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the
// HTTP handlers. The user repository doubles as the session store backing
// refresh-token rotation.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	issuer := auth.NewTokenIssuer(cfg.Tokens)
	sessions := auth.NewSessionManager(issuer, users, users)

	media, err := storage.NewS3MediaStore(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	limiter := middleware.NewIPRateLimiter(
		cfg.RateLimit.Requests,
		cfg.RateLimit.Window,
		cfg.RateLimit.Burst,
		cfg.RateLimit.TTL,
	)

	return handlers.Dependencies{
		Users:         users,
		Identity:      users,
		Verifier:      issuer,
		Sessions:      sessions,
		Media:         media,
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		AuthLimiter:   limiter,
		CookieSecure:  cfg.CookieSecure,
	}, nil
}
