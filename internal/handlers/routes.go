package handlers

import (
	"net/http"

	"github.com/streamhub/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Identity      middleware.UserSource
	Verifier      middleware.TokenVerifier
	Sessions      SessionManager
	Media         MediaStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	AuthLimiter   RateLimiter
	CookieSecure  bool
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Routes
// past the identity gate receive the resolved user on the request context.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{
		Users:        deps.Users,
		Sessions:     deps.Sessions,
		Media:        deps.Media,
		Subs:         deps.Subscriptions,
		Limiter:      deps.AuthLimiter,
		CookieSecure: deps.CookieSecure,
	}
	likes := LikeHandler{Likes: deps.Likes}
	subs := SubscriptionHandler{Subscriptions: deps.Subscriptions}

	gate := middleware.IdentityGate(deps.Verifier, deps.Identity)
	protected := func(fn handlerFunc) http.Handler {
		return gate(handle(fn))
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.Handle("POST /api/v1/users/register", handle(users.Register))
	mux.Handle("POST /api/v1/users/login", handle(users.Login))
	mux.Handle("POST /api/v1/users/refresh-token", handle(users.Refresh))

	mux.Handle("POST /api/v1/users/logout", protected(users.Logout))
	mux.Handle("POST /api/v1/users/change-password", protected(users.ChangePassword))
	mux.Handle("GET /api/v1/users/me", protected(users.Me))
	mux.Handle("PATCH /api/v1/users/update-profile", protected(users.UpdateProfile))
	mux.Handle("PATCH /api/v1/users/avatar", protected(users.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/cover-image", protected(users.UpdateCoverImage))
	mux.Handle("GET /api/v1/users/channel/{username}", protected(users.ChannelProfile))

	mux.Handle("POST /api/v1/likes/toggle/v/{videoId}", protected(likes.ToggleVideo))
	mux.Handle("POST /api/v1/likes/toggle/c/{commentId}", protected(likes.ToggleComment))
	mux.Handle("POST /api/v1/likes/toggle/t/{tweetId}", protected(likes.ToggleTweet))
	mux.Handle("GET /api/v1/likes/videos", protected(likes.LikedVideos))

	mux.Handle("POST /api/v1/subscriptions/c/{channelId}", protected(subs.Toggle))
	mux.Handle("GET /api/v1/subscriptions/c/{channelId}", protected(subs.Subscribers))
	mux.Handle("GET /api/v1/subscriptions/u/{subscriberId}", protected(subs.SubscribedChannels))
}
