package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/streamhub/backend/internal/apierror"
	"github.com/streamhub/backend/internal/models"
)

// LikeHandler implements the like toggle and listing endpoints. One edge
// kind per route; all three share the toggle engine.
type LikeHandler struct {
	Likes LikeStore
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, models.LikeTargetVideo, r.PathValue("videoId"))
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, models.LikeTargetComment, r.PathValue("commentId"))
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, models.LikeTargetTweet, r.PathValue("tweetId"))
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.LikeTargetKind, targetID string) error {
	ctx := r.Context()

	user, err := currentUser(r)
	if err != nil {
		return err
	}

	if _, err := uuid.Parse(targetID); err != nil {
		return apierror.BadRequest("Invalid %s ID", kind)
	}

	active, err := h.Likes.Toggle(ctx, user.ID, kind, targetID)
	if err != nil {
		return fmt.Errorf("toggle %s like: %w", kind, err)
	}

	message := fmt.Sprintf("%s unliked successfully", kind)
	if active {
		message = fmt.Sprintf("%s liked successfully", kind)
	}

	return respond(ctx, w, http.StatusOK, map[string]bool{"isLiked": active}, message)
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	user, err := currentUser(r)
	if err != nil {
		return err
	}

	videos, err := h.Likes.ListLikedVideos(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list liked videos: %w", err)
	}
	if videos == nil {
		videos = []models.LikedVideo{}
	}

	return respond(ctx, w, http.StatusOK, videos, "Liked videos fetched successfully")
}
