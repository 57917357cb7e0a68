package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/streamhub/backend/internal/apierror"
	"github.com/streamhub/backend/internal/models"
)

// SubscriptionHandler implements subscription toggling and the read-side
// listings built on the same edges.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	user, err := currentUser(r)
	if err != nil {
		return err
	}

	channelID := r.PathValue("channelId")
	if _, err := uuid.Parse(channelID); err != nil {
		return apierror.BadRequest("Invalid channel ID")
	}
	if channelID == user.ID {
		return apierror.BadRequest("You cannot subscribe to your own channel")
	}

	active, err := h.Subscriptions.Toggle(ctx, user.ID, channelID)
	if err != nil {
		return fmt.Errorf("toggle subscription: %w", err)
	}

	message := "Unsubscribed successfully"
	if active {
		message = "Subscribed successfully"
	}

	return respond(ctx, w, http.StatusOK, map[string]bool{"isSubscribed": active}, message)
}

type subscriberListResponse struct {
	Subscribers     []models.ChannelSubscriber `json:"subscribers"`
	SubscriberCount int                        `json:"subscriberCount"`
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if _, err := currentUser(r); err != nil {
		return err
	}

	channelID := r.PathValue("channelId")
	if _, err := uuid.Parse(channelID); err != nil {
		return apierror.BadRequest("Invalid channel ID")
	}

	subscribers, err := h.Subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}
	if subscribers == nil {
		subscribers = []models.ChannelSubscriber{}
	}

	return respond(ctx, w, http.StatusOK, subscriberListResponse{
		Subscribers:     subscribers,
		SubscriberCount: len(subscribers),
	}, "Subscribers fetched successfully")
}

type subscribedListResponse struct {
	Channels     []models.SubscribedChannel `json:"channels"`
	ChannelCount int                        `json:"channelCount"`
}

// SubscribedChannels handles GET /api/v1/subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if _, err := currentUser(r); err != nil {
		return err
	}

	subscriberID := r.PathValue("subscriberId")
	if _, err := uuid.Parse(subscriberID); err != nil {
		return apierror.BadRequest("Invalid subscriber ID")
	}

	channels, err := h.Subscriptions.ListSubscribed(ctx, subscriberID)
	if err != nil {
		return fmt.Errorf("list subscribed channels: %w", err)
	}
	if channels == nil {
		channels = []models.SubscribedChannel{}
	}

	return respond(ctx, w, http.StatusOK, subscribedListResponse{
		Channels:     channels,
		ChannelCount: len(channels),
	}, "Subscribed channels fetched successfully")
}
