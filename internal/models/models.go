package models

import "time"

// Role distinguishes regular accounts from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account (and therefore a channel) on the platform.
// Username is stored lowercased and is unique alongside Email. Password
// always holds the bcrypt digest, never plaintext. RefreshToken holds the
// single currently valid refresh token, empty when logged out.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Password     string
	AvatarURL    string
	CoverURL     string
	Role         Role
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public strips credential fields for responses.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// PublicUser is the sanitized projection of a User returned by the API.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullname"`
	AvatarURL string    `json:"avatar"`
	CoverURL  string    `json:"coverImage,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnerSummary is the lightweight projection joined into edge listings,
// never a full user document.
type OwnerSummary struct {
	FullName  string `json:"fullname"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

// LikeTargetKind discriminates what a like points at. Exactly one kind is
// recorded per edge; there are no optional reference fields.
type LikeTargetKind string

const (
	LikeTargetVideo   LikeTargetKind = "video"
	LikeTargetComment LikeTargetKind = "comment"
	LikeTargetTweet   LikeTargetKind = "tweet"
)

// Valid reports whether the kind is one of the known discriminants.
func (k LikeTargetKind) Valid() bool {
	switch k {
	case LikeTargetVideo, LikeTargetComment, LikeTargetTweet:
		return true
	}
	return false
}

// Like is a directed edge from the liking user to a single target. Edge
// existence is the "liked" state; edges are deleted, never updated.
type Like struct {
	ID         string
	LikedBy    string
	TargetKind LikeTargetKind
	TargetID   string
	CreatedAt  time.Time
}

// Subscription is a directed edge from a subscriber to a channel (a User).
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// LikedVideo is one row of the liked-videos listing: the video with its
// owner projected in.
type LikedVideo struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	ThumbnailURL string       `json:"thumbnail"`
	CreatedAt    time.Time    `json:"createdAt"`
	Owner        OwnerSummary `json:"owner"`
	LikedAt      time.Time    `json:"likedAt"`
}

// ChannelSubscriber is one row of a channel's subscriber listing.
type ChannelSubscriber struct {
	Subscriber   OwnerSummary `json:"subscriber"`
	SubscribedAt time.Time    `json:"createdAt"`
}

// SubscribedChannel is one row of a user's subscribed-channels listing.
type SubscribedChannel struct {
	Channel      OwnerSummary `json:"channel"`
	SubscribedAt time.Time    `json:"createdAt"`
}

// TokenPair groups the bearer credentials issued on login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
