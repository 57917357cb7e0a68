package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/streamhub/backend/internal/apierror"
	"github.com/streamhub/backend/internal/auth"
	"github.com/streamhub/backend/internal/logging"
	"github.com/streamhub/backend/internal/middleware"
	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/repositories"
)

const (
	refreshTokenCookie = "refreshToken"
	maxUploadBytes     = 10 << 20
	minPasswordLength  = 7
)

var (
	emailPattern    = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// UserHandler implements the registration, session and profile endpoints.
type UserHandler struct {
	Users        UserStore
	Sessions     SessionManager
	Media        MediaStore
	Subs         SubscriptionStore
	Limiter      RateLimiter
	CookieSecure bool
	NowFunc      func() time.Time
}

// Register handles POST /api/v1/users/register.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "register") {
		return tooManyRequests(ctx, w)
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apierror.BadRequest("Missing form fields. Make sure you submit the form as multipart/form-data")
	}

	fullname := strings.TrimSpace(r.FormValue("fullname"))
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if fullname == "" || username == "" || email == "" || strings.TrimSpace(password) == "" {
		return apierror.BadRequest("All fields are required")
	}
	if len(password) < minPasswordLength {
		return apierror.BadRequest("Password must be at least %d characters long", minPasswordLength)
	}
	if !emailPattern.MatchString(email) {
		return apierror.BadRequest("Invalid email format")
	}
	if !usernamePattern.MatchString(username) {
		return apierror.BadRequest("Username can only contain letters, numbers and hyphens")
	}
	username = strings.ToLower(username)

	if _, err := h.Users.FindByLogin(ctx, username, email); err == nil {
		return apierror.Conflict("Username or email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("check existing user: %w", err)
	}

	avatarFile := formFile(r, "avatar")
	if avatarFile == nil {
		// The debuggable variant: clients routinely send a filename string
		// instead of a file, so the error enumerates what actually arrived.
		return apierror.BadRequest(
			"Avatar file is required. Received file fields: %s. Body fields: %s. Field name must be %q and carry a file",
			formKeys(r.MultipartForm.File), valueKeys(r.MultipartForm.Value), "avatar",
		)
	}

	avatarURL, err := h.uploadMedia(ctx, "avatars", avatarFile)
	if err != nil {
		return apierror.Server(err, "Failed to upload avatar")
	}

	// Cover image is optional and its upload failure is non-fatal:
	// registration proceeds with an empty cover URL.
	coverURL := ""
	if coverFile := formFile(r, "coverImage"); coverFile != nil {
		coverURL, err = h.uploadMedia(ctx, "covers", coverFile)
		if err != nil {
			logging.FromContext(ctx).Warn("cover image upload failed, continuing without", "error", err)
			coverURL = ""
		}
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FullName:  fullname,
		Password:  hashed,
		AvatarURL: avatarURL,
		CoverURL:  coverURL,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return apierror.Conflict("Username or email already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}

	return respond(ctx, w, http.StatusCreated, user.Public(), "User registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// Login handles POST /api/v1/users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "login") {
		return tooManyRequests(ctx, w)
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apierror.BadRequest("invalid request body")
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" && req.Email == "" {
		return apierror.BadRequest("username or email is required")
	}
	if req.Password == "" {
		return apierror.BadRequest("password is required")
	}

	user, err := h.Users.FindByLogin(ctx, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.NotFound("User does not exist")
		}
		return fmt.Errorf("find user for login: %w", err)
	}

	if !auth.VerifyPassword(req.Password, user.Password) {
		return apierror.Unauthorized("Invalid user credentials")
	}

	pair, err := h.Sessions.Issue(ctx, user)
	if err != nil {
		return fmt.Errorf("issue session: %w", err)
	}

	h.setSessionCookies(w, pair)

	return respond(ctx, w, http.StatusOK, sessionResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged in successfully")
}

// Logout handles POST /api/v1/users/logout. The identity gate has already
// validated the caller, so this always succeeds.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	user, err := currentUser(r)
	if err != nil {
		return err
	}

	if err := h.Sessions.Revoke(ctx, user.ID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	h.clearSessionCookies(w)

	return respond(ctx, w, http.StatusOK, nil, "User logged out successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/v1/users/refresh-token. The incoming token is
// read from the refreshToken cookie, falling back to the request body.
// Each refresh token works exactly once: rotation persists its successor.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "refresh") {
		return tooManyRequests(ctx, w)
	}

	presented := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" && r.Body != nil {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = strings.TrimSpace(req.RefreshToken)
		}
	}
	if presented == "" {
		return apierror.Unauthorized("unauthorized request: no refresh token provided")
	}

	_, pair, err := h.Sessions.Rotate(ctx, presented)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRefreshReplayed):
			return apierror.Unauthorized("refresh token expired or used")
		case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrUserNotFound):
			return apierror.Unauthorized("invalid refresh token")
		}
		return fmt.Errorf("rotate session: %w", err)
	}

	h.setSessionCookies(w, pair)

	return respond(ctx, w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed successfully")
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	user, err := currentUser(r)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apierror.BadRequest("invalid request body")
	}

	if req.NewPassword == "" || req.NewPassword != req.ConfirmPassword {
		return apierror.BadRequest("New password and confirmation do not match")
	}
	if len(req.NewPassword) < minPasswordLength {
		return apierror.BadRequest("Password must be at least %d characters long", minPasswordLength)
	}

	// The gated context carries a sanitized user; the stored hash must be
	// loaded separately.
	stored, err := h.Users.FindByID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load user for password change: %w", err)
	}

	if !auth.VerifyPassword(req.OldPassword, stored.Password) {
		return apierror.BadRequest("Old password is incorrect")
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := h.Users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return respond(ctx, w, http.StatusOK, nil, "Password changed successfully")
}

// Me handles GET /api/v1/users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}
	return respond(r.Context(), w, http.StatusOK, user.Public(), "Current user fetched successfully")
}

type updateProfileRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

// UpdateProfile handles PATCH /api/v1/users/update-profile. Only the
// owning user's record is ever touched.
func (h UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	user, err := currentUser(r)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apierror.BadRequest("invalid request body")
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" && req.Email == "" {
		return apierror.BadRequest("At least one of fullname or email is required")
	}
	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		return apierror.BadRequest("Invalid email format")
	}

	stored, err := h.Users.FindByID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load user for profile update: %w", err)
	}

	if req.FullName != "" {
		stored.FullName = req.FullName
	}
	if req.Email != "" {
		stored.Email = req.Email
	}
	stored.UpdatedAt = h.now()

	if err := h.Users.UpdateProfile(ctx, stored); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return apierror.Conflict("Email already in use")
		}
		return fmt.Errorf("update profile: %w", err)
	}

	return respond(ctx, w, http.StatusOK, stored.Public(), "Profile updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) error {
	return h.updateImage(w, r, "avatar", "avatars")
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) error {
	return h.updateImage(w, r, "coverImage", "covers")
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field, prefix string) error {
	ctx := r.Context()

	user, err := currentUser(r)
	if err != nil {
		return err
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apierror.BadRequest("Missing form fields. Make sure you submit the form as multipart/form-data")
	}

	file := formFile(r, field)
	if file == nil {
		return apierror.BadRequest("%s file is required", field)
	}

	url, err := h.uploadMedia(ctx, prefix, file)
	if err != nil {
		return apierror.Server(err, "Failed to upload %s", field)
	}

	stored, err := h.Users.FindByID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load user for %s update: %w", field, err)
	}

	if field == "avatar" {
		stored.AvatarURL = url
	} else {
		stored.CoverURL = url
	}
	stored.UpdatedAt = h.now()

	if err := h.Users.UpdateProfile(ctx, stored); err != nil {
		return fmt.Errorf("persist %s update: %w", field, err)
	}

	return respond(ctx, w, http.StatusOK, stored.Public(), "Image updated successfully")
}

type channelProfileResponse struct {
	Channel         models.PublicUser `json:"channel"`
	SubscriberCount int64             `json:"subscriberCount"`
	IsSubscribed    bool              `json:"isSubscribed"`
}

// ChannelProfile handles GET /api/v1/users/channel/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	caller, err := currentUser(r)
	if err != nil {
		return err
	}

	username := strings.ToLower(strings.TrimSpace(r.PathValue("username")))
	if username == "" {
		return apierror.BadRequest("username is required")
	}

	channel, err := h.Users.FindByLogin(ctx, username, "")
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.NotFound("Channel does not exist")
		}
		return fmt.Errorf("find channel: %w", err)
	}

	count, err := h.Subs.CountSubscribers(ctx, channel.ID)
	if err != nil {
		return fmt.Errorf("count subscribers: %w", err)
	}

	subscribed, err := h.Subs.IsSubscribed(ctx, caller.ID, channel.ID)
	if err != nil {
		return fmt.Errorf("check subscription: %w", err)
	}

	return respond(ctx, w, http.StatusOK, channelProfileResponse{
		Channel:         channel.Public(),
		SubscriberCount: count,
		IsSubscribed:    subscribed,
	}, "Channel profile fetched successfully")
}

func (h UserHandler) uploadMedia(ctx context.Context, prefix string, header *multipart.FileHeader) (string, error) {
	ctx, span := logging.StartSpan(ctx, "media.upload")
	defer span.End()

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open %s upload: %w", prefix, err)
	}
	defer file.Close()

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), strings.ToLower(path.Ext(header.Filename)))
	return h.Media.Save(ctx, key, header.Header.Get("Content-Type"), file)
}

func (h UserHandler) setSessionCookies(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		Expires:  pair.AccessExpiresAt,
		HttpOnly: true,
		Secure:   h.CookieSecure,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		Expires:  pair.RefreshExpiresAt,
		MaxAge:   int(time.Until(pair.RefreshExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h UserHandler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.CookieSecure,
		})
	}
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// currentUser returns the identity attached by the identity gate.
func currentUser(r *http.Request) (models.User, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return models.User{}, apierror.Unauthorized("Unauthorized: no authenticated user on request")
	}
	return user, nil
}

func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func formKeys(files map[string][]*multipart.FileHeader) string {
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%v", keys)
}

func valueKeys(values map[string][]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%v", keys)
}

func tooManyRequests(ctx context.Context, w http.ResponseWriter) error {
	writeJSON(ctx, w, http.StatusTooManyRequests, errorBody{Message: "Too many requests, slow down", Success: false})
	return nil
}
