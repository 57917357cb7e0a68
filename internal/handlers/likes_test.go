package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/streamhub/backend/internal/middleware"
	"github.com/streamhub/backend/internal/models"
)

type likeEdge struct {
	actorID  string
	kind     models.LikeTargetKind
	targetID string
}

type memoryLikeStore struct {
	mu    sync.Mutex
	edges map[likeEdge]time.Time
}

func newMemoryLikeStore() *memoryLikeStore {
	return &memoryLikeStore{edges: make(map[likeEdge]time.Time)}
}

func (s *memoryLikeStore) Toggle(_ context.Context, actorID string, kind models.LikeTargetKind, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge := likeEdge{actorID: actorID, kind: kind, targetID: targetID}
	if _, ok := s.edges[edge]; ok {
		delete(s.edges, edge)
		return false, nil
	}
	s.edges[edge] = time.Now()
	return true, nil
}

func (s *memoryLikeStore) CountForTarget(_ context.Context, kind models.LikeTargetKind, targetID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for edge := range s.edges {
		if edge.kind == kind && edge.targetID == targetID {
			count++
		}
	}
	return count, nil
}

func (s *memoryLikeStore) ListLikedVideos(_ context.Context, actorID string) ([]models.LikedVideo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var videos []models.LikedVideo
	for edge := range s.edges {
		if edge.actorID == actorID && edge.kind == models.LikeTargetVideo {
			videos = append(videos, models.LikedVideo{ID: edge.targetID, Title: "video " + edge.targetID})
		}
	}
	return videos, nil
}

func toggleLike(t *testing.T, handler LikeHandler, user models.User, videoID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/v/"+videoID, nil)
	req.SetPathValue("videoId", videoID)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	handle(handler.ToggleVideo)(rec, req)
	return rec
}

func decodeToggleFlag(t *testing.T, rec *httptest.ResponseRecorder, field string) bool {
	t.Helper()
	env := decodeEnvelope(t, rec)
	var data map[string]bool
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode toggle data: %v", err)
	}
	flag, ok := data[field]
	if !ok {
		t.Fatalf("expected %q in response, got %s", field, env.Data)
	}
	return flag
}

func TestToggleLikeAlternates(t *testing.T) {
	store := newMemoryLikeStore()
	handler := LikeHandler{Likes: store}
	user := models.User{ID: uuid.NewString(), Username: "alice"}
	videoID := uuid.NewString()

	for i := 0; i < 4; i++ {
		rec := toggleLike(t, handler, user, videoID)
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle %d: expected 200, got %d: %s", i, rec.Code, rec.Body.String())
		}
		wantLiked := i%2 == 0
		if got := decodeToggleFlag(t, rec, "isLiked"); got != wantLiked {
			t.Fatalf("toggle %d: expected isLiked=%v, got %v", i, wantLiked, got)
		}
	}

	count, err := store.CountForTarget(context.Background(), models.LikeTargetVideo, videoID)
	if err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero likes after even toggles, got %d", count)
	}
}

func TestToggleLikeKindsAreIndependent(t *testing.T) {
	store := newMemoryLikeStore()
	user := models.User{ID: uuid.NewString(), Username: "alice"}
	targetID := uuid.NewString()

	type toggleFunc func(http.ResponseWriter, *http.Request) error
	handler := LikeHandler{Likes: store}
	cases := []struct {
		pathValue string
		fn        toggleFunc
		kind      models.LikeTargetKind
	}{
		{"videoId", handler.ToggleVideo, models.LikeTargetVideo},
		{"commentId", handler.ToggleComment, models.LikeTargetComment},
		{"tweetId", handler.ToggleTweet, models.LikeTargetTweet},
	}

	// The same ID liked under each kind yields three distinct edges.
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/x/"+targetID, nil)
		req.SetPathValue(tc.pathValue, targetID)
		req = req.WithContext(middleware.WithUser(req.Context(), user))
		rec := httptest.NewRecorder()
		handle(handlerFunc(tc.fn))(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s toggle: expected 200, got %d", tc.kind, rec.Code)
		}
	}

	for _, tc := range cases {
		count, err := store.CountForTarget(context.Background(), tc.kind, targetID)
		if err != nil {
			t.Fatalf("count %s likes: %v", tc.kind, err)
		}
		if count != 1 {
			t.Fatalf("expected one %s like, got %d", tc.kind, count)
		}
	}
}

func TestToggleLikeRejectsInvalidID(t *testing.T) {
	handler := LikeHandler{Likes: newMemoryLikeStore()}
	user := models.User{ID: uuid.NewString(), Username: "alice"}

	rec := toggleLike(t, handler, user, "not-a-uuid")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLikedVideosEmptyList(t *testing.T) {
	handler := LikeHandler{Likes: newMemoryLikeStore()}
	user := models.User{ID: uuid.NewString(), Username: "alice"}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	handle(handler.LikedVideos)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if string(env.Data) != "[]" {
		t.Fatalf("expected empty JSON array, got %s", env.Data)
	}
}

func TestLikedVideosListsToggledVideos(t *testing.T) {
	store := newMemoryLikeStore()
	handler := LikeHandler{Likes: store}
	user := models.User{ID: uuid.NewString(), Username: "alice"}

	first, second := uuid.NewString(), uuid.NewString()
	toggleLike(t, handler, user, first)
	toggleLike(t, handler, user, second)
	toggleLike(t, handler, user, second) // unlike again

	req := httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	handle(handler.LikedVideos)(rec, req)

	env := decodeEnvelope(t, rec)
	var videos []models.LikedVideo
	if err := json.Unmarshal(env.Data, &videos); err != nil {
		t.Fatalf("decode liked videos: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != first {
		t.Fatalf("expected only the first video to stay liked, got %+v", videos)
	}
}
