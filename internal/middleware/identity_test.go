package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/streamhub/backend/internal/auth"
	"github.com/streamhub/backend/internal/config"
	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/repositories"
)

type stubUserSource struct {
	users map[string]models.User
}

func (s stubUserSource) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func gateFixture(t *testing.T) (*auth.TokenIssuer, stubUserSource, models.User) {
	t.Helper()
	issuer := auth.NewTokenIssuer(config.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	user := models.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		Password:     "a-bcrypt-hash",
		RefreshToken: "a-refresh-token",
		Role:         models.RoleUser,
	}
	return issuer, stubUserSource{users: map[string]models.User{user.ID: user}}, user
}

func runGate(issuer *auth.TokenIssuer, users stubUserSource, mutate func(*http.Request)) (*httptest.ResponseRecorder, models.User, bool) {
	var (
		seen   models.User
		called bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, called = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	mutate(req)
	rec := httptest.NewRecorder()
	IdentityGate(issuer, users)(next).ServeHTTP(rec, req)
	return rec, seen, called
}

func TestIdentityGateAcceptsCookie(t *testing.T) {
	issuer, users, user := gateFixture(t)
	token, _, err := issuer.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	rec, seen, called := runGate(issuer, users, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	})

	if rec.Code != http.StatusOK || !called {
		t.Fatalf("expected next handler to run, got %d", rec.Code)
	}
	if seen.ID != user.ID {
		t.Fatalf("expected user %q on context, got %q", user.ID, seen.ID)
	}
	if seen.Password != "" || seen.RefreshToken != "" {
		t.Fatal("credential fields must be stripped before the handler sees the user")
	}
}

func TestIdentityGateAcceptsBearerHeader(t *testing.T) {
	issuer, users, user := gateFixture(t)
	token, _, err := issuer.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	rec, seen, called := runGate(issuer, users, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})

	if rec.Code != http.StatusOK || !called || seen.ID != user.ID {
		t.Fatalf("expected authenticated request, got %d called=%v", rec.Code, called)
	}
}

func TestIdentityGateRejections(t *testing.T) {
	issuer, users, user := gateFixture(t)

	expired := auth.NewTokenIssuer(config.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	expired.WithNowFunc(func() time.Time { return time.Now().Add(-time.Hour) })
	expiredToken, _, err := expired.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}

	unknownSubject := user
	unknownSubject.ID = "ghost"
	orphanToken, _, err := issuer.IssueAccessToken(unknownSubject)
	if err != nil {
		t.Fatalf("issue orphan token: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*http.Request)
	}{
		{"no token", func(*http.Request) {}},
		{"garbage token", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "not.a.jwt"})
		}},
		{"expired token", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: expiredToken})
		}},
		{"unknown subject", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: orphanToken})
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _, called := runGate(issuer, users, tc.mutate)
			if called {
				t.Fatal("next handler must not run on rejection")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}

			var body struct {
				Message string `json:"message"`
				Success bool   `json:"success"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode rejection body: %v", err)
			}
			if body.Success || !strings.HasPrefix(body.Message, "Unauthorized: ") {
				t.Fatalf("unexpected rejection body: %+v", body)
			}
		})
	}
}
