package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/logging"
	"github.com/tgienger/eventdesk/internal/models"
)

type memTokens struct{ token string }

func (m *memTokens) Token() (string, error)  { return m.token, nil }
func (m *memTokens) SetToken(t string) error { m.token = t; return nil }
func (m *memTokens) ClearToken() error       { m.token = ""; return nil }

type stubAuth struct {
	resp    *api.AuthResponse
	err     error
	me      *models.User
	meErr   error
	meCalls int
	writes  int
}

func (s *stubAuth) Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error) {
	return s.resp, s.err
}

func (s *stubAuth) Register(ctx context.Context, reg api.Registration) (*api.AuthResponse, error) {
	return s.resp, s.err
}

func (s *stubAuth) Me(ctx context.Context) (*models.User, error) {
	s.meCalls++
	return s.me, s.meErr
}

func (s *stubAuth) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*api.ProfileResponse, error) {
	s.writes++
	return &api.ProfileResponse{User: models.User{ID: "u1", Name: update.Name, Role: models.RoleOrganizer}}, nil
}

func (s *stubAuth) ChangePassword(ctx context.Context, change api.PasswordChange) (string, error) {
	s.writes++
	return "Password changed successfully", nil
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()})
	s, err := token.SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestLoginPersistsTokenAndNotifies(t *testing.T) {
	tokens := &memTokens{}
	auth := &stubAuth{resp: &api.AuthResponse{
		Token: "tok",
		User:  models.User{ID: "u1", Name: "Ada", Role: models.RoleOrganizer},
	}}
	store := New(auth, tokens, logging.Discard())

	updates, cancel := store.Subscribe()
	defer cancel()
	if u := <-updates; u != nil {
		t.Fatalf("initial user = %+v, want nil", u)
	}

	user, err := store.Login(context.Background(), api.Credentials{Email: "ada@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user id = %q", user.ID)
	}
	if tokens.token != "tok" {
		t.Errorf("stored token = %q, want tok", tokens.token)
	}
	if u := <-updates; u == nil || u.Name != "Ada" {
		t.Errorf("published user = %+v", u)
	}
	if !store.IsAuthenticated() || !store.IsOrganizer() || store.IsParticipant() {
		t.Error("role checks wrong after organizer login")
	}
}

func TestLoginFailureLeavesSession(t *testing.T) {
	tokens := &memTokens{}
	auth := &stubAuth{err: &api.Error{StatusCode: http.StatusBadRequest, Message: "Invalid credentials"}}
	store := New(auth, tokens, logging.Discard())

	_, err := store.Login(context.Background(), api.Credentials{})
	if got := api.Message(err, "Login failed"); got != "Invalid credentials" {
		t.Errorf("message = %q", got)
	}
	if tokens.token != "" || store.CurrentUser() != nil {
		t.Error("failed login changed the session")
	}
}

func TestLogoutClearsToken(t *testing.T) {
	tokens := &memTokens{token: "tok"}
	store := New(&stubAuth{}, tokens, logging.Discard())
	store.set(&models.User{ID: "u1", Role: models.RoleParticipant})

	if !store.IsParticipant() {
		t.Fatal("expected participant")
	}
	if err := store.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if tokens.token != "" {
		t.Errorf("token not cleared")
	}
	if store.CurrentUser() != nil || store.IsAuthenticated() || store.IsParticipant() {
		t.Error("session still present after logout")
	}
}

func TestHydrate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no token", func(t *testing.T) {
		auth := &stubAuth{}
		store := New(auth, &memTokens{}, logging.Discard())
		if err := store.Hydrate(context.Background()); err != nil {
			t.Fatalf("Hydrate: %v", err)
		}
		if auth.meCalls != 0 {
			t.Error("Me called without a token")
		}
	})

	t.Run("expired token cleared without request", func(t *testing.T) {
		tokens := &memTokens{}
		tokens.token = signed(t, now.Add(-time.Minute))
		auth := &stubAuth{}
		store := New(auth, tokens, logging.Discard())
		store.now = func() time.Time { return now }

		if err := store.Hydrate(context.Background()); err != nil {
			t.Fatalf("Hydrate: %v", err)
		}
		if auth.meCalls != 0 {
			t.Error("Me called with an expired token")
		}
		if tokens.token != "" {
			t.Error("expired token kept")
		}
	})

	t.Run("valid token restores user", func(t *testing.T) {
		tokens := &memTokens{}
		tokens.token = signed(t, now.Add(time.Hour))
		auth := &stubAuth{me: &models.User{ID: "u1", Role: models.RoleParticipant}}
		store := New(auth, tokens, logging.Discard())
		store.now = func() time.Time { return now }

		if err := store.Hydrate(context.Background()); err != nil {
			t.Fatalf("Hydrate: %v", err)
		}
		if store.UserID() != "u1" || !store.IsParticipant() {
			t.Errorf("user = %+v", store.CurrentUser())
		}
	})

	t.Run("rejected token cleared", func(t *testing.T) {
		tokens := &memTokens{token: "opaque"}
		auth := &stubAuth{meErr: &api.Error{StatusCode: http.StatusUnauthorized}}
		store := New(auth, tokens, logging.Discard())

		if err := store.Hydrate(context.Background()); err != nil {
			t.Fatalf("Hydrate: %v", err)
		}
		if tokens.token != "" {
			t.Error("rejected token kept")
		}
	})

	t.Run("transport error kept", func(t *testing.T) {
		tokens := &memTokens{token: "opaque"}
		boom := errors.New("connection refused")
		store := New(&stubAuth{meErr: boom}, tokens, logging.Discard())

		if err := store.Hydrate(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("Hydrate error = %v, want wrapped %v", err, boom)
		}
		if tokens.token != "opaque" {
			t.Error("token dropped on a transport error")
		}
	})
}

func TestProfileRequiresSession(t *testing.T) {
	store := New(&stubAuth{}, &memTokens{}, logging.Discard())
	if _, err := store.UpdateProfile(context.Background(), api.ProfileUpdate{Name: "x"}); !errors.Is(err, ErrNoSession) {
		t.Errorf("UpdateProfile error = %v", err)
	}
	if _, err := store.ChangePassword(context.Background(), "a", "b"); !errors.Is(err, ErrNoSession) {
		t.Errorf("ChangePassword error = %v", err)
	}
}

func TestProfileRequiresHydratedUser(t *testing.T) {
	auth := &stubAuth{meErr: errors.New("connection refused")}
	store := New(auth, &memTokens{token: "opaque"}, logging.Discard())
	_ = store.Hydrate(context.Background())
	if !store.IsAuthenticated() || store.CurrentUser() != nil {
		t.Fatalf("want a stored token without a user, got user %+v", store.CurrentUser())
	}

	if _, err := store.UpdateProfile(context.Background(), api.ProfileUpdate{Name: "x"}); !errors.Is(err, ErrNoSession) {
		t.Errorf("UpdateProfile error = %v", err)
	}
	if _, err := store.ChangePassword(context.Background(), "a", "b"); !errors.Is(err, ErrNoSession) {
		t.Errorf("ChangePassword error = %v", err)
	}
	if auth.writes != 0 {
		t.Errorf("backend called %d times without a user", auth.writes)
	}
}

func TestUpdateProfilePublishes(t *testing.T) {
	store := New(&stubAuth{}, &memTokens{token: "tok"}, logging.Discard())
	store.set(&models.User{ID: "u1", Name: "Ada"})
	updates, cancel := store.Subscribe()
	defer cancel()
	<-updates

	if _, err := store.UpdateProfile(context.Background(), api.ProfileUpdate{Name: "Grace"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u := <-updates; u == nil || u.Name != "Grace" {
		t.Errorf("published = %+v", u)
	}
}

func TestSubscribeKeepsLatest(t *testing.T) {
	store := New(&stubAuth{}, &memTokens{}, logging.Discard())
	updates, cancel := store.Subscribe()

	store.set(&models.User{ID: "a"})
	store.set(&models.User{ID: "b"})

	if u := <-updates; u == nil || u.ID != "b" {
		t.Errorf("latest = %+v, want b", u)
	}
	cancel()
	cancel()
	if _, ok := <-updates; ok {
		t.Error("channel open after cancel")
	}
}
