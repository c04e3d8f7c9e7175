// Package session holds the signed-in user and the persisted bearer token.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/models"
)

// ErrNoSession is returned by operations that need a signed-in user
var ErrNoSession = errors.New("not signed in")

// AuthAPI is the part of the backend the store talks to
type AuthAPI interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, reg api.Registration) (*api.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*api.ProfileResponse, error)
	ChangePassword(ctx context.Context, change api.PasswordChange) (string, error)
}

// TokenStore is durable storage for the bearer token under a single key
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// Store owns the current user. Consumers subscribe to changes; they never
// hold a copy they mutate.
type Store struct {
	auth   AuthAPI
	tokens TokenStore
	log    *logrus.Entry
	now    func() time.Time

	mu     sync.RWMutex
	user   *models.User
	subs   map[int]chan *models.User
	nextID int
}

// New creates an empty store; call Hydrate to restore a stored session
func New(auth AuthAPI, tokens TokenStore, log *logrus.Entry) *Store {
	return &Store{
		auth:   auth,
		tokens: tokens,
		log:    log,
		now:    time.Now,
		subs:   make(map[int]chan *models.User),
	}
}

// Hydrate re-validates a stored token against the backend. An expired token
// is dropped without a request; a token the backend rejects is dropped too.
func (s *Store) Hydrate(ctx context.Context) error {
	token, err := s.tokens.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return nil
	}

	if s.expired(token) {
		s.log.Info("stored token expired, signing out")
		return s.clear()
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.log.Info("stored token rejected, signing out")
			return s.clear()
		}
		return fmt.Errorf("restore session: %w", err)
	}
	s.set(user)
	return nil
}

// expired reads the exp claim without verifying the signature; the backend
// is the only verifier. Tokens that are not JWTs are never treated as expired.
func (s *Store) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}

// Login signs in and persists the returned token
func (s *Store) Login(ctx context.Context, creds api.Credentials) (*models.User, error) {
	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.accept(resp.Token, resp.User)
}

// Register creates an account, signs it in and persists the token
func (s *Store) Register(ctx context.Context, reg api.Registration) (*models.User, error) {
	resp, err := s.auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return s.accept(resp.Token, resp.User)
}

// UpdateProfile changes the profile and publishes the updated user
func (s *Store) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*models.User, error) {
	if s.CurrentUser() == nil {
		return nil, ErrNoSession
	}
	resp, err := s.auth.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	if resp.Token != "" {
		return s.accept(resp.Token, resp.User)
	}
	user := resp.User
	s.set(&user)
	return &user, nil
}

// ChangePassword changes the password; the session is unchanged
func (s *Store) ChangePassword(ctx context.Context, current, next string) (string, error) {
	if s.CurrentUser() == nil {
		return "", ErrNoSession
	}
	return s.auth.ChangePassword(ctx, api.PasswordChange{CurrentPassword: current, NewPassword: next})
}

// Logout erases the token and publishes a nil user
func (s *Store) Logout() error {
	return s.clear()
}

func (s *Store) accept(token string, user models.User) (*models.User, error) {
	if token != "" {
		if err := s.tokens.SetToken(token); err != nil {
			return nil, fmt.Errorf("persist token: %w", err)
		}
	}
	s.set(&user)
	return &user, nil
}

func (s *Store) clear() error {
	err := s.tokens.ClearToken()
	s.set(nil)
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// set replaces the user and notifies every subscriber with the latest value
func (s *Store) set(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	for _, ch := range s.subs {
		publish(ch, copyUser(user))
	}
}

// publish keeps only the newest value in a one-slot channel
func publish(ch chan *models.User, user *models.User) {
	select {
	case <-ch:
	default:
	}
	ch <- user
}

// CurrentUser returns a copy of the last-known user, nil when signed out
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// UserID returns the current user's id, empty when signed out
func (s *Store) UserID() string {
	if u := s.CurrentUser(); u != nil {
		return u.ID
	}
	return ""
}

// Subscribe returns a channel that immediately receives the current user and
// then every change. Only the newest value is buffered. Call cancel to stop.
func (s *Store) Subscribe() (<-chan *models.User, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan *models.User, 1)
	ch <- copyUser(s.user)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// IsAuthenticated reports whether a token is stored
func (s *Store) IsAuthenticated() bool {
	token, err := s.tokens.Token()
	return err == nil && token != ""
}

// IsOrganizer checks the role of the last-known user
func (s *Store) IsOrganizer() bool {
	return s.hasRole(models.RoleOrganizer)
}

// IsParticipant checks the role of the last-known user
func (s *Store) IsParticipant() bool {
	return s.hasRole(models.RoleParticipant)
}

func (s *Store) hasRole(role models.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Role == role
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
