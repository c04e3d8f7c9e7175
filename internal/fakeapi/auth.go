package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tgienger/eventdesk/internal/models"
)

type contextKey string

const userKey contextKey = "user"

// AddUser registers an account directly, bypassing the API
func (s *Server) AddUser(name, email, password string, role models.Role) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, password, role)
}

func (s *Server) addUserLocked(name, email, password string, role models.Role) models.User {
	u := models.User{ID: newID(), Name: name, Email: strings.ToLower(email), Role: role}
	s.users[u.ID] = &account{user: u, password: password}
	return u
}

// Token issues a bearer token for userID
func (s *Server) Token(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *Server) verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// identify resolves the bearer token. An invalid token is rejected, a
// missing one leaves the request anonymous.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}
		userID, err := s.verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Token is not valid")
			return
		}
		s.mu.Lock()
		_, known := s.users[userID]
		s.mu.Unlock()
		if !known {
			writeError(w, http.StatusUnauthorized, "Token is not valid")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, userID)))
	})
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID(r) == "" {
			writeError(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userKey).(string)
	return id
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func (s *Server) findByEmail(email string) *account {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range s.users {
		if a.user.Email == email {
			return a
		}
	}
	return nil
}

func (s *Server) issue(w http.ResponseWriter, status int, message string, u models.User) {
	token, err := s.Token(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, status, map[string]any{"message": message, "token": token, "user": u})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	a := s.findByEmail(body.Email)
	s.mu.Unlock()
	if a == nil || a.password != body.Password {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	s.issue(w, http.StatusOK, "Login successful", a.user)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         string      `json:"name"`
		Email        string      `json:"email"`
		Password     string      `json:"password"`
		Role         models.Role `json:"role"`
		Organization string      `json:"organization"`
		Phone        string      `json:"phone"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Name == "" || body.Email == "" || len(body.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Name, email and a password of at least 6 characters are required")
		return
	}
	if body.Role != models.RoleOrganizer {
		body.Role = models.RoleParticipant
	}

	s.mu.Lock()
	if s.findByEmail(body.Email) != nil {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}
	u := s.addUserLocked(body.Name, body.Email, body.Password, body.Role)
	u.Organization, u.Phone = body.Organization, body.Phone
	s.users[u.ID].user = u
	s.mu.Unlock()

	s.issue(w, http.StatusCreated, "User registered successfully", u)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[userID(r)].user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         string `json:"name"`
		Email        string `json:"email"`
		Organization string `json:"organization"`
		Phone        string `json:"phone"`
		ProfileImage string `json:"profileImage"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	a := s.users[userID(r)]
	if body.Email != "" {
		if other := s.findByEmail(body.Email); other != nil && other != a {
			s.mu.Unlock()
			writeError(w, http.StatusBadRequest, "Email is already in use")
			return
		}
		a.user.Email = strings.ToLower(body.Email)
	}
	if body.Name != "" {
		a.user.Name = body.Name
	}
	a.user.Organization = body.Organization
	a.user.Phone = body.Phone
	if body.ProfileImage != "" {
		a.user.ProfileImage = body.ProfileImage
	}
	u := a.user
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"message": "Profile updated successfully", "user": u})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.users[userID(r)]
	if a.password != body.CurrentPassword {
		writeError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if len(body.NewPassword) < 6 {
		writeError(w, http.StatusBadRequest, "New password must be at least 6 characters long")
		return
	}
	a.password = body.NewPassword
	writeMessage(w, "Password changed successfully")
}
