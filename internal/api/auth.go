package api

import (
	"context"

	"github.com/tgienger/eventdesk/internal/models"
)

const authPath = "/auth"

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role,omitempty"`
	Organization string `json:"organization,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

type ProfileUpdate struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
	Phone        string `json:"phone,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// ProfileResponse is returned by profile updates; Token is set when the
// backend rotates it.
type ProfileResponse struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
	Token   string      `json:"token,omitempty"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, authPath+"/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and signs it in
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, authPath+"/register", reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the user owning the current token
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.get(ctx, authPath+"/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateProfile changes the current user's profile
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := c.put(ctx, authPath+"/profile", update, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword changes the current user's password
func (c *Client) ChangePassword(ctx context.Context, change PasswordChange) (string, error) {
	var resp messageEnvelope
	if err := c.put(ctx, authPath+"/change-password", change, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
