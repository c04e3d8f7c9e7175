package api

import (
	"context"

	"github.com/tgienger/eventdesk/internal/models"
)

const organizerChatPath = "/organizer-chat/event"

// ChatFeed is the organizer channel of one event
type ChatFeed struct {
	Messages   []models.ChatMessage `json:"messages"`
	Organizers []models.Organizer   `json:"organizers"`
}

// NewChatMessage is a plain message or, with IsVote, a poll
type NewChatMessage struct {
	Message     string   `json:"message"`
	IsVote      bool     `json:"isVote"`
	VoteOptions []string `json:"voteOptions"`
}

type chatMessageEnvelope struct {
	Message     string             `json:"message"`
	ChatMessage models.ChatMessage `json:"chatMessage"`
}

// ChatMessages fetches the organizer channel and its roster
func (c *Client) ChatMessages(ctx context.Context, eventID string) (*ChatFeed, error) {
	var feed ChatFeed
	if err := c.get(ctx, endpoint(organizerChatPath, eventID, "chat"), nil, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// AddChatMessage posts a message or poll to the organizer channel
func (c *Client) AddChatMessage(ctx context.Context, eventID string, msg NewChatMessage) (*models.ChatMessage, error) {
	var resp chatMessageEnvelope
	if err := c.post(ctx, endpoint(organizerChatPath, eventID, "chat"), msg, &resp); err != nil {
		return nil, err
	}
	return &resp.ChatMessage, nil
}

// VoteOnChatMessage submits the caller's vote; option may be empty for
// free-form votes.
func (c *Client) VoteOnChatMessage(ctx context.Context, eventID, messageID, vote, option string) (*models.ChatMessage, error) {
	body := struct {
		Vote       string `json:"vote"`
		VoteOption string `json:"voteOption,omitempty"`
	}{vote, option}

	var resp chatMessageEnvelope
	if err := c.post(ctx, endpoint(organizerChatPath, eventID, "chat", messageID, "vote"), body, &resp); err != nil {
		return nil, err
	}
	return &resp.ChatMessage, nil
}

// VotingResults fetches the server tally of a poll
func (c *Client) VotingResults(ctx context.Context, eventID, messageID string) (*models.VotingResults, error) {
	var resp models.VotingResults
	if err := c.get(ctx, endpoint(organizerChatPath, eventID, "chat", messageID, "results"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteChatMessage removes a message from the organizer channel
func (c *Client) DeleteChatMessage(ctx context.Context, eventID, messageID string) error {
	return c.remove(ctx, endpoint(organizerChatPath, eventID, "chat", messageID), nil)
}

// CollaborationSummary fetches the server aggregate of organizer activity
func (c *Client) CollaborationSummary(ctx context.Context, eventID string) (*models.CollaborationSummary, error) {
	var resp struct {
		Message string                      `json:"message"`
		Summary models.CollaborationSummary `json:"summary"`
	}
	if err := c.get(ctx, endpoint(organizerChatPath, eventID, "collaboration-summary"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Summary, nil
}
