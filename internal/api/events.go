package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"

	"github.com/tgienger/eventdesk/internal/models"
)

const eventsPath = "/events"

// EventQuery filters the event directory. Zero fields are omitted.
type EventQuery struct {
	Category string
	Status   string
	Page     int
	Limit    int
}

func (q EventQuery) values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	setPaging(v, q.Page, q.Limit)
	return v
}

// EventList is one page of the event directory
type EventList struct {
	Events      []models.Event `json:"events"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Total       int            `json:"total"`
}

// UnmarshalJSON also accepts a bare array, which some backend versions return
// for unpaginated listings.
func (l *EventList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var events []models.Event
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return err
		}
		*l = EventList{Events: events, TotalPages: 1, CurrentPage: 1, Total: len(events)}
		return nil
	}
	type plain EventList
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*l = EventList(p)
	return nil
}

// EventInput is the payload for creating or updating an event
type EventInput struct {
	Title           string       `json:"title,omitempty"`
	Description     string       `json:"description,omitempty"`
	Category        string       `json:"category,omitempty"`
	Date            string       `json:"date,omitempty"` // YYYY-MM-DD or RFC 3339
	Time            string       `json:"time,omitempty"` // HH:MM
	Venue           models.Venue `json:"venue"`
	MaxParticipants int          `json:"maxParticipants,omitempty"`
	Requirements    []string     `json:"requirements"`
	Tags            []string     `json:"tags"`
	IsPublic        bool         `json:"isPublic"`
}

type eventEnvelope struct {
	Message string       `json:"message"`
	Event   models.Event `json:"event"`
}

// Events lists one page of events
func (c *Client) Events(ctx context.Context, q EventQuery) (*EventList, error) {
	var list EventList
	if err := c.get(ctx, eventsPath, q.values(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Event fetches a single event
func (c *Client) Event(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := c.get(ctx, endpoint(eventsPath, id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent creates an event organized by the current user
func (c *Client) CreateEvent(ctx context.Context, in EventInput) (*models.Event, error) {
	var resp eventEnvelope
	if err := c.post(ctx, eventsPath, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Event, nil
}

// UpdateEvent replaces the editable fields of an event
func (c *Client) UpdateEvent(ctx context.Context, id string, in EventInput) (*models.Event, error) {
	var resp eventEnvelope
	if err := c.put(ctx, endpoint(eventsPath, id), in, &resp); err != nil {
		return nil, err
	}
	return &resp.Event, nil
}

// DeleteEvent removes an event
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.remove(ctx, endpoint(eventsPath, id), nil)
}

// RSVP registers the current user for an event
func (c *Client) RSVP(ctx context.Context, id string) (string, error) {
	var resp messageEnvelope
	if err := c.post(ctx, endpoint(eventsPath, id, "rsvp"), struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// CancelRSVP unregisters the current user from an event
func (c *Client) CancelRSVP(ctx context.Context, id string) (string, error) {
	var resp messageEnvelope
	if err := c.remove(ctx, endpoint(eventsPath, id, "rsvp"), &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// AddOrganizer grants userID an organizer role on the event
func (c *Client) AddOrganizer(ctx context.Context, eventID, userID, role string, perms models.Permissions) (*models.Event, error) {
	body := struct {
		UserID      string             `json:"userId"`
		Role        string             `json:"role"`
		Permissions models.Permissions `json:"permissions"`
	}{userID, role, perms}

	var resp eventEnvelope
	if err := c.post(ctx, endpoint(eventsPath, eventID, "organizers"), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Event, nil
}

// AddEventChatMessage posts to the public event-level chat
func (c *Client) AddEventChatMessage(ctx context.Context, eventID, message string, isVote bool) (*models.ChatMessage, error) {
	body := struct {
		Message string `json:"message"`
		IsVote  bool   `json:"isVote"`
	}{message, isVote}

	var resp struct {
		Message     string             `json:"message"`
		ChatMessage models.ChatMessage `json:"chatMessage"`
	}
	if err := c.post(ctx, endpoint(eventsPath, eventID, "chat"), body, &resp); err != nil {
		return nil, err
	}
	return &resp.ChatMessage, nil
}

// VoteOnEventMessage casts an up/down vote in the event-level chat
func (c *Client) VoteOnEventMessage(ctx context.Context, eventID, messageID, vote string) error {
	body := struct {
		Vote string `json:"vote"`
	}{vote}
	return c.post(ctx, endpoint(eventsPath, eventID, "chat", messageID, "vote"), body, nil)
}
