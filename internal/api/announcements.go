package api

import (
	"context"
	"net/url"

	"github.com/tgienger/eventdesk/internal/models"
)

const announcementsPath = "/announcements"

// AnnouncementQuery filters the announcement feed. Zero fields are omitted.
type AnnouncementQuery struct {
	EventID string
	Type    string
	Page    int
	Limit   int
}

func (q AnnouncementQuery) values() url.Values {
	v := url.Values{}
	if q.EventID != "" {
		v.Set("eventId", q.EventID)
	}
	if q.Type != "" {
		v.Set("type", q.Type)
	}
	setPaging(v, q.Page, q.Limit)
	return v
}

// AnnouncementList is one page of the announcement feed
type AnnouncementList struct {
	Announcements []models.Announcement `json:"announcements"`
	TotalPages    int                   `json:"totalPages"`
	CurrentPage   int                   `json:"currentPage"`
	Total         int                   `json:"total"`
}

// AnnouncementInput is the payload for creating an announcement
type AnnouncementInput struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	EventID        string `json:"eventId,omitempty"`
	Priority       string `json:"priority,omitempty"`
	Type           string `json:"type,omitempty"`
	TargetAudience string `json:"targetAudience,omitempty"`
	ScheduledFor   string `json:"scheduledFor,omitempty"`
}

// AnnouncementUpdate changes an announcement. Nil/zero fields are left as is.
type AnnouncementUpdate struct {
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
	Priority  string `json:"priority,omitempty"`
	Type      string `json:"type,omitempty"`
	IsVisible *bool  `json:"isVisible,omitempty"`
}

type announcementEnvelope struct {
	Message      string              `json:"message"`
	Announcement models.Announcement `json:"announcement"`
}

// Announcements lists one page of the feed
func (c *Client) Announcements(ctx context.Context, q AnnouncementQuery) (*AnnouncementList, error) {
	var list AnnouncementList
	if err := c.get(ctx, announcementsPath, q.values(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Announcement fetches a single announcement
func (c *Client) Announcement(ctx context.Context, id string) (*models.Announcement, error) {
	var a models.Announcement
	if err := c.get(ctx, endpoint(announcementsPath, id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAnnouncement publishes (or schedules) an announcement
func (c *Client) CreateAnnouncement(ctx context.Context, in AnnouncementInput) (*models.Announcement, error) {
	var resp announcementEnvelope
	if err := c.post(ctx, announcementsPath, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Announcement, nil
}

// UpdateAnnouncement changes an announcement
func (c *Client) UpdateAnnouncement(ctx context.Context, id string, in AnnouncementUpdate) (*models.Announcement, error) {
	var resp announcementEnvelope
	if err := c.put(ctx, endpoint(announcementsPath, id), in, &resp); err != nil {
		return nil, err
	}
	return &resp.Announcement, nil
}

// DeleteAnnouncement removes an announcement
func (c *Client) DeleteAnnouncement(ctx context.Context, id string) error {
	return c.remove(ctx, endpoint(announcementsPath, id), nil)
}

// AddComment appends a comment
func (c *Client) AddComment(ctx context.Context, id, content string) (*models.Announcement, error) {
	body := struct {
		Content string `json:"content"`
	}{content}

	var resp announcementEnvelope
	if err := c.post(ctx, endpoint(announcementsPath, id, "comments"), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Announcement, nil
}

// AddReaction reacts to an announcement
func (c *Client) AddReaction(ctx context.Context, id, reaction string) (*models.Announcement, error) {
	body := struct {
		Reaction string `json:"reaction"`
	}{reaction}

	var resp announcementEnvelope
	if err := c.post(ctx, endpoint(announcementsPath, id, "reactions"), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Announcement, nil
}

// MarkRead records a read receipt for the current user
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.post(ctx, endpoint(announcementsPath, id, "read"), struct{}{}, nil)
}

// UnreadCount returns how many visible announcements the user has not read
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		UnreadCount int `json:"unreadCount"`
	}
	if err := c.get(ctx, announcementsPath+"/unread/count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}
