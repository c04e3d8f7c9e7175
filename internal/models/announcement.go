package models

import "time"

type AnnouncementType string

const (
	AnnouncementGeneral      AnnouncementType = "general"
	AnnouncementEventUpdate  AnnouncementType = "event_update"
	AnnouncementReminder     AnnouncementType = "reminder"
	AnnouncementCancellation AnnouncementType = "cancellation"
	AnnouncementImportant    AnnouncementType = "important"
)

type Audience string

const (
	AudienceAll           Audience = "all"
	AudienceOrganizers    Audience = "organizers"
	AudienceParticipants  Audience = "participants"
	AudienceSpecificEvent Audience = "specific_event"
)

// Reactions in the order they are offered
var Reactions = []string{"like", "love", "laugh", "wow", "sad", "angry"}

// AnnouncementEvent is the short event document linked from an announcement
type AnnouncementEvent struct {
	ID    string    `json:"_id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

type Attachment struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type ReadReceipt struct {
	User   string    `json:"user"`
	ReadAt time.Time `json:"readAt"`
}

type Reaction struct {
	User      UserRef   `json:"user"`
	Reaction  string    `json:"reaction"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	User      UserRef    `json:"user"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	IsEdited  bool       `json:"isEdited"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
}

// Announcement represents a post in the announcement feed
type Announcement struct {
	ID             string             `json:"_id"`
	Title          string             `json:"title"`
	Content        string             `json:"content"`
	Event          *AnnouncementEvent `json:"event,omitempty"`
	CreatedBy      UserRef            `json:"createdBy"`
	Priority       Priority           `json:"priority"`
	Type           AnnouncementType   `json:"type"`
	TargetAudience Audience           `json:"targetAudience"`
	IsVisible      bool               `json:"isVisible"`
	Attachments    []Attachment       `json:"attachments"`
	ReadBy         []ReadReceipt      `json:"readBy"`
	Reactions      []Reaction         `json:"reactions"`
	Comments       []Comment          `json:"comments"`
	ScheduledFor   *time.Time         `json:"scheduledFor,omitempty"`
	IsScheduled    bool               `json:"isScheduled"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// ReadByUser reports whether userID has a read receipt
func (a Announcement) ReadByUser(userID string) bool {
	for _, r := range a.ReadBy {
		if r.User == userID {
			return true
		}
	}
	return false
}

// ReactionCounts tallies reactions by kind
func (a Announcement) ReactionCounts() map[string]int {
	counts := make(map[string]int, len(a.Reactions))
	for _, r := range a.Reactions {
		counts[r.Reaction]++
	}
	return counts
}
