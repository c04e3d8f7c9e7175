package models

import "time"

// EventStatus is derived from the event date, never stored
type EventStatus string

const (
	StatusCompleted EventStatus = "completed"
	StatusUpcoming  EventStatus = "upcoming"
	StatusScheduled EventStatus = "scheduled"
)

// UpcomingWindow is how far ahead an event counts as upcoming
const UpcomingWindow = 7 * 24 * time.Hour

// Venue is where an event takes place
type Venue struct {
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Permissions are the per-organizer rights on an event
type Permissions struct {
	CanEdit        bool `json:"canEdit"`
	CanDelete      bool `json:"canDelete"`
	CanManageTasks bool `json:"canManageTasks"`
}

// Organizer is a membership record attaching a user to an event
type Organizer struct {
	User        UserRef     `json:"user"`
	Role        string      `json:"role"`
	Permissions Permissions `json:"permissions"`
}

// OrganizerRoleAdmin may delete any organizer chat message
const OrganizerRoleAdmin = "admin"

// Participant is a registration on an event
type Participant struct {
	User         UserRef   `json:"user"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type EventAnalytics struct {
	TotalViews         int     `json:"totalViews"`
	TotalRegistrations int     `json:"totalRegistrations"`
	AttendanceRate     float64 `json:"attendanceRate"`
}

// Event represents an event as served by the directory
type Event struct {
	ID                   string         `json:"_id"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	Category             string         `json:"category"`
	Date                 time.Time      `json:"date"`
	Time                 string         `json:"time"`
	Venue                Venue          `json:"venue"`
	Organizer            UserRef        `json:"organizer"`
	Organizers           []Organizer    `json:"organizers"`
	Participants         []Participant  `json:"participants"`
	MaxParticipants      int            `json:"maxParticipants"`
	RegistrationDeadline *time.Time     `json:"registrationDeadline,omitempty"`
	Image                string         `json:"image,omitempty"`
	Requirements         []string       `json:"requirements"`
	Tags                 []string       `json:"tags"`
	Status               string         `json:"status"` // publication status (published, draft, ...)
	IsPublic             bool           `json:"isPublic"`
	ChatMessages         []ChatMessage  `json:"chatMessages"`
	Analytics            EventAnalytics `json:"analytics"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

// StatusAt classifies an event date relative to now
func StatusAt(date, now time.Time) EventStatus {
	if date.Before(now) {
		return StatusCompleted
	}
	if date.Sub(now) < UpcomingWindow {
		return StatusUpcoming
	}
	return StatusScheduled
}

// DerivedStatus returns the date-derived status of the event
func (e Event) DerivedStatus(now time.Time) EventStatus {
	return StatusAt(e.Date, now)
}

// HasParticipant reports whether userID is registered for the event
func (e Event) HasParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	for _, p := range e.Participants {
		if p.User.ID == userID {
			return true
		}
	}
	return false
}

// OrganizerFor returns the organizer record of userID, if any
func (e Event) OrganizerFor(userID string) (Organizer, bool) {
	return FindOrganizer(e.Organizers, userID)
}

// FindOrganizer looks up the membership record of userID in an organizer roster
func FindOrganizer(organizers []Organizer, userID string) (Organizer, bool) {
	if userID == "" {
		return Organizer{}, false
	}
	for _, o := range organizers {
		if o.User.ID == userID {
			return o, true
		}
	}
	return Organizer{}, false
}
