package models

import "time"

// AssignmentStatus is the lifecycle of one assignee on a task
type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentCancelled  AssignmentStatus = "cancelled"
)

// NotAssigned is shown when the user has no assignment on a task
const NotAssigned = "not-assigned"

// Next returns the status a single "advance" moves to
func (s AssignmentStatus) Next() AssignmentStatus {
	switch s {
	case AssignmentPending:
		return AssignmentInProgress
	case AssignmentInProgress:
		return AssignmentCompleted
	case AssignmentCancelled:
		return AssignmentPending
	}
	return s
}

// TaskStatus is the overall state of a task
type TaskStatus string

const (
	TaskActive    TaskStatus = "active"
	TaskCompleted TaskStatus = "completed"
	TaskCancelled TaskStatus = "cancelled"
)

// Priority is shared by tasks and announcements
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var TaskCategories = []string{"logistics", "outreach", "design", "technical", "coordination", "other"}

// Assignment links a user to a task
type Assignment struct {
	User        UserRef          `json:"user"`
	AssignedBy  UserRef          `json:"assignedBy"`
	AssignedAt  time.Time        `json:"assignedAt"`
	Status      AssignmentStatus `json:"status"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

type TaskAttachment struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// TaskEvent is the short event document embedded in a task
type TaskEvent struct {
	ID    string    `json:"_id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Venue Venue     `json:"venue"`
}

// Task represents a unit of work attached to an event
type Task struct {
	ID             string           `json:"_id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Event          TaskEvent        `json:"event"`
	AssignedTo     []Assignment     `json:"assignedTo"`
	Priority       Priority         `json:"priority"`
	DueDate        *time.Time       `json:"dueDate,omitempty"`
	Category       string           `json:"category"`
	Requirements   []string         `json:"requirements"`
	Attachments    []TaskAttachment `json:"attachments"`
	Status         TaskStatus       `json:"status"`
	CreatedBy      UserRef          `json:"createdBy"`
	EstimatedHours *float64         `json:"estimatedHours,omitempty"`
	ActualHours    *float64         `json:"actualHours,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// AssignmentFor returns the assignment of userID on the task
func (t Task) AssignmentFor(userID string) (Assignment, bool) {
	if userID == "" {
		return Assignment{}, false
	}
	for _, a := range t.AssignedTo {
		if a.User.ID == userID {
			return a, true
		}
	}
	return Assignment{}, false
}

// StatusFor returns the assignment status of userID or NotAssigned
func (t Task) StatusFor(userID string) string {
	if a, ok := t.AssignmentFor(userID); ok {
		return string(a.Status)
	}
	return NotAssigned
}
