package api

import (
	"context"

	"github.com/tgienger/eventdesk/internal/models"
)

const tasksPath = "/tasks"

// TaskInput is the payload for creating a task
type TaskInput struct {
	EventID        string   `json:"eventId"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	AssignedTo     []string `json:"assignedTo,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	DueDate        string   `json:"dueDate,omitempty"`
	Category       string   `json:"category,omitempty"`
	Requirements   []string `json:"requirements,omitempty"`
	EstimatedHours *float64 `json:"estimatedHours,omitempty"`
}

// TaskUpdate changes the editable fields of a task. Zero fields are left as is.
type TaskUpdate struct {
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	DueDate      string   `json:"dueDate,omitempty"`
	Category     string   `json:"category,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	Status       string   `json:"status,omitempty"`
}

type taskEnvelope struct {
	Message string      `json:"message"`
	Task    models.Task `json:"task"`
}

// MyTasks lists tasks assigned to the current user
func (c *Client) MyTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.get(ctx, tasksPath+"/my-tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// EventTasks lists tasks of one event
func (c *Client) EventTasks(ctx context.Context, eventID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.get(ctx, endpoint(tasksPath, "event", eventID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Task fetches a single task
func (c *Client) Task(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := c.get(ctx, endpoint(tasksPath, id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a task on an event
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	var resp taskEnvelope
	if err := c.post(ctx, tasksPath, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// UpdateTask changes a task
func (c *Client) UpdateTask(ctx context.Context, id string, in TaskUpdate) (*models.Task, error) {
	var resp taskEnvelope
	if err := c.put(ctx, endpoint(tasksPath, id), in, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// AssignTask adds userID as an assignee
func (c *Client) AssignTask(ctx context.Context, id, userID string) (*models.Task, error) {
	body := struct {
		UserID string `json:"userId"`
	}{userID}

	var resp taskEnvelope
	if err := c.post(ctx, endpoint(tasksPath, id, "assign"), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// UpdateTaskStatus moves the caller's assignment to status
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status models.AssignmentStatus, notes string) (*models.Task, error) {
	body := struct {
		Status models.AssignmentStatus `json:"status"`
		Notes  string                  `json:"notes,omitempty"`
	}{status, notes}

	var resp taskEnvelope
	if err := c.put(ctx, endpoint(tasksPath, id, "status"), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// AddTaskAttachment links a file to a task
func (c *Client) AddTaskAttachment(ctx context.Context, id, filename, fileURL string) (*models.Task, error) {
	body := struct {
		Filename string `json:"filename"`
		URL      string `json:"url"`
	}{filename, fileURL}

	var resp taskEnvelope
	if err := c.post(ctx, endpoint(tasksPath, id, "attachments"), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.remove(ctx, endpoint(tasksPath, id), nil)
}
