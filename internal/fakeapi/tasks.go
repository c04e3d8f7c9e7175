package fakeapi

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tgienger/eventdesk/internal/models"
)

// TaskSeed describes a task added directly, bypassing the API
type TaskSeed struct {
	EventID     string
	Title       string
	Description string
	Priority    models.Priority
	Category    string
	DueDate     *time.Time
	CreatedBy   string
	Assignees   []string
}

// AddTask stores a task with pending assignments for seed.Assignees
func (s *Server) AddTask(seed TaskSeed) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.addTaskLocked(seed)
}

func (s *Server) addTaskLocked(seed TaskSeed) *models.Task {
	now := s.now()
	if seed.Priority == "" {
		seed.Priority = models.PriorityMedium
	}
	if seed.Category == "" {
		seed.Category = "other"
	}
	t := &models.Task{
		ID:           newID(),
		Title:        seed.Title,
		Description:  seed.Description,
		AssignedTo:   []models.Assignment{},
		Priority:     seed.Priority,
		DueDate:      seed.DueDate,
		Category:     seed.Category,
		Requirements: []string{},
		Attachments:  []models.TaskAttachment{},
		Status:       models.TaskActive,
		CreatedBy:    s.ref(seed.CreatedBy),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if e, ok := s.events[seed.EventID]; ok {
		t.Event = models.TaskEvent{ID: e.ID, Title: e.Title, Date: e.Date, Venue: e.Venue}
	} else {
		t.Event = models.TaskEvent{ID: seed.EventID}
	}
	for _, a := range seed.Assignees {
		t.AssignedTo = append(t.AssignedTo, models.Assignment{
			User:       s.ref(a),
			AssignedBy: s.ref(seed.CreatedBy),
			AssignedAt: now,
			Status:     models.AssignmentPending,
		})
	}
	s.tasks[t.ID] = t
	s.taskOrder = append(s.taskOrder, t.ID)
	return t
}

func (s *Server) taskFor(w http.ResponseWriter, r *http.Request) *models.Task {
	t, ok := s.tasks[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return nil
	}
	return t
}

// canManage reports whether uid may manage tasks of eventID; callers hold mu
func (s *Server) canManage(eventID, uid string) bool {
	e, ok := s.events[eventID]
	if !ok {
		return false
	}
	org, ok := e.OrganizerFor(uid)
	return ok && org.Permissions.CanManageTasks
}

func (s *Server) taskList(keep func(*models.Task) bool) []models.Task {
	out := []models.Task{}
	for _, id := range s.taskOrder {
		if t := s.tasks[id]; keep(t) {
			out = append(out, *t)
		}
	}
	return out
}

func (s *Server) myTasks(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.taskList(func(t *models.Task) bool {
		_, ok := t.AssignmentFor(uid)
		return ok
	}))
}

func (s *Server) eventTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.eventFor(w, r)
	if e == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.taskList(func(t *models.Task) bool { return t.Event.ID == e.ID }))
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.taskFor(w, r); t != nil {
		writeJSON(w, http.StatusOK, t)
	}
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EventID      string   `json:"eventId"`
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		AssignedTo   []string `json:"assignedTo"`
		Priority     string   `json:"priority"`
		DueDate      string   `json:"dueDate"`
		Category     string   `json:"category"`
		Requirements []string `json:"requirements"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Title == "" || body.Description == "" || body.EventID == "" {
		writeError(w, http.StatusBadRequest, "Event, title and description are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r)
	if _, ok := s.events[body.EventID]; !ok {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if !s.canManage(body.EventID, uid) {
		writeError(w, http.StatusForbidden, "Not authorized to manage tasks for this event")
		return
	}
	seed := TaskSeed{
		EventID:     body.EventID,
		Title:       body.Title,
		Description: body.Description,
		Priority:    models.Priority(body.Priority),
		Category:    body.Category,
		CreatedBy:   uid,
		Assignees:   body.AssignedTo,
	}
	if due, err := time.Parse("2006-01-02", body.DueDate); err == nil {
		seed.DueDate = &due
	}
	t := s.addTaskLocked(seed)
	if body.Requirements != nil {
		t.Requirements = body.Requirements
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Task created successfully", "task": t})
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Priority     string   `json:"priority"`
		DueDate      string   `json:"dueDate"`
		Category     string   `json:"category"`
		Requirements []string `json:"requirements"`
		Status       string   `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.taskFor(w, r)
	if t == nil {
		return
	}
	if !s.canManage(t.Event.ID, userID(r)) {
		writeError(w, http.StatusForbidden, "Not authorized to update this task")
		return
	}
	if body.Title != "" {
		t.Title = body.Title
	}
	if body.Description != "" {
		t.Description = body.Description
	}
	if body.Priority != "" {
		t.Priority = models.Priority(body.Priority)
	}
	if due, err := time.Parse("2006-01-02", body.DueDate); err == nil {
		t.DueDate = &due
	}
	if body.Category != "" {
		t.Category = body.Category
	}
	if body.Requirements != nil {
		t.Requirements = body.Requirements
	}
	if body.Status != "" {
		t.Status = models.TaskStatus(body.Status)
	}
	t.UpdatedAt = s.now()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Task updated successfully", "task": t})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.taskFor(w, r)
	if t == nil {
		return
	}
	if !s.canManage(t.Event.ID, userID(r)) {
		writeError(w, http.StatusForbidden, "Not authorized to delete this task")
		return
	}
	delete(s.tasks, t.ID)
	s.taskOrder = slices.DeleteFunc(s.taskOrder, func(id string) bool { return id == t.ID })
	writeMessage(w, "Task deleted successfully")
}

func (s *Server) assignTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.taskFor(w, r)
	if t == nil {
		return
	}
	uid := userID(r)
	if !s.canManage(t.Event.ID, uid) {
		writeError(w, http.StatusForbidden, "Not authorized to assign this task")
		return
	}
	if _, ok := s.users[body.UserID]; !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if _, already := t.AssignmentFor(body.UserID); already {
		writeError(w, http.StatusBadRequest, "User is already assigned to this task")
		return
	}
	t.AssignedTo = append(t.AssignedTo, models.Assignment{
		User:       s.ref(body.UserID),
		AssignedBy: s.ref(uid),
		AssignedAt: s.now(),
		Status:     models.AssignmentPending,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Task assigned successfully", "task": t})
}

func (s *Server) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.AssignmentStatus `json:"status"`
		Notes  string                  `json:"notes"`
	}
	if !decode(w, r, &body) {
		return
	}
	switch body.Status {
	case models.AssignmentPending, models.AssignmentInProgress, models.AssignmentCompleted, models.AssignmentCancelled:
	default:
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.taskFor(w, r)
	if t == nil {
		return
	}
	uid := userID(r)
	idx := slices.IndexFunc(t.AssignedTo, func(a models.Assignment) bool { return a.User.ID == uid })
	if idx < 0 {
		writeError(w, http.StatusForbidden, "You are not assigned to this task")
		return
	}
	a := &t.AssignedTo[idx]
	a.Status = body.Status
	if body.Notes != "" {
		a.Notes = body.Notes
	}
	a.CompletedAt = nil
	if body.Status == models.AssignmentCompleted {
		now := s.now()
		a.CompletedAt = &now
	}

	done := true
	for _, x := range t.AssignedTo {
		if x.Status != models.AssignmentCompleted {
			done = false
		}
	}
	if done {
		t.Status = models.TaskCompleted
	} else if t.Status == models.TaskCompleted {
		t.Status = models.TaskActive
	}
	t.UpdatedAt = s.now()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Task status updated successfully", "task": t})
}

func (s *Server) addTaskAttachment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Filename string `json:"filename"`
		URL      string `json:"url"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Filename == "" || body.URL == "" {
		writeError(w, http.StatusBadRequest, "Filename and url are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.taskFor(w, r)
	if t == nil {
		return
	}
	t.Attachments = append(t.Attachments, models.TaskAttachment{
		Filename:   body.Filename,
		URL:        body.URL,
		UploadedBy: userID(r),
		UploadedAt: s.now(),
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Attachment added successfully", "task": t})
}
