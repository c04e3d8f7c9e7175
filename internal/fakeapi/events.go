package fakeapi

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tgienger/eventdesk/internal/models"
)

const defaultEventLimit = 10

// EventSeed describes an event added directly, bypassing the API
type EventSeed struct {
	Title           string
	Description     string
	Category        string
	Date            time.Time
	Venue           models.Venue
	Status          string
	MaxParticipants int
	OrganizerID     string
	Participants    []string
}

// AddEvent creates an event organized (as admin) by seed.OrganizerID
func (s *Server) AddEvent(seed EventSeed) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if seed.Status == "" {
		seed.Status = "published"
	}
	if seed.MaxParticipants == 0 {
		seed.MaxParticipants = 100
	}
	e := &models.Event{
		ID:              newID(),
		Title:           seed.Title,
		Description:     seed.Description,
		Category:        seed.Category,
		Date:            seed.Date,
		Time:            seed.Date.Format("15:04"),
		Venue:           seed.Venue,
		Organizer:       s.ref(seed.OrganizerID),
		Organizers:      []models.Organizer{s.adminOrganizer(seed.OrganizerID)},
		MaxParticipants: seed.MaxParticipants,
		Requirements:    []string{},
		Tags:            []string{},
		Status:          seed.Status,
		IsPublic:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, p := range seed.Participants {
		e.Participants = append(e.Participants, models.Participant{User: s.ref(p), Status: "registered", RegisteredAt: now})
	}
	e.Analytics.TotalRegistrations = len(e.Participants)
	s.events[e.ID] = e
	s.eventOrder = append(s.eventOrder, e.ID)
	return *e
}

func (s *Server) adminOrganizer(id string) models.Organizer {
	return models.Organizer{
		User:        s.ref(id),
		Role:        models.OrganizerRoleAdmin,
		Permissions: models.Permissions{CanEdit: true, CanDelete: true, CanManageTasks: true},
	}
}

// Event returns a copy of a stored event
func (s *Server) Event(id string) (models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return models.Event{}, false
	}
	return *e, true
}

// eventFor loads the {id} event or writes a 404; callers hold mu
func (s *Server) eventFor(w http.ResponseWriter, r *http.Request) *models.Event {
	e, ok := s.events[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Event not found")
		return nil
	}
	return e
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category, status := q.Get("category"), q.Get("status")

	s.mu.Lock()
	var matched []models.Event
	for _, id := range s.eventOrder {
		e := s.events[id]
		if category != "" && e.Category != category {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		matched = append(matched, *e)
	}
	s.mu.Unlock()

	slices.SortStableFunc(matched, func(a, b models.Event) int { return a.Date.Compare(b.Date) })
	start, end, page, pages := paginate(q, len(matched), defaultEventLimit)
	writeJSON(w, http.StatusOK, map[string]any{
		"events":      append([]models.Event{}, matched[start:end]...),
		"totalPages":  pages,
		"currentPage": page,
		"total":       len(matched),
	})
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.eventFor(w, r)
	if e == nil {
		return
	}
	e.Analytics.TotalViews++
	writeJSON(w, http.StatusOK, e)
}

type eventBody struct {
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Category        string       `json:"category"`
	Date            string       `json:"date"`
	Time            string       `json:"time"`
	Venue           models.Venue `json:"venue"`
	MaxParticipants int          `json:"maxParticipants"`
	Requirements    []string     `json:"requirements"`
	Tags            []string     `json:"tags"`
	IsPublic        *bool        `json:"isPublic"`
}

// when combines the date and time fields; date may also be RFC 3339
func (b eventBody) when() (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, b.Date); err == nil {
		return t, true
	}
	clock := b.Time
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", b.Date+" "+clock, time.Local)
	return t, err == nil
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var body eventBody
	if !decode(w, r, &body) {
		return
	}
	if body.Title == "" || body.Description == "" || body.Category == "" {
		writeError(w, http.StatusBadRequest, "Title, description and category are required")
		return
	}
	date, ok := body.when()
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event date")
		return
	}

	s.mu.Lock()
	caller := s.users[userID(r)].user
	s.mu.Unlock()
	if caller.Role != models.RoleOrganizer {
		writeError(w, http.StatusForbidden, "Only organizers can create events")
		return
	}

	e := s.AddEvent(EventSeed{
		Title:           body.Title,
		Description:     body.Description,
		Category:        body.Category,
		Date:            date,
		Venue:           body.Venue,
		MaxParticipants: body.MaxParticipants,
		OrganizerID:     caller.ID,
	})

	s.mu.Lock()
	stored := s.events[e.ID]
	stored.Time = body.Time
	if body.Requirements != nil {
		stored.Requirements = body.Requirements
	}
	if body.Tags != nil {
		stored.Tags = body.Tags
	}
	if body.IsPublic != nil {
		stored.IsPublic = *body.IsPublic
	}
	out := *stored
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"message": "Event created successfully", "event": out})
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	var body eventBody
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.eventFor(w, r)
	if e == nil {
		return
	}
	org, ok := e.OrganizerFor(userID(r))
	if !ok || !org.Permissions.CanEdit {
		writeError(w, http.StatusForbidden, "Not authorized to edit this event")
		return
	}
	if body.Title != "" {
		e.Title = body.Title
	}
	if body.Description != "" {
		e.Description = body.Description
	}
	if body.Category != "" {
		e.Category = body.Category
	}
	if body.Date != "" {
		if date, ok := body.when(); ok {
			e.Date = date
			e.Time = date.Format("15:04")
		}
	}
	if body.Venue.Name != "" {
		e.Venue = body.Venue
	}
	if body.MaxParticipants > 0 {
		e.MaxParticipants = body.MaxParticipants
	}
	if body.Requirements != nil {
		e.Requirements = body.Requirements
	}
	if body.Tags != nil {
		e.Tags = body.Tags
	}
	if body.IsPublic != nil {
		e.IsPublic = *body.IsPublic
	}
	e.UpdatedAt = s.now()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Event updated successfully", "event": e})
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.eventFor(w, r)
	if e == nil {
		return
	}
	org, ok := e.OrganizerFor(userID(r))
	if !ok || !org.Permissions.CanDelete {
		writeError(w, http.StatusForbidden, "Not authorized to delete this event")
		return
	}
	delete(s.events, e.ID)
	delete(s.orgChat, e.ID)
	s.eventOrder = slices.DeleteFunc(s.eventOrder, func(id string) bool { return id == e.ID })
	writeMessage(w, "Event deleted successfully")
}

func (s *Server) rsvp(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.eventFor(w, r)
	if e == nil {
		return
	}
	uid := userID(r)
	if e.HasParticipant(uid) {
		writeError(w, http.StatusBadRequest, "Already registered for this event")
		return
	}
	if len(e.Participants) >= e.MaxParticipants {
		writeError(w, http.StatusBadRequest, "Event is full")
		return
	}
	e.Participants = append(e.Participants, models.Participant{User: s.ref(uid), Status: "registered", RegisteredAt: s.now()})
	e.Analytics.TotalRegistrations++
	writeMessage(w, "Successfully registered for event")
}

func (s *Server) cancelRSVP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.eventFor(w, r)
	if e == nil {
		return
	}
	uid := userID(r)
	if !e.HasParticipant(uid) {
		writeError(w, http.StatusBadRequest, "Not registered for this event")
		return
	}
	e.Participants = slices.DeleteFunc(e.Participants, func(p models.Participant) bool { return p.User.ID == uid })
	writeMessage(w, "RSVP cancelled successfully")
}

func (s *Server) addOrganizer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID      string             `json:"userId"`
		Role        string             `json:"role"`
		Permissions models.Permissions `json:"permissions"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.eventFor(w, r)
	if e == nil {
		return
	}
	caller, ok := e.OrganizerFor(userID(r))
	if !ok || caller.Role != models.OrganizerRoleAdmin {
		writeError(w, http.StatusForbidden, "Only event admins can add organizers")
		return
	}
	if _, exists := s.users[body.UserID]; !exists {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if _, already := e.OrganizerFor(body.UserID); already {
		writeError(w, http.StatusBadRequest, "User is already an organizer")
		return
	}
	if body.Role == "" {
		body.Role = "co-organizer"
	}
	e.Organizers = append(e.Organizers, models.Organizer{User: s.ref(body.UserID), Role: body.Role, Permissions: body.Permissions})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Organizer added successfully", "event": e})
}

func (s *Server) addEventChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
		IsVote  bool   `json:"isVote"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.eventFor(w, r)
	if e == nil {
		return
	}
	msg := models.ChatMessage{
		ID:        newID(),
		User:      s.ref(userID(r)),
		Message:   body.Message,
		Timestamp: s.now(),
		IsVote:    body.IsVote,
		Votes:     []models.Vote{},
	}
	e.ChatMessages = append(e.ChatMessages, msg)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Message sent", "chatMessage": msg})
}

func (s *Server) voteEventChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Vote string `json:"vote"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Vote != "up" && body.Vote != "down" {
		writeError(w, http.StatusBadRequest, "Vote must be up or down")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.eventFor(w, r)
	if e == nil {
		return
	}
	mid := chi.URLParam(r, "mid")
	for i := range e.ChatMessages {
		if e.ChatMessages[i].ID == mid {
			now := s.now()
			e.ChatMessages[i].Votes = castVote(e.ChatMessages[i].Votes, models.Vote{User: userID(r), Vote: body.Vote, VotedAt: &now})
			writeMessage(w, "Vote recorded")
			return
		}
	}
	writeError(w, http.StatusNotFound, "Message not found")
}

// castVote replaces the voter's previous record or appends a new one
func castVote(votes []models.Vote, v models.Vote) []models.Vote {
	for i := range votes {
		if votes[i].User == v.User {
			votes[i] = v
			return votes
		}
	}
	return append(votes, v)
}
