package fakeapi

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tgienger/eventdesk/internal/models"
)

const defaultAnnouncementLimit = 10

// AnnouncementSeed describes an announcement added directly, bypassing the API
type AnnouncementSeed struct {
	Title     string
	Content   string
	EventID   string
	Type      models.AnnouncementType
	Priority  models.Priority
	CreatedBy string
}

// AddAnnouncement stores a visible announcement
func (s *Server) AddAnnouncement(seed AnnouncementSeed) models.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.addAnnouncementLocked(seed, nil)
}

func (s *Server) addAnnouncementLocked(seed AnnouncementSeed, scheduled *time.Time) *models.Announcement {
	now := s.now()
	if seed.Type == "" {
		seed.Type = models.AnnouncementGeneral
	}
	if seed.Priority == "" {
		seed.Priority = models.PriorityMedium
	}
	a := &models.Announcement{
		ID:             newID(),
		Title:          seed.Title,
		Content:        seed.Content,
		CreatedBy:      s.ref(seed.CreatedBy),
		Priority:       seed.Priority,
		Type:           seed.Type,
		TargetAudience: models.AudienceAll,
		IsVisible:      true,
		Attachments:    []models.Attachment{},
		ReadBy:         []models.ReadReceipt{},
		Reactions:      []models.Reaction{},
		Comments:       []models.Comment{},
		ScheduledFor:   scheduled,
		IsScheduled:    scheduled != nil,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if e, ok := s.events[seed.EventID]; ok {
		a.Event = &models.AnnouncementEvent{ID: e.ID, Title: e.Title, Date: e.Date}
		a.TargetAudience = models.AudienceSpecificEvent
	}
	s.announcements[a.ID] = a
	s.annOrder = append(s.annOrder, a.ID)
	return a
}

func (s *Server) announcementFor(w http.ResponseWriter, r *http.Request) *models.Announcement {
	a, ok := s.announcements[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Announcement not found")
		return nil
	}
	return a
}

// published reports whether a is visible at now
func published(a *models.Announcement, now time.Time) bool {
	if !a.IsVisible {
		return false
	}
	return a.ScheduledFor == nil || !a.ScheduledFor.After(now)
}

func (s *Server) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	eventID, kind := q.Get("eventId"), q.Get("type")

	s.mu.Lock()
	now := s.now()
	var matched []models.Announcement
	for i := len(s.annOrder) - 1; i >= 0; i-- {
		a := s.announcements[s.annOrder[i]]
		if !published(a, now) {
			continue
		}
		if eventID != "" && (a.Event == nil || a.Event.ID != eventID) {
			continue
		}
		if kind != "" && string(a.Type) != kind {
			continue
		}
		matched = append(matched, *a)
	}
	s.mu.Unlock()

	start, end, page, pages := paginate(q, len(matched), defaultAnnouncementLimit)
	writeJSON(w, http.StatusOK, map[string]any{
		"announcements": append([]models.Announcement{}, matched[start:end]...),
		"totalPages":    pages,
		"currentPage":   page,
		"total":         len(matched),
	})
}

func (s *Server) getAnnouncement(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.announcementFor(w, r); a != nil {
		writeJSON(w, http.StatusOK, a)
	}
}

func (s *Server) createAnnouncement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title          string `json:"title"`
		Content        string `json:"content"`
		EventID        string `json:"eventId"`
		Priority       string `json:"priority"`
		Type           string `json:"type"`
		TargetAudience string `json:"targetAudience"`
		ScheduledFor   string `json:"scheduledFor"`
	}
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Title) == "" || strings.TrimSpace(body.Content) == "" {
		writeError(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r)
	if s.users[uid].user.Role != models.RoleOrganizer {
		writeError(w, http.StatusForbidden, "Only organizers can create announcements")
		return
	}
	if body.EventID != "" {
		if _, ok := s.events[body.EventID]; !ok {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
	}
	var scheduled *time.Time
	if t, err := time.Parse(time.RFC3339, body.ScheduledFor); err == nil {
		scheduled = &t
	}
	a := s.addAnnouncementLocked(AnnouncementSeed{
		Title:     body.Title,
		Content:   body.Content,
		EventID:   body.EventID,
		Type:      models.AnnouncementType(body.Type),
		Priority:  models.Priority(body.Priority),
		CreatedBy: uid,
	}, scheduled)
	if body.TargetAudience != "" {
		a.TargetAudience = models.Audience(body.TargetAudience)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Announcement created successfully", "announcement": a})
}

func (s *Server) updateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title     string `json:"title"`
		Content   string `json:"content"`
		Priority  string `json:"priority"`
		Type      string `json:"type"`
		IsVisible *bool  `json:"isVisible"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.announcementFor(w, r)
	if a == nil {
		return
	}
	if a.CreatedBy.ID != userID(r) {
		writeError(w, http.StatusForbidden, "Not authorized to update this announcement")
		return
	}
	if body.Title != "" {
		a.Title = body.Title
	}
	if body.Content != "" {
		a.Content = body.Content
	}
	if body.Priority != "" {
		a.Priority = models.Priority(body.Priority)
	}
	if body.Type != "" {
		a.Type = models.AnnouncementType(body.Type)
	}
	if body.IsVisible != nil {
		a.IsVisible = *body.IsVisible
	}
	a.UpdatedAt = s.now()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Announcement updated successfully", "announcement": a})
}

func (s *Server) deleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.announcementFor(w, r)
	if a == nil {
		return
	}
	if a.CreatedBy.ID != userID(r) {
		writeError(w, http.StatusForbidden, "Not authorized to delete this announcement")
		return
	}
	delete(s.announcements, a.ID)
	s.annOrder = slices.DeleteFunc(s.annOrder, func(id string) bool { return id == a.ID })
	writeMessage(w, "Announcement deleted successfully")
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		writeError(w, http.StatusBadRequest, "Comment content is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.announcementFor(w, r)
	if a == nil {
		return
	}
	a.Comments = append(a.Comments, models.Comment{User: s.ref(userID(r)), Content: body.Content, CreatedAt: s.now()})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Comment added successfully", "announcement": a})
}

func (s *Server) addReaction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reaction string `json:"reaction"`
	}
	if !decode(w, r, &body) {
		return
	}
	if !slices.Contains(models.Reactions, body.Reaction) {
		writeError(w, http.StatusBadRequest, "Invalid reaction")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.announcementFor(w, r)
	if a == nil {
		return
	}
	uid := userID(r)
	a.Reactions = slices.DeleteFunc(a.Reactions, func(x models.Reaction) bool { return x.User.ID == uid })
	a.Reactions = append(a.Reactions, models.Reaction{User: s.ref(uid), Reaction: body.Reaction, CreatedAt: s.now()})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Reaction added successfully", "announcement": a})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.announcementFor(w, r)
	if a == nil {
		return
	}
	uid := userID(r)
	if !a.ReadByUser(uid) {
		a.ReadBy = append(a.ReadBy, models.ReadReceipt{User: uid, ReadAt: s.now()})
	}
	writeMessage(w, "Marked as read")
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, a := range s.announcements {
		if published(a, now) && !a.ReadByUser(uid) {
			n++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"unreadCount": n})
}
