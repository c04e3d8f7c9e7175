package fakeapi

import (
	"time"

	"github.com/tgienger/eventdesk/internal/models"
)

// AddOrganizer attaches userID to an event's roster directly
func (s *Server) AddOrganizer(eventID, userID, role string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return false
	}
	if _, already := e.OrganizerFor(userID); already {
		return false
	}
	perms := models.Permissions{CanManageTasks: true}
	if role == models.OrganizerRoleAdmin {
		perms = models.Permissions{CanEdit: true, CanDelete: true, CanManageTasks: true}
	}
	e.Organizers = append(e.Organizers, models.Organizer{User: s.ref(userID), Role: role, Permissions: perms})
	return true
}

// AddChatMessage posts to an event's organizer channel directly. A non-empty
// options list makes it a poll.
func (s *Server) AddChatMessage(eventID, userID, text string, options ...string) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &models.ChatMessage{
		ID:          newID(),
		User:        s.ref(userID),
		Message:     text,
		Timestamp:   s.now(),
		IsVote:      len(options) > 0,
		VoteOptions: options,
		Votes:       []models.Vote{},
	}
	s.orgChat[eventID] = append(s.orgChat[eventID], m)
	return *m
}

// ChatMessages returns a copy of an event's organizer channel
func (s *Server) ChatMessages(eventID string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, 0, len(s.orgChat[eventID]))
	for _, m := range s.orgChat[eventID] {
		out = append(out, *m)
	}
	return out
}

// Demo accounts created by Seed
const (
	DemoPassword         = "password"
	DemoOrganizerEmail   = "organizer@example.com"
	DemoCoOrganizerEmail = "coorganizer@example.com"
	DemoParticipantEmail = "participant@example.com"
)

// Seed fills the backend with demo accounts, events, chat, tasks and
// announcements
func (s *Server) Seed() {
	now := s.now().Truncate(time.Hour)

	org := s.AddUser("Olivia Organizer", DemoOrganizerEmail, DemoPassword, models.RoleOrganizer)
	co := s.AddUser("Carlos Coorganizer", DemoCoOrganizerEmail, DemoPassword, models.RoleOrganizer)
	part := s.AddUser("Priya Participant", DemoParticipantEmail, DemoPassword, models.RoleParticipant)

	categories := []string{"Workshop", "Cultural", "Community", "Sports", "Academic", "Social"}
	venues := []models.Venue{
		{Name: "Main Hall", Address: "1 Campus Way"},
		{Name: "Riverside Park", Address: "22 River Rd"},
		{Name: "Library Auditorium", Address: "5 Book St"},
	}
	var events []models.Event
	for i := range 26 {
		offset := time.Duration(i*3-6) * 24 * time.Hour
		seed := EventSeed{
			Title:       eventTitles[i%len(eventTitles)],
			Description: "Join us for an afternoon of activities, food and good company.",
			Category:    categories[i%len(categories)],
			Date:        now.Add(offset).Add(18 * time.Hour),
			Venue:       venues[i%len(venues)],
			OrganizerID: org.ID,
		}
		if i%4 == 0 {
			seed.Participants = []string{part.ID}
		}
		if i%9 == 8 {
			seed.Status = "draft"
		}
		events = append(events, s.AddEvent(seed))
	}

	planning := events[2]
	s.AddOrganizer(planning.ID, co.ID, "co-organizer")
	s.AddChatMessage(planning.ID, org.ID, "Welcome to the planning channel.")
	poll := s.AddChatMessage(planning.ID, co.ID, "Should we book a food truck?", "Yes", "No")
	s.mu.Lock()
	voted := now
	s.chatMessage(planning.ID, poll.ID).Votes = []models.Vote{{User: org.ID, Vote: "Yes", VoteOption: "Yes", VotedAt: &voted}}
	s.mu.Unlock()
	s.AddChatMessage(planning.ID, co.ID, "Which day works for setup?", "Friday", "Saturday", "Sunday")

	due := now.Add(5 * 24 * time.Hour)
	s.AddTask(TaskSeed{EventID: planning.ID, Title: "Book the sound system", Description: "Confirm the rental and delivery window.", Priority: models.PriorityHigh, Category: "logistics", DueDate: &due, CreatedBy: org.ID, Assignees: []string{co.ID}})
	s.AddTask(TaskSeed{EventID: planning.ID, Title: "Design the poster", Description: "A3 poster for the notice boards.", Priority: models.PriorityMedium, Category: "design", CreatedBy: org.ID, Assignees: []string{part.ID, co.ID}})
	s.AddTask(TaskSeed{EventID: planning.ID, Title: "Volunteer sign-up sheet", Description: "Shared sheet for shifts.", Priority: models.PriorityLow, Category: "coordination", CreatedBy: org.ID, Assignees: []string{part.ID}})

	s.AddAnnouncement(AnnouncementSeed{Title: "Welcome to the new season", Content: "Browse the directory and RSVP to anything that catches your eye.", CreatedBy: org.ID})
	s.AddAnnouncement(AnnouncementSeed{Title: "Venue change", Content: "The workshop moves to the Library Auditorium.", EventID: planning.ID, Type: models.AnnouncementEventUpdate, Priority: models.PriorityHigh, CreatedBy: org.ID})
	s.AddAnnouncement(AnnouncementSeed{Title: "Reminder: bring your ID", Content: "Entry requires a student or staff card.", Type: models.AnnouncementReminder, CreatedBy: co.ID})
}

var eventTitles = []string{
	"Intro to Pottery",
	"Lantern Festival",
	"Neighborhood Cleanup",
	"Five-a-side Football",
	"Research Poster Night",
	"Board Game Social",
	"Photography Walk",
	"Open Mic",
	"Charity Bake Sale",
}
