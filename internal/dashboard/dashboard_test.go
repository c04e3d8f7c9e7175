package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/logging"
	"github.com/tgienger/eventdesk/internal/models"
)

var now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type stubAPI struct {
	mu        sync.Mutex
	events    []models.Event
	tasks     []models.Task
	taskErr   error
	eventQ    api.EventQuery
	announceQ api.AnnouncementQuery
}

func (s *stubAPI) Events(ctx context.Context, q api.EventQuery) (*api.EventList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventQ = q
	return &api.EventList{Events: s.events, TotalPages: 1, CurrentPage: 1, Total: len(s.events)}, nil
}

func (s *stubAPI) MyTasks(ctx context.Context) ([]models.Task, error) {
	if s.taskErr != nil {
		return nil, s.taskErr
	}
	return s.tasks, nil
}

func (s *stubAPI) Announcements(ctx context.Context, q api.AnnouncementQuery) (*api.AnnouncementList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announceQ = q
	return &api.AnnouncementList{Announcements: []models.Announcement{{ID: "a1"}}}, nil
}

func participant(id string) models.Participant {
	return models.Participant{User: models.UserRef{ID: id}, Status: "registered"}
}

func assigned(id string, status models.AssignmentStatus) models.Task {
	return models.Task{AssignedTo: []models.Assignment{{User: models.UserRef{ID: id}, Status: status}}}
}

func fixture() *stubAPI {
	return &stubAPI{
		events: []models.Event{
			{ID: "past", Date: now.Add(-24 * time.Hour), Participants: []models.Participant{participant("me"), participant("x")}},
			{ID: "soon", Date: now.Add(48 * time.Hour), Participants: []models.Participant{participant("me")}},
			{ID: "later", Date: now.Add(30 * 24 * time.Hour)},
			{ID: "edge", Date: now.Add(7 * 24 * time.Hour), Participants: []models.Participant{participant("me")}},
		},
		tasks: []models.Task{
			assigned("me", models.AssignmentPending),
			assigned("me", models.AssignmentCompleted),
			assigned("other", models.AssignmentPending),
			assigned("me", models.AssignmentPending),
			{},
			assigned("me", models.AssignmentCompleted),
		},
	}
}

func TestLoadRequestsBoundedPages(t *testing.T) {
	stub := fixture()
	d := Load(context.Background(), stub, logging.Discard())

	if stub.eventQ.Limit != EventLimit || stub.announceQ.Limit != AnnouncementLimit {
		t.Errorf("queries = %+v %+v", stub.eventQ, stub.announceQ)
	}
	if len(d.Events) != 4 || len(d.Tasks) != 6 || len(d.Announcements) != 1 {
		t.Errorf("data = %d/%d/%d", len(d.Events), len(d.Tasks), len(d.Announcements))
	}
	if got := len(d.RecentTasks()); got != RecentTasks {
		t.Errorf("recent tasks = %d", got)
	}
}

func TestLoadKeepsOtherSources(t *testing.T) {
	stub := fixture()
	stub.taskErr = errors.New("boom")
	d := Load(context.Background(), stub, logging.Discard())

	if d.TasksErr == nil || d.Tasks != nil {
		t.Errorf("tasks = %v, err = %v", d.Tasks, d.TasksErr)
	}
	if len(d.Events) != 4 || d.EventsErr != nil {
		t.Error("events lost when tasks failed")
	}
}

func TestOrganizerStats(t *testing.T) {
	d := Load(context.Background(), fixture(), logging.Discard())
	got := Organizer(d, "me", now)
	want := OrganizerStats{TotalEvents: 4, TotalParticipants: 4, PendingTasks: 2, UpcomingEvents: 1}
	if got != want {
		t.Errorf("Organizer = %+v, want %+v", got, want)
	}
}

func TestParticipantStats(t *testing.T) {
	d := Load(context.Background(), fixture(), logging.Discard())
	got := Participant(d, "me", now)
	want := ParticipantStats{RegisteredEvents: 3, CompletedTasks: 2, UpcomingEvents: 1, TotalContributions: 6}
	if got != want {
		t.Errorf("Participant = %+v, want %+v", got, want)
	}
}

func TestRepeatedAssignmentCounts(t *testing.T) {
	task := models.Task{AssignedTo: []models.Assignment{
		{User: models.UserRef{ID: "other"}, Status: models.AssignmentCompleted},
		{User: models.UserRef{ID: "me"}, Status: models.AssignmentPending},
		{User: models.UserRef{ID: "me"}, Status: models.AssignmentCompleted},
		{User: models.UserRef{ID: "me"}, Status: models.AssignmentCompleted},
	}}
	tasks := []models.Task{task, assigned("me", models.AssignmentCompleted)}

	if n := countAssigned(tasks, "me", models.AssignmentCompleted); n != 2 {
		t.Errorf("completed = %d, want 2", n)
	}
	if n := countAssigned(tasks, "me", models.AssignmentPending); n != 1 {
		t.Errorf("pending = %d, want 1", n)
	}
	if n := countAssigned(tasks, "", models.AssignmentCompleted); n != 0 {
		t.Errorf("anonymous = %d, want 0", n)
	}
}

func TestStatsDoNotMutate(t *testing.T) {
	d := Load(context.Background(), fixture(), logging.Discard())
	first := d.Events[0].ID
	Organizer(d, "me", now)
	Participant(d, "me", now)
	if d.Events[0].ID != first || len(d.Events) != 4 || len(d.Tasks) != 6 {
		t.Error("aggregation changed the loaded data")
	}
}
