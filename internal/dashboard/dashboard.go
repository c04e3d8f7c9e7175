// Package dashboard loads the three list resources behind the role dashboards
// and derives their summary counts.
package dashboard

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/models"
)

const (
	EventLimit        = 10
	AnnouncementLimit = 5
	RecentTasks       = 5
)

// API is the backend surface a dashboard reads
type API interface {
	Events(ctx context.Context, q api.EventQuery) (*api.EventList, error)
	MyTasks(ctx context.Context) ([]models.Task, error)
	Announcements(ctx context.Context, q api.AnnouncementQuery) (*api.AnnouncementList, error)
}

// Data is one load of the dashboard sources. A failed source leaves its
// slice nil and its error set; the others still render.
type Data struct {
	Events        []models.Event
	Tasks         []models.Task
	Announcements []models.Announcement

	EventsErr        error
	TasksErr         error
	AnnouncementsErr error
}

// Load fetches events, tasks and announcements concurrently
func Load(ctx context.Context, client API, log *logrus.Entry) *Data {
	var d Data
	var g errgroup.Group

	g.Go(func() error {
		list, err := client.Events(ctx, api.EventQuery{Limit: EventLimit})
		if err != nil {
			log.WithError(err).Warn("load events")
			d.EventsErr = err
			return nil
		}
		d.Events = list.Events
		return nil
	})
	g.Go(func() error {
		tasks, err := client.MyTasks(ctx)
		if err != nil {
			log.WithError(err).Warn("load tasks")
			d.TasksErr = err
			return nil
		}
		d.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		list, err := client.Announcements(ctx, api.AnnouncementQuery{Limit: AnnouncementLimit})
		if err != nil {
			log.WithError(err).Warn("load announcements")
			d.AnnouncementsErr = err
			return nil
		}
		d.Announcements = list.Announcements
		return nil
	})

	_ = g.Wait()
	return &d
}

// RecentTasks returns at most RecentTasks tasks from the head of the list
func (d *Data) RecentTasks() []models.Task {
	if len(d.Tasks) > RecentTasks {
		return d.Tasks[:RecentTasks]
	}
	return d.Tasks
}

// OrganizerStats are the headline counts of the organizer dashboard
type OrganizerStats struct {
	TotalEvents       int
	TotalParticipants int
	PendingTasks      int
	UpcomingEvents    int
}

// ParticipantStats are the headline counts of the participant dashboard
type ParticipantStats struct {
	RegisteredEvents   int
	CompletedTasks     int
	UpcomingEvents     int
	TotalContributions int
}

// Organizer derives the organizer counts from the loaded data
func Organizer(d *Data, userID string, now time.Time) OrganizerStats {
	s := OrganizerStats{
		TotalEvents:    len(d.Events),
		PendingTasks:   countAssigned(d.Tasks, userID, models.AssignmentPending),
		UpcomingEvents: countUpcoming(d.Events, now),
	}
	for _, e := range d.Events {
		s.TotalParticipants += len(e.Participants)
	}
	return s
}

// Participant derives the participant counts. Registrations are matched on
// the single fetched page only, so events beyond it are not counted.
func Participant(d *Data, userID string, now time.Time) ParticipantStats {
	registered := RegisteredEvents(d.Events, userID)
	return ParticipantStats{
		RegisteredEvents:   len(registered),
		CompletedTasks:     countAssigned(d.Tasks, userID, models.AssignmentCompleted),
		UpcomingEvents:     countUpcoming(registered, now),
		TotalContributions: len(d.Tasks),
	}
}

// RegisteredEvents filters events to those userID participates in
func RegisteredEvents(events []models.Event, userID string) []models.Event {
	var out []models.Event
	for _, e := range events {
		if e.HasParticipant(userID) {
			out = append(out, e)
		}
	}
	return out
}

func countUpcoming(events []models.Event, now time.Time) int {
	n := 0
	for _, e := range events {
		if e.DerivedStatus(now) == models.StatusUpcoming {
			n++
		}
	}
	return n
}

func countAssigned(tasks []models.Task, userID string, status models.AssignmentStatus) int {
	n := 0
	for _, t := range tasks {
		for _, a := range t.AssignedTo {
			if userID != "" && a.User.ID == userID && a.Status == status {
				n++
				break
			}
		}
	}
	return n
}
