package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/eventdesk/internal/dashboard"
	"github.com/tgienger/eventdesk/internal/models"
	"github.com/tgienger/eventdesk/internal/ui/keys"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// DashboardView is the role dashboard: organizer or participant
type DashboardView struct {
	deps      *Deps
	organizer bool
	data      *dashboard.Data
	styles    *styles.Styles
	keys      keys.KeyMap
	spinner   spinner.Model

	width  int
	height int

	// Events listed on the dashboard, selectable with ↑/↓
	events []models.Event
	cursor int

	showHelpPopup bool
}

func NewDashboardView(deps *Deps, organizer bool) *DashboardView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &DashboardView{
		deps:      deps,
		organizer: organizer,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		spinner:   sp,
	}
}

type dashboardLoadedMsg struct {
	data *dashboard.Data
}

func (v *DashboardView) Init() tea.Cmd {
	return tea.Batch(v.load, v.spinner.Tick)
}

func (v *DashboardView) load() tea.Msg {
	log := v.deps.Log.WithField("component", "dashboard")
	return dashboardLoadedMsg{data: dashboard.Load(context.Background(), v.deps.API, log)}
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case spinner.TickMsg:
		if v.data != nil {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case dashboardLoadedMsg:
		v.data = msg.data
		if v.organizer {
			v.events = v.data.Events
		} else {
			v.events = dashboard.RegisteredEvents(v.data.Events, v.deps.userID())
		}
		v.cursor = clamp(v.cursor, 0, max(len(v.events)-1, 0))
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if cmd, ok := globalNav(v.deps, v.keys, msg); ok {
			return v, cmd
		}
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, navigate(RouteHome, "")
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
		case key.Matches(msg, v.keys.Refresh):
			v.data = nil
			return v, tea.Batch(v.load, v.spinner.Tick)
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.events)-1 {
				v.cursor++
			}
		case key.Matches(msg, v.keys.Enter):
			if v.cursor < len(v.events) {
				return v, navigate(RouteEventDetail, v.events[v.cursor].ID)
			}
		case key.Matches(msg, v.keys.Chat):
			if v.organizer && v.cursor < len(v.events) {
				return v, navigate(RouteOrganizerChat, v.events[v.cursor].ID)
			}
		case key.Matches(msg, v.keys.New):
			if v.organizer {
				return v, navigate(RouteCreateEvent, "")
			}
		}
	}
	return v, nil
}

func (v *DashboardView) View() string {
	if v.showHelpPopup {
		return helpPopup(v.styles, v.width, v.height,
			"↑/↓", "select event",
			"↵", "open event",
			"o", "organizer chat (organizers)",
			"n", "create event (organizers)",
			"E/T/A/P", "events, tasks, announcements, profile",
			"ctrl+r", "refresh",
			"L", "logout",
			"esc", "home",
		)
	}

	s := v.styles
	title := "Participant Dashboard"
	if v.organizer {
		title = "Organizer Dashboard"
	}
	greeting := ""
	if u := v.deps.Session.CurrentUser(); u != nil {
		greeting = s.TitleMuted.Render("  Welcome back, " + u.Name)
	}

	if v.data == nil {
		return styles.CenterView(s.Title.Render(title)+"\n\n"+v.spinner.View()+" Loading...", v.width, v.height)
	}

	sections := []string{s.Title.Render(title) + greeting, "", v.renderStats(), ""}
	sections = append(sections, v.renderEvents(), "", v.renderTasks(), "", v.renderAnnouncements())
	sections = append(sections, helpLine(s, "↵", "open", "o", "chat", "T", "tasks", "A", "announcements", "?", "more", "esc", "home"))

	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return styles.CenterView(padded, v.width, v.height)
}

func (v *DashboardView) stat(value int, label string) string {
	return v.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Center,
		v.styles.StatValue.Render(fmt.Sprint(value)),
		v.styles.StatLabel.Render(label),
	))
}

func (v *DashboardView) renderStats() string {
	now := v.deps.now()
	uid := v.deps.userID()
	if v.organizer {
		st := dashboard.Organizer(v.data, uid, now)
		return lipgloss.JoinHorizontal(lipgloss.Top,
			v.stat(st.TotalEvents, "Events"),
			v.stat(st.TotalParticipants, "Participants"),
			v.stat(st.PendingTasks, "Pending tasks"),
			v.stat(st.UpcomingEvents, "Upcoming"),
		)
	}
	st := dashboard.Participant(v.data, uid, now)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		v.stat(st.RegisteredEvents, "Registered"),
		v.stat(st.CompletedTasks, "Completed tasks"),
		v.stat(st.UpcomingEvents, "Upcoming"),
		v.stat(st.TotalContributions, "Contributions"),
	)
}

func (v *DashboardView) renderEvents() string {
	s := v.styles
	heading := "Recent Events"
	if !v.organizer {
		heading = "My Events"
	}
	rows := []string{s.Title.Render(heading)}
	if v.data.EventsErr != nil {
		return lipgloss.JoinVertical(lipgloss.Left, append(rows, s.FieldError.Render("Failed to load events"))...)
	}
	if len(v.events) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(rows, s.TitleMuted.Render("No events yet"))...)
	}
	now := v.deps.now()
	width := max(styles.ContentWidth(v.width)-8, 20)
	for i, e := range v.events {
		style := s.ListItem
		if i == v.cursor {
			style = s.ListSelected
		}
		line := fmt.Sprintf("%s  %s  %s", truncate(e.Title, width-30), s.TitleMuted.Render(formatDate(e.Date)), styles.Badge(string(e.DerivedStatus(now))))
		if v.organizer {
			line += s.TitleMuted.Render(fmt.Sprintf("  %d/%d", len(e.Participants), e.MaxParticipants))
		}
		rows = append(rows, style.Width(width).Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *DashboardView) renderTasks() string {
	s := v.styles
	rows := []string{s.Title.Render("Recent Tasks")}
	if v.data.TasksErr != nil {
		return lipgloss.JoinVertical(lipgloss.Left, append(rows, s.FieldError.Render("Failed to load tasks"))...)
	}
	tasks := v.data.RecentTasks()
	if len(tasks) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(rows, s.TitleMuted.Render("No tasks assigned"))...)
	}
	uid := v.deps.userID()
	for _, t := range tasks {
		rows = append(rows, fmt.Sprintf("  %s  %s  %s",
			t.Title,
			s.TitleMuted.Render(t.Event.Title),
			styles.Badge(t.StatusFor(uid)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *DashboardView) renderAnnouncements() string {
	s := v.styles
	rows := []string{s.Title.Render("Announcements")}
	if v.data.AnnouncementsErr != nil {
		return lipgloss.JoinVertical(lipgloss.Left, append(rows, s.FieldError.Render("Failed to load announcements"))...)
	}
	if len(v.data.Announcements) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(rows, s.TitleMuted.Render("Nothing new"))...)
	}
	uid := v.deps.userID()
	for _, a := range v.data.Announcements {
		dot := "  "
		if !a.ReadByUser(uid) {
			dot = s.Own.Render("● ")
		}
		rows = append(rows, dot+a.Title+"  "+styles.Badge(string(a.Priority))+"  "+s.TitleMuted.Render(strings.TrimSpace(a.CreatedBy.Name)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
