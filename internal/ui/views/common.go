package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/session"
	"github.com/tgienger/eventdesk/internal/ui/keys"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// Route identifies a screen
type Route int

const (
	RouteHome Route = iota
	RouteLogin
	RouteRegister
	RouteEvents
	RouteEventDetail
	RouteCreateEvent
	RouteOrganizerChat
	RouteDashboard // resolved to one of the role dashboards by the app
	RouteOrganizerDashboard
	RouteParticipantDashboard
	RouteTasks
	RouteAnnouncements
	RouteProfile
	RouteEditEvent
)

func (r Route) String() string {
	switch r {
	case RouteHome:
		return "home"
	case RouteLogin:
		return "login"
	case RouteRegister:
		return "register"
	case RouteEvents:
		return "events"
	case RouteEventDetail:
		return "event"
	case RouteCreateEvent:
		return "create-event"
	case RouteOrganizerChat:
		return "organizer-chat"
	case RouteDashboard:
		return "dashboard"
	case RouteOrganizerDashboard:
		return "organizer-dashboard"
	case RouteParticipantDashboard:
		return "participant-dashboard"
	case RouteTasks:
		return "tasks"
	case RouteAnnouncements:
		return "announcements"
	case RouteProfile:
		return "profile"
	case RouteEditEvent:
		return "edit-event"
	}
	return "unknown"
}

// ParseRoute is the inverse of Route.String
func ParseRoute(name string) (Route, bool) {
	for r := RouteHome; r <= RouteEditEvent; r++ {
		if r.String() == name {
			return r, true
		}
	}
	return RouteHome, false
}

// Protected reports whether the route needs a signed-in user
func (r Route) Protected() bool {
	switch r {
	case RouteCreateEvent, RouteOrganizerChat, RouteDashboard,
		RouteOrganizerDashboard, RouteParticipantDashboard,
		RouteTasks, RouteAnnouncements, RouteProfile, RouteEditEvent:
		return true
	}
	return false
}

// NeedsEvent reports whether the route only makes sense for one event
func (r Route) NeedsEvent() bool {
	return r == RouteEventDetail || r == RouteOrganizerChat || r == RouteEditEvent
}

// Navigate asks the app to switch screens
type Navigate struct {
	Route   Route
	EventID string
}

func navigate(r Route, eventID string) tea.Cmd {
	return func() tea.Msg {
		return Navigate{Route: r, EventID: eventID}
	}
}

// Deps are the services every view reads from
type Deps struct {
	API         *api.Client
	Session     *session.Store
	Log         *logrus.Entry
	ChatRefresh time.Duration
	Now         func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) userID() string {
	return d.Session.UserID()
}

// failure logs a failed user action and returns the banner text for it
func (d *Deps) failure(err error, action, fallback string) string {
	d.Log.WithError(err).Error(action)
	return api.Message(err, fallback)
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// helpLine renders "key desc • key desc" pairs
func helpLine(s *styles.Styles, pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, fmt.Sprintf("%s %s", s.HelpKey.Render(pairs[i]), pairs[i+1]))
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// helpPopup renders the keyboard shortcut popup shown with ?
func helpPopup(s *styles.Styles, width, height int, pairs ...string) string {
	contentWidth := styles.ContentWidth(width)

	var items []string
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, s.HelpKey.Render(fmt.Sprintf("%-7s", pairs[i]))+pairs[i+1])
	}
	items = append(items, "", s.TitleMuted.Render("Press any key to close"))

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, items...)...,
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, width, height)
}

// confirmPopup renders a Y/N prompt
func confirmPopup(s *styles.Styles, width, height int, title, detail string) string {
	contentWidth := styles.ContentWidth(width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		s.TitleMuted.Render(detail),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}

// banner renders the request failure line, or nothing
func banner(s *styles.Styles, text string) string {
	if text == "" {
		return ""
	}
	return s.Banner.Render(text) + "\n"
}

// notice renders a success line, or nothing
func notice(s *styles.Styles, text string) string {
	if text == "" {
		return ""
	}
	return s.BannerSuccess.Render(text) + "\n"
}

// truncate cuts s to n runes with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "TBD"
	}
	return t.Local().Format("Mon, Jan 2, 2006")
}

// globalNav handles the route shortcuts shared by the top-level screens
func globalNav(deps *Deps, km keys.KeyMap, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, km.Events):
		return navigate(RouteEvents, ""), true
	case key.Matches(msg, km.Dashboard):
		return navigate(RouteDashboard, ""), true
	case key.Matches(msg, km.Tasks):
		return navigate(RouteTasks, ""), true
	case key.Matches(msg, km.Announcements):
		return navigate(RouteAnnouncements, ""), true
	case key.Matches(msg, km.Profile):
		return navigate(RouteProfile, ""), true
	case key.Matches(msg, km.Logout):
		if deps.Session.CurrentUser() == nil {
			return navigate(RouteLogin, ""), true
		}
		return logout(deps), true
	}
	return nil, false
}

// logout erases the stored session and routes to login
func logout(deps *Deps) tea.Cmd {
	return func() tea.Msg {
		if err := deps.Session.Logout(); err != nil {
			deps.Log.WithError(err).Error("logout")
		}
		return Navigate{Route: RouteLogin}
	}
}
