package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/eventdesk/internal/models"
	"github.com/tgienger/eventdesk/internal/ui/views"
)

// Keys of the remembered screen
const (
	lastRouteKey   = "last_route"
	lastEventIDKey = "last_event_id"
)

// Settings is the local key/value store used to reopen the last screen
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// closer is implemented by views holding background work (the organizer chat)
type closer interface {
	Close()
}

// sessionChangedMsg carries the newest user from the session store
type sessionChangedMsg struct {
	user *models.User
}

type App struct {
	deps     *views.Deps
	settings Settings

	route   views.Navigate
	current tea.Model

	sessionUpdates <-chan *models.User
	stopSession    func()

	width  int
	height int
}

// Creates a new application
func NewApp(deps *views.Deps, settings Settings) *App {
	updates, stop := deps.Session.Subscribe()
	return &App{
		deps:           deps,
		settings:       settings,
		sessionUpdates: updates,
		stopSession:    stop,
	}
}

func (a *App) Init() tea.Cmd {
	start := views.Navigate{Route: views.RouteHome}

	// Reopen the last screen of a signed-in user
	if a.deps.Session.CurrentUser() != nil {
		if name, err := a.settings.GetSetting(lastRouteKey); err == nil && name != "" {
			if r, ok := views.ParseRoute(name); ok {
				eventID, _ := a.settings.GetSetting(lastEventIDKey)
				start = views.Navigate{Route: r, EventID: eventID}
			}
		}
	}

	return tea.Batch(a.open(start), a.waitForSession())
}

// Close releases the session subscription and the current view
func (a *App) Close() {
	a.closeCurrent()
	a.stopSession()
}

func (a *App) waitForSession() tea.Cmd {
	updates := a.sessionUpdates
	return func() tea.Msg {
		user, ok := <-updates
		if !ok {
			return nil
		}
		return sessionChangedMsg{user: user}
	}
}

func (a *App) closeCurrent() {
	if c, ok := a.current.(closer); ok {
		c.Close()
	}
}

// resolve applies the route guard and picks the role dashboard
func (a *App) resolve(nav views.Navigate) views.Navigate {
	user := a.deps.Session.CurrentUser()
	if nav.Route.Protected() && user == nil {
		return views.Navigate{Route: views.RouteLogin}
	}
	if nav.Route == views.RouteDashboard {
		if a.deps.Session.IsOrganizer() {
			nav.Route = views.RouteOrganizerDashboard
		} else {
			nav.Route = views.RouteParticipantDashboard
		}
	}
	if nav.Route.NeedsEvent() && nav.EventID == "" {
		nav.Route = views.RouteEvents
	}
	return nav
}

func (a *App) build(nav, requested views.Navigate) tea.Model {
	switch nav.Route {
	case views.RouteLogin:
		// Send the user on to the screen the guard stopped them from opening
		next := views.Navigate{Route: views.RouteDashboard}
		if requested.Route.Protected() {
			next = requested
		}
		return views.NewAuthView(a.deps, false, next)
	case views.RouteRegister:
		return views.NewAuthView(a.deps, true, views.Navigate{Route: views.RouteDashboard})
	case views.RouteEvents:
		return views.NewEventListView(a.deps)
	case views.RouteEventDetail:
		return views.NewEventDetailView(a.deps, nav.EventID)
	case views.RouteCreateEvent:
		return views.NewCreateEventView(a.deps)
	case views.RouteEditEvent:
		return views.NewEditEventView(a.deps, nav.EventID)
	case views.RouteOrganizerChat:
		return views.NewChatView(a.deps, nav.EventID)
	case views.RouteOrganizerDashboard:
		return views.NewDashboardView(a.deps, true)
	case views.RouteParticipantDashboard:
		return views.NewDashboardView(a.deps, false)
	case views.RouteTasks:
		return views.NewTaskListView(a.deps, nav.EventID)
	case views.RouteAnnouncements:
		return views.NewAnnouncementsView(a.deps)
	case views.RouteProfile:
		return views.NewProfileView(a.deps)
	}
	return views.NewHomeView(a.deps)
}

func (a *App) open(requested views.Navigate) tea.Cmd {
	nav := a.resolve(requested)
	if nav.Route != requested.Route {
		a.deps.Log.WithField("route", requested.Route.String()).
			WithField("resolved", nav.Route.String()).Debug("route resolved")
	}

	a.closeCurrent()
	a.route = nav
	a.current = a.build(nav, requested)

	// Remember where the user was; the auth screens are never reopened
	if nav.Route != views.RouteLogin && nav.Route != views.RouteRegister {
		if err := a.settings.SetSetting(lastRouteKey, nav.Route.String()); err != nil {
			a.deps.Log.WithError(err).Warn("save last route")
		}
		if err := a.settings.SetSetting(lastEventIDKey, nav.EventID); err != nil {
			a.deps.Log.WithError(err).Warn("save last event")
		}
	}

	// Initialize the new view with window size
	width, height := a.width, a.height
	return tea.Batch(
		a.current.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: width, Height: height}
		},
	)
}

// Route returns the screen currently shown
func (a *App) Route() views.Navigate {
	return a.route
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case views.Navigate:
		return a, a.open(msg)

	case sessionChangedMsg:
		cmd := a.waitForSession()
		// Signed out (logout or a rejected token) while on a protected screen
		if msg.user == nil && a.route.Route.Protected() {
			return a, tea.Batch(cmd, a.open(views.Navigate{Route: views.RouteLogin}))
		}
		return a, cmd
	}

	if a.current == nil {
		return a, nil
	}
	var cmd tea.Cmd
	a.current, cmd = a.current.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if a.current == nil {
		return ""
	}
	return a.current.View()
}
