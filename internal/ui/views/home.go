package views

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/models"
	"github.com/tgienger/eventdesk/internal/ui/keys"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// FeaturedLimit is how many published events the home screen shows
const FeaturedLimit = 6

type eventItem struct {
	event  models.Event
	status models.EventStatus
}

func (i eventItem) Title() string { return i.event.Title }
func (i eventItem) Description() string {
	return fmt.Sprintf("%s • %s • %s", formatDate(i.event.Date), i.event.Category, i.event.Venue.Name)
}
func (i eventItem) FilterValue() string { return i.event.Title }

type eventDelegate struct {
	styles *styles.Styles
	width  int
}

func (d eventDelegate) Height() int                               { return 2 }
func (d eventDelegate) Spacing() int                              { return 1 }
func (d eventDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d eventDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	e, ok := item.(eventItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	title := e.Title()
	if e.status != "" {
		title += "  " + styles.Badge(string(e.status))
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(title), descStyle.Render(e.Description()))
}

// HomeView lists featured events and links to the rest of the app
type HomeView struct {
	deps     *Deps
	list     list.Model
	delegate *eventDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool
	err      string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

func NewHomeView(deps *Deps) *HomeView {
	s := styles.NewStyles()

	delegate := &eventDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Featured Events"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &HomeView{
		deps:     deps,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
	}
}

func (v *HomeView) Init() tea.Cmd {
	return v.loadFeatured
}

func (v *HomeView) loadFeatured() tea.Msg {
	page, err := v.deps.API.Events(context.Background(), api.EventQuery{
		Status: "published",
		Limit:  FeaturedLimit,
	})
	if err != nil {
		return featuredLoadedMsg{err: err}
	}
	return featuredLoadedMsg{events: page.Events}
}

type featuredLoadedMsg struct {
	events []models.Event
	err    error
}

func (v *HomeView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-8)
		return v, nil

	case featuredLoadedMsg:
		v.loaded = true
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "load featured events", "Failed to load events")
			return v, nil
		}
		v.err = ""
		now := v.deps.now()
		items := make([]list.Item, len(msg.events))
		for i, e := range msg.events {
			items[i] = eventItem{event: e, status: e.DerivedStatus(now)}
		}
		v.list.SetItems(items)
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
			return v, nil
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.New):
			return v, navigate(RouteCreateEvent, "")
		case key.Matches(msg, v.keys.Refresh):
			return v, v.loadFeatured
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(eventItem); ok {
				return v, navigate(RouteEventDetail, item.event.ID)
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *HomeView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	var body string
	if len(v.list.Items()) == 0 {
		body = v.renderEmpty()
	} else {
		body = v.list.View()
	}

	content := v.renderGreeting() + "\n" + banner(v.styles, v.err) + body + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *HomeView) renderGreeting() string {
	s := v.styles
	user := v.deps.Session.CurrentUser()
	if user == nil {
		return s.TitleBar.Render("eventdesk") + s.TitleMuted.Render("  not signed in • L to sign in")
	}
	return s.TitleBar.Render("eventdesk") + s.TitleMuted.Render(fmt.Sprintf("  %s (%s)", user.Name, user.Role))
}

func (v *HomeView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Featured Events"),
		"",
		s.TitleMuted.Render("Press 'E' to browse every event"),
	)

	return lipgloss.Place(contentWidth, max(v.height-8, 3),
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

func (v *HomeView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	login := "logout"
	if v.deps.Session.CurrentUser() == nil {
		login = "login"
	}
	return helpLine(v.styles,
		"↵", "open",
		"E", "events",
		"D", "dashboard",
		"n", "new event",
		"L", login,
		"q", "quit",
	)
}

func (v *HomeView) renderHelpPopup() string {
	return helpPopup(v.styles, v.width, v.height,
		"↵", "open event",
		"E", "browse events",
		"D", "dashboard",
		"T", "tasks",
		"A", "announcements",
		"P", "profile",
		"n", "create event",
		"ctrl+r", "refresh",
		"L", "login / logout",
		"q", "quit",
	)
}
