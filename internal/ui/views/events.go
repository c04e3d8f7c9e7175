package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/models"
	"github.com/tgienger/eventdesk/internal/ui/keys"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// EventPageSize is the page size of the event directory
const EventPageSize = 12

var (
	EventCategories = []string{"All", "Workshop", "Cultural", "Community", "Sports", "Academic", "Social", "Other"}
	EventStatuses   = []string{"All", "published", "draft", "cancelled", "completed"}
)

// pageWindow returns the page numbers shown around current, two on each side
func pageWindow(current, total int) []int {
	start := max(1, current-2)
	end := min(total, current+2)
	var pages []int
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// EventFocus is the part of the event directory that has focus
type EventFocus int

const (
	FocusEventList EventFocus = iota
	FocusCategory
	FocusStatus
)

// EventListView is the paginated event directory
type EventListView struct {
	deps   *Deps
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	events   []models.Event
	total    int
	pages    paginator.Model
	category int // index into EventCategories
	status   int // index into EventStatuses
	focus    EventFocus
	cursor   int
	loaded   bool
	err      string
	info     string

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	showHelpPopup bool
}

func NewEventListView(deps *Deps) *EventListView {
	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = EventPageSize

	return &EventListView{
		deps:   deps,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		pages:  p,
	}
}

type eventsLoadedMsg struct {
	list *api.EventList
	err  error
}

type rsvpDoneMsg struct {
	message string
	err     error
	cancel  bool
}

type eventDeletedMsg struct {
	err error
}

func (v *EventListView) Init() tea.Cmd {
	return v.loadEvents
}

// currentPage is 1-based, the paginator is not
func (v *EventListView) currentPage() int {
	return v.pages.Page + 1
}

func (v *EventListView) query() api.EventQuery {
	q := api.EventQuery{Page: v.currentPage(), Limit: EventPageSize}
	if c := EventCategories[v.category]; c != "All" {
		q.Category = c
	}
	if s := EventStatuses[v.status]; s != "All" {
		q.Status = s
	}
	return q
}

func (v *EventListView) loadEvents() tea.Msg {
	list, err := v.deps.API.Events(context.Background(), v.query())
	return eventsLoadedMsg{list: list, err: err}
}

func (v *EventListView) toggleRSVP(e models.Event) tea.Cmd {
	registered := e.HasParticipant(v.deps.userID())
	return func() tea.Msg {
		ctx := context.Background()
		if registered {
			msg, err := v.deps.API.CancelRSVP(ctx, e.ID)
			return rsvpDoneMsg{message: msg, err: err, cancel: true}
		}
		msg, err := v.deps.API.RSVP(ctx, e.ID)
		return rsvpDoneMsg{message: msg, err: err}
	}
}

func (v *EventListView) deleteEvent() tea.Msg {
	return eventDeletedMsg{err: v.deps.API.DeleteEvent(context.Background(), v.deleteTargetID)}
}

func (v *EventListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case eventsLoadedMsg:
		v.loaded = true
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "load events", "Failed to load events")
			return v, nil
		}
		v.err = ""
		v.events = msg.list.Events
		v.total = msg.list.Total
		v.pages.TotalPages = max(msg.list.TotalPages, 1)
		if v.cursor >= len(v.events) {
			v.cursor = max(0, len(v.events)-1)
		}
		return v, nil

	case rsvpDoneMsg:
		if msg.err != nil {
			action, fallback := "rsvp", "Failed to RSVP to event"
			if msg.cancel {
				action, fallback = "cancel rsvp", "Failed to cancel RSVP"
			}
			v.err = v.deps.failure(msg.err, action, fallback)
			return v, nil
		}
		v.err = ""
		v.info = msg.message
		return v, v.loadEvents

	case eventDeletedMsg:
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "delete event", "Failed to delete event")
			return v, nil
		}
		return v, v.loadEvents

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *EventListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := globalNav(v.deps, v.keys, msg); ok {
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.focus != FocusEventList {
			v.focus = FocusEventList
			return v, nil
		}
		return v, navigate(RouteHome, "")

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focus = (v.focus + 1) % 3
		return v, nil

	case key.Matches(msg, v.keys.Filter):
		v.focus = FocusCategory
		return v, nil

	case key.Matches(msg, v.keys.Up):
		switch v.focus {
		case FocusEventList:
			if v.cursor > 0 {
				v.cursor--
			}
		case FocusCategory:
			return v, v.setCategory(v.category - 1)
		case FocusStatus:
			return v, v.setStatus(v.status - 1)
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		switch v.focus {
		case FocusEventList:
			if v.cursor < len(v.events)-1 {
				v.cursor++
			}
		case FocusCategory:
			return v, v.setCategory(v.category + 1)
		case FocusStatus:
			return v, v.setStatus(v.status + 1)
		}
		return v, nil

	case key.Matches(msg, v.keys.Left):
		return v, v.goToPage(v.currentPage() - 1)

	case key.Matches(msg, v.keys.Right):
		return v, v.goToPage(v.currentPage() + 1)

	case len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '9':
		n, _ := strconv.Atoi(string(msg.Runes))
		return v, v.goToPage(n)

	case key.Matches(msg, v.keys.Enter):
		if e, ok := v.selected(); ok {
			return v, navigate(RouteEventDetail, e.ID)
		}
		return v, nil

	case key.Matches(msg, v.keys.RSVP):
		if e, ok := v.selected(); ok {
			if v.deps.Session.CurrentUser() == nil {
				return v, navigate(RouteLogin, "")
			}
			v.info = ""
			return v, v.toggleRSVP(e)
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		return v, navigate(RouteCreateEvent, "")

	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadEvents

	case key.Matches(msg, v.keys.Delete):
		if e, ok := v.selected(); ok && v.canManage(e) {
			v.confirmingDelete = true
			v.deleteTargetID = e.ID
			v.deleteTargetName = e.Title
		}
		return v, nil
	}

	return v, nil
}

func (v *EventListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, v.deleteEvent
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *EventListView) selected() (models.Event, bool) {
	if v.focus != FocusEventList || v.cursor >= len(v.events) {
		return models.Event{}, false
	}
	return v.events[v.cursor], true
}

// canManage gates the delete shortcut; the backend has the final say
func (v *EventListView) canManage(e models.Event) bool {
	uid := v.deps.userID()
	if uid == "" {
		return false
	}
	if e.Organizer.ID == uid {
		return true
	}
	o, ok := e.OrganizerFor(uid)
	return ok && o.Permissions.CanDelete
}

// setCategory changes the category filter and resets to page 1
func (v *EventListView) setCategory(i int) tea.Cmd {
	v.category = (i + len(EventCategories)) % len(EventCategories)
	v.pages.Page = 0
	v.cursor = 0
	return v.loadEvents
}

// setStatus changes the status filter and resets to page 1
func (v *EventListView) setStatus(i int) tea.Cmd {
	v.status = (i + len(EventStatuses)) % len(EventStatuses)
	v.pages.Page = 0
	v.cursor = 0
	return v.loadEvents
}

// goToPage replaces the list with page n, ignoring pages out of range
func (v *EventListView) goToPage(n int) tea.Cmd {
	if n < 1 || n > v.pages.TotalPages || n == v.currentPage() {
		return nil
	}
	v.pages.Page = n - 1
	v.cursor = 0
	return v.loadEvents
}

func (v *EventListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return confirmPopup(v.styles, v.width, v.height, "Delete Event?",
			fmt.Sprintf("Are you sure you want to delete %q?", v.deleteTargetName))
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(banner(v.styles, v.err))
	b.WriteString(notice(v.styles, v.info))

	if !v.loaded {
		b.WriteString(v.styles.TitleMuted.Render("Loading..."))
	} else {
		b.WriteString(v.renderList())
		b.WriteString("\n")
		b.WriteString(v.renderPages())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *EventListView) renderHeader() string {
	s := v.styles

	catStyle, statusStyle := s.Button, s.Button
	switch v.focus {
	case FocusCategory:
		catStyle = s.ButtonFocused
	case FocusStatus:
		statusStyle = s.ButtonFocused
	}

	title := s.Title.Render(fmt.Sprintf("Events (%d)", v.total))
	filters := lipgloss.JoinHorizontal(lipgloss.Center,
		catStyle.Render("Category: "+EventCategories[v.category]+" ▼"),
		"  ",
		statusStyle.Render("Status: "+EventStatuses[v.status]+" ▼"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, title, filters)
}

func (v *EventListView) renderList() string {
	s := v.styles
	if len(v.events) == 0 {
		return s.TitleMuted.Render("No events match these filters.")
	}

	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)
	now := v.deps.now()
	uid := v.deps.userID()

	// Each event is 2 lines
	visible := max((v.height-14)/2, 1)
	start := 0
	if v.cursor >= visible {
		start = v.cursor - visible + 1
	}
	end := min(start+visible, len(v.events))

	var items []string
	for i := start; i < end; i++ {
		e := v.events[i]
		style := s.ListItem
		if i == v.cursor && v.focus == FocusEventList {
			style = s.ListSelected
		}

		title := truncate(e.Title, width-24) + "  " + styles.Badge(string(e.DerivedStatus(now)))
		if e.HasParticipant(uid) {
			title += "  " + s.Own.Render("✓ registered")
		}
		detail := fmt.Sprintf("%s • %s • %d/%d", formatDate(e.Date), e.Category, len(e.Participants), e.MaxParticipants)

		items = append(items,
			style.Width(width).Render(title),
			style.Width(width).Foreground(styles.Current.ForegroundDim).Render(detail),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *EventListView) renderPages() string {
	s := v.styles
	if v.pages.TotalPages <= 1 {
		return ""
	}
	current := v.currentPage()
	var parts []string
	if current > 1 {
		parts = append(parts, s.TitleMuted.Render("‹"))
	}
	for _, p := range pageWindow(current, v.pages.TotalPages) {
		if p == current {
			parts = append(parts, s.HelpKey.Render(fmt.Sprintf("[%d]", p)))
		} else {
			parts = append(parts, s.TitleMuted.Render(strconv.Itoa(p)))
		}
	}
	if current < v.pages.TotalPages {
		parts = append(parts, s.TitleMuted.Render("›"))
	}
	return "  " + strings.Join(parts, " ") + "  " + s.TitleMuted.Render(v.pages.View())
}

func (v *EventListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return helpLine(v.styles,
		"↵", "open",
		"r", "rsvp",
		"←→", "page",
		"tab", "filters",
		"n", "new",
		"esc", "back",
	)
}

func (v *EventListView) renderHelpPopup() string {
	return helpPopup(v.styles, v.width, v.height,
		"↵", "open event",
		"r", "rsvp / cancel rsvp",
		"←/→", "previous / next page",
		"1-9", "jump to page",
		"tab", "cycle list, category, status",
		"↑/↓", "move or change filter",
		"n", "create event",
		"d", "delete event",
		"ctrl+r", "refresh",
		"esc", "back",
	)
}
