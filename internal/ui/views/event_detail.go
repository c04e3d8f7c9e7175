package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/eventdesk/internal/chat"
	"github.com/tgienger/eventdesk/internal/models"
	"github.com/tgienger/eventdesk/internal/ui/keys"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// CoOrganizerRole is the role granted from the add-organizer prompt
const CoOrganizerRole = "co-organizer"

// EventDetailView shows one event with its registration and organizer state
type EventDetailView struct {
	deps    *Deps
	eventID string
	event   *models.Event
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	loaded bool
	err    string
	info   string

	// Add organizer prompt
	addingOrganizer bool
	organizerInput  textinput.Model

	// Public discussion
	posting    bool
	postInput  textinput.Model
	chatCursor int

	confirmingDelete bool
	showHelpPopup    bool
}

func NewEventDetailView(deps *Deps, eventID string) *EventDetailView {
	in := textinput.New()
	in.Placeholder = "User ID"
	in.CharLimit = 64

	post := textinput.New()
	post.Placeholder = "Say something to everyone attending..."
	post.CharLimit = 500

	return &EventDetailView{
		deps:           deps,
		eventID:        eventID,
		styles:         styles.NewStyles(),
		keys:           keys.DefaultKeyMap(),
		organizerInput: in,
		postInput:      post,
	}
}

type eventLoadedMsg struct {
	event *models.Event
	err   error
}

type organizerAddedMsg struct {
	err error
}

type discussionMsg struct {
	action string
	err    error
}

// DiscussionShown is how many public messages the detail screen lists
const DiscussionShown = 6

func (v *EventDetailView) Init() tea.Cmd {
	return v.loadEvent
}

func (v *EventDetailView) loadEvent() tea.Msg {
	event, err := v.deps.API.Event(context.Background(), v.eventID)
	return eventLoadedMsg{event: event, err: err}
}

func (v *EventDetailView) rsvp() tea.Cmd {
	registered := v.isRegistered()
	id := v.eventID
	return func() tea.Msg {
		ctx := context.Background()
		if registered {
			msg, err := v.deps.API.CancelRSVP(ctx, id)
			return rsvpDoneMsg{message: msg, err: err, cancel: true}
		}
		msg, err := v.deps.API.RSVP(ctx, id)
		return rsvpDoneMsg{message: msg, err: err}
	}
}

func (v *EventDetailView) addOrganizer(userID string) tea.Cmd {
	id := v.eventID
	return func() tea.Msg {
		_, err := v.deps.API.AddOrganizer(context.Background(), id, userID, CoOrganizerRole, models.Permissions{
			CanEdit:        true,
			CanManageTasks: true,
		})
		return organizerAddedMsg{err: err}
	}
}

func (v *EventDetailView) postMessage(text string) tea.Cmd {
	id := v.eventID
	return func() tea.Msg {
		_, err := v.deps.API.AddEventChatMessage(context.Background(), id, text, false)
		return discussionMsg{action: "post message", err: err}
	}
}

func (v *EventDetailView) voteMessage(messageID, vote string) tea.Cmd {
	id := v.eventID
	return func() tea.Msg {
		return discussionMsg{action: "vote", err: v.deps.API.VoteOnEventMessage(context.Background(), id, messageID, vote)}
	}
}

// selectedMessage returns the discussion message under the cursor
func (v *EventDetailView) selectedMessage() (models.ChatMessage, bool) {
	if v.event == nil || v.chatCursor >= len(v.event.ChatMessages) {
		return models.ChatMessage{}, false
	}
	return v.event.ChatMessages[v.chatCursor], true
}

// canEdit mirrors the backend rule: the creator or an organizer with edit rights
func (v *EventDetailView) canEdit() bool {
	if v.event == nil {
		return false
	}
	if v.event.Organizer.ID != "" && v.event.Organizer.ID == v.deps.userID() {
		return true
	}
	o, ok := v.organizer()
	return ok && o.Permissions.CanEdit
}

func (v *EventDetailView) isRegistered() bool {
	return v.event != nil && v.event.HasParticipant(v.deps.userID())
}

func (v *EventDetailView) organizer() (models.Organizer, bool) {
	if v.event == nil {
		return models.Organizer{}, false
	}
	return v.event.OrganizerFor(v.deps.userID())
}

func (v *EventDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case eventLoadedMsg:
		v.loaded = true
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "load event", "Failed to load event details")
			return v, nil
		}
		v.event = msg.event
		if n := len(v.event.ChatMessages); n > 0 {
			v.chatCursor = clamp(v.chatCursor, 0, n-1)
		} else {
			v.chatCursor = 0
		}
		return v, nil

	case discussionMsg:
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, msg.action, "Failed to "+msg.action)
			return v, nil
		}
		v.err = ""
		return v, v.loadEvent

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
		return v, v.loadEvent

	case organizerAddedMsg:
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "add organizer", "Failed to add organizer")
			return v, nil
		}
		v.err = ""
		v.info = "Organizer added"
		return v, v.loadEvent

	case eventDeletedMsg:
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "delete event", "Failed to delete event")
			return v, nil
		}
		return v, navigate(RouteEvents, "")

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			switch msg.String() {
			case "y", "Y":
				v.confirmingDelete = false
				id := v.eventID
				return v, func() tea.Msg {
					return eventDeletedMsg{err: v.deps.API.DeleteEvent(context.Background(), id)}
				}
			case "n", "N", "esc":
				v.confirmingDelete = false
			}
			return v, nil
		}
		if v.addingOrganizer {
			return v.updateAddingOrganizer(msg)
		}
		if v.posting {
			return v.updatePosting(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *EventDetailView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := globalNav(v.deps, v.keys, msg); ok {
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back):
		return v, navigate(RouteEvents, "")
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadEvent
	}

	if v.event == nil {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.RSVP):
		if v.deps.Session.CurrentUser() == nil {
			return v, navigate(RouteLogin, "")
		}
		v.info = ""
		return v, v.rsvp()

	case key.Matches(msg, v.keys.Chat):
		if _, ok := v.organizer(); ok {
			return v, navigate(RouteOrganizerChat, v.eventID)
		}
		v.err = "Only organizers of this event can open the organizer chat"
		return v, nil

	case msg.String() == "t":
		return v, navigate(RouteTasks, v.eventID)

	case key.Matches(msg, v.keys.Edit):
		if v.canEdit() {
			return v, navigate(RouteEditEvent, v.eventID)
		}
		v.err = "You do not have permission to edit this event"
		return v, nil

	case key.Matches(msg, v.keys.Comment):
		if v.deps.Session.CurrentUser() == nil {
			return v, navigate(RouteLogin, "")
		}
		v.posting = true
		v.postInput.Reset()
		v.postInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Up):
		if v.chatCursor > 0 {
			v.chatCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.chatCursor < len(v.event.ChatMessages)-1 {
			v.chatCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.React), msg.String() == "-":
		m, ok := v.selectedMessage()
		if !ok {
			return v, nil
		}
		if v.deps.Session.CurrentUser() == nil {
			return v, navigate(RouteLogin, "")
		}
		vote := "up"
		if msg.String() == "-" {
			vote = "down"
		}
		return v, v.voteMessage(m.ID, vote)

	case key.Matches(msg, v.keys.Assign):
		if o, ok := v.organizer(); ok && o.Role == models.OrganizerRoleAdmin {
			v.addingOrganizer = true
			v.organizerInput.Reset()
			v.organizerInput.Focus()
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if v.event.Organizer.ID == v.deps.userID() {
			v.confirmingDelete = true
			return v, nil
		}
		if o, ok := v.organizer(); ok && o.Permissions.CanDelete {
			v.confirmingDelete = true
		}
		return v, nil
	}
	return v, nil
}

func (v *EventDetailView) updatePosting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.posting = false
		v.postInput.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		text := strings.TrimSpace(v.postInput.Value())
		v.posting = false
		v.postInput.Blur()
		if text == "" {
			return v, nil
		}
		return v, v.postMessage(text)
	}
	var cmd tea.Cmd
	v.postInput, cmd = v.postInput.Update(msg)
	return v, cmd
}

func (v *EventDetailView) updateAddingOrganizer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.addingOrganizer = false
		v.organizerInput.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		userID := strings.TrimSpace(v.organizerInput.Value())
		v.addingOrganizer = false
		v.organizerInput.Blur()
		if userID == "" {
			return v, nil
		}
		return v, v.addOrganizer(userID)
	}
	var cmd tea.Cmd
	v.organizerInput, cmd = v.organizerInput.Update(msg)
	return v, cmd
}

func (v *EventDetailView) View() string {
	if v.showHelpPopup {
		return helpPopup(v.styles, v.width, v.height,
			"r", "rsvp / cancel rsvp",
			"o", "organizer chat",
			"t", "event tasks",
			"e", "edit event (organizers)",
			"c", "post to the discussion",
			"↑/↓", "select a message",
			"+/-", "vote up / down",
			"a", "add co-organizer (admins)",
			"d", "delete event",
			"ctrl+r", "refresh",
			"esc", "back to events",
		)
	}
	if v.confirmingDelete && v.event != nil {
		return confirmPopup(v.styles, v.width, v.height, "Delete Event?",
			fmt.Sprintf("Are you sure you want to delete %q?", v.event.Title))
	}

	s := v.styles
	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}
	if v.event == nil {
		return styles.CenterView(banner(s, v.err)+helpLine(s, "esc", "back"), v.width, v.height)
	}

	e := v.event
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)
	label := s.TitleMuted

	registration := s.TitleMuted.Render("Not registered")
	if v.isRegistered() {
		registration = s.Own.Render("✓ You are registered")
	}
	if o, ok := v.organizer(); ok {
		registration += "  " + s.Author.Render("Organizer ("+o.Role+")")
	}

	var organizers []string
	for _, o := range e.Organizers {
		organizers = append(organizers, fmt.Sprintf("%s (%s)", o.User.Name, o.Role))
	}
	if len(organizers) == 0 && e.Organizer.Name != "" {
		organizers = append(organizers, e.Organizer.Name)
	}

	rows := []string{
		s.Title.Render(e.Title) + "  " + styles.Badge(string(e.DerivedStatus(v.deps.now()))) + "  " + styles.Badge(e.Status),
		"",
		banner(s, v.err) + notice(s, v.info) + registration,
		"",
		label.Render("When"),
		formatDate(e.Date) + " " + e.Time,
		"",
		label.Render("Where"),
		e.Venue.Name + ", " + e.Venue.Address,
		"",
		label.Render("Category"),
		e.Category,
		"",
		label.Render("Participants"),
		fmt.Sprintf("%d / %d", len(e.Participants), e.MaxParticipants),
		"",
		label.Render("Organizers"),
		strings.Join(organizers, ", "),
		"",
		label.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(e.Description),
	}
	if len(e.Requirements) > 0 {
		rows = append(rows, "", label.Render("Requirements"), "• "+strings.Join(e.Requirements, "\n• "))
	}
	if len(e.Tags) > 0 {
		rows = append(rows, "", label.Render("Tags"), strings.Join(e.Tags, ", "))
	}
	if _, ok := v.organizer(); ok {
		rows = append(rows, "", label.Render("Analytics"), fmt.Sprintf("%d views • %d registrations • %.0f%% attendance",
			e.Analytics.TotalViews, e.Analytics.TotalRegistrations, e.Analytics.AttendanceRate))
	}
	rows = append(rows, "", label.Render(fmt.Sprintf("Discussion (%d)", len(e.ChatMessages))))
	rows = append(rows, v.renderDiscussion(textWidth)...)
	if v.posting {
		rows = append(rows, s.InputFocused.Width(clamp(textWidth, 20, 60)).Render(v.postInput.View()))
	}
	if v.addingOrganizer {
		rows = append(rows, "", "Add co-organizer:", s.InputFocused.Width(clamp(textWidth, 20, 40)).Render(v.organizerInput.View()))
	}

	rsvpLabel := "rsvp"
	if v.isRegistered() {
		rsvpLabel = "cancel rsvp"
	}
	rows = append(rows, "", helpLine(s, "r", rsvpLabel, "o", "organizer chat", "t", "tasks", "c", "post", "?", "more", "esc", "back"))

	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(padded, v.width, v.height)
}

// renderDiscussion lists the window of public messages around the cursor
func (v *EventDetailView) renderDiscussion(width int) []string {
	s := v.styles
	msgs := v.event.ChatMessages
	if len(msgs) == 0 {
		return []string{s.TitleMuted.Render("No messages yet")}
	}

	start := clamp(v.chatCursor-DiscussionShown/2, 0, max(len(msgs)-DiscussionShown, 0))
	end := min(start+DiscussionShown, len(msgs))

	now := v.deps.now()
	uid := v.deps.userID()
	var rows []string
	for i := start; i < end; i++ {
		m := msgs[i]
		marker := "  "
		if i == v.chatCursor {
			marker = "> "
		}
		score := fmt.Sprintf("▲%d ▼%d", m.VoteCount("up"), m.VoteCount("down"))
		if mine, ok := m.UserVote(uid); ok {
			score = s.Own.Render(score + " (" + mine + ")")
		}
		head := marker + s.Author.Render(m.User.Name) + " " + s.TitleMuted.Render(chat.Age(m.Timestamp, now)) + "  " + score
		rows = append(rows, head, "  "+truncate(m.Message, width-2))
	}
	return rows
}
