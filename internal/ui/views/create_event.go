package views

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/eventdesk/internal/forms"
	"github.com/tgienger/eventdesk/internal/models"
	"github.com/tgienger/eventdesk/internal/ui/keys"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// CreateEventView is the new-event form. With an event ID it edits that
// event instead.
type CreateEventView struct {
	deps    *Deps
	styles  *styles.Styles
	keys    keys.KeyMap
	fields  *fieldSet
	eventID string
	loading bool

	width  int
	height int
	scroll int

	busy bool
	err  string
}

func NewCreateEventView(deps *Deps) *CreateEventView {
	v := newEventForm(deps)
	v.fill(forms.NewEvent())
	return v
}

// NewEditEventView loads eventID into the form and saves with an update
func NewEditEventView(deps *Deps, eventID string) *CreateEventView {
	v := newEventForm(deps)
	v.eventID = eventID
	v.loading = true
	return v
}

func newEventForm(deps *Deps) *CreateEventView {
	fs := newFieldSet(
		newField("title", "Title", "At least 3 characters", 200),
		newField("description", "Description", "At least 10 characters", 2000),
		newField("category", "Category", strings.Join(EventCategories[1:], ", "), 30),
		newField("date", "Date", "YYYY-MM-DD", 10),
		newField("time", "Time", "HH:MM", 5),
		newField("venueName", "Venue name", "Main Hall", 200),
		newField("venueAddress", "Venue address", "1 Campus Way", 300),
		newField("maxParticipants", "Max participants", "100", 6),
		newField("requirements", "Requirements", "comma separated", 500),
		newField("tags", "Tags", "comma separated", 300),
		newField("isPublic", "Public (yes/no)", "yes", 3),
	)
	return &CreateEventView{
		deps:   deps,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		fields: fs,
	}
}

type eventSavedMsg struct {
	event *models.Event
	err   error
}

func (v *CreateEventView) Init() tea.Cmd {
	if v.eventID != "" {
		return tea.Batch(textinput.Blink, v.load)
	}
	return textinput.Blink
}

func (v *CreateEventView) load() tea.Msg {
	event, err := v.deps.API.Event(context.Background(), v.eventID)
	return eventLoadedMsg{event: event, err: err}
}

// fill writes f into the inputs
func (v *CreateEventView) fill(f forms.Event) {
	v.fields.set("title", f.Title)
	v.fields.set("description", f.Description)
	v.fields.set("category", f.Category)
	v.fields.set("date", f.Date)
	v.fields.set("time", f.Time)
	v.fields.set("venueName", f.VenueName)
	v.fields.set("venueAddress", f.VenueAddress)
	v.fields.set("maxParticipants", strconv.Itoa(f.MaxParticipants))
	v.fields.set("requirements", f.Requirements)
	v.fields.set("tags", f.Tags)
	public := "yes"
	if !f.IsPublic {
		public = "no"
	}
	v.fields.set("isPublic", public)
}

// back leaves the form for the screen it was opened from
func (v *CreateEventView) back() tea.Cmd {
	if v.eventID != "" {
		return navigate(RouteEventDetail, v.eventID)
	}
	return navigate(RouteEvents, "")
}

// form reads the inputs into the validated form struct
func (v *CreateEventView) form() forms.Event {
	f := forms.NewEvent()
	f.Title = v.fields.value("title")
	f.Description = v.fields.value("description")
	f.Category = strings.TrimSpace(v.fields.value("category"))
	f.Date = strings.TrimSpace(v.fields.value("date"))
	f.Time = strings.TrimSpace(v.fields.value("time"))
	f.VenueName = v.fields.value("venueName")
	f.VenueAddress = v.fields.value("venueAddress")
	f.Requirements = v.fields.value("requirements")
	f.Tags = v.fields.value("tags")

	n, err := strconv.Atoi(strings.TrimSpace(v.fields.value("maxParticipants")))
	if err != nil {
		n = 0
	}
	f.MaxParticipants = n

	switch strings.ToLower(strings.TrimSpace(v.fields.value("isPublic"))) {
	case "no", "n", "false":
		f.IsPublic = false
	default:
		f.IsPublic = true
	}
	return f
}

func (v *CreateEventView) submit() tea.Cmd {
	if v.eventID == "" && !v.deps.Session.IsOrganizer() {
		v.err = "Only organizers can create events"
		return nil
	}
	form := v.form()
	if v.fields.errs = forms.Validate(form); v.fields.errs != nil {
		return nil
	}
	v.busy = true
	v.err = ""
	id := v.eventID
	return func() tea.Msg {
		ctx := context.Background()
		if id != "" {
			event, err := v.deps.API.UpdateEvent(ctx, id, form.Input())
			return eventSavedMsg{event: event, err: err}
		}
		event, err := v.deps.API.CreateEvent(ctx, form.Input())
		return eventSavedMsg{event: event, err: err}
	}
}

func (v *CreateEventView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case eventLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "load event", "Failed to load event details")
			return v, nil
		}
		v.fill(forms.EventFrom(*msg.event))
		return v, nil

	case eventSavedMsg:
		v.busy = false
		if msg.err != nil {
			if v.eventID != "" {
				v.err = v.deps.failure(msg.err, "update event", "Failed to update event. Please try again.")
				return v, nil
			}
			v.err = v.deps.failure(msg.err, "create event", "Failed to create event. Please try again.")
			return v, nil
		}
		return v, navigate(RouteEventDetail, msg.event.ID)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return v, tea.Quit
		}
		if key.Matches(msg, v.keys.Back) {
			return v, v.back()
		}
		if v.busy || v.loading {
			return v, nil
		}
		switch {
		case key.Matches(msg, v.keys.Save):
			return v, v.submit()
		case msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp:
			v.fields.cycle(-1)
			v.follow()
			return v, nil
		case key.Matches(msg, v.keys.Tab), msg.Type == tea.KeyDown:
			v.fields.cycle(1)
			v.follow()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if v.fields.onSubmit() {
				return v, v.submit()
			}
			v.fields.cycle(1)
			v.follow()
			return v, nil
		}
		return v, v.fields.update(msg)
	}
	return v, nil
}

// follow scrolls so the focused field stays on screen; each field is 4 lines
func (v *CreateEventView) follow() {
	visible := max((v.height-8)/4, 1)
	if v.fields.focus < v.scroll {
		v.scroll = v.fields.focus
	} else if v.fields.focus >= v.scroll+visible {
		v.scroll = v.fields.focus - visible + 1
	}
}

func (v *CreateEventView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 60)

	title, button, saving := "New Event", "Create Event", "Creating..."
	if v.eventID != "" {
		title, button, saving = "Edit Event", "Save Changes", "Saving..."
	}

	body := v.fields.render(s, inputWidth, button)
	if v.scroll > 0 {
		lines := strings.Split(body, "\n")
		skip := min(v.scroll*4, len(lines))
		body = strings.Join(lines[skip:], "\n")
	}

	status := ""
	switch {
	case v.loading:
		status = s.TitleMuted.Render("Loading...")
	case v.busy:
		status = s.TitleMuted.Render(saving)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		"",
		banner(s, v.err)+body,
		status,
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)
	padded := lipgloss.NewStyle().Padding(1, 2).Render(form)
	return styles.CenterView(padded, v.width, v.height)
}
