package views

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/forms"
	"github.com/tgienger/eventdesk/internal/models"
	"github.com/tgienger/eventdesk/internal/ui/keys"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// AnnouncementPageSize is the number of announcements per page
const AnnouncementPageSize = 10

// nextReaction returns the reaction after current in models.Reactions,
// wrapping around. An unknown or empty current starts at the first one.
func nextReaction(current string) string {
	i := slices.Index(models.Reactions, current)
	return models.Reactions[(i+1)%len(models.Reactions)]
}

// userReaction returns the reaction userID left on a, if any
func userReaction(a models.Announcement, userID string) string {
	for _, r := range a.Reactions {
		if r.User.ID == userID {
			return r.Reaction
		}
	}
	return ""
}

// AnnouncementsView is the announcement feed with a detail pane
type AnnouncementsView struct {
	deps   *Deps
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	announcements []models.Announcement
	pages         paginator.Model
	cursor        int
	unread        int

	loaded bool
	err    string
	info   string

	viewing      bool
	commenting   bool
	commentInput textinput.Model

	creating  bool
	editingID string
	form      *fieldSet

	confirmingDelete bool
	showHelpPopup    bool
}

func NewAnnouncementsView(deps *Deps) *AnnouncementsView {
	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = AnnouncementPageSize

	comment := textinput.New()
	comment.Placeholder = "Write a comment..."
	comment.CharLimit = 500

	return &AnnouncementsView{
		deps:         deps,
		styles:       styles.NewStyles(),
		keys:         keys.DefaultKeyMap(),
		pages:        p,
		commentInput: comment,
	}
}

type announcementsLoadedMsg struct {
	list   *api.AnnouncementList
	unread int
	err    error
}

type announcementSavedMsg struct {
	action string
	info   string
	err    error
}

type announcementLoadedMsg struct {
	announcement *models.Announcement
	err          error
}

func (v *AnnouncementsView) Init() tea.Cmd {
	return v.load
}

func (v *AnnouncementsView) load() tea.Msg {
	ctx := context.Background()
	list, err := v.deps.API.Announcements(ctx, api.AnnouncementQuery{
		Page:  v.pages.Page + 1,
		Limit: AnnouncementPageSize,
	})
	if err != nil {
		return announcementsLoadedMsg{err: err}
	}
	unread, err := v.deps.API.UnreadCount(ctx)
	if err != nil {
		// The count is decoration; the feed still shows
		v.deps.Log.WithError(err).Warn("unread count failed")
	}
	return announcementsLoadedMsg{list: list, unread: unread}
}

// refreshOne reloads a single announcement without touching the page
func (v *AnnouncementsView) refreshOne(id string) tea.Cmd {
	return func() tea.Msg {
		a, err := v.deps.API.Announcement(context.Background(), id)
		return announcementLoadedMsg{announcement: a, err: err}
	}
}

func (v *AnnouncementsView) mutate(action, info string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return announcementSavedMsg{action: action, info: info, err: fn(context.Background())}
	}
}

func (v *AnnouncementsView) current() (models.Announcement, bool) {
	if v.cursor >= len(v.announcements) {
		return models.Announcement{}, false
	}
	return v.announcements[v.cursor], true
}

func (v *AnnouncementsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case announcementsLoadedMsg:
		v.loaded = true
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "load announcements", "Failed to load announcements")
			return v, nil
		}
		v.announcements = msg.list.Announcements
		v.pages.TotalPages = max(msg.list.TotalPages, 1)
		v.unread = msg.unread
		v.cursor = clamp(v.cursor, 0, max(len(v.announcements)-1, 0))
		if len(v.announcements) == 0 {
			v.viewing = false
		}
		return v, nil

	case announcementLoadedMsg:
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "load announcement", "Failed to load announcement")
			return v, nil
		}
		for i := range v.announcements {
			if v.announcements[i].ID == msg.announcement.ID {
				v.announcements[i] = *msg.announcement
			}
		}
		return v, nil

	case announcementSavedMsg:
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, msg.action, "Failed to "+msg.action)
			return v, nil
		}
		v.err = ""
		v.info = msg.info
		return v, v.load

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.commenting {
			return v.updateCommenting(msg)
		}
		if v.viewing {
			return v.updateViewing(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *AnnouncementsView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := globalNav(v.deps, v.keys, msg); ok {
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back):
		return v, navigate(RouteDashboard, "")
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
	case key.Matches(msg, v.keys.Refresh):
		return v, v.load
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.announcements)-1 {
			v.cursor++
		}
	case key.Matches(msg, v.keys.Left):
		if v.pages.Page > 0 {
			v.pages.PrevPage()
			v.cursor = 0
			return v, v.load
		}
	case key.Matches(msg, v.keys.Right):
		if !v.pages.OnLastPage() {
			v.pages.NextPage()
			v.cursor = 0
			return v, v.load
		}
	case key.Matches(msg, v.keys.Enter):
		if a, ok := v.current(); ok {
			v.viewing = true
			v.info = ""
			return v, v.markRead(a)
		}
	case key.Matches(msg, v.keys.Read):
		if a, ok := v.current(); ok {
			return v, v.markRead(a)
		}
	case key.Matches(msg, v.keys.New):
		if !v.deps.Session.IsOrganizer() {
			v.err = "Only organizers can post announcements"
			return v, nil
		}
		v.startCreate()
		return v, textinput.Blink
	}
	return v, nil
}

// markRead records a read receipt unless one already exists
func (v *AnnouncementsView) markRead(a models.Announcement) tea.Cmd {
	if a.ReadByUser(v.deps.userID()) {
		return nil
	}
	id := a.ID
	return v.mutate("mark announcement read", "", func(ctx context.Context) error {
		return v.deps.API.MarkRead(ctx, id)
	})
}

func (v *AnnouncementsView) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a, ok := v.current()
	if !ok {
		v.viewing = false
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewing = false
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Refresh):
		return v, v.refreshOne(a.ID)
	case key.Matches(msg, v.keys.Edit):
		if a.CreatedBy.ID != v.deps.userID() {
			v.err = "Only the author can edit this announcement"
			return v, nil
		}
		v.startEdit(a)
		return v, textinput.Blink
	case key.Matches(msg, v.keys.React):
		reaction := nextReaction(userReaction(a, v.deps.userID()))
		id := a.ID
		return v, v.mutate("add reaction", "", func(ctx context.Context) error {
			_, err := v.deps.API.AddReaction(ctx, id, reaction)
			return err
		})
	case key.Matches(msg, v.keys.Comment):
		v.commenting = true
		v.commentInput.Reset()
		v.commentInput.Focus()
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Delete):
		if a.CreatedBy.ID == v.deps.userID() {
			v.confirmingDelete = true
		}
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			return v, v.markRead(v.announcements[v.cursor])
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.announcements)-1 {
			v.cursor++
			return v, v.markRead(v.announcements[v.cursor])
		}
	}
	return v, nil
}

func (v *AnnouncementsView) updateCommenting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.commenting = false
		v.commentInput.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		content := strings.TrimSpace(v.commentInput.Value())
		v.commenting = false
		v.commentInput.Blur()
		a, ok := v.current()
		if content == "" || !ok {
			return v, nil
		}
		id := a.ID
		return v, v.mutate("add comment", "Comment added", func(ctx context.Context) error {
			_, err := v.deps.API.AddComment(ctx, id, content)
			return err
		})
	}
	var cmd tea.Cmd
	v.commentInput, cmd = v.commentInput.Update(msg)
	return v, cmd
}

func (v *AnnouncementsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		v.viewing = false
		a, ok := v.current()
		if !ok {
			return v, nil
		}
		id := a.ID
		return v, v.mutate("delete announcement", "Announcement deleted", func(ctx context.Context) error {
			return v.deps.API.DeleteAnnouncement(ctx, id)
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *AnnouncementsView) startCreate() {
	v.creating = true
	v.editingID = ""
	v.err = ""
	v.form = newAnnouncementForm()
	v.form.set("type", string(models.AnnouncementGeneral))
	v.form.set("priority", string(models.PriorityMedium))
}

// startEdit opens the form on an existing announcement. Its event link
// cannot change.
func (v *AnnouncementsView) startEdit(a models.Announcement) {
	v.creating = true
	v.editingID = a.ID
	v.err = ""
	v.form = newAnnouncementForm()
	v.form.set("title", a.Title)
	v.form.set("content", a.Content)
	if a.Event != nil {
		v.form.set("event", a.Event.ID)
	}
	v.form.set("type", string(a.Type))
	v.form.set("priority", string(a.Priority))
}

func newAnnouncementForm() *fieldSet {
	return newFieldSet(
		newField("title", "Title", "Announcement title", 200),
		newField("content", "Content", "What do people need to know?", 2000),
		newField("event", "Event ID (optional)", "leave empty for everyone", 64),
		newField("type", "Type", "general, event_update, reminder, cancellation, important", 20),
		newField("priority", "Priority", "low, medium, high or urgent", 10),
	)
}

func (v *AnnouncementsView) createForm() forms.Announcement {
	return forms.Announcement{
		Title:    v.form.value("title"),
		Content:  v.form.value("content"),
		EventID:  strings.TrimSpace(v.form.value("event")),
		Type:     strings.TrimSpace(v.form.value("type")),
		Priority: strings.ToLower(strings.TrimSpace(v.form.value("priority"))),
	}
}

func (v *AnnouncementsView) submitCreate() tea.Cmd {
	form := v.createForm()
	if v.form.errs = forms.Validate(form); v.form.errs != nil {
		return nil
	}
	v.creating = false
	if id := v.editingID; id != "" {
		v.editingID = ""
		return v.mutate("update announcement", "Announcement updated", func(ctx context.Context) error {
			_, err := v.deps.API.UpdateAnnouncement(ctx, id, api.AnnouncementUpdate{
				Title:    strings.TrimSpace(form.Title),
				Content:  strings.TrimSpace(form.Content),
				Type:     form.Type,
				Priority: form.Priority,
			})
			return err
		})
	}
	return v.mutate("post announcement", "Announcement posted", func(ctx context.Context) error {
		_, err := v.deps.API.CreateAnnouncement(ctx, form.Input())
		return err
	})
}

func (v *AnnouncementsView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		v.editingID = ""
		return v, nil
	case key.Matches(msg, v.keys.Save):
		return v, v.submitCreate()
	case msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp:
		v.form.cycle(-1)
		return v, nil
	case key.Matches(msg, v.keys.Tab), msg.Type == tea.KeyDown:
		v.form.cycle(1)
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		if v.form.onSubmit() {
			return v, v.submitCreate()
		}
		v.form.cycle(1)
		return v, nil
	}
	return v, v.form.update(msg)
}

func (v *AnnouncementsView) View() string {
	s := v.styles
	if v.showHelpPopup {
		return helpPopup(s, v.width, v.height,
			"↑/↓", "select",
			"←/→", "page",
			"↵", "open (marks read)",
			"m", "mark read",
			"+", "react (in detail)",
			"c", "comment (in detail)",
			"e", "edit own (in detail)",
			"d", "delete own (in detail)",
			"n", "new announcement (organizers)",
			"ctrl+r", "refresh",
			"esc", "back",
		)
	}
	if v.confirmingDelete {
		a, _ := v.current()
		return confirmPopup(s, v.width, v.height, "Delete Announcement?",
			fmt.Sprintf("Are you sure you want to delete %q?", a.Title))
	}
	if v.creating {
		title, button := "New Announcement", "Post"
		if v.editingID != "" {
			title, button = "Edit Announcement", "Save"
		}
		body := lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render(title),
			"",
			banner(s, v.err)+v.form.render(s, clamp(styles.ContentWidth(v.width)-6, 20, 60), button),
			"",
			s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
		)
		return styles.CenterView(lipgloss.NewStyle().Padding(1, 2).Render(body), v.width, v.height)
	}
	if v.viewing {
		return v.renderDetail()
	}

	title := s.Title.Render("Announcements")
	if v.unread > 0 {
		title += "  " + s.Own.Render(fmt.Sprintf("%d unread", v.unread))
	}
	rows := []string{title, "", banner(s, v.err) + notice(s, v.info)}

	switch {
	case !v.loaded:
		rows = append(rows, s.TitleMuted.Render("Loading..."))
	case len(v.announcements) == 0:
		rows = append(rows, s.TitleMuted.Render("No announcements"))
	default:
		uid := v.deps.userID()
		width := max(styles.ContentWidth(v.width)-8, 20)
		for i, a := range v.announcements {
			style := s.ListItem
			if i == v.cursor {
				style = s.ListSelected
			}
			dot := "  "
			if !a.ReadByUser(uid) {
				dot = "● "
			}
			line := fmt.Sprintf("%s%s  %s  %s", dot, truncate(a.Title, width-40),
				styles.Badge(string(a.Priority)), s.TitleMuted.Render(a.CreatedBy.Name+" • "+formatDate(a.CreatedAt)))
			rows = append(rows, style.Width(width).Render(line))
		}
		if v.pages.TotalPages > 1 {
			rows = append(rows, "", s.TitleMuted.Render("Page "+v.pages.View()))
		}
	}

	rows = append(rows, "", helpLine(s, "↵", "open", "m", "read", "←/→", "page", "n", "new", "?", "more", "esc", "back"))
	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(padded, v.width, v.height)
}

func (v *AnnouncementsView) renderDetail() string {
	a, ok := v.current()
	if !ok {
		return ""
	}
	s := v.styles
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)
	label := s.TitleMuted

	meta := fmt.Sprintf("%s • %s • %s", a.CreatedBy.Name, formatDate(a.CreatedAt), a.Type)
	if a.Event != nil {
		meta += " • " + a.Event.Title
	}

	counts := a.ReactionCounts()
	mine := userReaction(a, v.deps.userID())
	var reactions []string
	for _, r := range models.Reactions {
		if counts[r] == 0 && r != mine {
			continue
		}
		entry := fmt.Sprintf("%s %d", r, counts[r])
		if r == mine {
			entry = s.Own.Render(entry)
		}
		reactions = append(reactions, entry)
	}
	reactionText := s.TitleMuted.Render("No reactions")
	if len(reactions) > 0 {
		reactionText = strings.Join(reactions, "  ")
	}

	rows := []string{
		s.Title.Render(a.Title) + "  " + styles.Badge(string(a.Priority)),
		s.TitleMuted.Render(meta),
		"",
		banner(s, v.err) + notice(s, v.info),
		lipgloss.NewStyle().Width(textWidth).Render(a.Content),
		"",
		label.Render("Reactions"),
		reactionText,
		"",
		label.Render(fmt.Sprintf("Comments (%d)", len(a.Comments))),
	}
	for _, c := range a.Comments {
		rows = append(rows,
			s.Author.Render(c.User.Name)+" "+s.TitleMuted.Render(formatDate(c.CreatedAt)),
			lipgloss.NewStyle().Width(textWidth).Render(c.Content),
		)
	}
	if v.commenting {
		rows = append(rows, "", s.InputFocused.Width(clamp(textWidth, 20, 60)).Render(v.commentInput.View()))
		rows = append(rows, "", helpLine(s, "↵", "post", "esc", "cancel"))
	} else {
		rows = append(rows, "", helpLine(s, "+", "react", "c", "comment", "e", "edit", "d", "delete", "↑/↓", "next", "esc", "back"))
	}

	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(padded, v.width, v.height)
}
