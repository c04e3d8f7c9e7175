package views

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/eventdesk/internal/chat"
	"github.com/tgienger/eventdesk/internal/models"
	"github.com/tgienger/eventdesk/internal/ui/keys"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// ChatFocus is the pane of the organizer chat that has focus
type ChatFocus int

const (
	FocusMessages ChatFocus = iota
	FocusComposer
	FocusOptions
)

// ChatView is the organizer collaboration channel of one event
type ChatView struct {
	deps    *Deps
	channel *chat.Channel
	snap    chat.Snapshot
	styles  *styles.Styles
	keys    keys.KeyMap
	spinner spinner.Model

	width  int
	height int

	focus  ChatFocus
	cursor int // selected message

	// Composer
	draft       *chat.Draft
	composer    textarea.Model
	optionInput textinput.Model
	optCursor   int
	sending     bool

	// Poll voting
	voting     bool
	voteCursor int

	confirmingDelete bool
	deleteTargetID   string

	err           string
	showHelpPopup bool
}

func NewChatView(deps *Deps, eventID string) *ChatView {
	composer := textarea.New()
	composer.Placeholder = "Message the organizers..."
	composer.CharLimit = 2000
	composer.SetWidth(50)
	composer.SetHeight(2)
	composer.ShowLineNumbers = false

	option := textinput.New()
	option.Placeholder = "New option"
	option.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &ChatView{
		deps:        deps,
		channel:     chat.New(deps.API, deps.Session, eventID, deps.ChatRefresh, deps.Log.WithField("component", "chat")),
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		spinner:     sp,
		draft:       chat.NewDraft(),
		composer:    composer,
		optionInput: option,
	}
}

type chatUpdatedMsg struct{}

type chatMountedMsg struct {
	err error
}

type chatActionMsg struct {
	action string
	err    error
	sent   bool
}

func (v *ChatView) Init() tea.Cmd {
	return tea.Batch(v.mount, v.waitForUpdate(), v.spinner.Tick)
}

// Close stops the refresh timer. Requests already in flight still apply.
func (v *ChatView) Close() {
	v.channel.Unmount()
}

func (v *ChatView) mount() tea.Msg {
	return chatMountedMsg{err: v.channel.Mount(context.Background())}
}

// waitForUpdate turns the next channel signal into a message. It stops once
// the channel is unmounted.
func (v *ChatView) waitForUpdate() tea.Cmd {
	updates := v.channel.Updates()
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return chatUpdatedMsg{}
	}
}

func (v *ChatView) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return chatActionMsg{action: action, err: fn(context.Background())}
	}
}

func (v *ChatView) send() tea.Cmd {
	v.draft.Text = v.composer.Value()
	if strings.TrimSpace(v.draft.Text) == "" {
		return nil
	}
	d := *v.draft
	d.Options = slices.Clone(v.draft.Options)
	v.sending = true
	return func() tea.Msg {
		return chatActionMsg{action: "send message", err: v.channel.Send(context.Background(), &d), sent: true}
	}
}

func (v *ChatView) selected() (models.ChatMessage, bool) {
	if v.cursor < 0 || v.cursor >= len(v.snap.Messages) {
		return models.ChatMessage{}, false
	}
	return v.snap.Messages[v.cursor], true
}

func (v *ChatView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.composer.SetWidth(clamp(styles.ContentWidth(v.width)-10, 20, 60))
		return v, nil

	case spinner.TickMsg:
		if v.snap.State == chat.Active || v.snap.State == chat.Unmounted {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case chatMountedMsg:
		v.snap = v.channel.Snapshot()
		if msg.err != nil && !errors.Is(msg.err, chat.ErrAlreadyMounted) {
			v.err = v.deps.failure(msg.err, "mount organizer chat", "Failed to load messages")
		}
		return v, nil

	case chatUpdatedMsg:
		v.snap = v.channel.Snapshot()
		if v.cursor >= len(v.snap.Messages) {
			v.cursor = max(0, len(v.snap.Messages)-1)
		}
		return v, v.waitForUpdate()

	case chatActionMsg:
		if msg.sent {
			v.sending = false
		}
		if msg.err != nil {
			if errors.Is(msg.err, chat.ErrUnmounted) || errors.Is(msg.err, chat.ErrEmptyMessage) {
				return v, nil
			}
			v.err = v.deps.failure(msg.err, msg.action, "Failed to "+msg.action)
			return v, nil
		}
		v.err = ""
		if msg.sent {
			v.draft.Reset()
			v.composer.Reset()
			v.optCursor = 0
		}
		v.snap = v.channel.Snapshot()
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.voting {
			return v.updateVoting(msg)
		}
		switch v.focus {
		case FocusComposer:
			return v.updateComposer(msg)
		case FocusOptions:
			return v.updateOptions(msg)
		}
		return v.updateMessages(msg)
	}
	return v, nil
}

func (v *ChatView) updateMessages(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, navigate(RouteEventDetail, v.channel.EventID())

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.Tab), key.Matches(msg, v.keys.New):
		v.focus = FocusComposer
		v.composer.Focus()
		return v, textarea.Blink

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.snap.Messages)-1 {
			v.cursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.run("refresh messages", func(ctx context.Context) error {
			v.channel.Refresh(ctx)
			return nil
		})

	case key.Matches(msg, v.keys.Summary):
		if v.snap.ShowSummary {
			v.channel.HideSummary()
			return v, nil
		}
		return v, v.run("load summary", v.channel.LoadSummary)

	case key.Matches(msg, v.keys.Vote), key.Matches(msg, v.keys.Enter):
		if m, ok := v.selected(); ok && m.IsVote && len(m.VoteOptions) > 0 {
			v.voting = true
			v.voteCursor = 0
			if current, voted := v.channel.UserVote(m); voted {
				if i := slices.Index(m.VoteOptions, current); i >= 0 {
					v.voteCursor = i
				}
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Results):
		if m, ok := v.selected(); ok && m.IsVote {
			id := m.ID
			return v, v.run("load voting results", func(ctx context.Context) error {
				return v.channel.ToggleResults(ctx, id)
			})
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if m, ok := v.selected(); ok && v.channel.CanDelete(m) {
			v.confirmingDelete = true
			v.deleteTargetID = m.ID
		}
		return v, nil
	}
	return v, nil
}

func (v *ChatView) updateVoting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m, ok := v.selected()
	if !ok {
		v.voting = false
		return v, nil
	}
	switch {
	case key.Matches(msg, v.keys.Back):
		v.voting = false
	case key.Matches(msg, v.keys.Up):
		if v.voteCursor > 0 {
			v.voteCursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.voteCursor < len(m.VoteOptions)-1 {
			v.voteCursor++
		}
	case key.Matches(msg, v.keys.Enter), msg.String() == " ":
		v.voting = false
		option := m.VoteOptions[v.voteCursor]
		id := m.ID
		return v, v.run("vote", func(ctx context.Context) error {
			return v.channel.Vote(ctx, id, option, option)
		})
	}
	return v, nil
}

func (v *ChatView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTargetID
		return v, v.run("delete message", func(ctx context.Context) error {
			return v.channel.Delete(ctx, id)
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *ChatView) updateComposer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.focus = FocusMessages
		v.composer.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.composer.Blur()
		if v.draft.IsVote {
			v.focus = FocusOptions
			v.optionInput.Focus()
			return v, textinput.Blink
		}
		v.focus = FocusMessages
		return v, nil

	case key.Matches(msg, v.keys.Poll):
		v.draft.IsVote = !v.draft.IsVote
		return v, nil

	case key.Matches(msg, v.keys.Save):
		if v.sending {
			return v, nil
		}
		return v, v.send()
	}

	var cmd tea.Cmd
	v.composer, cmd = v.composer.Update(msg)
	return v, cmd
}

func (v *ChatView) updateOptions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Tab):
		v.optionInput.Blur()
		v.focus = FocusComposer
		v.composer.Focus()
		return v, textarea.Blink

	case key.Matches(msg, v.keys.Enter):
		if v.draft.AddOption(v.optionInput.Value()) {
			v.optionInput.Reset()
		}
		return v, nil

	case msg.Type == tea.KeyUp:
		if v.optCursor > 0 {
			v.optCursor--
		}
		return v, nil

	case msg.Type == tea.KeyDown:
		if v.optCursor < len(v.draft.Options)-1 {
			v.optCursor++
		}
		return v, nil

	case msg.String() == "ctrl+d":
		if v.optCursor < len(v.draft.Options) {
			v.draft.RemoveOption(v.draft.Options[v.optCursor])
			v.optCursor = clamp(v.optCursor, 0, max(len(v.draft.Options)-1, 0))
		}
		return v, nil

	case key.Matches(msg, v.keys.Save):
		if v.sending {
			return v, nil
		}
		return v, v.send()
	}

	var cmd tea.Cmd
	v.optionInput, cmd = v.optionInput.Update(msg)
	return v, cmd
}

func (v *ChatView) View() string {
	if v.showHelpPopup {
		return helpPopup(v.styles, v.width, v.height,
			"↑/↓", "select message",
			"v/↵", "vote on poll",
			"r", "toggle voting results",
			"s", "toggle collaboration summary",
			"d", "delete message",
			"tab/n", "compose",
			"ctrl+p", "toggle poll",
			"ctrl+s", "send",
			"ctrl+d", "remove poll option",
			"ctrl+r", "refresh",
			"esc", "back",
		)
	}
	if v.confirmingDelete {
		return confirmPopup(v.styles, v.width, v.height, "Delete Message?", "This removes it for every organizer.")
	}

	s := v.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Organizer Chat"))
	switch v.snap.State {
	case chat.Idle, chat.Loading:
		b.WriteString("  " + v.spinner.View() + s.TitleMuted.Render(" loading"))
	}
	b.WriteString("\n")
	if v.snap.State == chat.Active && !v.snap.IsOrganizer {
		b.WriteString(s.FieldError.Render("You are not an organizer for this event.") + "\n")
	}
	b.WriteString(banner(s, v.err))
	b.WriteString("\n")

	if v.snap.ShowSummary && v.snap.Summary != nil {
		b.WriteString(v.renderSummary())
		b.WriteString("\n")
	}

	b.WriteString(v.renderMessages())
	b.WriteString("\n")
	b.WriteString(v.renderComposer())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	padded := lipgloss.NewStyle().Padding(0, 2).Render(b.String())
	return styles.CenterView(padded, v.width, v.height)
}

func (v *ChatView) renderSummary() string {
	s := v.styles
	sum := v.snap.Summary
	rows := []string{
		s.Title.Render("Collaboration Summary"),
		fmt.Sprintf("%s messages • %s polls • %s votes",
			s.StatValue.Render(fmt.Sprint(sum.TotalMessages)),
			s.StatValue.Render(fmt.Sprint(sum.VotingMessages)),
			s.StatValue.Render(fmt.Sprint(sum.TotalVotes)),
		),
	}
	now := v.deps.now()
	for _, a := range sum.OrganizerActivity {
		last := "never"
		if t := a.LastActive(); !t.IsZero() {
			last = chat.Age(t, now)
		}
		rows = append(rows, fmt.Sprintf("%s (%s): %d messages, %d votes, last active %s",
			a.Organizer.Name, a.Role, a.MessageCount, a.VoteCount, last))
	}
	return s.Card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (v *ChatView) renderMessages() string {
	s := v.styles
	if len(v.snap.Messages) == 0 {
		if v.snap.State == chat.Active {
			return s.TitleMuted.Render("No messages yet. Start the conversation.")
		}
		return ""
	}

	width := max(styles.ContentWidth(v.width)-8, 20)
	now := v.deps.now()
	uid := v.deps.userID()

	// Messages vary in height; show a window around the cursor
	visible := max((v.height-16)/3, 1)
	start := max(0, v.cursor-visible+1)
	end := min(len(v.snap.Messages), start+visible)

	var items []string
	for i := start; i < end; i++ {
		m := v.snap.Messages[i]
		author := s.Author.Render(m.User.Name)
		if m.User.ID == uid {
			author = s.Own.Render(m.User.Name + " (you)")
		}
		header := author + "  " + s.TitleMuted.Render(chat.Age(m.Timestamp, now))
		if m.IsVote {
			header += "  " + styles.Badge("poll")
		}

		lines := []string{header, lipgloss.NewStyle().Width(width).Render(m.Message)}
		if m.IsVote {
			lines = append(lines, v.renderPoll(m, i == v.cursor)...)
		}

		block := lipgloss.JoinVertical(lipgloss.Left, lines...)
		if i == v.cursor && v.focus == FocusMessages {
			block = s.ListSelected.Width(width + 4).Render(block)
		} else {
			block = s.ListItem.Width(width + 4).Render(block)
		}
		items = append(items, block)
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *ChatView) renderPoll(m models.ChatMessage, selected bool) []string {
	s := v.styles
	total := v.channel.TotalVotes(m)
	mine, voted := v.channel.UserVote(m)

	var lines []string
	for j, opt := range m.VoteOptions {
		count := v.channel.VoteCount(m, opt)
		bar := ""
		if total > 0 {
			bar = s.VoteBar.Render(strings.Repeat("█", count*10/total))
		}
		marker := "  "
		if v.voting && selected && j == v.voteCursor {
			marker = s.HelpKey.Render("› ")
		}
		label := opt
		if voted && mine == opt {
			label = s.Own.Render(opt + " ✓")
		}
		lines = append(lines, fmt.Sprintf("%s%-12s %s %d", marker, label, bar, count))
	}
	lines = append(lines, s.TitleMuted.Render(fmt.Sprintf("%d vote(s)", total)))

	if res, ok := v.snap.Results[m.ID]; ok && res != nil {
		lines = append(lines, s.TitleMuted.Render(fmt.Sprintf("Results: %d of %d organizers voted", res.TotalVotes, res.TotalOrganizers)))
		for _, opt := range m.VoteOptions {
			r := res.Results[opt]
			var names []string
			for _, voter := range r.Voters {
				names = append(names, voter.User.Name)
			}
			lines = append(lines, fmt.Sprintf("  %s: %d %s", opt, r.Count, s.TitleMuted.Render(strings.Join(names, ", "))))
		}
	}
	return lines
}

func (v *ChatView) renderComposer() string {
	s := v.styles
	style := s.Input
	if v.focus == FocusComposer {
		style = s.InputFocused
	}

	mode := "Message"
	if v.draft.IsVote {
		mode = "Poll"
	}
	rows := []string{s.TitleMuted.Render(mode + " • ctrl+p to toggle"), style.Render(v.composer.View())}

	if v.draft.IsVote {
		var opts []string
		for i, o := range v.draft.Options {
			item := s.ListItem
			if v.focus == FocusOptions && i == v.optCursor {
				item = s.ListSelected
			}
			opts = append(opts, item.Render(o))
		}
		if len(opts) == 0 {
			opts = append(opts, s.FieldError.Render("Add at least one option"))
		}
		optStyle := s.Input
		if v.focus == FocusOptions {
			optStyle = s.InputFocused
		}
		rows = append(rows,
			s.TitleMuted.Render("Options"),
			lipgloss.JoinVertical(lipgloss.Left, opts...),
			optStyle.Width(30).Render(v.optionInput.View()),
		)
	}
	if v.sending {
		rows = append(rows, s.TitleMuted.Render("Sending..."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *ChatView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	switch v.focus {
	case FocusComposer:
		return helpLine(v.styles, "ctrl+s", "send", "ctrl+p", "poll", "tab", "options", "esc", "messages")
	case FocusOptions:
		return helpLine(v.styles, "↵", "add option", "ctrl+d", "remove", "ctrl+s", "send", "esc", "composer")
	}
	return helpLine(v.styles, "v", "vote", "r", "results", "s", "summary", "d", "delete", "tab", "compose", "esc", "back")
}
