package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/forms"
	"github.com/tgienger/eventdesk/internal/models"
	"github.com/tgienger/eventdesk/internal/ui/keys"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// FocusArea represents which part of the task board has focus
type FocusArea int

const (
	FocusBackButton FocusArea = iota
	FocusSearchInput
	FocusStatusDropdown
	FocusTaskList
)

// StatusFilters are the choices of the status dropdown, matched against the
// current user's assignment
var StatusFilters = []string{
	"",
	string(models.AssignmentPending),
	string(models.AssignmentInProgress),
	string(models.AssignmentCompleted),
	string(models.AssignmentCancelled),
	models.NotAssigned,
}

// filterTasks applies the search text, the status filter and the completed
// toggle. It never modifies tasks.
func filterTasks(tasks []models.Task, userID, search, status string, showCompleted bool) []models.Task {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []models.Task
	for _, t := range tasks {
		if (t.Status == models.TaskCompleted) != showCompleted {
			continue
		}
		if status != "" && t.StatusFor(userID) != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// TaskListView is the task board: the user's tasks, or every task of one event
type TaskListView struct {
	deps    *Deps
	eventID string // empty = my tasks
	all     []models.Task
	tasks   []models.Task // after filtering
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	// UI state
	focus        FocusArea
	cursor       int
	scrollY      int
	searchInput  textinput.Model
	statusFilter int // index into StatusFilters

	// Status dropdown state
	statusDropdownOpen bool
	statusCursor       int

	// Task creation/editing
	editing      bool
	editingNew   bool
	editTitle    textinput.Model
	editDesc     textarea.Model
	editPriority textinput.Model
	editCategory textinput.Model
	editDue      textinput.Model
	editFocusIdx int // 0=title, 1=desc, 2=priority, 3=category, 4=due, 5=save
	editErrs     forms.FieldErrors

	// Task view mode (detail view)
	viewingTask bool
	promptInput textinput.Model // assign or attach prompt
	prompt      string          // "", "assign", "attach"

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	// Show completed tasks mode
	showingCompleted bool

	loaded bool
	err    string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewTaskListView creates the task board. An empty eventID lists the user's tasks.
func NewTaskListView(deps *Deps, eventID string) *TaskListView {
	s := styles.NewStyles()

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editPriority := textinput.New()
	editPriority.Placeholder = "low, medium, high or urgent"
	editPriority.CharLimit = 10

	editCategory := textinput.New()
	editCategory.Placeholder = strings.Join(models.TaskCategories, ", ")
	editCategory.CharLimit = 20

	editDue := textinput.New()
	editDue.Placeholder = "YYYY-MM-DD"
	editDue.CharLimit = 10

	prompt := textinput.New()
	prompt.CharLimit = 500

	return &TaskListView{
		deps:         deps,
		eventID:      eventID,
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		focus:        FocusTaskList,
		searchInput:  search,
		editTitle:    editTitle,
		editDesc:     editDesc,
		editPriority: editPriority,
		editCategory: editCategory,
		editDue:      editDue,
		promptInput:  prompt,
	}
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks
}

type tasksLoadedMsg struct {
	tasks []models.Task
	err   error
}

type taskSavedMsg struct {
	action string
	err    error
}

type taskLoadedMsg struct {
	task *models.Task
	err  error
}

func (v *TaskListView) loadTasks() tea.Msg {
	ctx := context.Background()
	if v.eventID != "" {
		tasks, err := v.deps.API.EventTasks(ctx, v.eventID)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
	tasks, err := v.deps.API.MyTasks(ctx)
	return tasksLoadedMsg{tasks: tasks, err: err}
}

// loadTask refreshes one task in place
func (v *TaskListView) loadTask(id string) tea.Cmd {
	return func() tea.Msg {
		task, err := v.deps.API.Task(context.Background(), id)
		return taskLoadedMsg{task: task, err: err}
	}
}

// mutate runs a task request; the board reloads after it succeeds
func (v *TaskListView) mutate(action string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return taskSavedMsg{action: action, err: fn(context.Background())}
	}
}

func (v *TaskListView) applyFilter() {
	v.tasks = filterTasks(v.all, v.deps.userID(), v.searchInput.Value(), StatusFilters[v.statusFilter], v.showingCompleted)
	if v.cursor >= len(v.tasks) {
		v.cursor = max(0, len(v.tasks)-1)
	}
	v.ensureVisible()
}

func (v *TaskListView) current() (models.Task, bool) {
	if v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case tasksLoadedMsg:
		v.loaded = true
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "load tasks", "Failed to load tasks")
			return v, nil
		}
		v.all = msg.tasks
		v.applyFilter()
		// The viewed task may have been filtered out (e.g. completed)
		if v.viewingTask && len(v.tasks) == 0 {
			v.viewingTask = false
		}
		return v, nil

	case taskLoadedMsg:
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "load task", "Failed to load task")
			return v, nil
		}
		for i := range v.all {
			if v.all[i].ID == msg.task.ID {
				v.all[i] = *msg.task
			}
		}
		v.applyFilter()
		return v, nil

	case taskSavedMsg:
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, msg.action, "Failed to "+msg.action)
			return v, nil
		}
		v.err = ""
		return v, v.loadTasks

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.viewingTask {
			return v.updateViewingTask(msg)
		}

		if v.statusDropdownOpen {
			return v.updateStatusDropdown(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) back() tea.Cmd {
	if v.eventID != "" {
		return navigate(RouteEventDetail, v.eventID)
	}
	return navigate(RouteDashboard, "")
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle search input typing first - don't process hotkeys while typing
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.applyFilter()
			return v, cmd
		}
	}

	if cmd, ok := globalNav(v.deps, v.keys, msg); ok {
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, v.back()

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case msg.String() == "shift+tab":
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.focus == FocusTaskList && v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.focus == FocusTaskList && v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focus {
		case FocusBackButton:
			return v, v.back()
		case FocusStatusDropdown:
			v.statusDropdownOpen = true
			v.statusCursor = v.statusFilter
			return v, nil
		case FocusTaskList:
			if len(v.tasks) > 0 {
				v.viewingTask = true
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if t, ok := v.current(); ok && v.focus == FocusTaskList {
			v.startEditTask(t)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		if v.eventID == "" {
			v.err = "Open an event to create tasks for it"
			return v, nil
		}
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.current(); ok && v.focus == FocusTaskList {
			v.confirmingDelete = true
			v.deleteTargetID = t.ID
			v.deleteTargetName = t.Title
		}
		return v, nil

	case msg.String() == "/":
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.focus = FocusStatusDropdown
		v.statusDropdownOpen = true
		v.statusCursor = v.statusFilter
		return v, nil

	case key.Matches(msg, v.keys.Advance):
		if t, ok := v.current(); ok && v.focus == FocusTaskList {
			return v, v.advance(t)
		}
		return v, nil

	case key.Matches(msg, v.keys.Cancel):
		if t, ok := v.current(); ok && v.focus == FocusTaskList {
			return v, v.setStatus(t, models.AssignmentCancelled)
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadTasks

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		v.showingCompleted = !v.showingCompleted
		v.cursor = 0
		v.scrollY = 0
		v.applyFilter()
		return v, nil
	}

	return v, nil
}

// advance moves the current user's assignment one step along its lifecycle
func (v *TaskListView) advance(t models.Task) tea.Cmd {
	a, ok := t.AssignmentFor(v.deps.userID())
	if !ok {
		v.err = "You are not assigned to this task"
		return nil
	}
	next := a.Status.Next()
	if next == a.Status {
		return nil
	}
	return v.setStatus(t, next)
}

func (v *TaskListView) setStatus(t models.Task, status models.AssignmentStatus) tea.Cmd {
	id := t.ID
	return v.mutate("update task status", func(ctx context.Context) error {
		_, err := v.deps.API.UpdateTaskStatus(ctx, id, status, "")
		return err
	})
}

func (v *TaskListView) updateStatusDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.statusDropdownOpen = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.statusCursor > 0 {
			v.statusCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.statusCursor < len(StatusFilters)-1 {
			v.statusCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		v.statusFilter = v.statusCursor
		v.statusDropdownOpen = false
		v.cursor = 0
		v.scrollY = 0
		v.applyFilter()
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		v.viewingTask = false
		id := v.deleteTargetID
		return v, v.mutate("delete task", func(ctx context.Context) error {
			return v.deps.API.DeleteTask(ctx, id)
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t, ok := v.current()
	if !ok {
		v.viewingTask = false
		return v, nil
	}

	// Handle the assign/attach prompt
	if v.prompt != "" {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.prompt = ""
			v.promptInput.Blur()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			return v, v.submitPrompt(t)
		default:
			var cmd tea.Cmd
			v.promptInput, cmd = v.promptInput.Update(msg)
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTask = false
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		v.viewingTask = false
		v.startEditTask(t)
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Delete):
		v.confirmingDelete = true
		v.deleteTargetID = t.ID
		v.deleteTargetName = t.Title
		return v, nil
	case key.Matches(msg, v.keys.Advance):
		return v, v.advance(t)
	case key.Matches(msg, v.keys.Cancel):
		return v, v.setStatus(t, models.AssignmentCancelled)
	case key.Matches(msg, v.keys.Assign):
		v.startPrompt("assign", "User ID to assign")
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Attach):
		v.startPrompt("attach", "filename https://link")
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadTask(t.ID)
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskListView) startPrompt(kind, placeholder string) {
	v.prompt = kind
	v.promptInput.Reset()
	v.promptInput.Placeholder = placeholder
	v.promptInput.Focus()
}

// submitPrompt sends the assign or attach request for t
func (v *TaskListView) submitPrompt(t models.Task) tea.Cmd {
	value := strings.TrimSpace(v.promptInput.Value())
	kind := v.prompt
	v.prompt = ""
	v.promptInput.Blur()
	if value == "" {
		return nil
	}

	id := t.ID
	switch kind {
	case "assign":
		return v.mutate("assign task", func(ctx context.Context) error {
			_, err := v.deps.API.AssignTask(ctx, id, value)
			return err
		})
	case "attach":
		filename, url, found := strings.Cut(value, " ")
		if !found {
			v.err = "Attachments need a filename and a URL"
			return nil
		}
		url = strings.TrimSpace(url)
		return v.mutate("add attachment", func(ctx context.Context) error {
			_, err := v.deps.API.AddTaskAttachment(ctx, id, filename, url)
			return err
		})
	}
	return nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % 6
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + 5) % 6
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		// Enter in the description adds a newline
		if v.editFocusIdx == 5 {
			return v, v.saveTask()
		}
		if v.editFocusIdx != 1 {
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case 2:
		v.editPriority, cmd = v.editPriority.Update(msg)
	case 3:
		v.editCategory, cmd = v.editCategory.Update(msg)
	case 4:
		v.editDue, cmd = v.editDue.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) cycleFocus(dir int) {
	v.searchInput.Blur()
	v.focus = FocusArea((int(v.focus) + dir + 4) % 4)
	if v.focus == FocusSearchInput {
		v.searchInput.Focus()
	}
}

func (v *TaskListView) ensureVisible() {
	// Each task item is 2 lines + 1 margin = 3 lines
	visibleItems := max((v.height-12)/3, 1)

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.editFocusIdx = 0
	v.editErrs = nil
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editPriority.SetValue(string(models.PriorityMedium))
	v.editCategory.SetValue("other")
	v.editDue.Reset()
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task models.Task) {
	v.editing = true
	v.editingNew = false
	v.editFocusIdx = 0
	v.editErrs = nil
	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	v.editPriority.SetValue(string(task.Priority))
	v.editCategory.SetValue(task.Category)
	v.editDue.Reset()
	if task.DueDate != nil {
		v.editDue.SetValue(task.DueDate.Format("2006-01-02"))
	}
	v.updateEditFocus()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editPriority.Blur()
	v.editCategory.Blur()
	v.editDue.Blur()

	switch v.editFocusIdx {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editDesc.Focus()
	case 2:
		v.editPriority.Focus()
	case 3:
		v.editCategory.Focus()
	case 4:
		v.editDue.Focus()
	}
}

func (v *TaskListView) editForm() forms.Task {
	eventID := v.eventID
	if !v.editingNew {
		if t, ok := v.current(); ok {
			eventID = t.Event.ID
		}
	}
	return forms.Task{
		EventID:     eventID,
		Title:       v.editTitle.Value(),
		Description: v.editDesc.Value(),
		Priority:    strings.ToLower(strings.TrimSpace(v.editPriority.Value())),
		Category:    strings.TrimSpace(v.editCategory.Value()),
		DueDate:     strings.TrimSpace(v.editDue.Value()),
	}
}

func (v *TaskListView) saveTask() tea.Cmd {
	form := v.editForm()
	if v.editErrs = forms.Validate(form); v.editErrs != nil {
		return nil
	}
	v.editing = false

	if v.editingNew {
		return v.mutate("create task", func(ctx context.Context) error {
			_, err := v.deps.API.CreateTask(ctx, form.Input())
			return err
		})
	}

	t, ok := v.current()
	if !ok {
		return nil
	}
	in := form.Input()
	update := api.TaskUpdate{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Category:    in.Category,
		DueDate:     in.DueDate,
	}
	id := t.ID
	return v.mutate("update task", func(ctx context.Context) error {
		_, err := v.deps.API.UpdateTask(ctx, id, update)
		return err
	})
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return confirmPopup(v.styles, v.width, v.height, "Delete Task?",
			fmt.Sprintf("Are you sure you want to delete %q?", v.deleteTargetName))
	}

	if v.editing {
		return v.renderEditForm()
	}

	if v.viewingTask {
		return v.renderTaskView()
	}

	var b strings.Builder

	// Header with back button, search, and status filter
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(banner(v.styles, v.err))

	if !v.loaded {
		b.WriteString(v.styles.TitleMuted.Render("Loading..."))
	} else {
		b.WriteString(v.renderTaskList())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func statusLabel(filter string) string {
	if filter == "" {
		return "All"
	}
	return filter
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	isNarrow := contentWidth < 60

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-8, 10, 30)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	statusStyle := s.Button
	if v.focus == FocusStatusDropdown {
		statusStyle = s.ButtonFocused
	}
	label := statusLabel(StatusFilters[v.statusFilter])
	if !isNarrow {
		label = "Status: " + label
	}
	statusBtn := statusStyle.Render(label + " ▼")

	titleText := "My Tasks"
	if v.eventID != "" {
		titleText = "Event Tasks"
		if len(v.all) > 0 {
			titleText = v.all[0].Event.Title + " Tasks"
		}
	}
	if v.showingCompleted {
		titleText += " (Completed)"
	}
	title := s.Title.Render(titleText)

	var header string
	if isNarrow {
		header = lipgloss.JoinVertical(lipgloss.Left, searchBox, statusBtn)
	} else {
		backStyle := s.Button
		if v.focus == FocusBackButton {
			backStyle = s.ButtonFocused
		}
		backLabel := "← Dashboard"
		if v.eventID != "" {
			backLabel = "← Event"
		}
		header = lipgloss.JoinHorizontal(lipgloss.Center,
			backStyle.Render(backLabel), "  ", searchBox, "  ", statusBtn,
		)
	}

	dropdown := ""
	if v.statusDropdownOpen {
		dropdown = "\n" + v.renderStatusDropdown()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, header+dropdown)
}

func (v *TaskListView) renderStatusDropdown() string {
	s := v.styles
	var items []string
	for i, f := range StatusFilters {
		itemStyle := s.ListItem
		if v.statusCursor == i {
			itemStyle = s.ListSelected
		}
		items = append(items, itemStyle.Render(statusLabel(f)))
	}
	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.tasks) == 0 {
		if v.eventID != "" {
			return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
		}
		return s.TitleMuted.Render("No tasks assigned to you.")
	}

	visibleItems := max((v.height-12)/3, 1)

	var items []string
	endIdx := min(v.scrollY+visibleItems, len(v.tasks))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor && v.focus == FocusTaskList))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	titleLine := fmt.Sprintf("[%s] %s", task.Priority, task.Title)

	due := ""
	if task.DueDate != nil {
		due = " • due " + task.DueDate.Local().Format("Jan 2")
	}
	infoLine := fmt.Sprintf("%s • %s%s • %s",
		task.Event.Title,
		task.Category,
		due,
		styles.Badge(task.StatusFor(v.deps.userID())),
	)

	itemStyle := s.ListItem
	if selected {
		itemStyle = s.ListSelected
	}

	title := itemStyle.Width(width).Render(titleLine)
	info := itemStyle.Width(width).Foreground(styles.Current.ForegroundDim).Render(infoLine)

	return lipgloss.JoinVertical(lipgloss.Left, title, info) + "\n"
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = "Edit Task"
	}

	inputs := []struct {
		label string
		name  string
		view  string
	}{
		{"Title:", "title", v.editTitle.View()},
		{"Description:", "description", v.editDesc.View()},
		{"Priority:", "priority", v.editPriority.View()},
		{"Category:", "category", v.editCategory.View()},
		{"Due date:", "dueDate", v.editDue.View()},
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	rows := []string{s.Title.Render(formTitle), ""}
	for i, in := range inputs {
		style := s.Input
		if v.editFocusIdx == i {
			style = s.InputFocused
		}
		rows = append(rows, in.label, style.Width(inputWidth).Render(in.view))
		if msg := v.editErrs.Get(in.name); msg != "" {
			rows = append(rows, s.FieldError.Render(msg))
		}
	}

	btnStyle := s.Button
	if v.editFocusIdx == 5 {
		btnStyle = s.ButtonFocused
	}
	rows = append(rows,
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	completedLabel := "done"
	if v.showingCompleted {
		completedLabel = "active"
	}

	return helpLine(v.styles,
		"↵", "view",
		"space", "advance",
		"x", "cancel",
		"n", "new",
		"/", "search",
		"f", "filter",
		"c", completedLabel,
		"esc", "back",
	)
}

func (v *TaskListView) renderHelpPopup() string {
	completedLabel := "show completed"
	if v.showingCompleted {
		completedLabel = "show active"
	}

	return helpPopup(v.styles, v.width, v.height,
		"↵", "view task",
		"space", "advance my status",
		"x", "cancel my assignment",
		"e", "edit task",
		"n", "new task (event boards)",
		"d", "delete task",
		"/", "search",
		"f", "filter by my status",
		"c", completedLabel,
		"ctrl+r", "refresh",
		"esc", "back",
		"q", "quit",
	)
}

func (v *TaskListView) renderTaskView() string {
	task, ok := v.current()
	if !ok {
		return ""
	}

	s := v.styles
	maxContentWidth := styles.ContentWidth(v.width)
	textWidth := clamp(maxContentWidth-10, 20, 70)
	labelStyle := s.TitleMuted

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render("No description")
	}

	due := "None"
	if task.DueDate != nil {
		due = formatDate(*task.DueDate)
	}

	var assignees []string
	for _, a := range task.AssignedTo {
		assignees = append(assignees, fmt.Sprintf("%s %s", a.User.Name, styles.Badge(string(a.Status))))
	}
	assigneeText := s.TitleMuted.Render("Nobody assigned")
	if len(assignees) > 0 {
		assigneeText = strings.Join(assignees, "\n")
	}

	var attachments []string
	for _, at := range task.Attachments {
		attachments = append(attachments, fmt.Sprintf("%s %s", at.Filename, s.TitleMuted.Render(at.URL)))
	}
	attachmentText := s.TitleMuted.Render("No attachments")
	if len(attachments) > 0 {
		attachmentText = strings.Join(attachments, "\n")
	}

	rows := []string{
		s.Title.MarginBottom(1).Render(task.Title),
		banner(s, v.err),
		labelStyle.Render("Event"),
		task.Event.Title,
		"",
		labelStyle.Render("Priority"),
		s.Priority.Render(string(task.Priority)),
		"",
		labelStyle.Render("My status"),
		styles.Badge(task.StatusFor(v.deps.userID())),
		"",
		labelStyle.Render("Due"),
		due,
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
		"",
		labelStyle.Render("Assigned to"),
		assigneeText,
		"",
		labelStyle.Render("Attachments"),
		attachmentText,
	}

	if v.prompt != "" {
		rows = append(rows, "", s.InputFocused.Width(clamp(textWidth, 20, 50)).Render(v.promptInput.View()))
	}

	var helpText string
	if v.prompt != "" {
		helpText = helpLine(s, "↵", "submit", "esc", "cancel")
	} else {
		helpText = helpLine(s,
			"space", "advance",
			"x", "cancel",
			"a", "assign",
			"u", "attach",
			"e", "edit",
			"d", "delete",
			"esc", "back",
		)
	}
	rows = append(rows, "", helpText)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(padded, v.width, v.height)
}
