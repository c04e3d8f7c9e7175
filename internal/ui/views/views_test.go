package views

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/tgienger/eventdesk/internal/fakeapi"
	"github.com/tgienger/eventdesk/internal/models"
)

func TestPageWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 10, []int{1, 2, 3}},
		{2, 10, []int{1, 2, 3, 4}},
		{5, 10, []int{3, 4, 5, 6, 7}},
		{10, 10, []int{8, 9, 10}},
		{1, 0, nil},
	}
	for _, tt := range tests {
		if got := pageWindow(tt.current, tt.total); !slices.Equal(got, tt.want) {
			t.Errorf("pageWindow(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
		}
	}
}

func TestRoutes(t *testing.T) {
	public := []Route{RouteHome, RouteLogin, RouteRegister, RouteEvents, RouteEventDetail}
	for _, r := range public {
		if r.Protected() {
			t.Errorf("%s is protected", r)
		}
	}
	protected := []Route{RouteCreateEvent, RouteOrganizerChat, RouteDashboard, RouteOrganizerDashboard,
		RouteParticipantDashboard, RouteTasks, RouteAnnouncements, RouteProfile, RouteEditEvent}
	for _, r := range protected {
		if !r.Protected() {
			t.Errorf("%s is not protected", r)
		}
	}

	for r := RouteHome; r <= RouteEditEvent; r++ {
		got, ok := ParseRoute(r.String())
		if !ok || got != r {
			t.Errorf("ParseRoute(%q) = %v, %v", r.String(), got, ok)
		}
	}
	if _, ok := ParseRoute("nowhere"); ok {
		t.Error("ParseRoute accepted an unknown name")
	}
}

func TestLoginNavigatesToNext(t *testing.T) {
	h := newHarness(t)
	user := h.organizer(t)

	next := Navigate{Route: RouteOrganizerChat, EventID: "e1"}
	v := NewAuthView(h.deps, false, next)
	v.login.set("email", "olivia@example.com")
	v.login.set("password", "secret1")

	_, cmd := v.Update(keySave)
	msg := run(t, cmd)
	if done, ok := msg.(authDoneMsg); !ok || done.err != nil {
		t.Fatalf("msg = %#v, want successful authDoneMsg", msg)
	}
	_, cmd = v.Update(msg)
	expectNavigate(t, cmd, next)

	if h.deps.Session.UserID() != user.ID {
		t.Errorf("session user = %q, want %q", h.deps.Session.UserID(), user.ID)
	}
	if token, _ := h.db.Token(); token == "" {
		t.Error("token was not persisted")
	}
}

func TestLoginFailureShowsBackendMessage(t *testing.T) {
	h := newHarness(t)
	h.organizer(t)

	v := NewAuthView(h.deps, false, Navigate{Route: RouteDashboard})
	v.login.set("email", "olivia@example.com")
	v.login.set("password", "wrong-password")

	_, cmd := v.Update(keySave)
	_, cmd = v.Update(run(t, cmd))
	if cmd != nil {
		t.Error("failed login navigated")
	}
	if v.err != "Invalid credentials" {
		t.Errorf("banner = %q", v.err)
	}
	if h.deps.Session.CurrentUser() != nil {
		t.Error("failed login set a user")
	}
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t)
	v := NewAuthView(h.deps, false, Navigate{Route: RouteDashboard})
	v.login.set("email", "not-an-email")

	if _, cmd := v.Update(keySave); cmd != nil {
		t.Fatal("invalid form was submitted")
	}
	if v.login.errs.Get("email") != "Please enter a valid email address" {
		t.Errorf("email error = %q", v.login.errs.Get("email"))
	}
	if v.login.errs.Get("password") == "" {
		t.Error("missing password error")
	}
	if h.fake.CountRequests("POST", "/api/auth/login") != 0 {
		t.Error("login request sent for an invalid form")
	}
}

func TestRegisterCreatesAccount(t *testing.T) {
	h := newHarness(t)
	v := NewAuthView(h.deps, true, Navigate{Route: RouteDashboard})
	v.register.set("name", "Nadia")
	v.register.set("email", "nadia@example.com")
	v.register.set("password", "secret1")

	_, cmd := v.Update(keySave)
	_, cmd = v.Update(run(t, cmd))
	expectNavigate(t, cmd, Navigate{Route: RouteDashboard})

	if !h.deps.Session.IsParticipant() {
		t.Error("new account is not a participant")
	}
}

func TestEventListPagingAndFilters(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	for i := range 30 {
		h.event(org.ID, fmt.Sprintf("Event %02d", i))
	}
	h.fake.AddEvent(fakeapi.EventSeed{
		Title:       "Concert",
		Category:    "Cultural",
		Date:        h.now.Add(48 * time.Hour),
		OrganizerID: org.ID,
	})

	v := NewEventListView(h.deps)
	v.Update(v.loadEvents())
	if len(v.events) != EventPageSize || v.pages.TotalPages != 3 {
		t.Fatalf("page 1 has %d events of %d pages", len(v.events), v.pages.TotalPages)
	}

	// Jump to page 3
	_, cmd := v.Update(keyRunes("3"))
	v.Update(run(t, cmd))
	if v.currentPage() != 3 || len(v.events) != 31-2*EventPageSize {
		t.Fatalf("page %d has %d events", v.currentPage(), len(v.events))
	}
	if _, cmd := v.Update(keyRunes("9")); cmd != nil {
		t.Error("out of range page was requested")
	}

	// Changing the category goes back to page 1
	v.Update(keyRunes("f"))
	_, cmd = v.Update(keyDown)
	if EventCategories[v.category] != "Workshop" {
		t.Fatalf("category = %q", EventCategories[v.category])
	}
	v.Update(run(t, cmd))
	if v.currentPage() != 1 {
		t.Errorf("page after filter = %d, want 1", v.currentPage())
	}
	if v.query().Category != "Workshop" || v.total != 30 {
		t.Errorf("query = %+v, total = %d", v.query(), v.total)
	}
}

func TestEventListRSVPToggle(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	part := h.participant(t)
	e := h.event(org.ID, "Workshop")
	h.signIn(t, part)

	v := NewEventListView(h.deps)
	v.Update(v.loadEvents())

	_, cmd := v.Update(keyRunes("r"))
	_, cmd = v.Update(run(t, cmd))
	v.Update(run(t, cmd))
	if !v.events[0].HasParticipant(part.ID) {
		t.Fatal("not registered after RSVP")
	}
	if v.info == "" {
		t.Error("no confirmation shown")
	}

	// Pressing again cancels
	_, cmd = v.Update(keyRunes("r"))
	msg := run(t, cmd)
	if done := msg.(rsvpDoneMsg); !done.cancel {
		t.Fatal("second press did not cancel")
	}
	_, cmd = v.Update(msg)
	v.Update(run(t, cmd))
	stored, _ := h.fake.Event(e.ID)
	if stored.HasParticipant(part.ID) {
		t.Error("still registered after cancel")
	}
}

func TestEventListRSVPRequiresLogin(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	h.event(org.ID, "Workshop")

	v := NewEventListView(h.deps)
	v.Update(v.loadEvents())
	_, cmd := v.Update(keyRunes("r"))
	expectNavigate(t, cmd, Navigate{Route: RouteLogin})
}

func TestFilterTasks(t *testing.T) {
	tasks := []models.Task{
		{Title: "Book venue", Status: models.TaskActive, AssignedTo: []models.Assignment{{User: models.UserRef{ID: "u1"}, Status: models.AssignmentPending}}},
		{Title: "Print posters", Description: "Venue posters", Status: models.TaskActive},
		{Title: "Order food", Status: models.TaskCompleted, AssignedTo: []models.Assignment{{User: models.UserRef{ID: "u1"}, Status: models.AssignmentCompleted}}},
	}

	titles := func(ts []models.Task) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.Title)
		}
		return out
	}

	if got := titles(filterTasks(tasks, "u1", "", "", false)); !slices.Equal(got, []string{"Book venue", "Print posters"}) {
		t.Errorf("active = %v", got)
	}
	if got := titles(filterTasks(tasks, "u1", "", "", true)); !slices.Equal(got, []string{"Order food"}) {
		t.Errorf("completed = %v", got)
	}
	if got := titles(filterTasks(tasks, "u1", "VENUE", "", false)); !slices.Equal(got, []string{"Book venue", "Print posters"}) {
		t.Errorf("search = %v", got)
	}
	if got := titles(filterTasks(tasks, "u1", "", models.NotAssigned, false)); !slices.Equal(got, []string{"Print posters"}) {
		t.Errorf("not assigned = %v", got)
	}
	if len(tasks) != 3 || tasks[0].Title != "Book venue" {
		t.Error("filter modified its input")
	}
}

func TestTaskBoardAdvanceAndCancel(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	part := h.participant(t)
	e := h.event(org.ID, "Workshop")
	task := h.fake.AddTask(fakeapi.TaskSeed{EventID: e.ID, Title: "Set up chairs", CreatedBy: org.ID, Assignees: []string{part.ID}})
	h.signIn(t, part)

	v := NewTaskListView(h.deps, "")
	v.Update(v.loadTasks())
	if len(v.tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(v.tasks))
	}

	advance := func() {
		t.Helper()
		_, cmd := v.Update(keySpace)
		_, cmd = v.Update(run(t, cmd))
		v.Update(run(t, cmd))
	}

	advance()
	if got := v.tasks[0].StatusFor(part.ID); got != string(models.AssignmentInProgress) {
		t.Fatalf("status = %s, want in_progress", got)
	}

	_, cmd := v.Update(keyRunes("x"))
	_, cmd = v.Update(run(t, cmd))
	v.Update(run(t, cmd))
	if got := v.tasks[0].StatusFor(part.ID); got != string(models.AssignmentCancelled) {
		t.Fatalf("status = %s, want cancelled", got)
	}

	// A cancelled assignment starts over
	advance()
	if got := v.tasks[0].StatusFor(part.ID); got != string(models.AssignmentPending) {
		t.Errorf("status = %s, want pending", got)
	}
	if v.tasks[0].ID != task.ID {
		t.Errorf("task id = %s", v.tasks[0].ID)
	}
}

func TestTaskBoardCreate(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	e := h.event(org.ID, "Workshop")
	h.signIn(t, org)

	// My tasks has no event to attach a new task to
	mine := NewTaskListView(h.deps, "")
	mine.Update(keyRunes("n"))
	if mine.editing || mine.err == "" {
		t.Error("task form opened without an event")
	}

	v := NewTaskListView(h.deps, e.ID)
	v.Update(v.loadTasks())
	v.Update(keyRunes("n"))
	if !v.editing {
		t.Fatal("task form did not open")
	}

	v.editTitle.SetValue("ab")
	if _, cmd := v.Update(keySave); cmd != nil {
		t.Fatal("short title was submitted")
	}
	if v.editErrs.Get("title") == "" {
		t.Error("missing title error")
	}

	v.editTitle.SetValue("Print badges")
	v.editDesc.SetValue("Name badges for everyone")
	v.editPriority.SetValue("High")
	_, cmd := v.Update(keySave)
	_, cmd = v.Update(run(t, cmd))
	v.Update(run(t, cmd))

	if len(v.all) != 1 || v.all[0].Title != "Print badges" || v.all[0].Priority != models.PriorityHigh {
		t.Fatalf("tasks = %+v", v.all)
	}
}

func TestTaskBoardAssignAndAttach(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	part := h.participant(t)
	e := h.event(org.ID, "Workshop")
	h.fake.AddTask(fakeapi.TaskSeed{EventID: e.ID, Title: "Sound check", CreatedBy: org.ID})
	h.signIn(t, org)

	v := NewTaskListView(h.deps, e.ID)
	v.Update(v.loadTasks())
	v.Update(keyEnter)
	if !v.viewingTask {
		t.Fatal("detail view did not open")
	}

	v.Update(keyRunes("a"))
	v.promptInput.SetValue(part.ID)
	_, cmd := v.Update(keyEnter)
	_, cmd = v.Update(run(t, cmd))
	v.Update(run(t, cmd))
	if _, ok := v.tasks[0].AssignmentFor(part.ID); !ok {
		t.Fatal("participant was not assigned")
	}

	v.Update(keyRunes("u"))
	v.promptInput.SetValue("plan.pdf https://files.example.com/plan.pdf")
	_, cmd = v.Update(keyEnter)
	_, cmd = v.Update(run(t, cmd))
	v.Update(run(t, cmd))
	if len(v.tasks[0].Attachments) != 1 || v.tasks[0].Attachments[0].Filename != "plan.pdf" {
		t.Errorf("attachments = %+v", v.tasks[0].Attachments)
	}
}

func TestNextReaction(t *testing.T) {
	if got := nextReaction(""); got != "like" {
		t.Errorf("nextReaction(\"\") = %s", got)
	}
	if got := nextReaction("like"); got != "love" {
		t.Errorf("nextReaction(like) = %s", got)
	}
	if got := nextReaction("angry"); got != "like" {
		t.Errorf("nextReaction(angry) = %s", got)
	}
}

func TestAnnouncementsReadReactComment(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	part := h.participant(t)
	h.fake.AddAnnouncement(fakeapi.AnnouncementSeed{Title: "Doors open at 9", Content: "Bring your badge", CreatedBy: org.ID})
	h.signIn(t, part)

	v := NewAnnouncementsView(h.deps)
	v.Update(v.load())
	if v.unread != 1 || len(v.announcements) != 1 {
		t.Fatalf("unread = %d, announcements = %d", v.unread, len(v.announcements))
	}

	// Opening marks it read
	_, cmd := v.Update(keyEnter)
	_, cmd = v.Update(run(t, cmd))
	v.Update(run(t, cmd))
	if v.unread != 0 || !v.announcements[0].ReadByUser(part.ID) {
		t.Fatalf("unread = %d after opening", v.unread)
	}

	// Already read: marking again sends nothing
	v.Update(keyEsc)
	if _, cmd := v.Update(keyRunes("m")); cmd != nil {
		t.Error("mark read sent twice")
	}
	if _, cmd := v.Update(keyEnter); cmd != nil || !v.viewing {
		t.Fatal("reopening a read announcement sent a request")
	}

	_, cmd = v.Update(keyRunes("+"))
	_, cmd = v.Update(run(t, cmd))
	v.Update(run(t, cmd))
	if got := userReaction(v.announcements[0], part.ID); got != "like" {
		t.Errorf("reaction = %q, want like", got)
	}

	v.Update(keyRunes("c"))
	v.commentInput.SetValue("See you there")
	_, cmd = v.Update(keyEnter)
	_, cmd = v.Update(run(t, cmd))
	v.Update(run(t, cmd))
	comments := v.announcements[0].Comments
	if len(comments) != 1 || comments[0].Content != "See you there" {
		t.Errorf("comments = %+v", comments)
	}
}

func TestAnnouncementsCreateIsOrganizerOnly(t *testing.T) {
	h := newHarness(t)
	part := h.participant(t)
	h.signIn(t, part)

	v := NewAnnouncementsView(h.deps)
	v.Update(keyRunes("n"))
	if v.creating || v.err != "Only organizers can post announcements" {
		t.Errorf("creating = %v, err = %q", v.creating, v.err)
	}
}

func TestProfilePasswordMismatch(t *testing.T) {
	h := newHarness(t)
	part := h.participant(t)
	h.signIn(t, part)

	v := NewProfileView(h.deps)
	if v.profile.value("name") != "Priya" {
		t.Errorf("profile seeded with %q", v.profile.value("name"))
	}

	v.Update(keyToggleForm)
	v.password.set("currentPassword", "secret1")
	v.password.set("newPassword", "secret2")
	v.password.set("confirmPassword", "secret3")
	if _, cmd := v.Update(keySave); cmd != nil {
		t.Fatal("mismatched passwords were submitted")
	}
	if got := v.password.errs.Get("confirmPassword"); got != "Passwords do not match" {
		t.Errorf("confirm error = %q", got)
	}
}

func TestProfileUpdate(t *testing.T) {
	h := newHarness(t)
	part := h.participant(t)
	h.signIn(t, part)

	v := NewProfileView(h.deps)
	v.profile.set("name", "Priya Patel")
	_, cmd := v.Update(keySave)
	v.Update(run(t, cmd))

	if v.err != "" {
		t.Fatalf("err = %q", v.err)
	}
	if got := h.deps.Session.CurrentUser().Name; got != "Priya Patel" {
		t.Errorf("session name = %q", got)
	}
}

func TestDashboardParticipantEvents(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	part := h.participant(t)
	h.fake.AddEvent(fakeapi.EventSeed{Title: "Mine", Date: h.now.Add(48 * time.Hour), OrganizerID: org.ID, Participants: []string{part.ID}})
	h.event(org.ID, "Not mine")
	h.signIn(t, part)

	v := NewDashboardView(h.deps, false)
	v.Update(v.load())
	if len(v.events) != 1 || v.events[0].Title != "Mine" {
		t.Fatalf("events = %+v", v.events)
	}

	_, cmd := v.Update(keyEnter)
	expectNavigate(t, cmd, Navigate{Route: RouteEventDetail, EventID: v.events[0].ID})

	// Organizer shortcuts do nothing for participants
	if _, cmd := v.Update(keyRunes("o")); cmd != nil {
		t.Error("participant opened the organizer chat")
	}
}

func TestChatViewSendAndVote(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	e := h.event(org.ID, "Workshop")
	poll := h.fake.AddChatMessage(e.ID, org.ID, "Pizza or tacos?", "Pizza", "Tacos")
	h.signIn(t, org)

	v := NewChatView(h.deps, e.ID)
	defer v.Close()
	v.Update(v.mount())
	if len(v.snap.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(v.snap.Messages))
	}

	// Vote for the second option
	v.cursor = 0
	v.Update(keyRunes("v"))
	if !v.voting {
		t.Fatal("voting mode did not open")
	}
	v.Update(keyDown)
	_, cmd := v.Update(keyEnter)
	v.Update(run(t, cmd))
	if got, ok := v.snap.Messages[0].UserVote(org.ID); !ok || got != "Tacos" {
		t.Fatalf("vote = %q, %v", got, ok)
	}

	// Send a message from the composer
	v.Update(keyTab)
	v.composer.SetValue("Tacos it is")
	_, cmd = v.Update(keySave)
	v.Update(run(t, cmd))
	if v.err != "" {
		t.Fatalf("err = %q", v.err)
	}
	if v.composer.Value() != "" {
		t.Error("composer not cleared after sending")
	}
	msgs := h.fake.ChatMessages(e.ID)
	if len(msgs) != 2 || msgs[0].ID != poll.ID || msgs[1].Message != "Tacos it is" {
		t.Errorf("stored messages = %+v", msgs)
	}
}

func TestEditEventSavesChanges(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	e := h.event(org.ID, "Workshop")
	h.signIn(t, org)

	detail := NewEventDetailView(h.deps, e.ID)
	detail.Update(detail.loadEvent())
	_, cmd := detail.Update(keyRunes("e"))
	expectNavigate(t, cmd, Navigate{Route: RouteEditEvent, EventID: e.ID})

	v := NewEditEventView(h.deps, e.ID)
	v.Update(v.load())
	if got := v.fields.value("title"); got != "Workshop" {
		t.Fatalf("title = %q, want the stored title", got)
	}
	if got := v.fields.value("venueName"); got != "Main Hall" {
		t.Fatalf("venue = %q", got)
	}

	v.fields.set("title", "Workshop II")
	_, cmd = v.Update(keySave)
	_, cmd = v.Update(run(t, cmd))
	expectNavigate(t, cmd, Navigate{Route: RouteEventDetail, EventID: e.ID})

	stored, _ := h.fake.Event(e.ID)
	if stored.Title != "Workshop II" || stored.Venue.Name != "Main Hall" {
		t.Errorf("stored = %q at %q", stored.Title, stored.Venue.Name)
	}
}

func TestEditEventNeedsPermission(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	part := h.participant(t)
	e := h.event(org.ID, "Workshop")
	h.signIn(t, part)

	v := NewEventDetailView(h.deps, e.ID)
	v.Update(v.loadEvent())
	if _, cmd := v.Update(keyRunes("e")); cmd != nil || v.err == "" {
		t.Error("participant reached the edit screen")
	}
}

func TestEventDiscussion(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	part := h.participant(t)
	e := h.event(org.ID, "Workshop")
	h.signIn(t, part)

	v := NewEventDetailView(h.deps, e.ID)
	v.Update(v.loadEvent())

	v.Update(keyRunes("c"))
	if !v.posting {
		t.Fatal("post prompt did not open")
	}
	v.postInput.SetValue("Is parking free?")
	_, cmd := v.Update(keyEnter)
	_, cmd = v.Update(run(t, cmd))
	v.Update(run(t, cmd))
	if len(v.event.ChatMessages) != 1 || v.event.ChatMessages[0].Message != "Is parking free?" {
		t.Fatalf("discussion = %+v", v.event.ChatMessages)
	}

	vote := func(k string) models.ChatMessage {
		t.Helper()
		_, cmd := v.Update(keyRunes(k))
		_, cmd = v.Update(run(t, cmd))
		v.Update(run(t, cmd))
		return v.event.ChatMessages[0]
	}

	if m := vote("+"); m.VoteCount("up") != 1 || m.VoteCount("down") != 0 {
		t.Errorf("after up: up=%d down=%d", m.VoteCount("up"), m.VoteCount("down"))
	}
	// A second vote replaces the first
	if m := vote("-"); m.VoteCount("up") != 0 || m.VoteCount("down") != 1 || m.TotalVotes() != 1 {
		t.Errorf("after down: up=%d down=%d", m.VoteCount("up"), m.VoteCount("down"))
	}
}

func TestAnnouncementEditAndRefresh(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	a := h.fake.AddAnnouncement(fakeapi.AnnouncementSeed{Title: "Doors open at 9", Content: "Bring your badge", CreatedBy: org.ID})
	h.signIn(t, org)

	v := NewAnnouncementsView(h.deps)
	v.Update(v.load())
	_, cmd := v.Update(keyEnter)
	_, cmd = v.Update(run(t, cmd))
	v.Update(run(t, cmd))

	v.Update(keyRunes("e"))
	if !v.creating || v.editingID != a.ID {
		t.Fatalf("creating = %v, editing = %q", v.creating, v.editingID)
	}
	if got := v.form.value("content"); got != "Bring your badge" {
		t.Fatalf("content = %q", got)
	}
	v.form.set("title", "Doors open at 10")
	_, cmd = v.Update(keySave)
	_, cmd = v.Update(run(t, cmd))
	v.Update(run(t, cmd))
	if v.announcements[0].Title != "Doors open at 10" || v.announcements[0].Content != "Bring your badge" {
		t.Fatalf("announcement = %+v", v.announcements[0])
	}

	// A comment made elsewhere shows up on refresh
	if _, err := h.deps.API.AddComment(context.Background(), a.ID, "Noted"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	_, cmd = v.Update(keyRefresh)
	v.Update(run(t, cmd))
	if got := len(v.announcements[0].Comments); got != 1 {
		t.Errorf("comments = %d after refresh, want 1", got)
	}
}

func TestAnnouncementEditIsAuthorOnly(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	part := h.participant(t)
	h.fake.AddAnnouncement(fakeapi.AnnouncementSeed{Title: "Doors open at 9", Content: "Bring your badge", CreatedBy: org.ID})
	h.signIn(t, part)

	v := NewAnnouncementsView(h.deps)
	v.Update(v.load())
	v.Update(keyEnter)
	v.Update(keyRunes("e"))
	if v.creating || v.err == "" {
		t.Error("participant opened the edit form")
	}
}

func TestTaskDetailRefresh(t *testing.T) {
	h := newHarness(t)
	org := h.organizer(t)
	part := h.participant(t)
	e := h.event(org.ID, "Workshop")
	task := h.fake.AddTask(fakeapi.TaskSeed{EventID: e.ID, Title: "Sound check", CreatedBy: org.ID})
	h.signIn(t, org)

	v := NewTaskListView(h.deps, e.ID)
	v.Update(v.loadTasks())
	v.Update(keyEnter)

	if _, err := h.deps.API.AssignTask(context.Background(), task.ID, part.ID); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	_, cmd := v.Update(keyRefresh)
	v.Update(run(t, cmd))
	if _, ok := v.tasks[0].AssignmentFor(part.ID); !ok {
		t.Error("refresh did not pick up the assignment")
	}
}
