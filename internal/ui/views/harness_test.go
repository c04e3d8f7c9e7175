package views

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/db"
	"github.com/tgienger/eventdesk/internal/fakeapi"
	"github.com/tgienger/eventdesk/internal/logging"
	"github.com/tgienger/eventdesk/internal/models"
	"github.com/tgienger/eventdesk/internal/session"
)

// harness wires views to an in-memory backend and a temporary settings store
type harness struct {
	fake *fakeapi.Server
	db   *db.DB
	deps *Deps
	now  time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	// Real time: the session checks token expiry against the wall clock
	now := time.Now().Truncate(time.Second)
	fake := fakeapi.New(fakeapi.WithLogger(logging.Discard()))
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	database, err := db.Open(filepath.Join(t.TempDir(), "eventdesk.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	client := api.New(srv.URL+"/api", database, api.WithLogger(logging.Discard()))
	store := session.New(client, database, logging.Discard())

	return &harness{
		fake: fake,
		db:   database,
		now:  now,
		deps: &Deps{
			API:         client,
			Session:     store,
			Log:         logging.Discard(),
			ChatRefresh: time.Hour,
			Now:         func() time.Time { return now },
		},
	}
}

// signIn stores a token for user and restores the session from it
func (h *harness) signIn(t *testing.T, user models.User) {
	t.Helper()
	token, err := h.fake.Token(user.ID)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if err := h.db.SetToken(token); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := h.deps.Session.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if h.deps.Session.UserID() != user.ID {
		t.Fatalf("signed in as %q, want %q", h.deps.Session.UserID(), user.ID)
	}
}

func (h *harness) organizer(t *testing.T) models.User {
	t.Helper()
	return h.fake.AddUser("Olivia", "olivia@example.com", "secret1", models.RoleOrganizer)
}

func (h *harness) participant(t *testing.T) models.User {
	t.Helper()
	return h.fake.AddUser("Priya", "priya@example.com", "secret1", models.RoleParticipant)
}

func (h *harness) event(organizerID, title string) models.Event {
	return h.fake.AddEvent(fakeapi.EventSeed{
		Title:       title,
		Description: "A long enough description",
		Category:    "Workshop",
		Date:        h.now.Add(3 * 24 * time.Hour),
		Venue:       models.Venue{Name: "Main Hall", Address: "1 Campus Way"},
		OrganizerID: organizerID,
	})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySave  = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}

	keyRefresh    = tea.KeyMsg{Type: tea.KeyCtrlR}
	keyToggleForm = tea.KeyMsg{Type: tea.KeyCtrlT}
)

// run executes cmd and fails the test when it is nil
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

// expectNavigate runs cmd and checks it asks for want
func expectNavigate(t *testing.T, cmd tea.Cmd, want Navigate) {
	t.Helper()
	msg := run(t, cmd)
	nav, ok := msg.(Navigate)
	if !ok {
		t.Fatalf("msg = %#v, want Navigate", msg)
	}
	if nav != want {
		t.Fatalf("navigate = %+v, want %+v", nav, want)
	}
}
