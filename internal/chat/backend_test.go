package chat_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/chat"
	"github.com/tgienger/eventdesk/internal/fakeapi"
	"github.com/tgienger/eventdesk/internal/logging"
	"github.com/tgienger/eventdesk/internal/models"
)

type token string

func (t token) Token() (string, error) { return string(t), nil }

type user struct{ models.User }

func (u user) CurrentUser() *models.User { return &u.User }

type fixture struct {
	fake  *fakeapi.Server
	url   string
	event models.Event
	admin models.User
	co    models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := fakeapi.New(fakeapi.WithLogger(logging.Discard()))
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	admin := fake.AddUser("Admin", "admin@example.com", "secret1", models.RoleOrganizer)
	co := fake.AddUser("Co", "co@example.com", "secret1", models.RoleOrganizer)
	e := fake.AddEvent(fakeapi.EventSeed{Title: "Gala", Date: time.Now().Add(72 * time.Hour), OrganizerID: admin.ID})
	fake.AddOrganizer(e.ID, co.ID, "co-organizer")
	return &fixture{fake: fake, url: srv.URL + "/api", event: e, admin: admin, co: co}
}

func (f *fixture) channel(t *testing.T, u models.User) *chat.Channel {
	t.Helper()
	tok, err := f.fake.Token(u.ID)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	client := api.New(f.url, token(tok), api.WithLogger(logging.Discard()))
	ch := chat.New(client, user{u}, f.event.ID, time.Hour, logging.Discard())
	if err := ch.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	t.Cleanup(func() {
		ch.Unmount()
		ch.Wait()
	})
	return ch
}

func TestPollRoundTrip(t *testing.T) {
	f := newFixture(t)
	ch := f.channel(t, f.co)
	ctx := context.Background()

	d := chat.NewDraft()
	d.Text = "Pick one"
	d.IsVote = true
	d.Options = []string{"A", "B"}
	if err := ch.Send(ctx, d); err != nil {
		t.Fatalf("Send: %v", err)
	}
	msgs := ch.Messages()
	if len(msgs) != 1 || !msgs[0].IsVote {
		t.Fatalf("messages = %+v", msgs)
	}

	if err := ch.Vote(ctx, msgs[0].ID, "A", "A"); err != nil {
		t.Fatalf("Vote: %v", err)
	}
	m := ch.Messages()[0]
	if ch.VoteCount(m, "A") != 1 || ch.VoteCount(m, "B") != 0 || !ch.HasUserVoted(m) {
		t.Errorf("after vote: A=%d B=%d voted=%v", ch.VoteCount(m, "A"), ch.VoteCount(m, "B"), ch.HasUserVoted(m))
	}

	// a second vote replaces the first
	if err := ch.Vote(ctx, m.ID, "B", "B"); err != nil {
		t.Fatalf("Vote: %v", err)
	}
	m = ch.Messages()[0]
	if ch.TotalVotes(m) != 1 || ch.VoteCount(m, "B") != 1 {
		t.Errorf("after revote: total=%d B=%d", ch.TotalVotes(m), ch.VoteCount(m, "B"))
	}
	if v, _ := ch.UserVote(m); v != "B" {
		t.Errorf("UserVote = %q", v)
	}

	if err := ch.ToggleResults(ctx, m.ID); err != nil {
		t.Fatalf("ToggleResults: %v", err)
	}
	res := ch.Snapshot().Results[m.ID]
	if res.Results["B"].Count != 1 || res.Results["A"].Count != 0 || res.TotalOrganizers != 2 {
		t.Errorf("results = %+v", res)
	}
}

func TestDeleteAuthority(t *testing.T) {
	f := newFixture(t)
	adminMsg := f.fake.AddChatMessage(f.event.ID, f.admin.ID, "from admin")
	coMsg := f.fake.AddChatMessage(f.event.ID, f.co.ID, "from co")
	ctx := context.Background()

	co := f.channel(t, f.co)
	if co.CanDelete(adminMsg) {
		t.Error("co-organizer offered delete on admin message")
	}
	if err := co.Delete(ctx, adminMsg.ID); api.StatusCode(err) != http.StatusForbidden {
		t.Errorf("server allowed co delete: %v", err)
	}

	admin := f.channel(t, f.admin)
	if !admin.CanDelete(coMsg) {
		t.Error("admin not offered delete")
	}
	if err := admin.Delete(ctx, coMsg.ID); err != nil {
		t.Fatalf("admin Delete: %v", err)
	}
	if got := len(admin.Messages()); got != 1 {
		t.Errorf("messages after delete = %d", got)
	}
}

func TestOutsiderChannel(t *testing.T) {
	f := newFixture(t)
	outsider := f.fake.AddUser("Out", "out@example.com", "secret1", models.RoleOrganizer)
	ch := f.channel(t, outsider)

	snap := ch.Snapshot()
	if snap.IsOrganizer || len(snap.Messages) != 0 {
		t.Errorf("outsider snapshot = %+v", snap)
	}
	if snap.State != chat.Active {
		t.Errorf("state = %v", snap.State)
	}
	err := ch.Send(context.Background(), &chat.Draft{Text: "hi"})
	if api.StatusCode(err) != http.StatusForbidden {
		t.Errorf("outsider send = %v", err)
	}
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	f.fake.AddChatMessage(f.event.ID, f.admin.ID, "one")
	f.fake.AddChatMessage(f.event.ID, f.co.ID, "two", "Yes", "No")
	ch := f.channel(t, f.admin)

	if err := ch.LoadSummary(context.Background()); err != nil {
		t.Fatalf("LoadSummary: %v", err)
	}
	s := ch.Snapshot().Summary
	if s.TotalMessages != 2 || s.VotingMessages != 1 || len(s.OrganizerActivity) != 2 {
		t.Errorf("summary = %+v", s)
	}
	for _, a := range s.OrganizerActivity {
		if a.MessageCount != 1 || a.LastActive().IsZero() {
			t.Errorf("activity = %+v", a)
		}
	}
}
