package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/logging"
	"github.com/tgienger/eventdesk/internal/models"
)

type fixedUser struct{ id string }

func (f fixedUser) CurrentUser() *models.User {
	if f.id == "" {
		return nil
	}
	return &models.User{ID: f.id}
}

// stubAPI serves a versioned feed; every fetch bumps the version
type stubAPI struct {
	mu         sync.Mutex
	fetches    int
	gate       chan struct{} // when set, fetches block until it is closed
	entered    chan struct{}
	organizers []models.Organizer
	posted     []api.NewChatMessage
	votes      []string
	deleted    []string
	sendErr    error
}

func (s *stubAPI) ChatMessages(ctx context.Context, eventID string) (*api.ChatFeed, error) {
	s.mu.Lock()
	s.fetches++
	n := s.fetches
	gate, entered := s.gate, s.entered
	s.gate, s.entered = nil, nil
	s.mu.Unlock()

	if gate != nil {
		close(entered)
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return &api.ChatFeed{
		Messages:   []models.ChatMessage{{ID: fmt.Sprintf("v%d", n), User: models.UserRef{ID: "u1"}}},
		Organizers: s.organizers,
	}, nil
}

func (s *stubAPI) AddChatMessage(ctx context.Context, eventID string, msg api.NewChatMessage) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.posted = append(s.posted, msg)
	return &models.ChatMessage{Message: msg.Message}, nil
}

func (s *stubAPI) VoteOnChatMessage(ctx context.Context, eventID, messageID, vote, option string) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = append(s.votes, messageID+":"+vote+":"+option)
	return &models.ChatMessage{ID: messageID}, nil
}

func (s *stubAPI) DeleteChatMessage(ctx context.Context, eventID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, messageID)
	return nil
}

func (s *stubAPI) VotingResults(ctx context.Context, eventID, messageID string) (*models.VotingResults, error) {
	return &models.VotingResults{TotalVotes: 2, TotalOrganizers: 3}, nil
}

func (s *stubAPI) CollaborationSummary(ctx context.Context, eventID string) (*models.CollaborationSummary, error) {
	return &models.CollaborationSummary{TotalMessages: 4}, nil
}

func (s *stubAPI) Event(ctx context.Context, id string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &models.Event{ID: id, Organizers: s.organizers}, nil
}

func (s *stubAPI) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func roster() []models.Organizer {
	return []models.Organizer{
		{User: models.UserRef{ID: "u1"}, Role: "co-organizer"},
		{User: models.UserRef{ID: "boss"}, Role: models.OrganizerRoleAdmin},
	}
}

func mounted(t *testing.T, stub *stubAPI, userID string, interval time.Duration) *Channel {
	t.Helper()
	ch := New(stub, fixedUser{userID}, "e1", interval, logging.Discard())
	if err := ch.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	t.Cleanup(func() {
		ch.Unmount()
		ch.Wait()
	})
	return ch
}

func TestMountLoadsAndActivates(t *testing.T) {
	stub := &stubAPI{organizers: roster()}
	ch := New(stub, fixedUser{"u1"}, "e1", time.Hour, logging.Discard())
	if ch.State() != Idle {
		t.Fatalf("state = %v, want idle", ch.State())
	}
	if err := ch.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer ch.Unmount()

	snap := ch.Snapshot()
	if snap.State != Active {
		t.Errorf("state = %v, want active", snap.State)
	}
	if len(snap.Messages) != 1 || len(snap.Organizers) != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
	if !snap.IsOrganizer {
		t.Error("membership not verified")
	}
	if err := ch.Mount(context.Background()); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("second Mount = %v", err)
	}
}

func TestNonOrganizerStillMounts(t *testing.T) {
	stub := &stubAPI{organizers: roster()}
	ch := mounted(t, stub, "stranger", time.Hour)
	if ch.Snapshot().IsOrganizer {
		t.Error("stranger reported as organizer")
	}
	if ch.State() != Active {
		t.Errorf("state = %v", ch.State())
	}
}

func TestTimerReloads(t *testing.T) {
	stub := &stubAPI{}
	ch := mounted(t, stub, "u1", 5*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for stub.fetchCount() < 4 {
		select {
		case <-ch.Updates():
		case <-deadline:
			t.Fatalf("only %d fetches", stub.fetchCount())
		}
	}
}

func TestUnmountAppliesInFlightFetch(t *testing.T) {
	stub := &stubAPI{}
	ch := New(stub, fixedUser{"u1"}, "e1", 5*time.Millisecond, logging.Discard())
	if err := ch.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	gate, entered := make(chan struct{}), make(chan struct{})
	stub.mu.Lock()
	stub.gate, stub.entered = gate, entered
	stub.mu.Unlock()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
	ch.Unmount()
	if ch.State() != Unmounted {
		t.Fatalf("state = %v", ch.State())
	}
	close(gate)
	ch.Wait()

	calls := stub.fetchCount()
	msgs := ch.Messages()
	if len(msgs) != 1 || msgs[0].ID == "v1" {
		t.Errorf("in-flight fetch not applied: %+v", msgs)
	}

	time.Sleep(30 * time.Millisecond)
	if stub.fetchCount() != calls {
		t.Errorf("fetches after unmount: %d -> %d", calls, stub.fetchCount())
	}
	if _, ok := <-ch.Updates(); ok {
		t.Error("updates still open")
	}
	ch.Unmount()
}

func TestUnmountClosesPendingUpdates(t *testing.T) {
	stub := &stubAPI{}
	ch := New(stub, fixedUser{"u1"}, "e1", time.Hour, logging.Discard())
	if err := ch.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	ch.Unmount()
	ch.Wait()

	select {
	case _, ok := <-ch.Updates():
		if ok {
			t.Error("signal delivered after unmount")
		}
	case <-time.After(time.Second):
		t.Fatal("updates not closed")
	}
}

func TestWaitCoversMountLoads(t *testing.T) {
	gate, entered := make(chan struct{}), make(chan struct{})
	stub := &stubAPI{gate: gate, entered: entered}
	ch := New(stub, fixedUser{"u1"}, "e1", time.Hour, logging.Discard())

	mountErr := make(chan error, 1)
	go func() { mountErr <- ch.Mount(context.Background()) }()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("mount never fetched")
	}
	ch.Unmount()

	waited := make(chan struct{})
	go func() {
		ch.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		t.Fatal("Wait returned while the mount fetch was outstanding")
	case <-time.After(30 * time.Millisecond):
	}

	close(gate)
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait never returned")
	}
	if err := <-mountErr; err != nil {
		t.Errorf("Mount = %v", err)
	}
	if ch.State() != Unmounted {
		t.Errorf("state = %v", ch.State())
	}
	if calls := stub.fetchCount(); calls != 1 {
		t.Errorf("fetches = %d, want 1", calls)
	}
}

func TestActionsAfterUnmount(t *testing.T) {
	stub := &stubAPI{}
	ch := mounted(t, stub, "u1", time.Hour)
	ch.Unmount()

	d := NewDraft()
	d.Text = "late"
	if err := ch.Send(context.Background(), d); !errors.Is(err, ErrUnmounted) {
		t.Errorf("Send = %v", err)
	}
	if err := ch.Vote(context.Background(), "m", "Yes", "Yes"); !errors.Is(err, ErrUnmounted) {
		t.Errorf("Vote = %v", err)
	}
	if err := ch.Delete(context.Background(), "m"); !errors.Is(err, ErrUnmounted) {
		t.Errorf("Delete = %v", err)
	}
}

func TestSend(t *testing.T) {
	stub := &stubAPI{}
	ch := mounted(t, stub, "u1", time.Hour)
	ctx := context.Background()

	d := NewDraft()
	d.Text = "   "
	if err := ch.Send(ctx, d); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("blank Send = %v", err)
	}
	if len(stub.posted) != 0 {
		t.Fatal("blank message posted")
	}

	before := stub.fetchCount()
	d.Text = "  Which venue?  "
	d.IsVote = true
	d.AddOption("Hall B")
	if err := ch.Send(ctx, d); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got := stub.posted[0]
	if got.Message != "Which venue?" || !got.IsVote || len(got.VoteOptions) != 3 {
		t.Errorf("posted = %+v", got)
	}
	if stub.fetchCount() != before+1 {
		t.Error("send did not reload")
	}
	if d.Text != "" || d.IsVote || len(d.Options) != 2 {
		t.Errorf("draft not reset: %+v", d)
	}

	d.Text = "plain"
	if err := ch.Send(ctx, d); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if stub.posted[1].VoteOptions != nil {
		t.Errorf("plain message carried options %v", stub.posted[1].VoteOptions)
	}
}

func TestSendFailureKeepsDraft(t *testing.T) {
	stub := &stubAPI{sendErr: &api.Error{StatusCode: 403, Message: "Not an organizer"}}
	ch := mounted(t, stub, "u1", time.Hour)

	d := NewDraft()
	d.Text = "retry me"
	err := ch.Send(context.Background(), d)
	if api.Message(err, "Failed to send message") != "Not an organizer" {
		t.Errorf("Send = %v", err)
	}
	if d.Text != "retry me" {
		t.Error("draft cleared on failure")
	}
}

func TestVoteAndDeleteReload(t *testing.T) {
	stub := &stubAPI{}
	ch := mounted(t, stub, "u1", time.Hour)
	ctx := context.Background()

	before := stub.fetchCount()
	if err := ch.Vote(ctx, "m1", "Yes", "Yes"); err != nil {
		t.Fatalf("Vote: %v", err)
	}
	if err := ch.Delete(ctx, "m1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if stub.fetchCount() != before+2 {
		t.Errorf("fetches = %d, want %d", stub.fetchCount(), before+2)
	}
	if stub.votes[0] != "m1:Yes:Yes" || stub.deleted[0] != "m1" {
		t.Errorf("votes=%v deleted=%v", stub.votes, stub.deleted)
	}
}

func TestSummaryAndResultsToggle(t *testing.T) {
	ch := mounted(t, &stubAPI{}, "u1", time.Hour)
	ctx := context.Background()

	if err := ch.LoadSummary(ctx); err != nil {
		t.Fatalf("LoadSummary: %v", err)
	}
	if s := ch.Snapshot(); !s.ShowSummary || s.Summary.TotalMessages != 4 {
		t.Errorf("summary = %+v", s.Summary)
	}
	ch.HideSummary()
	if ch.Snapshot().ShowSummary {
		t.Error("summary still shown")
	}

	if err := ch.ToggleResults(ctx, "m1"); err != nil {
		t.Fatalf("ToggleResults: %v", err)
	}
	if r := ch.Snapshot().Results["m1"]; r == nil || r.TotalOrganizers != 3 {
		t.Errorf("results = %+v", r)
	}
	if err := ch.ToggleResults(ctx, "m1"); err != nil {
		t.Fatalf("ToggleResults: %v", err)
	}
	if _, ok := ch.Snapshot().Results["m1"]; ok {
		t.Error("results still shown")
	}
}

func TestVoteProjections(t *testing.T) {
	ch := New(&stubAPI{}, fixedUser{"u1"}, "e1", time.Hour, logging.Discard())
	m := models.ChatMessage{
		IsVote:      true,
		VoteOptions: []string{"Yes", "No"},
		Votes: []models.Vote{
			{User: "u1", Vote: "x", VoteOption: "Yes"},
			{User: "u2", Vote: "No"},
			{User: "u3", Vote: "Yes", VoteOption: ""},
		},
	}

	if !ch.HasUserVoted(m) {
		t.Error("u1 should have voted")
	}
	if v, ok := ch.UserVote(m); !ok || v != "Yes" {
		t.Errorf("UserVote = %q, %v", v, ok)
	}
	if got := ch.VoteCount(m, "Yes"); got != 2 {
		t.Errorf("VoteCount(Yes) = %d", got)
	}
	if got := ch.VoteCount(m, "No"); got != 1 {
		t.Errorf("VoteCount(No) = %d", got)
	}
	if got := ch.TotalVotes(m); got != 3 {
		t.Errorf("TotalVotes = %d", got)
	}

	anon := New(&stubAPI{}, fixedUser{}, "e1", time.Hour, logging.Discard())
	if anon.HasUserVoted(m) {
		t.Error("anonymous user reported as voted")
	}
}

func TestCanDelete(t *testing.T) {
	org := roster()
	m := models.ChatMessage{User: models.UserRef{ID: "u1"}}

	cases := []struct {
		user string
		want bool
	}{
		{"u1", true},   // author
		{"boss", true}, // admin organizer
		{"u2", false},  // not on roster
		{"", false},    // signed out
	}
	for _, c := range cases {
		if got := CanDelete(c.user, m, org); got != c.want {
			t.Errorf("CanDelete(%q) = %v, want %v", c.user, got, c.want)
		}
	}

	other := models.ChatMessage{User: models.UserRef{ID: "boss"}}
	if CanDelete("u1", other, org) {
		t.Error("co-organizer may not delete another's message")
	}
}
