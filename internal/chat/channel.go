// Package chat implements the organizer collaboration channel: a per-event
// message and poll feed that reloads from the server after every action and
// on a fixed timer while mounted.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/models"
)

// State is the lifecycle of a mounted channel
type State int

const (
	Idle State = iota
	Loading
	Active
	Unmounted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Active:
		return "active"
	case Unmounted:
		return "unmounted"
	}
	return "unknown"
}

// DefaultRefresh is the poll period of an active channel
const DefaultRefresh = 5 * time.Second

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrUnmounted      = errors.New("channel is unmounted")
	ErrAlreadyMounted = errors.New("channel already mounted")
)

// API is the backend surface used by a channel
type API interface {
	ChatMessages(ctx context.Context, eventID string) (*api.ChatFeed, error)
	AddChatMessage(ctx context.Context, eventID string, msg api.NewChatMessage) (*models.ChatMessage, error)
	VoteOnChatMessage(ctx context.Context, eventID, messageID, vote, option string) (*models.ChatMessage, error)
	DeleteChatMessage(ctx context.Context, eventID, messageID string) error
	VotingResults(ctx context.Context, eventID, messageID string) (*models.VotingResults, error)
	CollaborationSummary(ctx context.Context, eventID string) (*models.CollaborationSummary, error)
	Event(ctx context.Context, id string) (*models.Event, error)
}

// Users yields the signed-in user at the time of each check
type Users interface {
	CurrentUser() *models.User
}

// Snapshot is a copy of the channel state for rendering
type Snapshot struct {
	State       State
	Messages    []models.ChatMessage
	Organizers  []models.Organizer
	IsOrganizer bool // membership of the current user, verified on mount
	Summary     *models.CollaborationSummary
	ShowSummary bool
	Results     map[string]*models.VotingResults // visible voting results by message id
}

// Channel is one mounted organizer channel
type Channel struct {
	api      API
	users    Users
	eventID  string
	interval time.Duration
	log      *logrus.Entry

	mu          sync.Mutex
	state       State
	messages    []models.ChatMessage
	organizers  []models.Organizer
	isOrganizer bool
	summary     *models.CollaborationSummary
	showSummary bool
	results     map[string]*models.VotingResults
	updates     chan struct{}
	stop        chan struct{}

	wg sync.WaitGroup
}

// New creates an idle channel for eventID. A non-positive interval uses DefaultRefresh.
func New(client API, users Users, eventID string, interval time.Duration, log *logrus.Entry) *Channel {
	if interval <= 0 {
		interval = DefaultRefresh
	}
	return &Channel{
		api:      client,
		users:    users,
		eventID:  eventID,
		interval: interval,
		log:      log.WithField("event_id", eventID),
		results:  make(map[string]*models.VotingResults),
		updates:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// EventID returns the event the channel is scoped to
func (c *Channel) EventID() string {
	return c.eventID
}

// Updates signals after every applied reload or state change. It is closed on
// unmount with no signal left pending.
func (c *Channel) Updates() <-chan struct{} {
	return c.updates
}

// State returns the current lifecycle state
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mount loads the feed and verifies membership, then arms the refresh timer.
// Requests run on ctx, which unmount does not cancel.
func (c *Channel) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return ErrAlreadyMounted
	}
	c.state = Loading
	c.notifyLocked()
	// released by poll, or below when unmounted during the loads
	c.wg.Add(1)
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		c.reload(ctx)
		return nil
	})
	g.Go(func() error {
		c.verifyMembership(ctx)
		return nil
	})
	_ = g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Unmounted {
		c.wg.Done()
		return nil
	}
	c.state = Active
	go c.poll(ctx, c.stop)
	c.notifyLocked()
	return nil
}

// Unmount stops the timer. Outstanding requests still complete and apply.
func (c *Channel) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Unmounted {
		return
	}
	c.state = Unmounted
	close(c.stop)
	select {
	case <-c.updates:
	default:
	}
	close(c.updates)
}

// Wait blocks until mounting, the timer goroutine and its requests have finished
func (c *Channel) Wait() {
	c.wg.Wait()
}

// poll reloads on every tick without waiting for the previous tick's request
func (c *Channel) poll(ctx context.Context, stop <-chan struct{}) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				c.reload(ctx)
			}()
		}
	}
}

// Refresh reloads the feed once, outside the timer
func (c *Channel) Refresh(ctx context.Context) {
	c.reload(ctx)
}

// reload fetches the full feed and applies it. The last response to arrive wins.
func (c *Channel) reload(ctx context.Context) {
	feed, err := c.api.ChatMessages(ctx, c.eventID)
	if err != nil {
		c.log.WithError(err).Warn("load chat messages")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = feed.Messages
	c.organizers = feed.Organizers
	c.notifyLocked()
}

func (c *Channel) verifyMembership(ctx context.Context) {
	event, err := c.api.Event(ctx, c.eventID)
	if err != nil {
		c.log.WithError(err).Warn("load event details")
		return
	}
	_, member := event.OrganizerFor(c.userID())
	if !member {
		c.log.Error("user is not an organizer for this event")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.isOrganizer = member
}

// notifyLocked signals subscribers; callers hold mu. Nothing is sent after unmount.
func (c *Channel) notifyLocked() {
	if c.state == Unmounted {
		return
	}
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

func (c *Channel) checkMounted() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Unmounted {
		return ErrUnmounted
	}
	return nil
}

// Send posts the draft as a message or poll, resets it and reloads. On
// failure the draft is kept for a manual retry.
func (c *Channel) Send(ctx context.Context, d *Draft) error {
	if err := c.checkMounted(); err != nil {
		return err
	}
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return ErrEmptyMessage
	}

	_, err := c.api.AddChatMessage(ctx, c.eventID, api.NewChatMessage{
		Message:     text,
		IsVote:      d.IsVote,
		VoteOptions: d.options(),
	})
	if err != nil {
		c.log.WithError(err).Error("send message")
		return err
	}

	d.Reset()
	c.reload(ctx)
	return nil
}

// Vote submits the caller's vote and reloads. option may be empty for free-form votes.
func (c *Channel) Vote(ctx context.Context, messageID, vote, option string) error {
	if err := c.checkMounted(); err != nil {
		return err
	}
	if _, err := c.api.VoteOnChatMessage(ctx, c.eventID, messageID, vote, option); err != nil {
		c.log.WithError(err).WithField("message_id", messageID).Error("vote on message")
		return err
	}
	c.reload(ctx)
	return nil
}

// Delete removes a message and reloads. The server decides whether it is allowed.
func (c *Channel) Delete(ctx context.Context, messageID string) error {
	if err := c.checkMounted(); err != nil {
		return err
	}
	if err := c.api.DeleteChatMessage(ctx, c.eventID, messageID); err != nil {
		c.log.WithError(err).WithField("message_id", messageID).Error("delete message")
		return err
	}
	c.reload(ctx)
	return nil
}

// LoadSummary fetches the collaboration summary and shows it
func (c *Channel) LoadSummary(ctx context.Context) error {
	summary, err := c.api.CollaborationSummary(ctx, c.eventID)
	if err != nil {
		c.log.WithError(err).Warn("load collaboration summary")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = summary
	c.showSummary = true
	c.notifyLocked()
	return nil
}

// HideSummary hides the summary; the fetched value is kept
func (c *Channel) HideSummary() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showSummary = false
	c.notifyLocked()
}

// ToggleResults shows the server tally of a poll, fetching it, or hides it
func (c *Channel) ToggleResults(ctx context.Context, messageID string) error {
	c.mu.Lock()
	if _, shown := c.results[messageID]; shown {
		delete(c.results, messageID)
		c.notifyLocked()
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	results, err := c.api.VotingResults(ctx, c.eventID, messageID)
	if err != nil {
		c.log.WithError(err).WithField("message_id", messageID).Warn("load voting results")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[messageID] = results
	c.notifyLocked()
	return nil
}

// Snapshot copies the state for rendering
func (c *Channel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make(map[string]*models.VotingResults, len(c.results))
	for id, r := range c.results {
		results[id] = r
	}
	return Snapshot{
		State:       c.state,
		Messages:    append([]models.ChatMessage(nil), c.messages...),
		Organizers:  append([]models.Organizer(nil), c.organizers...),
		IsOrganizer: c.isOrganizer,
		Summary:     c.summary,
		ShowSummary: c.showSummary,
		Results:     results,
	}
}

// Messages returns the last applied message list
func (c *Channel) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ChatMessage(nil), c.messages...)
}

func (c *Channel) userID() string {
	if u := c.users.CurrentUser(); u != nil {
		return u.ID
	}
	return ""
}

// HasUserVoted reports whether the current user has voted on m
func (c *Channel) HasUserVoted(m models.ChatMessage) bool {
	return m.HasVoted(c.userID())
}

// UserVote returns the current user's effective vote on m
func (c *Channel) UserVote(m models.ChatMessage) (string, bool) {
	return m.UserVote(c.userID())
}

// VoteCount counts votes on m whose effective value is option
func (c *Channel) VoteCount(m models.ChatMessage, option string) int {
	return m.VoteCount(option)
}

// TotalVotes counts all votes on m
func (c *Channel) TotalVotes(m models.ChatMessage) int {
	return m.TotalVotes()
}

// CanDelete is the advisory delete gate: the author, or an admin organizer
func (c *Channel) CanDelete(m models.ChatMessage) bool {
	c.mu.Lock()
	organizers := c.organizers
	c.mu.Unlock()
	return CanDelete(c.userID(), m, organizers)
}

// CanDelete reports whether userID may delete m given the event roster
func CanDelete(userID string, m models.ChatMessage, organizers []models.Organizer) bool {
	if userID == "" {
		return false
	}
	if m.User.ID == userID {
		return true
	}
	org, ok := models.FindOrganizer(organizers, userID)
	return ok && org.Role == models.OrganizerRoleAdmin
}
