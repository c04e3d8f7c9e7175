package models

import "time"

// Vote is one organizer's choice on a chat message
type Vote struct {
	User       string     `json:"user"`
	Vote       string     `json:"vote"`
	VoteOption string     `json:"voteOption,omitempty"`
	VotedAt    *time.Time `json:"votedAt,omitempty"`
}

// Value returns the effective vote value: the labeled option when present,
// otherwise the raw vote string.
func (v Vote) Value() string {
	if v.VoteOption != "" {
		return v.VoteOption
	}
	return v.Vote
}

// ChatMessage is a message or poll in an organizer channel
type ChatMessage struct {
	ID          string    `json:"_id"`
	User        UserRef   `json:"user"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	IsVote      bool      `json:"isVote"`
	VoteOptions []string  `json:"voteOptions,omitempty"`
	Votes       []Vote    `json:"votes"`
}

// ActiveVotes returns at most one vote per user. A later record for the same
// user replaces the earlier one in place.
func (m ChatMessage) ActiveVotes() []Vote {
	if len(m.Votes) == 0 {
		return nil
	}
	seen := make(map[string]int, len(m.Votes))
	active := make([]Vote, 0, len(m.Votes))
	for _, v := range m.Votes {
		if i, ok := seen[v.User]; ok {
			active[i] = v
			continue
		}
		seen[v.User] = len(active)
		active = append(active, v)
	}
	return active
}

// HasVoted reports whether userID has an active vote on the message
func (m ChatMessage) HasVoted(userID string) bool {
	_, ok := m.UserVote(userID)
	return ok
}

// UserVote returns the effective vote value of userID
func (m ChatMessage) UserVote(userID string) (string, bool) {
	if userID == "" {
		return "", false
	}
	for _, v := range m.ActiveVotes() {
		if v.User == userID {
			return v.Value(), true
		}
	}
	return "", false
}

// VoteCount counts active votes whose effective value equals option
func (m ChatMessage) VoteCount(option string) int {
	n := 0
	for _, v := range m.ActiveVotes() {
		if v.Value() == option {
			n++
		}
	}
	return n
}

// TotalVotes counts active votes regardless of value
func (m ChatMessage) TotalVotes() int {
	return len(m.ActiveVotes())
}

// Voter is one entry in a server-computed tally
type Voter struct {
	User    UserRef   `json:"user"`
	VotedAt time.Time `json:"votedAt"`
}

// OptionResult is the server tally of one vote option
type OptionResult struct {
	Count  int     `json:"count"`
	Voters []Voter `json:"voters"`
}

// VotingResults is the server tally of a poll, keyed by option
type VotingResults struct {
	Results         map[string]OptionResult `json:"results"`
	TotalVotes      int                     `json:"totalVotes"`
	TotalOrganizers int                     `json:"totalOrganizers"`
}

// OrganizerActivity is one row of the collaboration summary
type OrganizerActivity struct {
	Organizer    UserRef `json:"organizer"`
	Role         string  `json:"role"`
	MessageCount int     `json:"messageCount"`
	VoteCount    int     `json:"voteCount"`
	LastActivity *int64  `json:"lastActivity"` // unix millis
}

// LastActive converts LastActivity to a time, zero when absent
func (a OrganizerActivity) LastActive() time.Time {
	if a.LastActivity == nil {
		return time.Time{}
	}
	return time.UnixMilli(*a.LastActivity)
}

// CollaborationSummary is the server aggregate of organizer activity
type CollaborationSummary struct {
	TotalMessages     int                 `json:"totalMessages"`
	VotingMessages    int                 `json:"votingMessages"`
	TotalVotes        int                 `json:"totalVotes"`
	OrganizerActivity []OrganizerActivity `json:"organizerActivity"`
	RecentMessages    []ChatMessage       `json:"recentMessages"`
}
