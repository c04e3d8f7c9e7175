package fakeapi

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tgienger/eventdesk/internal/models"
)

// organizerEvent loads the {id} event and checks the caller is on its
// roster; callers hold mu
func (s *Server) organizerEvent(w http.ResponseWriter, r *http.Request) (*models.Event, models.Organizer, bool) {
	e := s.eventFor(w, r)
	if e == nil {
		return nil, models.Organizer{}, false
	}
	org, ok := e.OrganizerFor(userID(r))
	if !ok {
		writeError(w, http.StatusForbidden, "Access denied. You are not an organizer for this event.")
		return nil, models.Organizer{}, false
	}
	return e, org, true
}

func (s *Server) chatMessage(eventID, messageID string) *models.ChatMessage {
	for _, m := range s.orgChat[eventID] {
		if m.ID == messageID {
			return m
		}
	}
	return nil
}

func (s *Server) chatMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, _, ok := s.organizerEvent(w, r)
	if !ok {
		return
	}
	messages := make([]models.ChatMessage, 0, len(s.orgChat[e.ID]))
	for _, m := range s.orgChat[e.ID] {
		messages = append(messages, *m)
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages, "organizers": e.Organizers})
}

func (s *Server) addChatMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message     string   `json:"message"`
		IsVote      bool     `json:"isVote"`
		VoteOptions []string `json:"voteOptions"`
	}
	if !decode(w, r, &body) {
		return
	}
	body.Message = strings.TrimSpace(body.Message)
	if body.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if body.IsVote && len(body.VoteOptions) == 0 {
		writeError(w, http.StatusBadRequest, "Vote options are required for voting messages")
		return
	}
	if !body.IsVote {
		body.VoteOptions = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, _, ok := s.organizerEvent(w, r)
	if !ok {
		return
	}
	m := &models.ChatMessage{
		ID:          newID(),
		User:        s.ref(userID(r)),
		Message:     body.Message,
		Timestamp:   s.now(),
		IsVote:      body.IsVote,
		VoteOptions: body.VoteOptions,
		Votes:       []models.Vote{},
	}
	s.orgChat[e.ID] = append(s.orgChat[e.ID], m)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Message sent successfully", "chatMessage": m})
}

func (s *Server) voteChatMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Vote       string `json:"vote"`
		VoteOption string `json:"voteOption"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Vote == "" && body.VoteOption == "" {
		writeError(w, http.StatusBadRequest, "Vote is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, _, ok := s.organizerEvent(w, r)
	if !ok {
		return
	}
	m := s.chatMessage(e.ID, chi.URLParam(r, "mid"))
	if m == nil {
		writeError(w, http.StatusNotFound, "Message not found")
		return
	}
	if !m.IsVote {
		writeError(w, http.StatusBadRequest, "This message is not a voting message")
		return
	}
	if body.VoteOption != "" && !slices.Contains(m.VoteOptions, body.VoteOption) {
		writeError(w, http.StatusBadRequest, "Invalid vote option")
		return
	}
	now := s.now()
	m.Votes = castVote(m.Votes, models.Vote{User: userID(r), Vote: body.Vote, VoteOption: body.VoteOption, VotedAt: &now})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Vote recorded successfully", "chatMessage": m})
}

func (s *Server) votingResults(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, _, ok := s.organizerEvent(w, r)
	if !ok {
		return
	}
	m := s.chatMessage(e.ID, chi.URLParam(r, "mid"))
	if m == nil {
		writeError(w, http.StatusNotFound, "Message not found")
		return
	}
	if !m.IsVote {
		writeError(w, http.StatusBadRequest, "This message is not a voting message")
		return
	}

	results := make(map[string]models.OptionResult, len(m.VoteOptions))
	for _, opt := range m.VoteOptions {
		results[opt] = models.OptionResult{Voters: []models.Voter{}}
	}
	for _, v := range m.Votes {
		key := v.Value()
		res := results[key]
		res.Count++
		voter := models.Voter{User: s.ref(v.User)}
		if v.VotedAt != nil {
			voter.VotedAt = *v.VotedAt
		}
		res.Voters = append(res.Voters, voter)
		results[key] = res
	}
	writeJSON(w, http.StatusOK, models.VotingResults{
		Results:         results,
		TotalVotes:      len(m.Votes),
		TotalOrganizers: len(e.Organizers),
	})
}

func (s *Server) deleteChatMessage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, org, ok := s.organizerEvent(w, r)
	if !ok {
		return
	}
	m := s.chatMessage(e.ID, chi.URLParam(r, "mid"))
	if m == nil {
		writeError(w, http.StatusNotFound, "Message not found")
		return
	}
	if m.User.ID != userID(r) && org.Role != models.OrganizerRoleAdmin {
		writeError(w, http.StatusForbidden, "You can only delete your own messages")
		return
	}
	s.orgChat[e.ID] = slices.DeleteFunc(s.orgChat[e.ID], func(x *models.ChatMessage) bool { return x == m })
	writeMessage(w, "Message deleted successfully")
}

func (s *Server) collaborationSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, _, ok := s.organizerEvent(w, r)
	if !ok {
		return
	}
	messages := s.orgChat[e.ID]

	summary := models.CollaborationSummary{
		TotalMessages:     len(messages),
		OrganizerActivity: []models.OrganizerActivity{},
		RecentMessages:    []models.ChatMessage{},
	}
	for _, m := range messages {
		if m.IsVote {
			summary.VotingMessages++
		}
		summary.TotalVotes += len(m.Votes)
	}
	for _, o := range e.Organizers {
		act := models.OrganizerActivity{Organizer: o.User, Role: o.Role}
		var last int64
		for _, m := range messages {
			if m.User.ID == o.User.ID {
				act.MessageCount++
				last = max(last, m.Timestamp.UnixMilli())
			}
			for _, v := range m.Votes {
				if v.User == o.User.ID {
					act.VoteCount++
					if v.VotedAt != nil {
						last = max(last, v.VotedAt.UnixMilli())
					}
				}
			}
		}
		if last > 0 {
			act.LastActivity = &last
		}
		summary.OrganizerActivity = append(summary.OrganizerActivity, act)
	}
	for _, m := range messages[max(0, len(messages)-5):] {
		summary.RecentMessages = append(summary.RecentMessages, *m)
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Collaboration summary", "summary": summary})
}
