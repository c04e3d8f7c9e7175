// Package fakeapi is an in-memory implementation of the event-management REST
// API. Tests run the real client against it and cmd/eventdesk-devapi serves
// it for local use.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tgienger/eventdesk/internal/models"
)

// Request is one recorded call
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	RequestID string
	Auth      string
}

type account struct {
	user     models.User
	password string
}

type failure struct {
	status  int
	message string
}

// Server holds the whole backend state behind one mutex
type Server struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	log      *logrus.Entry

	mu            sync.Mutex
	users         map[string]*account
	events        map[string]*models.Event
	eventOrder    []string
	orgChat       map[string][]*models.ChatMessage
	tasks         map[string]*models.Task
	taskOrder     []string
	announcements map[string]*models.Announcement
	annOrder      []string
	requests      []Request
	failures      map[string]failure
}

// Option configures a Server
type Option func(*Server)

// WithSecret sets the HS256 signing key
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

// WithTokenTTL sets how long issued tokens stay valid
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger
func WithLogger(log *logrus.Entry) Option {
	return func(s *Server) { s.log = log }
}

// New returns an empty backend
func New(opts ...Option) *Server {
	s := &Server{
		secret:        []byte("eventdesk-dev-secret"),
		tokenTTL:      24 * time.Hour,
		now:           time.Now,
		log:           logrus.NewEntry(logrus.StandardLogger()),
		users:         make(map[string]*account),
		events:        make(map[string]*models.Event),
		orgChat:       make(map[string][]*models.ChatMessage),
		tasks:         make(map[string]*models.Task),
		announcements: make(map[string]*models.Announcement),
		failures:      make(map[string]failure),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API router, rooted at /api
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.identify)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/register", s.register)
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Get("/me", s.me)
				r.Put("/profile", s.updateProfile)
				r.Put("/change-password", s.changePassword)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.listEvents)
			r.Get("/{id}", s.getEvent)
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/", s.createEvent)
				r.Put("/{id}", s.updateEvent)
				r.Delete("/{id}", s.deleteEvent)
				r.Post("/{id}/rsvp", s.rsvp)
				r.Delete("/{id}/rsvp", s.cancelRSVP)
				r.Post("/{id}/organizers", s.addOrganizer)
				r.Post("/{id}/chat", s.addEventChat)
				r.Post("/{id}/chat/{mid}/vote", s.voteEventChat)
			})
		})

		r.Route("/organizer-chat/event/{id}", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/chat", s.chatMessages)
			r.Post("/chat", s.addChatMessage)
			r.Post("/chat/{mid}/vote", s.voteChatMessage)
			r.Get("/chat/{mid}/results", s.votingResults)
			r.Delete("/chat/{mid}", s.deleteChatMessage)
			r.Get("/collaboration-summary", s.collaborationSummary)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/my-tasks", s.myTasks)
			r.Get("/event/{id}", s.eventTasks)
			r.Post("/", s.createTask)
			r.Get("/{id}", s.getTask)
			r.Put("/{id}", s.updateTask)
			r.Delete("/{id}", s.deleteTask)
			r.Post("/{id}/assign", s.assignTask)
			r.Put("/{id}/status", s.updateTaskStatus)
			r.Post("/{id}/attachments", s.addTaskAttachment)
		})

		r.Route("/announcements", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", s.listAnnouncements)
			r.Get("/unread/count", s.unreadCount)
			r.Post("/", s.createAnnouncement)
			r.Get("/{id}", s.getAnnouncement)
			r.Put("/{id}", s.updateAnnouncement)
			r.Delete("/{id}", s.deleteAnnouncement)
			r.Post("/{id}/comments", s.addComment)
			r.Post("/{id}/reactions", s.addReaction)
			r.Post("/{id}/read", s.markRead)
		})
	})
	return r
}

// record keeps the request log and applies injected failures
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.Query(),
			RequestID: r.Header.Get("X-Request-ID"),
			Auth:      r.Header.Get("Authorization"),
		})
		f, failing := s.failureFor(r.URL.Path)
		s.mu.Unlock()

		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": r.Header.Get("X-Request-ID"),
		}).Debug("request")

		if failing {
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failureFor(path string) (failure, bool) {
	for prefix, f := range s.failures {
		if strings.HasPrefix(path, prefix) {
			return f, true
		}
	}
	return failure{}, false
}

// Fail makes every request under pathPrefix answer status with message.
// A zero status removes the failure.
func (s *Server) Fail(pathPrefix string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, pathPrefix)
		return
	}
	s.failures[pathPrefix] = failure{status: status, message: message}
}

// Requests returns the request log
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request whose path has prefix
func (s *Server) LastRequest(method, pathPrefix string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		r := s.requests[i]
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			return r, true
		}
	}
	return Request{}, false
}

// CountRequests counts requests whose path has prefix
func (s *Server) CountRequests(method, pathPrefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// ref returns the embedded user document of id; callers hold mu
func (s *Server) ref(id string) models.UserRef {
	if a, ok := s.users[id]; ok {
		return models.UserRef{ID: id, Name: a.user.Name, Email: a.user.Email}
	}
	return models.UserRef{ID: id}
}

// paginate returns the page bounds for n items
func paginate(q url.Values, n, defaultLimit int) (start, end, page, pages int) {
	page = atoi(q.Get("page"), 1)
	limit := atoi(q.Get("limit"), defaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	pages = (n + limit - 1) / limit
	start = (page - 1) * limit
	if start > n {
		start = n
	}
	end = min(start+limit, n)
	return start, end, page, pages
}
