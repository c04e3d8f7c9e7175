// Package forms validates the input screens before anything is sent to the
// backend and renders per-field messages.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/tgienger/eventdesk/internal/api"
	"github.com/tgienger/eventdesk/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors maps a form field to the first failed rule's message
type FieldErrors map[string]string

// Get returns the message for field, empty when it is valid
func (e FieldErrors) Get(field string) string {
	return e[field]
}

// Validate checks a form struct. It returns nil when every field passes.
func Validate(form any) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	label := capitalize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "eqfield":
		return "Passwords do not match"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must look like %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return label + " is invalid"
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// SplitList splits comma-separated input, trimming entries and dropping empties
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type Login struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (f Login) Credentials() api.Credentials {
	return api.Credentials{Email: strings.TrimSpace(f.Email), Password: f.Password}
}

type Register struct {
	Name         string `form:"name" validate:"required,min=2"`
	Email        string `form:"email" validate:"required,email"`
	Password     string `form:"password" validate:"required,min=6"`
	Role         string `form:"role" validate:"required,oneof=organizer participant"`
	Organization string `form:"organization"`
	Phone        string `form:"phone"`
}

func (f Register) Registration() api.Registration {
	return api.Registration{
		Name:         strings.TrimSpace(f.Name),
		Email:        strings.TrimSpace(f.Email),
		Password:     f.Password,
		Role:         f.Role,
		Organization: strings.TrimSpace(f.Organization),
		Phone:        strings.TrimSpace(f.Phone),
	}
}

// Event is the create-event screen
type Event struct {
	Title           string `form:"title" validate:"required,min=3"`
	Description     string `form:"description" validate:"required,min=10"`
	Category        string `form:"category" validate:"required"`
	Date            string `form:"date" validate:"required,datetime=2006-01-02"`
	Time            string `form:"time" validate:"required,datetime=15:04"`
	VenueName       string `form:"venueName" validate:"required"`
	VenueAddress    string `form:"venueAddress" validate:"required"`
	MaxParticipants int    `form:"maxParticipants" validate:"min=1"`
	Requirements    string `form:"requirements"`
	Tags            string `form:"tags"`
	IsPublic        bool   `form:"isPublic"`
}

// NewEvent returns the create-event defaults
func NewEvent() Event {
	return Event{MaxParticipants: 100, IsPublic: true}
}

// EventFrom seeds the edit-event screen from an existing event
func EventFrom(e models.Event) Event {
	f := Event{
		Title:           e.Title,
		Description:     e.Description,
		Category:        e.Category,
		Time:            e.Time,
		VenueName:       e.Venue.Name,
		VenueAddress:    e.Venue.Address,
		MaxParticipants: e.MaxParticipants,
		Requirements:    strings.Join(e.Requirements, ", "),
		Tags:            strings.Join(e.Tags, ", "),
		IsPublic:        e.IsPublic,
	}
	if !e.Date.IsZero() {
		f.Date = e.Date.Local().Format("2006-01-02")
	}
	return f
}

func (f Event) Input() api.EventInput {
	return api.EventInput{
		Title:           strings.TrimSpace(f.Title),
		Description:     strings.TrimSpace(f.Description),
		Category:        f.Category,
		Date:            f.Date,
		Time:            f.Time,
		Venue:           models.Venue{Name: strings.TrimSpace(f.VenueName), Address: strings.TrimSpace(f.VenueAddress)},
		MaxParticipants: f.MaxParticipants,
		Requirements:    SplitList(f.Requirements),
		Tags:            SplitList(f.Tags),
		IsPublic:        f.IsPublic,
	}
}

type Profile struct {
	Name         string `form:"name" validate:"required,min=2"`
	Email        string `form:"email" validate:"required,email"`
	Organization string `form:"organization"`
	Phone        string `form:"phone"`
}

// ProfileFrom seeds the profile screen from the current user
func ProfileFrom(u *models.User) Profile {
	if u == nil {
		return Profile{}
	}
	return Profile{Name: u.Name, Email: u.Email, Organization: u.Organization, Phone: u.Phone}
}

func (f Profile) Update() api.ProfileUpdate {
	return api.ProfileUpdate{
		Name:         strings.TrimSpace(f.Name),
		Email:        strings.TrimSpace(f.Email),
		Organization: strings.TrimSpace(f.Organization),
		Phone:        strings.TrimSpace(f.Phone),
	}
}

type Password struct {
	CurrentPassword string `form:"currentPassword" validate:"required"`
	NewPassword     string `form:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type Task struct {
	EventID     string `form:"event" validate:"required"`
	Title       string `form:"title" validate:"required,min=3"`
	Description string `form:"description" validate:"required"`
	Priority    string `form:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Category    string `form:"category"`
	DueDate     string `form:"dueDate" validate:"omitempty,datetime=2006-01-02"`
}

func (f Task) Input() api.TaskInput {
	return api.TaskInput{
		EventID:     f.EventID,
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Priority:    f.Priority,
		Category:    f.Category,
		DueDate:     f.DueDate,
	}
}

type Announcement struct {
	Title    string `form:"title" validate:"required"`
	Content  string `form:"content" validate:"required"`
	EventID  string `form:"event"`
	Type     string `form:"type" validate:"omitempty,oneof=general event_update reminder cancellation important"`
	Priority string `form:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

func (f Announcement) Input() api.AnnouncementInput {
	in := api.AnnouncementInput{
		Title:    strings.TrimSpace(f.Title),
		Content:  strings.TrimSpace(f.Content),
		EventID:  f.EventID,
		Type:     f.Type,
		Priority: f.Priority,
	}
	if f.EventID != "" {
		in.TargetAudience = string(models.AudienceSpecificEvent)
	}
	return in
}
