package forms

import (
	"reflect"
	"testing"
	"time"

	"github.com/tgienger/eventdesk/internal/models"
)

func TestEventValidation(t *testing.T) {
	f := NewEvent()
	f.Title = "ab"
	f.Description = "short"
	f.Date = "2026-13-40"
	f.Time = "18:30"
	f.VenueName = "Main Hall"
	f.MaxParticipants = 0

	errs := Validate(f)
	want := map[string]string{
		"title":           "Title must be at least 3 characters long",
		"description":     "Description must be at least 10 characters long",
		"category":        "Category is required",
		"venueAddress":    "VenueAddress is required",
		"maxParticipants": "MaxParticipants must be at least 1",
	}
	for field, msg := range want {
		if got := errs.Get(field); got != msg {
			t.Errorf("%s: got %q, want %q", field, got, msg)
		}
	}
	if errs.Get("date") == "" {
		t.Error("invalid date accepted")
	}
	if errs.Get("time") != "" || errs.Get("venueName") != "" {
		t.Errorf("valid fields flagged: %v", errs)
	}
}

func TestEventInput(t *testing.T) {
	f := NewEvent()
	if f.MaxParticipants != 100 || !f.IsPublic {
		t.Fatalf("defaults = %+v", f)
	}
	f.Title = "Spring Fair"
	f.Description = "A fair for the whole campus"
	f.Category = "Cultural"
	f.Date = "2026-04-01"
	f.Time = "10:00"
	f.VenueName = "Quad"
	f.VenueAddress = "1 College Rd"
	f.Requirements = " ID card, , water "
	f.Tags = ""

	if errs := Validate(f); errs != nil {
		t.Fatalf("Validate: %v", errs)
	}
	in := f.Input()
	if !reflect.DeepEqual(in.Requirements, []string{"ID card", "water"}) {
		t.Errorf("requirements = %q", in.Requirements)
	}
	if in.Tags == nil || len(in.Tags) != 0 {
		t.Errorf("tags = %#v, want empty", in.Tags)
	}
	if in.Venue.Name != "Quad" || !in.IsPublic {
		t.Errorf("input = %+v", in)
	}
}

func TestEventFromRoundTrips(t *testing.T) {
	e := models.Event{
		Title:           "Spring Fair",
		Description:     "A fair for the whole campus",
		Category:        "Cultural",
		Date:            time.Date(2026, 4, 1, 10, 0, 0, 0, time.Local),
		Time:            "10:00",
		Venue:           models.Venue{Name: "Quad", Address: "1 College Rd"},
		MaxParticipants: 40,
		Requirements:    []string{"ID card", "water"},
		IsPublic:        false,
	}
	f := EventFrom(e)
	if f.Date != "2026-04-01" || f.Requirements != "ID card, water" || f.Tags != "" {
		t.Fatalf("form = %+v", f)
	}
	if errs := Validate(f); errs != nil {
		t.Fatalf("Validate: %v", errs)
	}
	in := f.Input()
	if !reflect.DeepEqual(in.Requirements, e.Requirements) || in.MaxParticipants != 40 || in.IsPublic {
		t.Errorf("input = %+v", in)
	}
}

func TestPasswordValidation(t *testing.T) {
	errs := Validate(Password{CurrentPassword: "old", NewPassword: "12345", ConfirmPassword: "54321"})
	if got := errs.Get("newPassword"); got != "NewPassword must be at least 6 characters long" {
		t.Errorf("newPassword = %q", got)
	}
	if got := errs.Get("confirmPassword"); got != "Passwords do not match" {
		t.Errorf("confirmPassword = %q", got)
	}
	if errs := Validate(Password{CurrentPassword: "old", NewPassword: "123456", ConfirmPassword: "123456"}); errs != nil {
		t.Errorf("valid change rejected: %v", errs)
	}
}

func TestProfileAndLogin(t *testing.T) {
	errs := Validate(Profile{Name: "A", Email: "not-an-email"})
	if errs.Get("name") != "Name must be at least 2 characters long" {
		t.Errorf("name = %q", errs.Get("name"))
	}
	if errs.Get("email") != "Please enter a valid email address" {
		t.Errorf("email = %q", errs.Get("email"))
	}

	if errs := Validate(Login{}); errs.Get("email") != "Email is required" || errs.Get("password") != "Password is required" {
		t.Errorf("login = %v", errs)
	}

	errs = Validate(Register{Name: "Ada", Email: "ada@example.com", Password: "secret1", Role: "admin"})
	if errs.Get("role") != "Role must be one of: organizer, participant" {
		t.Errorf("role = %q", errs.Get("role"))
	}
}

func TestSplitList(t *testing.T) {
	cases := map[string][]string{
		"":             {},
		"a":            {"a"},
		" a , b ,, c ": {"a", "b", "c"},
		",,":           {},
	}
	for in, want := range cases {
		if got := SplitList(in); !reflect.DeepEqual(got, want) {
			t.Errorf("SplitList(%q) = %q, want %q", in, got, want)
		}
	}
}
