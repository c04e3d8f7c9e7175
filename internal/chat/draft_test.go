package chat

import (
	"slices"
	"testing"
	"time"
)

func TestDraftOptions(t *testing.T) {
	d := NewDraft()
	if !slices.Equal(d.Options, []string{"Yes", "No"}) {
		t.Fatalf("default options = %v", d.Options)
	}

	if !d.AddOption("  Maybe ") {
		t.Error("Maybe rejected")
	}
	if d.AddOption("Yes") || d.AddOption("   ") {
		t.Error("duplicate or blank accepted")
	}
	d.RemoveOption("No")
	if !slices.Equal(d.Options, []string{"Yes", "Maybe"}) {
		t.Errorf("options = %v", d.Options)
	}

	d.Options[0] = "mutated"
	d.Reset()
	if !slices.Equal(DefaultOptions, []string{"Yes", "No"}) {
		t.Error("Reset shares the default slice")
	}
}

func TestSubmittedOptions(t *testing.T) {
	d := NewDraft()
	if d.options() != nil {
		t.Error("plain message carries options")
	}
	d.IsVote = true
	d.RemoveOption("Yes")
	d.RemoveOption("No")
	if got := d.options(); got == nil || len(got) != 0 {
		t.Errorf("empty poll options = %#v, want empty non-nil", got)
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5m ago"},
		{59 * time.Minute, "59m ago"},
		{3 * time.Hour, "3h ago"},
	}
	for _, c := range cases {
		if got := Age(now.Add(-c.ago), now); got != c.want {
			t.Errorf("Age(-%v) = %q, want %q", c.ago, got, c.want)
		}
	}
	old := now.Add(-72 * time.Hour)
	if got := Age(old, now); got != old.Local().Format("Jan 2, 2006") {
		t.Errorf("Age(3d) = %q", got)
	}
}
