package chat

import (
	"slices"
	"strings"
)

// DefaultOptions seed every new poll
var DefaultOptions = []string{"Yes", "No"}

// Draft is the composer state. A failed send leaves it untouched so the user
// can retry.
type Draft struct {
	Text    string
	IsVote  bool
	Options []string
}

// NewDraft returns an empty composer with the default poll options
func NewDraft() *Draft {
	d := &Draft{}
	d.Reset()
	return d
}

// Reset clears the composer back to a plain message with default options
func (d *Draft) Reset() {
	d.Text = ""
	d.IsVote = false
	d.Options = slices.Clone(DefaultOptions)
}

// AddOption appends a trimmed, non-empty option that is not already present
func (d *Draft) AddOption(option string) bool {
	option = strings.TrimSpace(option)
	if option == "" || slices.Contains(d.Options, option) {
		return false
	}
	d.Options = append(d.Options, option)
	return true
}

// RemoveOption drops every occurrence of option
func (d *Draft) RemoveOption(option string) {
	d.Options = slices.DeleteFunc(d.Options, func(o string) bool { return o == option })
}

// options returns what is submitted: the option list for polls, nothing otherwise.
// An empty poll is submitted as is and left to the backend to reject.
func (d *Draft) options() []string {
	if !d.IsVote {
		return nil
	}
	if d.Options == nil {
		return []string{}
	}
	return slices.Clone(d.Options)
}
