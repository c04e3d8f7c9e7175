package views

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/eventdesk/internal/forms"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// field is one labelled input. name matches the form tag so validation
// messages land under the right input.
type field struct {
	name  string
	label string
	input textinput.Model
}

func newField(name, label, placeholder string, limit int) field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Current.Cursor)
	return field{name: name, label: label, input: in}
}

func newSecretField(name, label string) field {
	f := newField(name, label, "", 100)
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

// fieldSet is a vertical form with a submit button after the last input
type fieldSet struct {
	fields []field
	focus  int // len(fields) = submit button
	errs   forms.FieldErrors
}

func newFieldSet(fields ...field) *fieldSet {
	fs := &fieldSet{fields: fields}
	fs.updateFocus()
	return fs
}

func (fs *fieldSet) value(name string) string {
	for _, f := range fs.fields {
		if f.name == name {
			return f.input.Value()
		}
	}
	return ""
}

func (fs *fieldSet) set(name, value string) {
	for i := range fs.fields {
		if fs.fields[i].name == name {
			fs.fields[i].input.SetValue(value)
			return
		}
	}
}

func (fs *fieldSet) reset() {
	for i := range fs.fields {
		fs.fields[i].input.Reset()
	}
	fs.errs = nil
	fs.focus = 0
	fs.updateFocus()
}

func (fs *fieldSet) cycle(dir int) {
	n := len(fs.fields) + 1
	fs.focus = (fs.focus + dir + n) % n
	fs.updateFocus()
}

func (fs *fieldSet) onSubmit() bool {
	return fs.focus == len(fs.fields)
}

func (fs *fieldSet) updateFocus() {
	for i := range fs.fields {
		fs.fields[i].input.Blur()
	}
	if fs.focus < len(fs.fields) {
		fs.fields[fs.focus].input.Focus()
	}
}

// update feeds msg to the focused input
func (fs *fieldSet) update(msg tea.Msg) tea.Cmd {
	if fs.focus >= len(fs.fields) {
		return nil
	}
	var cmd tea.Cmd
	fs.fields[fs.focus].input, cmd = fs.fields[fs.focus].input.Update(msg)
	return cmd
}

func (fs *fieldSet) render(s *styles.Styles, width int, button string) string {
	var rows []string
	for i, f := range fs.fields {
		style := s.Input
		if i == fs.focus {
			style = s.InputFocused
		}
		rows = append(rows, f.label+":", style.Width(width).Render(f.input.View()))
		if msg := fs.errs.Get(f.name); msg != "" {
			rows = append(rows, s.FieldError.Render(msg))
		}
	}

	btnStyle := s.Button
	if fs.onSubmit() {
		btnStyle = s.ButtonFocused
	}
	rows = append(rows, "", btnStyle.Render(" "+button+" "))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
