package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/eventdesk/internal/forms"
	"github.com/tgienger/eventdesk/internal/ui/keys"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// ProfileView edits the signed-in user's profile; ctrl+t switches to the
// password form
type ProfileView struct {
	deps   *Deps
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	changingPassword bool
	profile          *fieldSet
	password         *fieldSet

	busy bool
	err  string
	info string
}

func NewProfileView(deps *Deps) *ProfileView {
	v := &ProfileView{
		deps:   deps,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		profile: newFieldSet(
			newField("name", "Name", "Full name", 100),
			newField("email", "Email", "you@example.com", 100),
			newField("organization", "Organization", "optional", 100),
			newField("phone", "Phone", "optional", 30),
		),
		password: newFieldSet(
			newSecretField("currentPassword", "Current password"),
			newSecretField("newPassword", "New password"),
			newSecretField("confirmPassword", "Confirm new password"),
		),
	}
	v.seed()
	return v
}

// seed copies the current user into the profile inputs
func (v *ProfileView) seed() {
	p := forms.ProfileFrom(v.deps.Session.CurrentUser())
	v.profile.set("name", p.Name)
	v.profile.set("email", p.Email)
	v.profile.set("organization", p.Organization)
	v.profile.set("phone", p.Phone)
}

type profileSavedMsg struct {
	err error
}

type passwordChangedMsg struct {
	message string
	err     error
}

func (v *ProfileView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *ProfileView) form() *fieldSet {
	if v.changingPassword {
		return v.password
	}
	return v.profile
}

func (v *ProfileView) submit() tea.Cmd {
	v.err = ""
	v.info = ""

	if v.changingPassword {
		form := forms.Password{
			CurrentPassword: v.password.value("currentPassword"),
			NewPassword:     v.password.value("newPassword"),
			ConfirmPassword: v.password.value("confirmPassword"),
		}
		if v.password.errs = forms.Validate(form); v.password.errs != nil {
			return nil
		}
		v.busy = true
		return func() tea.Msg {
			msg, err := v.deps.Session.ChangePassword(context.Background(), form.CurrentPassword, form.NewPassword)
			return passwordChangedMsg{message: msg, err: err}
		}
	}

	form := forms.Profile{
		Name:         v.profile.value("name"),
		Email:        v.profile.value("email"),
		Organization: v.profile.value("organization"),
		Phone:        v.profile.value("phone"),
	}
	if v.profile.errs = forms.Validate(form); v.profile.errs != nil {
		return nil
	}
	v.busy = true
	return func() tea.Msg {
		_, err := v.deps.Session.UpdateProfile(context.Background(), form.Update())
		return profileSavedMsg{err: err}
	}
}

func (v *ProfileView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case profileSavedMsg:
		v.busy = false
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "update profile", "Failed to update profile")
			return v, nil
		}
		v.info = "Profile updated"
		v.seed()
		return v, nil

	case passwordChangedMsg:
		v.busy = false
		if msg.err != nil {
			v.err = v.deps.failure(msg.err, "change password", "Failed to change password")
			return v, nil
		}
		v.info = msg.message
		if v.info == "" {
			v.info = "Password changed"
		}
		v.password.reset()
		return v, nil

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, navigate(RouteDashboard, "")
		case msg.String() == "ctrl+t":
			v.changingPassword = !v.changingPassword
			v.err = ""
			v.info = ""
			return v, textinput.Blink
		case msg.String() == "ctrl+l":
			return v, logout(v.deps)
		case key.Matches(msg, v.keys.Save):
			return v, v.submit()
		case msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp:
			v.form().cycle(-1)
			return v, nil
		case key.Matches(msg, v.keys.Tab), msg.Type == tea.KeyDown:
			v.form().cycle(1)
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if v.form().onSubmit() {
				return v, v.submit()
			}
			v.form().cycle(1)
			return v, nil
		}
		return v, v.form().update(msg)
	}
	return v, nil
}

func (v *ProfileView) View() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-6, 20, 50)

	title := "Profile"
	button := "Save"
	toggle := "ctrl+t: change password"
	if v.changingPassword {
		title = "Change Password"
		button = "Change"
		toggle = "ctrl+t: edit profile"
	}

	account := ""
	if u := v.deps.Session.CurrentUser(); u != nil {
		account = s.TitleMuted.Render(u.Email+" • ") + styles.Badge(string(u.Role))
	}

	status := ""
	if v.busy {
		status = s.TitleMuted.Render("Saving...")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		account,
		"",
		banner(s, v.err)+notice(s, v.info)+v.form().render(s, inputWidth, button),
		status,
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • "+toggle+" • ctrl+l: logout • Esc: back"),
	)
	return styles.CenterView(lipgloss.NewStyle().Padding(1, 2).Render(body), v.width, v.height)
}
