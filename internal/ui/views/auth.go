package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/eventdesk/internal/forms"
	"github.com/tgienger/eventdesk/internal/models"
	"github.com/tgienger/eventdesk/internal/ui/keys"
	"github.com/tgienger/eventdesk/internal/ui/styles"
)

// AuthView is the login screen; ctrl+t switches to registration
type AuthView struct {
	deps   *Deps
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	registering bool
	login       *fieldSet
	register    *fieldSet
	next        Navigate // where to go once signed in
	busy        bool
	err         string
}

func NewAuthView(deps *Deps, registering bool, next Navigate) *AuthView {
	role := newField("role", "Role (organizer or participant)", "participant", 20)
	role.input.SetValue(string(models.RoleParticipant))

	return &AuthView{
		deps:        deps,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		registering: registering,
		next:        next,
		login: newFieldSet(
			newField("email", "Email", "you@example.com", 100),
			newSecretField("password", "Password"),
		),
		register: newFieldSet(
			newField("name", "Name", "Full name", 100),
			newField("email", "Email", "you@example.com", 100),
			newSecretField("password", "Password"),
			role,
			newField("organization", "Organization", "optional", 100),
			newField("phone", "Phone", "optional", 30),
		),
	}
}

type authDoneMsg struct {
	err error
}

func (v *AuthView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *AuthView) form() *fieldSet {
	if v.registering {
		return v.register
	}
	return v.login
}

func (v *AuthView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case authDoneMsg:
		v.busy = false
		if msg.err != nil {
			action, fallback := "login", "Login failed"
			if v.registering {
				action, fallback = "register", "Registration failed"
			}
			v.err = v.deps.failure(msg.err, action, fallback)
			return v, nil
		}
		v.err = ""
		return v, navigate(v.next.Route, v.next.EventID)

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}
		fs := v.form()
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, navigate(RouteHome, "")
		case msg.String() == "ctrl+t":
			v.registering = !v.registering
			v.err = ""
			v.form().updateFocus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Save):
			return v, v.submit()
		case msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp:
			fs.cycle(-1)
			return v, nil
		case key.Matches(msg, v.keys.Tab), msg.Type == tea.KeyDown:
			fs.cycle(1)
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if fs.onSubmit() {
				return v, v.submit()
			}
			fs.cycle(1)
			return v, nil
		}
		return v, fs.update(msg)
	}
	return v, nil
}

func (v *AuthView) submit() tea.Cmd {
	if v.registering {
		form := forms.Register{
			Name:         v.register.value("name"),
			Email:        v.register.value("email"),
			Password:     v.register.value("password"),
			Role:         v.register.value("role"),
			Organization: v.register.value("organization"),
			Phone:        v.register.value("phone"),
		}
		if v.register.errs = forms.Validate(form); v.register.errs != nil {
			return nil
		}
		v.busy = true
		return func() tea.Msg {
			_, err := v.deps.Session.Register(context.Background(), form.Registration())
			return authDoneMsg{err: err}
		}
	}

	form := forms.Login{Email: v.login.value("email"), Password: v.login.value("password")}
	if v.login.errs = forms.Validate(form); v.login.errs != nil {
		return nil
	}
	v.busy = true
	return func() tea.Msg {
		_, err := v.deps.Session.Login(context.Background(), form.Credentials())
		return authDoneMsg{err: err}
	}
}

func (v *AuthView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	title, button, other := "Sign In", "Sign In", "create an account"
	if v.registering {
		title, button, other = "Create Account", "Register", "sign in instead"
	}

	status := ""
	if v.busy {
		status = s.TitleMuted.Render("Working...")
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		"",
		banner(s, v.err)+v.form().render(s, inputWidth, button),
		status,
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: submit • Ctrl+T: "+other+" • Esc: back"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
