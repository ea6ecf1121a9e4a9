package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/kiosk/internal/domain"
	"github.com/mmcdole/kiosk/internal/tui/styles"
)

var formKeys = DefaultFormKeyMap()

const (
	loginFieldLogin = iota
	loginFieldPassword
	loginFieldRemember
	loginFieldCount
)

// LoginForm collects a login, password and the remember-me choice
type LoginForm struct {
	login    textinput.Model
	password textinput.Model
	remember bool
	focus    int

	fieldErrors map[string]string
	err         string
	busy        bool
}

// NewLoginForm creates a login form with the login field focused
func NewLoginForm() LoginForm {
	login := textinput.New()
	login.Placeholder = "login"
	login.CharLimit = 64
	login.Width = 30
	login.Prompt = ""
	login.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	login.PlaceholderStyle = styles.DimStyle

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 30
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	password.PlaceholderStyle = styles.DimStyle

	f := LoginForm{login: login, password: password}
	f.login.Focus()
	return f
}

// Values returns the entered credentials
func (f LoginForm) Values() (login, password string, remember bool) {
	return strings.TrimSpace(f.login.Value()), f.password.Value(), f.remember
}

// SetBusy marks a login request as in flight
func (f *LoginForm) SetBusy(busy bool) {
	f.busy = busy
}

// SetError shows a form-level message and field messages from err
func (f *LoginForm) SetError(message string, verr *domain.ValidationError) {
	f.err = message
	f.fieldErrors = nil
	if verr != nil {
		f.fieldErrors = verr.Fields
	}
}

// Reset clears input and errors, keeping the remember choice
func (f *LoginForm) Reset() {
	f.login.SetValue("")
	f.password.SetValue("")
	f.err = ""
	f.fieldErrors = nil
	f.busy = false
	f.setFocus(loginFieldLogin)
}

func (f *LoginForm) setFocus(i int) {
	f.focus = (i + loginFieldCount) % loginFieldCount
	f.login.Blur()
	f.password.Blur()
	switch f.focus {
	case loginFieldLogin:
		f.login.Focus()
	case loginFieldPassword:
		f.password.Focus()
	}
}

// Update handles input events, returns (form, cmd, submitted)
func (f LoginForm) Update(msg tea.Msg) (LoginForm, tea.Cmd, bool) {
	if f.busy {
		return f, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, formKeys.Submit):
			return f, nil, true
		case key.Matches(keyMsg, formKeys.Next):
			f.setFocus(f.focus + 1)
			return f, nil, false
		case key.Matches(keyMsg, formKeys.Prev):
			f.setFocus(f.focus - 1)
			return f, nil, false
		case f.focus == loginFieldRemember && key.Matches(keyMsg, formKeys.Toggle):
			f.remember = !f.remember
			return f, nil, false
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case loginFieldLogin:
		f.login, cmd = f.login.Update(msg)
	case loginFieldPassword:
		f.password, cmd = f.password.Update(msg)
	}
	return f, cmd, false
}

// View renders the login form
func (f LoginForm) View() string {
	label := func(text string, focused bool) string {
		if focused {
			return styles.FocusedLabelStyle.Render(text)
		}
		return styles.FieldLabelStyle.Render(text)
	}

	box := "[ ]"
	if f.remember {
		box = "[x]"
	}
	rememberLine := label("Remember", f.focus == loginFieldRemember) + box + " keep me signed in"

	lines := []string{
		styles.ModalTitleStyle.Render("Sign in"),
		label("Login", f.focus == loginFieldLogin) + f.login.View(),
	}
	if msg := f.fieldErrors["login"]; msg != "" {
		lines = append(lines, styles.FieldErrorStyle.Render(msg))
	}
	lines = append(lines, label("Password", f.focus == loginFieldPassword)+f.password.View())
	if msg := f.fieldErrors["password"]; msg != "" {
		lines = append(lines, styles.FieldErrorStyle.Render(msg))
	}
	lines = append(lines, rememberLine, "")

	switch {
	case f.busy:
		lines = append(lines, styles.DimStyle.Render("Signing in..."))
	case f.err != "":
		lines = append(lines, styles.ErrorStyle.Render(f.err))
	default:
		lines = append(lines, styles.DimStyle.Render("enter: sign in · tab: next field"))
	}

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
