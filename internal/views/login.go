package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/router"
)

// LoginMethod selects how the user authenticates.
type LoginMethod int

const (
	MethodPassword LoginMethod = iota
	MethodOTP
	MethodGoogle
	MethodRegister
)

var loginMethods = []string{"Password", "One-time code", "Google", "Register"}

func (m LoginMethod) String() string {
	if int(m) < len(loginMethods) {
		return loginMethods[m]
	}
	return "unknown"
}

type field struct {
	label    string
	secret   bool
	required bool
}

func (m LoginMethod) fields() []field {
	switch m {
	case MethodOTP:
		return []field{{label: "Email or phone", required: true}, {label: "Code"}}
	case MethodGoogle:
		return []field{{label: "Google ID token", secret: true, required: true}}
	case MethodRegister:
		return []field{{label: "Name", required: true}, {label: "Email", required: true}, {label: "Password", secret: true, required: true}}
	default:
		return []field{{label: "Email", required: true}, {label: "Password", secret: true, required: true}}
	}
}

// Login is the only page reachable without a session. A successful
// sign-in hands the token to the session guard, which moves the router on.
type Login struct {
	Base

	method  LoginMethod
	fields  []field
	inputs  []textinput.Model
	focus   int
	otpSent bool

	status     string
	statusErr  bool
	submitting bool
}

func NewLogin(d Deps) router.View {
	v := &Login{Base: Base{Deps: d}}
	v.setMethod(MethodPassword)
	return v
}

func (v *Login) CapturesInput() bool { return true }

func (v *Login) Bindings() []key.Binding {
	return []key.Binding{keyNextField, keyEnter, keyNextMode, keyPrevMode}
}

// Method returns the selected sign-in method.
func (v *Login) Method() LoginMethod { return v.method }

// Status returns the last status line and whether it is an error.
func (v *Login) Status() (string, bool) { return v.status, v.statusErr }

func (v *Login) setMethod(m LoginMethod) {
	keep := ""
	if len(v.inputs) > 0 {
		keep = v.inputs[0].Value()
	}
	v.method = m
	v.fields = m.fields()
	v.inputs = make([]textinput.Model, len(v.fields))
	for i, f := range v.fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = strings.ToLower(f.label)
		ti.CharLimit = 256
		ti.Width = 40
		if f.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		v.inputs[i] = ti
	}
	// Carry the identifier over when it means the same thing.
	if keep != "" && m != MethodGoogle && m != MethodRegister {
		v.inputs[0].SetValue(keep)
	}
	v.otpSent = false
	v.focus = 0
	v.inputs[0].Focus()
}

// SetField fills field i of the current method.
func (v *Login) SetField(i int, value string) {
	if i >= 0 && i < len(v.inputs) {
		v.inputs[i].SetValue(value)
	}
}

func (v *Login) moveFocus(delta int) tea.Cmd {
	v.inputs[v.focus].Blur()
	v.focus = (v.focus + delta + len(v.inputs)) % len(v.inputs)
	return v.inputs[v.focus].Focus()
}

func (v *Login) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, keyNextMode):
		v.setMethod(LoginMethod((int(v.method) + 1) % len(loginMethods)))
		v.status = ""
		return true, nil
	case key.Matches(msg, keyPrevMode):
		v.setMethod(LoginMethod((int(v.method) + len(loginMethods) - 1) % len(loginMethods)))
		v.status = ""
		return true, nil
	case key.Matches(msg, keyNextField):
		return true, v.moveFocus(1)
	case key.Matches(msg, keyPrevField):
		return true, v.moveFocus(-1)
	case key.Matches(msg, keyEnter):
		if v.focus < len(v.inputs)-1 && !(v.method == MethodOTP && !v.otpSent) {
			return true, v.moveFocus(1)
		}
		v.Submit()
		return true, nil
	}
	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	return true, cmd
}

func (v *Login) values() []string {
	out := make([]string, len(v.inputs))
	for i, in := range v.inputs {
		out[i] = strings.TrimSpace(in.Value())
	}
	return out
}

// Submit sends the form. Required fields must be filled first.
func (v *Login) Submit() {
	if v.submitting {
		return
	}
	vals := v.values()
	for i, f := range v.fields {
		if f.required && vals[i] == "" {
			v.status, v.statusErr = f.label+" is required", true
			return
		}
	}
	if v.method == MethodOTP && v.otpSent && vals[1] == "" {
		v.status, v.statusErr = "Enter the code you received", true
		return
	}

	method, otpSent := v.method, v.otpSent
	client, guard := v.Client, v.Guard
	v.submitting = true
	v.status, v.statusErr = "signing in…", false

	v.Go(func(ctx context.Context) func() {
		var res api.AuthResult
		var err error
		switch method {
		case MethodPassword:
			res, err = client.Login(ctx, vals[0], vals[1])
		case MethodRegister:
			res, err = client.Register(ctx, vals[0], vals[1], vals[2])
		case MethodGoogle:
			res, err = client.GoogleLogin(ctx, vals[0])
		case MethodOTP:
			if otpSent {
				res, err = client.VerifyOTP(ctx, vals[0], vals[1])
			} else {
				res, err = client.SendOTP(ctx, vals[0])
			}
		}
		return func() {
			v.submitting = false
			v.finish(method, otpSent, vals, res, err)
			if token := res.Token(); err == nil && token != "" {
				if serr := guard.SetSession(token); serr != nil {
					v.status, v.statusErr = serr.Error(), true
				}
			}
		}
	})
}

// finish updates the form after a reply that did not carry a token.
func (v *Login) finish(method LoginMethod, otpSent bool, vals []string, res api.AuthResult, err error) {
	if err != nil {
		v.status, v.statusErr = api.Message(err), true
		return
	}
	if res.Token() != "" {
		v.status, v.statusErr = "signed in", false
		return
	}
	switch {
	case method == MethodOTP && !otpSent && (res.Success || res.MockOTP != ""):
		v.otpSent = true
		v.status, v.statusErr = "Code sent to "+vals[0], false
		if res.MockOTP != "" {
			v.status += " (dev code " + res.MockOTP + ")"
		}
		v.inputs[v.focus].Blur()
		v.focus = 1
		v.inputs[1].Focus()
	case method == MethodRegister && (res.Success || res.Detail == ""):
		v.setMethod(MethodPassword)
		v.inputs[0].SetValue(vals[1])
		v.moveFocus(1)
		v.status, v.statusErr = "Account created, sign in with your password", false
	default:
		reason := res.Detail
		if reason == "" {
			reason = res.Message
		}
		if reason == "" {
			reason = "sign-in failed"
		}
		v.status, v.statusErr = reason, true
	}
}

func (v *Login) Render(width, height int) string {
	tabs := make([]string, len(loginMethods))
	for i, name := range loginMethods {
		if LoginMethod(i) == v.method {
			tabs[i] = SelectedStyle.Render(" " + name + " ")
		} else {
			tabs[i] = MutedStyle.Render(" " + name + " ")
		}
	}

	lines := []string{
		TitleStyle.Render("AutoSense") + MutedStyle.Render("  sign in to continue"),
		"",
		strings.Join(tabs, " "),
		"",
	}
	for i, f := range v.fields {
		label := LabelStyle.Render(padRight(f.label, 16))
		if i == v.focus {
			label = TitleStyle.Render(padRight(f.label, 16))
		}
		if v.method == MethodOTP && i == 1 && !v.otpSent {
			lines = append(lines, label+MutedStyle.Render("(sent after you press enter)"))
			continue
		}
		lines = append(lines, label+v.inputs[i].View())
	}
	lines = append(lines, "")
	if v.status != "" {
		if v.statusErr {
			lines = append(lines, ErrorStyle.Render("✗ "+v.status))
		} else {
			lines = append(lines, OKStyle.Render(v.status))
		}
	}
	lines = append(lines, MutedStyle.Render("tab next field · enter submit · ctrl+n/ctrl+p switch method · ctrl+c quit"))

	box := CardStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
