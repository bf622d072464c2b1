package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasker/internal/service"
	"tasker/internal/state"
)

// Auth form inputs.
const (
	authUsername = iota
	authEmail
	authPassword
)

// Draft form fields, in focus order. Status has no text input.
const (
	fieldTitle = iota
	fieldDescription
	fieldStatus
	fieldDue
	fieldCount
)

// opDoneMsg reports the end of an intent run off the UI goroutine.
type opDoneMsg struct {
	op  string
	err error
}

type model struct {
	ctx  context.Context
	app  *state.App
	snap state.Snapshot

	registering bool
	auth        [3]textinput.Model
	authFocus   int

	form      [3]textinput.Model // title, description, due
	formFocus int

	cursor       int
	confirming   bool
	confirmID    service.ID
	confirmTitle string

	spinner spinner.Model
	busy    string
	notice  string

	width int
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newModel(ctx context.Context, app *state.App) model {
	m := model{
		ctx:     ctx,
		app:     app,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.auth[authUsername] = newInput("username", 80)
	m.auth[authEmail] = newInput("you@example.com", 120)
	m.auth[authPassword] = newInput("password", 120)
	m.auth[authPassword].EchoMode = textinput.EchoPassword
	m.auth[authPassword].EchoCharacter = '•'
	m.auth[authUsername].Focus()

	m.form[0] = newInput("Title", 200)
	m.form[1] = newInput("Description", 1000)
	// Wide enough for an unparseable due date kept verbatim in the draft.
	m.form[2] = newInput(service.DateLayout, 64)
	m.sync()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start())
}

// start runs the initial fetch for a restored session.
func (m model) start() tea.Cmd {
	ctx, app := m.ctx, m.app
	return func() tea.Msg {
		return opDoneMsg{op: "start", err: app.Start(ctx)}
	}
}

// run dispatches fn off the UI goroutine. Keys other than ctrl+c are
// ignored until it reports back.
func (m model) run(op string, fn func(ctx context.Context) error) (model, tea.Cmd) {
	m.busy = op
	ctx := m.ctx
	return m, func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m *model) sync() {
	m.snap = m.app.Snapshot()
	if m.cursor >= len(m.snap.Tasks) {
		m.cursor = len(m.snap.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		return m.finish(msg), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy != "" {
			return m, nil
		}
		m.notice = ""
		switch {
		case m.snap.State != state.Authenticated:
			return m.updateAuth(msg)
		case m.snap.Mode != state.Closed:
			return m.updateForm(msg)
		case m.confirming:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m model) finish(msg opDoneMsg) model {
	m.busy = ""
	wasAuthed := m.snap.State == state.Authenticated
	m.sync()

	switch {
	case !wasAuthed && m.snap.State == state.Authenticated:
		m.resetAuth()
	case wasAuthed && m.snap.State != state.Authenticated:
		// Logged out, by request or because the server rejected the session.
		m.confirming = false
		m.cursor = 0
		m.resetAuth()
	}
	if m.snap.Mode == state.Closed {
		m.blurForm()
	}
	return m
}

// Auth screen

func (m model) authFields() []int {
	if m.registering {
		return []int{authUsername, authEmail, authPassword}
	}
	return []int{authUsername, authPassword}
}

func (m *model) focusAuth(pos int) {
	fields := m.authFields()
	pos = (pos + len(fields)) % len(fields)
	for i := range m.auth {
		m.auth[i].Blur()
	}
	m.authFocus = pos
	m.auth[fields[pos]].Focus()
}

func (m *model) resetAuth() {
	for i := range m.auth {
		m.auth[i].Reset()
	}
	m.registering = false
	m.focusAuth(0)
}

func (m model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "ctrl+r":
		m.registering = !m.registering
		m.app.ClearErr()
		m.sync()
		m.focusAuth(0)
		return m, nil
	case "tab", "down":
		m.focusAuth(m.authFocus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusAuth(m.authFocus - 1)
		return m, nil
	case "enter":
		if m.authFocus < len(m.authFields())-1 {
			m.focusAuth(m.authFocus + 1)
			return m, nil
		}
		return m.submitAuth()
	}

	field := m.authFields()[m.authFocus]
	var cmd tea.Cmd
	m.auth[field], cmd = m.auth[field].Update(msg)
	return m, cmd
}

func (m model) submitAuth() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.auth[authUsername].Value())
	email := strings.TrimSpace(m.auth[authEmail].Value())
	password := m.auth[authPassword].Value()

	if username == "" || password == "" || (m.registering && email == "") {
		m.notice = "please fill in every field"
		return m, nil
	}

	app := m.app
	if m.registering {
		profile := service.Profile{Username: username, Email: email, Password: password}
		return m.run("register", func(ctx context.Context) error {
			return app.Register(ctx, profile)
		})
	}
	creds := service.Credentials{Username: username, Password: password}
	return m.run("login", func(ctx context.Context) error {
		return app.Login(ctx, creds)
	})
}

// Task list

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := m.app
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		app.ClearErr()
		m.sync()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Tasks)-1 {
			m.cursor++
		}
	case "n":
		if err := app.StartCreate(); err == nil {
			m.openForm()
		}
		m.sync()
	case "e", "enter":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := app.StartEdit(task); err == nil {
			m.openForm()
		}
		m.sync()
	case "d":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirming = true
		m.confirmID = task.ID
		m.confirmTitle = task.Title
	case "r":
		return m.run("refresh", app.Refresh)
	case "L":
		return m.run("logout", func(context.Context) error {
			return app.Logout()
		})
	}
	return m, nil
}

func (m model) selected() (service.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Tasks) {
		return service.Task{}, false
	}
	return m.snap.Tasks[m.cursor], true
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirming = false
		app, id := m.app, m.confirmID
		return m.run("delete", func(ctx context.Context) error {
			return app.Remove(ctx, id)
		})
	case "n", "N", "esc":
		m.confirming = false
	}
	return m, nil
}

// Draft form

// openForm seeds the inputs from the open draft.
func (m *model) openForm() {
	draft, ok := m.app.Editor.Draft()
	if !ok {
		return
	}
	m.form[0].SetValue(draft.Title)
	m.form[1].SetValue(draft.Description)
	m.form[2].SetValue(draft.DueDate)
	m.focusForm(fieldTitle)
}

func (m *model) blurForm() {
	for i := range m.form {
		m.form[i].Blur()
		m.form[i].Reset()
	}
	m.formFocus = fieldTitle
}

func (m *model) focusForm(field int) {
	field = (field + fieldCount) % fieldCount
	for i := range m.form {
		m.form[i].Blur()
	}
	m.formFocus = field
	if i, ok := inputFor(field); ok {
		m.form[i].Focus()
	}
}

func inputFor(field int) (int, bool) {
	switch field {
	case fieldTitle:
		return 0, true
	case fieldDescription:
		return 1, true
	case fieldDue:
		return 2, true
	}
	return 0, false
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.app.Cancel()
		m.blurForm()
		m.sync()
		return m, nil
	case "tab", "down":
		m.focusForm(m.formFocus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusForm(m.formFocus - 1)
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if m.formFocus == fieldDue {
			return m.submitForm()
		}
		m.focusForm(m.formFocus + 1)
		return m, nil
	}

	if m.formFocus == fieldStatus {
		var step func(service.Status) service.Status
		switch msg.String() {
		case "left", "h":
			step = service.Status.Prev
		case "right", "l", " ":
			step = service.Status.Next
		default:
			return m, nil
		}
		_ = m.app.EditDraft(func(d *state.Draft) { d.Status = step(d.Status) })
		m.sync()
		return m, nil
	}

	i, _ := inputFor(m.formFocus)
	var cmd tea.Cmd
	m.form[i], cmd = m.form[i].Update(msg)
	value := m.form[i].Value()
	field := m.formFocus
	_ = m.app.EditDraft(func(d *state.Draft) {
		switch field {
		case fieldTitle:
			d.Title = value
		case fieldDescription:
			d.Description = value
		case fieldDue:
			d.DueDate = value
		}
	})
	m.sync()
	return m, cmd
}

func (m model) submitForm() (tea.Model, tea.Cmd) {
	if due := strings.TrimSpace(m.snap.Draft.DueDate); due != "" {
		if _, err := time.Parse(service.DateLayout, due); err != nil {
			m.notice = fmt.Sprintf("invalid due date: %s (want YYYY-MM-DD)", due)
			return m, nil
		}
	}
	return m.run("save", m.app.Submit)
}

// errLine describes the last failure for the status line.
func errLine(err error) string {
	var stale *state.StaleError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &stale):
		return fmt.Sprintf("%s done, but the list could not be refreshed (r to retry)", stale.Op)
	case errors.Is(err, state.ErrSessionExpired):
		return "Your session has expired. Please log in again."
	}
	return err.Error()
}
