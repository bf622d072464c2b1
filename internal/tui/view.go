package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"tasker/internal/output"
	"tasker/internal/service"
	"tasker/internal/state"
)

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	if m.snap.State != state.Authenticated {
		b.WriteString(m.authView())
	} else {
		b.WriteString(m.tasksView())
	}
	return b.String()
}

func (m model) header() string {
	h := styleTitle().Render("Task Manager")
	if m.snap.State == state.Authenticated {
		h += "  " + styleMuted().Render("Welcome, "+m.snap.User.Username)
	}
	return h
}

func (m model) authView() string {
	var b strings.Builder
	heading := "Login"
	if m.registering {
		heading = "Register"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(heading))
	b.WriteString("\n\n")

	labels := map[int]string{
		authUsername: "Username",
		authEmail:    "Email",
		authPassword: "Password",
	}
	for _, f := range m.authFields() {
		fmt.Fprintf(&b, "%-9s %s\n", labels[f]+":", m.auth[f].View())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())

	toggle := "ctrl+r: create an account"
	if m.registering {
		toggle = "ctrl+r: back to login"
	}
	b.WriteString(styleMuted().Render("enter: submit   tab: next field   " + toggle + "   esc: quit"))
	return b.String()
}

func (m model) tasksView() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("My Tasks"))
	b.WriteString("\n\n")

	if m.snap.Mode != state.Closed {
		b.WriteString(m.formView())
		b.WriteString("\n")
	}

	switch {
	case m.snap.Loading || m.busy == "start" || m.busy == "refresh":
		b.WriteString(m.spinner.View() + " Loading tasks...\n")
	case len(m.snap.Tasks) == 0:
		b.WriteString(styleMuted().Render(output.EmptyMessage) + "\n")
	default:
		for i, t := range m.snap.Tasks {
			b.WriteString(m.row(i, t))
		}
	}
	b.WriteString("\n")

	if m.confirming {
		fmt.Fprintf(&b, "Are you sure you want to delete %q? (y/n)\n", m.confirmTitle)
	}
	b.WriteString(m.statusLine())

	help := "n: new   e: edit   d: delete   r: refresh   L: logout   q: quit"
	if m.snap.Mode != state.Closed {
		help = "tab: next field   ←/→: status   ctrl+s: save   esc: cancel"
	}
	b.WriteString(styleMuted().Render(help))
	return b.String()
}

func (m model) row(i int, t service.Task) string {
	marker := "  "
	title := t.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	if m.width > 0 {
		title = ansi.Truncate(title, max(m.width-40, 10), "…")
	}
	line := fmt.Sprintf("%s %s  %s", badge(t.Status), title, styleMuted().Render(output.FormatDue(t)))
	if i == m.cursor {
		marker = "> "
		line = styleSelected().Render(line)
	}
	s := marker + line + "\n"
	if desc := strings.Join(strings.Fields(t.Description), " "); desc != "" {
		if m.width > 0 {
			desc = ansi.Truncate(desc, max(m.width-6, 10), "…")
		}
		s += "    " + styleMuted().Render(desc) + "\n"
	}
	return s
}

func (m model) formView() string {
	heading := "Create New Task"
	if m.snap.Mode == state.Editing {
		heading = "Edit Task"
	}
	label := func(field int, name string) string {
		if field == m.formFocus {
			return styleTitle().Render(fmt.Sprintf("%-12s", name))
		}
		return fmt.Sprintf("%-12s", name)
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(heading),
		"",
		label(fieldTitle, "Title") + m.form[0].View(),
		label(fieldDescription, "Description") + m.form[1].View(),
		label(fieldStatus, "Status") + "‹ " + badge(m.snap.Draft.Status) + " ›",
		label(fieldDue, "Due date") + m.form[2].View(),
	}
	return styleBox().Render(strings.Join(lines, "\n"))
}

func (m model) statusLine() string {
	switch {
	case m.notice != "":
		return styleError().Render(m.notice) + "\n"
	case m.snap.Err != nil:
		return styleError().Render(errLine(m.snap.Err)) + "\n"
	}
	return ""
}
