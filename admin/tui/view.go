package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/reunionrs/reunion-site-backend/admin"
	"github.com/reunionrs/reunion-site-backend/auth"
)

// View renders the UI
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Reunion Production · admin"))
	b.WriteString("\n")

	switch m.decision.State {
	case auth.StateChecking:
		b.WriteString(ListStyle.Render("Checking session..."))
	case auth.StateUnauthenticated:
		b.WriteString(ListStyle.Render(fmt.Sprintf(
			"Not signed in. Run `reunion-admin login` first.\n%s",
			StatusStyle.Render("sign-in page: "+m.decision.RedirectTo),
		)))
		b.WriteString("\n")
		b.WriteString(StatusStyle.Render("  q quit"))
	default:
		b.WriteString(m.viewPanel())
	}

	if toast := m.toasts.current; toast != nil {
		b.WriteString("\n")
		if toast.Level == admin.ToastError {
			b.WriteString(ToastErrorStyle.Render("  " + toast.Message))
		} else {
			b.WriteString(ToastSuccessStyle.Render("  " + toast.Message))
		}
	}
	return b.String()
}

func (m Model) viewPanel() string {
	var sections []string

	who := "operator"
	if m.decision.User != nil {
		who = m.decision.User.ID
		if m.decision.User.Email != "" {
			who = m.decision.User.Email
		}
	}
	sections = append(sections, StatusStyle.Render(fmt.Sprintf("  signed in as %s · %s", who, m.panel.Mode())))
	if m.busy {
		sections = append(sections, StatusStyle.Render("  Working..."))
	}

	sections = append(sections, m.viewList())

	switch {
	case m.confirming != nil:
		prompt := fmt.Sprintf("Delete %q? This cannot be undone. (y/n)", m.confirming.Title)
		sections = append(sections, ConfirmStyle.Render("  "+prompt))
	case m.panel.Mode() != admin.ModeIdle:
		sections = append(sections, m.viewForm())
		sections = append(sections, m.help.View(formKeys{}))
	default:
		sections = append(sections, m.help.View(listKeys{}))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewList() string {
	projects := m.panel.Projects()
	if len(projects) == 0 {
		return ListStyle.Render(StatusStyle.Render("No projects yet. Press a to add one."))
	}

	var lines []string
	for i, project := range projects {
		line := fmt.Sprintf("%-40s %s", project.Title, StatusStyle.Render(project.Status))
		if i == m.cursor {
			lines = append(lines, ItemSelectedStyle.Render("> "+line))
		} else {
			lines = append(lines, ItemStyle.Render("  "+line))
		}
	}
	return ListStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewForm() string {
	title := "New project"
	if m.panel.Mode() == admin.ModeEditing {
		title = "Edit project"
	}

	lines := []string{HeaderStyle.Render(title)}
	for i, f := range formFields {
		label := LabelStyle.Render(f.label)
		if i == m.focus {
			label = LabelFocusedStyle.Render(f.label)
		}
		lines = append(lines, label+m.inputs[i].View())
	}
	return FormStyle.Render(strings.Join(lines, "\n"))
}
