// Package tui is the terminal admin panel. It shows the guard state until a
// session is confirmed and then the project panel.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/reunionrs/reunion-site-backend/admin"
	"github.com/reunionrs/reunion-site-backend/auth"
	"github.com/reunionrs/reunion-site-backend/models"
)

// SessionChecker asks the server who is signed in. admin.Client satisfies it.
type SessionChecker interface {
	Session(ctx context.Context) (auth.Session, error)
}

type field struct {
	label       string
	placeholder string
}

var formFields = []field{
	{"Title *", "Imperial Commando"},
	{"Status *", "In production"},
	{"Description *", "Short card text"},
	{"Full description", "Defaults to the description"},
	{"Website URL", "https://"},
	{"Color", string(models.DefaultColor)},
	{"Poster URL *", "https://"},
	{"Video URL *", "https://"},
	{"Screenshots (comma separated)", "https://..., https://..."},
}

// toastBox keeps the latest toast. The panel writes it through Notifier.
type toastBox struct {
	current *admin.Toast
}

func (b *toastBox) Toast(toast admin.Toast) { b.current = &toast }

// Model is the bubbletea model of the admin panel
type Model struct {
	sessions  *auth.Sessions
	guard     *auth.Guard
	decisions chan auth.Decision
	decision  auth.Decision
	checker   SessionChecker

	panel      *admin.Panel
	toasts     *toastBox
	cursor     int
	confirming *models.Project
	// busy is set while a panel job runs; keys wait for it
	busy bool

	inputs []textinput.Model
	focus  int

	help    help.Model
	width   int
	height  int
	timeout time.Duration
}

// NewModel mounts the guard on sessions. Call Close when the program exits.
func NewModel(sessions *auth.Sessions, checker SessionChecker, backend admin.Backend) Model {
	toasts := &toastBox{}
	m := Model{
		sessions:  sessions,
		guard:     auth.NewGuard(sessions),
		decisions: make(chan auth.Decision, 1),
		checker:   checker,
		panel:     admin.NewPanel(backend, toasts),
		toasts:    toasts,
		inputs:    newInputs(),
		help:      help.New(),
		timeout:   15 * time.Second,
	}

	decisions := m.decisions
	m.guard.Mount(func(d auth.Decision) {
		// Keep only the newest decision
		select {
		case <-decisions:
		default:
		}
		decisions <- d
	})
	return m
}

// Close detaches the guard from the session holder.
func (m Model) Close() {
	m.guard.Unmount()
}

func newInputs() []textinput.Model {
	inputs := make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		ti := textinput.New()
		ti.Placeholder = f.placeholder
		ti.CharLimit = 2048
		ti.Width = 60
		inputs[i] = ti
	}
	return inputs
}

// fillInputs copies the panel form into the text inputs.
func (m *Model) fillInputs(form models.ProjectInput) {
	values := []string{
		form.Title,
		form.Status,
		form.Description,
		form.FullDescription,
		form.WebsiteURL,
		string(form.Color),
		form.PosterURL,
		form.VideoURL,
		strings.Join(form.Screenshots, ", "),
	}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		m.inputs[i].Blur()
	}
	m.focus = 0
	m.inputs[0].Focus()
}

// formFromInputs reads the text inputs back into a project form.
func (m Model) formFromInputs() models.ProjectInput {
	value := func(i int) string { return strings.TrimSpace(m.inputs[i].Value()) }

	var screenshots []string
	for _, s := range strings.Split(value(8), ",") {
		if s = strings.TrimSpace(s); s != "" {
			screenshots = append(screenshots, s)
		}
	}

	return models.ProjectInput{
		Title:           value(0),
		Status:          value(1),
		Description:     value(2),
		FullDescription: value(3),
		WebsiteURL:      value(4),
		Color:           models.Color(value(5)),
		PosterURL:       value(6),
		VideoURL:        value(7),
		Screenshots:     screenshots,
	}
}

func (m Model) selected() *models.Project {
	projects := m.panel.Projects()
	if m.cursor >= 0 && m.cursor < len(projects) {
		return &projects[m.cursor]
	}
	return nil
}

func (m Model) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}
