package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reunionrs/reunion-site-backend/admin"
	"github.com/reunionrs/reunion-site-backend/auth"
	"github.com/reunionrs/reunion-site-backend/models"
)

// sessionMsg carries the answer of the session check
type sessionMsg struct {
	session auth.Session
	err     error
}

// decisionMsg is sent when the guard changes its mind
type decisionMsg auth.Decision

// jobDoneMsg carries a panel job whose backend calls have finished
type jobDoneMsg struct {
	job *admin.Job
}

// Init starts the session check and listens for guard decisions
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkSession(), m.waitForDecision())
}

func (m Model) checkSession() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		session, err := m.checker.Session(ctx)
		return sessionMsg{session: session, err: err}
	}
}

func (m Model) waitForDecision() tea.Cmd {
	return func() tea.Msg {
		return decisionMsg(<-m.decisions)
	}
}

// runJob makes the job's backend calls off the UI loop
func (m Model) runJob(job *admin.Job) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		job.Run(ctx)
		return jobDoneMsg{job: job}
	}
}

// start marks the model busy and runs the job
func (m *Model) start(job *admin.Job) tea.Cmd {
	m.busy = true
	return m.runJob(job)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionMsg:
		if msg.err != nil {
			m.toasts.Toast(admin.Toast{Level: admin.ToastError, Message: admin.Message(msg.err)})
		}
		if msg.err == nil && msg.session.State == auth.StateAuthenticated && msg.session.User != nil {
			m.sessions.SignedIn(*msg.session.User)
		} else {
			m.sessions.SignedOut()
		}
		return m, nil

	case decisionMsg:
		m.decision = auth.Decision(msg)
		if m.decision.Allowed() && !m.busy {
			return m, tea.Batch(m.waitForDecision(), m.start(m.panel.RefreshJob()))
		}
		return m, m.waitForDecision()

	case jobDoneMsg:
		m.busy = false
		_ = m.panel.Finish(msg.job)
		m.clampCursor()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.decision.Allowed() || m.busy {
			if key.Matches(msg, keys.Quit) && m.panel.Mode() == admin.ModeIdle {
				return m, tea.Quit
			}
			return m, nil
		}

		switch {
		case m.confirming != nil:
			return m.updateConfirm(msg)
		case m.panel.Mode() != admin.ModeIdle:
			return m.updateForm(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.panel.Projects())-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Add):
		m.panel.Add()
		m.fillInputs(m.panel.Form())

	case key.Matches(msg, keys.Edit):
		if project := m.selected(); project != nil {
			m.panel.Edit(*project)
			m.fillInputs(m.panel.Form())
		}

	case key.Matches(msg, keys.Delete):
		if project := m.selected(); project != nil {
			chosen := *project
			m.confirming = &chosen
		}

	case key.Matches(msg, keys.Refresh):
		return m, m.start(m.panel.RefreshJob())
	}

	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes):
		project := *m.confirming
		m.confirming = nil
		job, err := m.panel.DeleteJob(project, func(models.Project) bool { return true })
		if err == nil && job != nil {
			return m, m.start(job)
		}

	case key.Matches(msg, keys.No):
		m.confirming = nil
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.panel.Cancel()
		return m, nil

	case key.Matches(msg, keys.Submit):
		m.panel.SetForm(m.formFromInputs())
		job, err := m.panel.SubmitJob()
		if err != nil {
			return m, nil
		}
		return m, m.start(job)

	case key.Matches(msg, keys.Next):
		m.moveFocus(1)
		return m, nil

	case key.Matches(msg, keys.Prev):
		m.moveFocus(-1)
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) moveFocus(delta int) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *Model) clampCursor() {
	if n := len(m.panel.Projects()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
