package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/reunionrs/reunion-site-backend/admin"
	"github.com/reunionrs/reunion-site-backend/auth"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	session auth.Session
	err     error
}

func (f fakeChecker) Session(context.Context) (auth.Session, error) {
	return f.session, f.err
}

// fakeBackend keeps raw records the way the server stores them. Jobs call it
// from command goroutines.
type fakeBackend struct {
	mu       sync.Mutex
	projects []models.Project
	// gate, when set, holds every listing until it is closed
	gate chan struct{}
}

func (b *fakeBackend) Create(ctx context.Context, input models.ProjectInput) (uuid.UUID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	project := input.Project()
	project.ID = uuid.New()
	project.CreatedAt = time.Now()
	b.projects = append(b.projects, *project)
	return project.ID, nil
}

func (b *fakeBackend) Update(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.projects {
		if b.projects[i].ID == id {
			b.projects[i] = patch.Apply(b.projects[i])
			return nil
		}
	}
	return errors.New("missing")
}

func (b *fakeBackend) Delete(ctx context.Context, id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.projects {
		if b.projects[i].ID == id {
			b.projects = append(b.projects[:i], b.projects[i+1:]...)
			return nil
		}
	}
	return errors.New("missing")
}

func (b *fakeBackend) ListStored(ctx context.Context) ([]models.Project, error) {
	b.mu.Lock()
	gate := b.gate
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Project(nil), b.projects...), nil
}

func (b *fakeBackend) hold() chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gate = make(chan struct{})
	return b.gate
}

func (b *fakeBackend) stored() []models.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Project(nil), b.projects...)
}

func operator() *auth.User {
	return &auth.User{ID: "operator", Provider: "password"}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// driver plays the part of the bubbletea runtime: commands run on their own
// goroutines and their messages come back through Update on the test goroutine.
type driver struct {
	t    *testing.T
	m    Model
	msgs chan tea.Msg
}

func newDriver(t *testing.T, checker fakeChecker, backend admin.Backend) *driver {
	t.Helper()
	m := NewModel(auth.NewSessions(), checker, backend)
	t.Cleanup(m.Close)

	d := &driver{t: t, m: m, msgs: make(chan tea.Msg, 64)}
	d.run(m.waitForDecision())

	// The guard starts out checking
	select {
	case msg := <-d.msgs:
		d.send(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no first decision")
	}
	assert.Equal(t, auth.StateChecking, d.m.decision.State)
	return d
}

func (d *driver) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		if msg := cmd(); msg != nil {
			d.msgs <- msg
		}
	}()
}

func (d *driver) send(msg tea.Msg) {
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, cmd := range batch {
			d.run(cmd)
		}
		return
	}
	next, cmd := d.m.Update(msg)
	d.m = next.(Model)
	d.run(cmd)
}

func (d *driver) key(s string) {
	d.send(keyMsg(s))
}

// until applies pending messages until cond holds.
func (d *driver) until(cond func(Model) bool) {
	d.t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond(d.m) {
		select {
		case msg := <-d.msgs:
			d.send(msg)
		case <-deadline:
			d.t.Fatalf("model never settled, view:\n%s", d.m.View())
		}
	}
}

func (d *driver) idle() {
	d.t.Helper()
	d.until(func(m Model) bool { return !m.busy })
}

func (d *driver) signIn() {
	d.t.Helper()
	d.send(sessionMsg{session: auth.Session{State: auth.StateAuthenticated, User: operator()}})
	d.until(func(m Model) bool { return m.decision.Allowed() && !m.busy })
}

func TestModelShowsGuardStates(t *testing.T) {
	d := newDriver(t, fakeChecker{}, &fakeBackend{})
	assert.Contains(t, d.m.View(), "Checking session")

	d.send(sessionMsg{session: auth.Session{State: auth.StateUnauthenticated}})
	d.until(func(m Model) bool { return m.decision.State == auth.StateUnauthenticated })
	assert.Contains(t, d.m.View(), "Not signed in")
	assert.Contains(t, d.m.View(), auth.SignInPath)

	d.key("a")
	assert.Equal(t, admin.ModeIdle, d.m.panel.Mode(), "keys do nothing until signed in")
}

func TestModelSessionError(t *testing.T) {
	d := newDriver(t, fakeChecker{}, &fakeBackend{})

	d.send(sessionMsg{err: errors.New("failed to connect: connection refused")})
	d.until(func(m Model) bool { return m.decision.State == auth.StateUnauthenticated })
	assert.Contains(t, d.m.View(), "connection refused")
}

func TestModelAddProject(t *testing.T) {
	backend := &fakeBackend{}
	d := newDriver(t, fakeChecker{}, backend)
	d.signIn()
	assert.Contains(t, d.m.View(), "No projects yet")

	d.key("a")
	require.Equal(t, admin.ModeComposing, d.m.panel.Mode())

	values := map[int]string{
		0: "Imperial Commando",
		1: "In production",
		2: "A fan film about clone commandos",
		6: "https://cdn.reunion.example/poster.jpg",
		7: "https://www.youtube.com/watch?v=commando",
	}
	for i, value := range values {
		d.m.inputs[i].SetValue(value)
	}

	d.key("ctrl+s")
	d.idle()
	assert.Equal(t, admin.ModeIdle, d.m.panel.Mode())
	stored := backend.stored()
	require.Len(t, stored, 1)
	assert.Equal(t, models.DefaultColor, stored[0].Color)
	assert.Empty(t, stored[0].FullDescription)
	view := d.m.View()
	assert.Contains(t, view, "Imperial Commando")
	assert.Contains(t, view, admin.MsgProjectAdded)
}

func TestModelInvalidFormStaysOpen(t *testing.T) {
	backend := &fakeBackend{}
	d := newDriver(t, fakeChecker{}, backend)
	d.signIn()

	d.key("a")
	d.m.inputs[0].SetValue("Only a title")
	d.key("ctrl+s")

	assert.False(t, d.m.busy, "validation fails before any backend call")
	assert.Equal(t, admin.ModeComposing, d.m.panel.Mode())
	assert.Empty(t, backend.stored())
	assert.Equal(t, "Only a title", d.m.inputs[0].Value())

	d.key("esc")
	assert.Equal(t, admin.ModeIdle, d.m.panel.Mode())
}

func TestModelDeleteAsksFirst(t *testing.T) {
	backend := &fakeBackend{}
	_, err := backend.Create(context.Background(), models.ProjectInput{Title: "Reunion", Status: "Released", Description: "d"})
	require.NoError(t, err)

	d := newDriver(t, fakeChecker{}, backend)
	d.signIn()
	require.Len(t, d.m.panel.Projects(), 1)

	d.key("d")
	require.NotNil(t, d.m.confirming)
	assert.Contains(t, d.m.View(), `Delete "Reunion"?`)

	d.key("n")
	assert.Nil(t, d.m.confirming)
	assert.Len(t, backend.stored(), 1)

	d.key("d")
	d.key("y")
	d.idle()
	assert.Empty(t, backend.stored())
	assert.Empty(t, d.m.panel.Projects())
	assert.Contains(t, d.m.View(), admin.MsgProjectDeleted)
}

func TestModelStaysResponsiveWhileBackendWorks(t *testing.T) {
	backend := &fakeBackend{}
	_, err := backend.Create(context.Background(), models.ProjectInput{Title: "Reunion", Status: "Released", Description: "d"})
	require.NoError(t, err)

	d := newDriver(t, fakeChecker{}, backend)
	d.signIn()
	require.Len(t, d.m.panel.Projects(), 1)

	gate := backend.hold()
	returned := make(chan struct{})
	go func() {
		defer close(returned)
		next, cmd := d.m.Update(keyMsg("d"))
		next, cmd = next.(Model).Update(keyMsg("y"))
		d.m = next.(Model)
		d.run(cmd)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("update waited on the backend")
	}

	assert.True(t, d.m.busy)
	assert.Contains(t, d.m.View(), "Working...")
	assert.Len(t, d.m.panel.Projects(), 1, "listing changes only when the job is done")

	d.key("a")
	assert.Equal(t, admin.ModeIdle, d.m.panel.Mode(), "keys wait for the running job")

	close(gate)
	d.idle()
	assert.Empty(t, d.m.panel.Projects())
	assert.NotContains(t, d.m.View(), "Working...")
}

func TestModelCloseDetachesGuard(t *testing.T) {
	sessions := auth.NewSessions()
	m := NewModel(sessions, fakeChecker{}, &fakeBackend{})
	<-m.decisions

	m.Close()
	sessions.SignedIn(*operator())

	select {
	case d := <-m.decisions:
		t.Fatalf("unexpected decision after close: %v", d.State)
	default:
	}
}
