// Package admin is the operator side of the site: the project panel state
// machine, the API backend it runs against and the saved operator session.
package admin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/reunionrs/reunion-site-backend/validate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Mode is what the panel is doing.
type Mode int

const (
	ModeIdle Mode = iota
	ModeComposing
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeComposing:
		return "composing"
	case ModeEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// Toast messages shown after a successful operation.
const (
	MsgProjectAdded   = "Project added"
	MsgProjectUpdated = "Project updated"
	MsgProjectDeleted = "Project deleted"
)

var (
	ErrFormOpen   = errors.New("admin: finish or cancel the open form first")
	ErrNoFormOpen = errors.New("admin: no form is open")
)

// Backend is the record store the panel edits. store.Projects and Client
// both satisfy it.
type Backend interface {
	Create(ctx context.Context, input models.ProjectInput) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListStored(ctx context.Context) ([]models.Project, error)
}

type ToastLevel int

const (
	ToastSuccess ToastLevel = iota
	ToastError
)

// Toast is a short message for the operator.
type Toast struct {
	Level   ToastLevel
	Message string
}

type Notifier interface {
	Toast(toast Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Toast)

func (f NotifierFunc) Toast(toast Toast) { f(toast) }

// Panel holds the listing and the open form. It is not safe for concurrent
// use; a single UI loop drives it.
type Panel struct {
	backend  Backend
	notifier Notifier
	logger   zerolog.Logger

	mode     Mode
	form     models.ProjectInput
	editing  uuid.UUID
	projects []models.Project
}

func NewPanel(backend Backend, notifier Notifier) *Panel {
	if notifier == nil {
		notifier = NotifierFunc(func(Toast) {})
	}
	return &Panel{
		backend:  backend,
		notifier: notifier,
		logger:   log.With().Str("component", "adminPanel").Logger(),
		form:     emptyForm(),
	}
}

func emptyForm() models.ProjectInput {
	return models.ProjectInput{Color: models.DefaultColor}
}

func (p *Panel) Mode() Mode { return p.mode }

func (p *Panel) Projects() []models.Project { return p.projects }

// Form returns the values of the open form.
func (p *Panel) Form() models.ProjectInput { return p.form }

// SetForm replaces the values of the open form. It does nothing when idle.
func (p *Panel) SetForm(form models.ProjectInput) {
	if p.mode == ModeIdle {
		return
	}
	p.form = form
}

// Editing returns the id of the record being edited.
func (p *Panel) Editing() (uuid.UUID, bool) {
	return p.editing, p.mode == ModeEditing
}

// Add opens an empty creation form, dropping any open form.
func (p *Panel) Add() {
	p.mode = ModeComposing
	p.editing = uuid.Nil
	p.form = emptyForm()
}

// Edit opens the form prefilled with the record's stored values. An unset
// full description stays empty so it keeps following the description.
func (p *Panel) Edit(project models.Project) {
	p.mode = ModeEditing
	p.editing = project.ID
	p.form = validate.InputOf(project)
	if p.form.Color == "" {
		p.form.Color = models.DefaultColor
	}
}

// Cancel closes the form without writing anything.
func (p *Panel) Cancel() {
	p.mode = ModeIdle
	p.editing = uuid.Nil
	p.form = emptyForm()
}

// Job is a panel operation split in two. Run makes the backend calls and
// touches no panel state, so it may run off the UI loop. Finish applies the
// result and must run on the goroutine that drives the panel.
type Job struct {
	backend Backend
	write   func(ctx context.Context) error
	written func()

	writeErr error
	listErr  error
	projects []models.Project
}

// Run performs the write, if any, and reloads the listing after it.
func (j *Job) Run(ctx context.Context) {
	if j.write != nil {
		if j.writeErr = j.write(ctx); j.writeErr != nil {
			return
		}
	}
	j.projects, j.listErr = j.backend.ListStored(ctx)
}

// Finish applies a job that has run. A failed write keeps the open form.
func (p *Panel) Finish(j *Job) error {
	if j.writeErr != nil {
		p.fail(j.writeErr)
		return j.writeErr
	}
	if j.written != nil {
		j.written()
	}
	if j.listErr != nil {
		p.fail(j.listErr)
		return j.listErr
	}
	p.projects = j.projects
	return nil
}

// SubmitJob validates the open form and prepares its write. Validation
// failures are reported right away and keep the form open.
func (p *Panel) SubmitJob() (*Job, error) {
	if p.mode == ModeIdle {
		return nil, ErrNoFormOpen
	}

	if err := validate.Project(p.form); err != nil {
		p.fail(err)
		return nil, err
	}

	form := p.form
	job := &Job{backend: p.backend}
	switch p.mode {
	case ModeComposing:
		var id uuid.UUID
		job.write = func(ctx context.Context) (err error) {
			id, err = p.backend.Create(ctx, form)
			return err
		}
		job.written = func() {
			p.logger.Info().Str("projectID", id.String()).Msg("project added")
			p.notifier.Toast(Toast{Level: ToastSuccess, Message: MsgProjectAdded})
			p.Cancel()
		}
	case ModeEditing:
		id := p.editing
		job.write = func(ctx context.Context) error {
			return p.backend.Update(ctx, id, models.PatchFrom(form))
		}
		job.written = func() {
			p.logger.Info().Str("projectID", id.String()).Msg("project updated")
			p.notifier.Toast(Toast{Level: ToastSuccess, Message: MsgProjectUpdated})
			p.Cancel()
		}
	}
	return job, nil
}

// DeleteJob prepares the removal once confirm agrees. It is only allowed while
// no form is open. A declined confirmation returns no job.
func (p *Panel) DeleteJob(project models.Project, confirm func(models.Project) bool) (*Job, error) {
	if p.mode != ModeIdle {
		return nil, ErrFormOpen
	}
	if confirm == nil || !confirm(project) {
		return nil, nil
	}

	id := project.ID
	return &Job{
		backend: p.backend,
		write: func(ctx context.Context) error {
			return p.backend.Delete(ctx, id)
		},
		written: func() {
			p.notifier.Toast(Toast{Level: ToastSuccess, Message: MsgProjectDeleted})
		},
	}, nil
}

// RefreshJob prepares a reload of the listing.
func (p *Panel) RefreshJob() *Job {
	return &Job{backend: p.backend}
}

// Submit validates the form and writes it. On any failure the form stays
// open with its values.
func (p *Panel) Submit(ctx context.Context) error {
	job, err := p.SubmitJob()
	if err != nil {
		return err
	}
	job.Run(ctx)
	return p.Finish(job)
}

// Delete removes the record once confirm agrees. A declined confirmation
// writes nothing.
func (p *Panel) Delete(ctx context.Context, project models.Project, confirm func(models.Project) bool) error {
	job, err := p.DeleteJob(project, confirm)
	if err != nil || job == nil {
		return err
	}
	job.Run(ctx)
	return p.Finish(job)
}

// Refresh reloads the listing.
func (p *Panel) Refresh(ctx context.Context) error {
	job := p.RefreshJob()
	job.Run(ctx)
	return p.Finish(job)
}

func (p *Panel) fail(err error) {
	p.logger.Warn().Err(err).Str("mode", p.mode.String()).Msg("panel operation failed")
	p.notifier.Toast(Toast{Level: ToastError, Message: Message(err)})
}

// Message is the operator-facing text of an error.
func Message(err error) string {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return err.Error()
}
