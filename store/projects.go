// Package store is the record store adapter for projects. It applies read
// defaults, validates writes and pushes full snapshots to live subscribers.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/reunionrs/reunion-site-backend/validate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Repository is the persistence the adapter needs. database.ProjectRepo
// satisfies it.
type Repository interface {
	FindAll(ctx context.Context) ([]*models.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Add(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, id uuid.UUID, columns map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Projects struct {
	repo   Repository
	relay  Relay
	hub    *hub
	origin string
	logger zerolog.Logger

	// reloadMu orders every read that ends in a delivery, so a later
	// snapshot is never overtaken by an earlier one.
	reloadMu sync.Mutex
}

// NewProjects builds the adapter. A nil relay means a single instance.
func NewProjects(repo Repository, relay Relay) *Projects {
	origin := uuid.NewString()
	return &Projects{
		repo:   repo,
		relay:  relay,
		hub:    newHub(),
		origin: origin,
		logger: log.With().Str("component", "projectStore").Str("origin", origin).Logger(),
	}
}

// Start listens for changes made by other instances until ctx is done.
func (p *Projects) Start(ctx context.Context) error {
	if p.relay == nil {
		return nil
	}
	return p.relay.Listen(ctx, func(origin string) {
		if origin == p.origin {
			return
		}
		p.refresh(ctx)
	})
}

// Create validates the input and stores a new record. The store assigns the
// id and createdAt.
func (p *Projects) Create(ctx context.Context, input models.ProjectInput) (uuid.UUID, error) {
	if err := validate.Project(input); err != nil {
		return uuid.Nil, err
	}

	project := input.Project()
	if err := p.repo.Add(ctx, project); err != nil {
		return uuid.Nil, errs.NewDatabaseError("create", "project", err)
	}

	p.logger.Info().Str("projectID", project.ID.String()).Msg("Project created")
	p.changed(ctx)
	return project.ID, nil
}

// Read returns the record with defaults applied, or nil when it is absent.
func (p *Projects) Read(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := p.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, nil
	}
	withDefaults := project.WithDefaults()
	return &withDefaults, nil
}

// Update applies a partial update. The merged record must still pass the
// project form checks. id and createdAt cannot be changed.
func (p *Projects) Update(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) error {
	current, err := p.repo.FindByID(ctx, id)
	if err != nil {
		return errs.NewDatabaseError("find", "project", err)
	}
	if current == nil {
		return errs.NewNotFound("project")
	}

	if patch.IsEmpty() {
		return nil
	}

	merged := patch.Apply(*current)
	if err := validate.Project(validate.InputOf(merged)); err != nil {
		return err
	}

	if err := p.repo.Update(ctx, id, patch.Columns()); err != nil {
		return errs.NewDatabaseError("update", "project", err)
	}

	p.logger.Info().Str("projectID", id.String()).Msg("Project updated")
	p.changed(ctx)
	return nil
}

func (p *Projects) Delete(ctx context.Context, id uuid.UUID) error {
	if err := p.repo.Delete(ctx, id); err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}

	p.logger.Info().Str("projectID", id.String()).Msg("Project deleted")
	p.changed(ctx)
	return nil
}

// ListAll returns every record, oldest first, with defaults applied.
func (p *Projects) ListAll(ctx context.Context) ([]models.Project, error) {
	found, err := p.repo.FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}

	projects := make([]models.Project, 0, len(found))
	for _, project := range found {
		projects = append(projects, project.WithDefaults())
	}
	return projects, nil
}

// ListStored returns every record, oldest first, exactly as stored. The admin
// form edits these so that read defaults are never written back.
func (p *Projects) ListStored(ctx context.Context) ([]models.Project, error) {
	found, err := p.repo.FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}

	projects := make([]models.Project, 0, len(found))
	for _, project := range found {
		projects = append(projects, *project)
	}
	return projects, nil
}

// Subscribe delivers the current collection right away and again after every
// change. Call the returned function to stop deliveries.
func (p *Projects) Subscribe(ctx context.Context, onChange func([]models.Project)) (func(), error) {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	projects, err := p.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return p.hub.add(projects, onChange), nil
}

// Subscribers reports how many live subscriptions are attached.
func (p *Projects) Subscribers() int {
	return p.hub.count()
}

// changed runs after a successful write: local subscribers get a fresh
// snapshot and other instances are told to reload. The write is committed, so
// the caller going away must not stop either.
func (p *Projects) changed(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	p.refresh(ctx)

	if p.relay == nil {
		return
	}
	if err := p.relay.Publish(ctx, p.origin); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to publish project change")
	}
}

func (p *Projects) refresh(ctx context.Context) {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	if p.hub.count() == 0 {
		return
	}
	projects, err := p.ListAll(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to reload projects for subscribers")
		return
	}
	p.hub.broadcast(projects)
}
