package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ProjectStore is the project surface the handlers use. store.Projects
// satisfies it.
type ProjectStore interface {
	Create(ctx context.Context, input models.ProjectInput) (uuid.UUID, error)
	Read(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]models.Project, error)
	ListStored(ctx context.Context) ([]models.Project, error)
	Subscribe(ctx context.Context, onChange func([]models.Project)) (func(), error)
}

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  ProjectStore
}

func newProjectHandler(projects ProjectStore) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
	}
}

// getAllProjects lists every project, oldest first
// @Summary Get all projects
// @Tags Projects
// @Produce json
// @Success 200 {object} ProjectCollection "List of projects"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching projects"
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projects.ListAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, ProjectCollection{
			Projects: projects,
			Total:    len(projects),
		})
	}
}

// getProject renders one project. An unknown or malformed id is a not-found
// view pointing back home.
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} models.Project "Project details"
// @Failure 404 {object} NotFoundResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching project"
// @Router /project/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.findProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if project == nil {
			h.writeNotFound(w)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// findProject reads the project named by the route. It returns nil, nil when
// the id does not name a stored project.
func (h projectHandler) findProject(r *http.Request) (*models.Project, error) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		return nil, nil
	}
	return h.projects.Read(r.Context(), projectID)
}

func (h projectHandler) writeNotFound(w http.ResponseWriter) {
	h.responder.WriteStatusJSON(w, http.StatusNotFound, NotFoundResponse{
		Error: "project not found",
		Home:  "/",
	})
}

// listProjects is the admin listing. Records are returned as stored, without
// read defaults, so the edit form never saves a fallback as a real value.
// @Summary List projects for the admin panel
// @Tags Admin
// @Produce json
// @Success 200 {object} ProjectCollection "List of projects"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /admin/projects [get]
func (h projectHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projects.ListStored(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, ProjectCollection{
			Projects: projects,
			Total:    len(projects),
		})
	}
}

// createProject stores a new project
// @Summary Create project
// @Tags Admin
// @Accept json
// @Produce json
// @Param project body models.ProjectInput true "Project data"
// @Success 201 {object} CreatedResponse "Created project id"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error creating project"
// @Router /admin/project [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input models.ProjectInput
		if err := h.responder.DecodeJSON(w, r, "project", &input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		id, err := h.projects.Create(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if user, ok := ctxGetUser(r.Context()); ok {
			h.logger.Info().Str("projectID", id.String()).Str("operator", user.ID).Msg("project created")
		}
		h.responder.WriteStatusJSON(w, http.StatusCreated, CreatedResponse{ID: id})
	}
}

// updateProject applies a partial update. Fields left out of the body are
// kept; id and createdAt in the body are ignored.
// @Summary Update project
// @Tags Admin
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param project body models.ProjectPatch true "Changed fields"
// @Success 200 {object} models.Project "Updated project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error updating project"
// @Router /admin/project/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("projectID", "must be a UUID"))
			return
		}

		var patch models.ProjectPatch
		if err := h.responder.DecodeJSON(w, r, "project", &patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projects.Update(r.Context(), projectID, patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.projects.Read(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if updated == nil {
			h.responder.WriteError(w, errs.NewNotFound("project"))
			return
		}

		h.responder.WriteJSON(w, updated)
	}
}

// deleteProject removes a project. The caller must confirm with
// ?confirm=true.
// @Summary Delete project
// @Tags Admin
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param confirm query bool true "Confirms the deletion"
// @Success 200 {object} StatusResponse "Success message"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 428 {object} ErrorResponse "Confirmation required"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error deleting project"
// @Router /admin/project/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("projectID", "must be a UUID"))
			return
		}

		if r.URL.Query().Get("confirm") != "true" {
			h.responder.WriteError(w, errs.NewConfirmationRequiredError("delete project"))
			return
		}

		if err := h.projects.Delete(r.Context(), projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, StatusResponse{
			Status:  "success",
			Message: "project deleted successfully",
		})
	}
}
