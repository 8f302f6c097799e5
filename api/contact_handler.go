package api

import (
	"net/http"

	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/reunionrs/reunion-site-backend/services"
	"github.com/reunionrs/reunion-site-backend/validate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	sender    services.Sender
	projects  projectHandler
}

func newContactHandler(sender services.Sender, projects projectHandler) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		sender:    sender,
		projects:  projects,
	}
}

// sendContact forwards the main contact form
// @Summary Send contact form
// @Tags Contact
// @Accept json
// @Produce json
// @Param submission body ContactRequest true "Contact form"
// @Success 200 {object} ContactResponse "Message sent"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid form"
// @Failure 502 {object} ErrorResponse "Notification endpoint failed"
// @Failure 503 {object} ErrorResponse "Notification endpoint not configured"
// @Router /contact [post]
func (h contactHandler) sendContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ContactRequest
		if err := h.responder.DecodeJSON(w, r, "contact", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		submission := req.submission(models.SourceContact)
		h.dispatch(w, r, submission)
	}
}

// applyToProject forwards an apply-to-join form with the project attached
// @Summary Apply to join a project
// @Tags Contact
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param submission body ContactRequest true "Application form"
// @Success 200 {object} ContactResponse "Application sent"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid form"
// @Failure 404 {object} NotFoundResponse "Not Found - Project not found"
// @Failure 502 {object} ErrorResponse "Notification endpoint failed"
// @Router /project/{projectID}/apply [post]
func (h contactHandler) applyToProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.projects.findProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if project == nil {
			h.projects.writeNotFound(w)
			return
		}

		var req ContactRequest
		if err := h.responder.DecodeJSON(w, r, "application", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		submission := req.submission(models.SourceProjectApply)
		submission.Project = project.Title
		submission.ProjectID = project.ID.String()
		h.dispatch(w, r, submission)
	}
}

func (h contactHandler) dispatch(w http.ResponseWriter, r *http.Request, submission models.ContactSubmission) {
	submission.Telegram = validate.NormalizeHandle(submission.Telegram)
	if err := validate.Contact(submission); err != nil {
		h.responder.WriteError(w, err)
		return
	}

	outcome, err := h.sender.Notify(r.Context(), submission)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}

	h.logger.Info().
		Str("source", submission.Source).
		Str("outcome", outcome.String()).
		Msg("submission dispatched")

	h.responder.WriteJSON(w, ContactResponse{
		Status:  "sent",
		Message: "Thank you! We will get back to you soon.",
		Assumed: outcome == services.OutcomeAssumed,
	})
}

func (req ContactRequest) submission(source string) models.ContactSubmission {
	return models.ContactSubmission{
		Name:     req.Name,
		Email:    req.Email,
		Telegram: req.Telegram,
		Message:  req.Message,
		Role:     req.Role,
		Source:   source,
	}
}
