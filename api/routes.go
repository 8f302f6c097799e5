package api

import (
	"github.com/go-chi/chi/v5"
)

// setupPublicRoutes sets up the routes visitors reach without signing in
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/healthz", handlers.siteHandler.healthz())

	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/site", handlers.siteHandler.getSite())

		// Project Handler endpoints
		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Get("/projects/stream", handlers.streamHandler.streamProjects())
		r.Get("/project/{projectID}", handlers.projectHandler.getProject())

		// Contact Handler endpoints
		r.Post("/contact", handlers.contactHandler.sendContact())
		r.Post("/project/{projectID}/apply", handlers.contactHandler.applyToProject())

		// Auth Handler endpoints
		r.Get("/auth/signin", handlers.authHandler.signIn())
		r.Get("/auth/google/callback", handlers.authHandler.googleCallback())
		r.Post("/auth/token", handlers.authHandler.issueToken())
		r.Post("/auth/signout", handlers.authHandler.signOut())
		r.Get("/auth/session", handlers.authHandler.session())
	})
}

// setupAdminRoutes sets up the routes behind the session guard
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.requireSession)
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/admin", handlers.authHandler.session())
		r.Get("/admin/projects", handlers.projectHandler.listProjects())
		r.Post("/admin/project", handlers.projectHandler.createProject())
		r.Put("/admin/project/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/admin/project/{projectID}", handlers.projectHandler.deleteProject())
		r.Post("/admin/uploads", handlers.uploadHandler.uploadMedia())
	})
}
