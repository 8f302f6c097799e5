package api

import (
	"time"

	"github.com/reunionrs/reunion-site-backend/auth"
	"github.com/reunionrs/reunion-site-backend/services"
)

// Deps are the services the handlers are built on. Uploader and Google are
// optional.
type Deps struct {
	Projects ProjectStore
	Sender   services.Sender
	Uploader *services.Uploader
	Tokens   *auth.Tokens
	Google   *auth.GoogleProvider
}

type handlerOptions struct {
	backendPassword string
	secureCookies   bool
	allowedOrigins  []string
	startupTime     time.Time
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Deps, opts handlerOptions) *routeHandlers {
	projects := newProjectHandler(deps.Projects)

	// A nil *Uploader must stay a nil MediaStore
	var media MediaStore
	if deps.Uploader != nil {
		media = deps.Uploader
	}

	return &routeHandlers{
		projectHandler: projects,
		contactHandler: newContactHandler(deps.Sender, projects),
		streamHandler:  newStreamHandler(deps.Projects, opts.allowedOrigins),
		authHandler:    newAuthHandler(deps.Tokens, deps.Google, opts.backendPassword, opts.secureCookies),
		uploadHandler:  newUploadHandler(media),
		siteHandler:    newSiteHandler(opts.startupTime),
	}
}
