package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/reunionrs/reunion-site-backend/auth"
	"github.com/reunionrs/reunion-site-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
	contactHandler contactHandler
	streamHandler  streamHandler
	authHandler    authHandler
	uploadHandler  uploadHandler
	siteHandler    siteHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error" example:"validation failed: missing required field"`
	Message string `json:"message,omitempty" example:"Please fill in all required fields"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// NotFoundResponse is what the detail view renders for an unknown project.
type NotFoundResponse struct {
	Error string `json:"error" example:"project not found"`
	Home  string `json:"home" example:"/"`
}

// ProjectCollection is the public listing
type ProjectCollection struct {
	Projects []models.Project `json:"projects"`
	Total    int              `json:"total"`
}

// CreatedResponse answers a successful create
type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

// StatusResponse answers operations that return nothing else
type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message,omitempty"`
}

// ContactRequest is the body of the contact and apply forms
type ContactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Telegram string `json:"telegram"`
	Message  string `json:"message"`
	Role     string `json:"role,omitempty"`
}

// ContactResponse tells the visitor the message went out
type ContactResponse struct {
	Status  string `json:"status" example:"sent"`
	Message string `json:"message"`
	// Assumed is true when the endpoint never answered and delivery is presumed.
	Assumed bool `json:"assumed,omitempty"`
}

// TokenRequest exchanges the operator password for a session token
type TokenRequest struct {
	Password string `json:"password"`
}

// TokenResponse carries a session token
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      auth.User `json:"user"`
}

// SessionResponse reports the current session state
type SessionResponse struct {
	State string     `json:"state" example:"authenticated"`
	User  *auth.User `json:"user,omitempty"`
}

// UploadResponse returns the durable URL of stored media
type UploadResponse struct {
	URL string `json:"url"`
}

// SnapshotMessage is pushed over the project stream
type SnapshotMessage struct {
	Type     string           `json:"type" example:"projects.snapshot"`
	Projects []models.Project `json:"projects"`
	SentAt   time.Time        `json:"sentAt"`
}
