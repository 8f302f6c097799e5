package models

import "time"

// Submission sources sent along with every dispatch.
const (
	SourceContact      = "contact"
	SourceProjectApply = "project-apply"
)

// ContactSubmission is a contact or apply-to-join form. It lives for one
// dispatch attempt and is never stored.
type ContactSubmission struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Telegram  string    `json:"telegram"`
	Message   string    `json:"message"`
	Role      string    `json:"role,omitempty"`
	Project   string    `json:"project,omitempty"`
	ProjectID string    `json:"projectId,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
