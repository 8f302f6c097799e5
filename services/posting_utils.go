package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/reunionrs/reunion-site-backend/config"
	"github.com/reunionrs/reunion-site-backend/models"
)

// sourceLabels are the operator-facing names of each form.
var sourceLabels = map[string]string{
	models.SourceContact:      "Contact form",
	models.SourceProjectApply: "Project application",
}

// FormatSubject builds a one-line summary of a submission
func FormatSubject(submission models.ContactSubmission) string {
	label, ok := sourceLabels[submission.Source]
	if !ok {
		label = "Submission"
	}
	if submission.Project != "" {
		return fmt.Sprintf("%s: %s (%s)", label, submission.Name, submission.Project)
	}
	return fmt.Sprintf("%s: %s", label, submission.Name)
}

// FormatPlainText renders a submission for SMS and plain-text mail
func FormatPlainText(submission models.ContactSubmission) string {
	var b strings.Builder
	b.WriteString(FormatSubject(submission))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Email: %s\n", submission.Email)
	fmt.Fprintf(&b, "Telegram: %s\n", submission.Telegram)
	if submission.Role != "" {
		fmt.Fprintf(&b, "Role: %s\n", submission.Role)
	}
	b.WriteString("\n")
	b.WriteString(submission.Message)
	return b.String()
}

// FormatHTML renders a submission as an e-mail body. Every user value is escaped.
func FormatHTML(submission models.ContactSubmission, projectURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(FormatSubject(submission)))
	b.WriteString("<ul>")
	fmt.Fprintf(&b, "<li><b>Name:</b> %s</li>", html.EscapeString(submission.Name))
	fmt.Fprintf(&b, "<li><b>Email:</b> %s</li>", html.EscapeString(submission.Email))
	fmt.Fprintf(&b, "<li><b>Telegram:</b> %s</li>", html.EscapeString(submission.Telegram))
	if submission.Role != "" {
		fmt.Fprintf(&b, "<li><b>Role:</b> %s</li>", html.EscapeString(submission.Role))
	}
	if projectURL != "" {
		fmt.Fprintf(&b, `<li><b>Project:</b> <a href="%s">%s</a></li>`, html.EscapeString(projectURL), html.EscapeString(submission.Project))
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, "<p>%s</p>", strings.ReplaceAll(html.EscapeString(submission.Message), "\n", "<br>"))
	return b.String()
}

// GetBaseURL returns the public address of the site, SITE_BASE_URL first,
// then BASE_URL.
func GetBaseURL(cfg map[string]string) string {
	if baseURL := config.GetString(cfg, "SITE_BASE_URL", ""); baseURL != "" {
		return baseURL
	}
	return config.GetString(cfg, "BASE_URL", "")
}

// BuildProjectURL constructs the public detail page URL of a project
// Returns an empty string when either part is missing.
func BuildProjectURL(baseURL, projectID string) string {
	if baseURL == "" || projectID == "" {
		return ""
	}
	return fmt.Sprintf("%s/project/%s", strings.TrimSuffix(baseURL, "/"), projectID)
}
