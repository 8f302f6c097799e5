package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/reunionrs/reunion-site-backend/config"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/rs/zerolog/log"
)

const defaultResendBaseURL = "https://api.resend.com"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// EmailMirror sends a copy of every submission to the operators' inbox
// through Resend.
type EmailMirror struct {
	apiKey     string
	from       string
	recipients []string
	baseURL    string
	siteURL    string
	client     *http.Client
}

// NewEmailMirror reads the Resend settings. It returns nil when RESEND_API_KEY,
// RESEND_FROM_EMAIL or NOTIFY_EMAIL_TO is missing.
//
// Optional settings:
//   - RESEND_BASE_URL: overrides the Resend API address
//   - SITE_BASE_URL: used to link the project an application is about
func NewEmailMirror(cfg map[string]string, client *http.Client) *EmailMirror {
	apiKey := config.GetString(cfg, "RESEND_API_KEY", "")
	fromEmail := config.GetString(cfg, "RESEND_FROM_EMAIL", "")
	recipients := config.GetList(cfg, "NOTIFY_EMAIL_TO")
	if apiKey == "" || fromEmail == "" || len(recipients) == 0 {
		return nil
	}
	if client == nil {
		client = &http.Client{}
	}
	return &EmailMirror{
		apiKey:     apiKey,
		from:       fromEmail,
		recipients: recipients,
		baseURL:    strings.TrimSuffix(config.GetString(cfg, "RESEND_BASE_URL", defaultResendBaseURL), "/"),
		siteURL:    GetBaseURL(cfg),
		client:     client,
	}
}

func (m *EmailMirror) Name() string {
	return "email"
}

// Mirror mails the submission to the configured recipients. Replies go to
// the person who filled in the form.
func (m *EmailMirror) Mirror(ctx context.Context, submission models.ContactSubmission) error {
	projectURL := BuildProjectURL(m.siteURL, submission.ProjectID)
	return m.SendEmail(ctx, ResendEmailRequest{
		From:    m.from,
		To:      m.recipients,
		Subject: FormatSubject(submission),
		Html:    FormatHTML(submission, projectURL),
		Text:    FormatPlainText(submission),
		ReplyTo: submission.Email,
	})
}

// SendEmail sends an email using the Resend API
func (m *EmailMirror) SendEmail(ctx context.Context, payload ResendEmailRequest) error {
	if len(payload.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	// Marshal payload to JSON
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	// Create HTTP request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}

	// Set headers
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	// Parse successful response
	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}

	return nil
}
