package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/reunionrs/reunion-site-backend/config"
	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	webhookChannel         = "webhook"
	defaultDispatchTimeout = 10 * time.Second
	maxDispatchResponse    = 64 * 1024
)

// Outcome says how a successful dispatch was confirmed.
type Outcome int

const (
	// OutcomeDelivered means the endpoint confirmed the message.
	OutcomeDelivered Outcome = iota
	// OutcomeAssumed means the endpoint did not answer in time and the
	// message is taken as delivered.
	OutcomeAssumed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeAssumed:
		return "assumed"
	default:
		return "unknown"
	}
}

var (
	placeholderMarkers = []string{"your_", "your-", "<", "placeholder", "changeme"}
	// callbackWrapper matches a script callback such as `cb_1712({...});`
	callbackWrapper = regexp.MustCompile(`(?s)^\s*[A-Za-z_$][\w$.]*\s*\(\s*(.*?)\s*\)\s*;?\s*$`)
)

// dispatchResult is the confirmation object the endpoint answers with.
type dispatchResult struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// DispatcherConfig configures the primary notification endpoint.
type DispatcherConfig struct {
	Endpoint         string
	Timeout          time.Duration
	TimeoutAsSuccess bool
	Client           *http.Client
}

// DispatcherConfigFrom reads NOTIFY_ENDPOINT, NOTIFY_TIMEOUT_SECONDS and
// NOTIFY_TIMEOUT_AS_SUCCESS.
func DispatcherConfigFrom(cfg map[string]string) DispatcherConfig {
	return DispatcherConfig{
		Endpoint:         config.GetString(cfg, "NOTIFY_ENDPOINT", ""),
		Timeout:          config.GetSeconds(cfg, "NOTIFY_TIMEOUT_SECONDS", defaultDispatchTimeout),
		TimeoutAsSuccess: config.GetBool(cfg, "NOTIFY_TIMEOUT_AS_SUCCESS", true),
	}
}

// Dispatcher delivers form submissions to the operator's messaging endpoint
// with one GET request. It keeps no state between calls.
type Dispatcher struct {
	endpoint         string
	timeout          time.Duration
	timeoutAsSuccess bool
	client           *http.Client
	logger           zerolog.Logger
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Dispatcher{
		endpoint:         strings.TrimSpace(cfg.Endpoint),
		timeout:          timeout,
		timeoutAsSuccess: cfg.TimeoutAsSuccess,
		client:           client,
		logger:           log.With().Str("component", "dispatcher").Logger(),
	}
}

// Configured reports whether the endpoint is set to something real.
func (d *Dispatcher) Configured() bool {
	return endpointConfigured(d.endpoint)
}

func endpointConfigured(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	lower := strings.ToLower(endpoint)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// Dispatch sends one submission. The submission's Timestamp is stamped when
// zero. A timeout counts as success when the dispatcher is configured so.
func (d *Dispatcher) Dispatch(ctx context.Context, submission models.ContactSubmission) (Outcome, error) {
	if !d.Configured() {
		return OutcomeDelivered, errs.NewDispatchMisconfiguredError(webhookChannel)
	}

	if submission.Timestamp.IsZero() {
		submission.Timestamp = time.Now().UTC()
	}

	requestURL, err := d.requestURL(submission)
	if err != nil {
		return OutcomeDelivered, errs.NewDispatchMisconfiguredError(webhookChannel)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return OutcomeDelivered, errs.NewDispatchUnreachableError(webhookChannel, err)
	}
	req.Header.Set("Accept", "application/json, text/javascript")

	resp, err := d.client.Do(req)
	if err != nil {
		return d.failed(ctx, err, submission)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDispatchResponse))
	if err != nil {
		return d.failed(ctx, err, submission)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return OutcomeDelivered, errs.NewDispatchRejectedError(webhookChannel, fmt.Sprintf("status %d", resp.StatusCode))
	}

	result, err := parseDispatchResult(body)
	if err != nil {
		return OutcomeDelivered, errs.NewDispatchRejectedError(webhookChannel, "unrecognized response")
	}
	if !result.Success && result.Status != "OK" {
		reason := result.Error
		if reason == "" {
			reason = "endpoint reported failure"
		}
		return OutcomeDelivered, errs.NewDispatchRejectedError(webhookChannel, reason)
	}

	d.logger.Info().
		Str("source", submission.Source).
		Str("project", submission.Project).
		Msg("Submission delivered")
	return OutcomeDelivered, nil
}

// failed classifies a transport error. Only our own deadline counts as a
// timeout; a caller cancelling the request is a plain failure.
func (d *Dispatcher) failed(ctx context.Context, err error, submission models.ContactSubmission) (Outcome, error) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if d.timeoutAsSuccess {
			d.logger.Warn().
				Dur("timeout", d.timeout).
				Str("source", submission.Source).
				Msg("Notification endpoint did not answer in time, assuming delivered")
			return OutcomeAssumed, nil
		}
		return OutcomeDelivered, errs.NewDispatchTimeoutError(webhookChannel, d.timeout)
	}
	return OutcomeDelivered, errs.NewDispatchUnreachableError(webhookChannel, err)
}

func (d *Dispatcher) requestURL(submission models.ContactSubmission) (string, error) {
	base, err := url.Parse(d.endpoint)
	if err != nil {
		return "", err
	}
	query := base.Query()
	query.Set("action", "send_message")
	query.Set("name", submission.Name)
	query.Set("email", submission.Email)
	query.Set("telegram", submission.Telegram)
	query.Set("message", submission.Message)
	query.Set("project", submission.Project)
	query.Set("timestamp", submission.Timestamp.UTC().Format(time.RFC3339))
	query.Set("source", submission.Source)
	if submission.Role != "" {
		query.Set("role", submission.Role)
	}
	base.RawQuery = query.Encode()
	return base.String(), nil
}

// parseDispatchResult accepts a bare JSON object or one wrapped in a script
// callback.
func parseDispatchResult(body []byte) (dispatchResult, error) {
	var result dispatchResult
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		match := callbackWrapper.FindStringSubmatch(trimmed)
		if match == nil {
			return result, fmt.Errorf("response is neither JSON nor a callback")
		}
		trimmed = match[1]
	}
	err := json.Unmarshal([]byte(trimmed), &result)
	return result, err
}
