package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submission() models.ContactSubmission {
	return models.ContactSubmission{
		Name:      "Luke",
		Email:     "luke@rebellion.org",
		Telegram:  "@farmboy",
		Message:   "I want to join",
		Project:   "Imperial Commando",
		Source:    models.SourceProjectApply,
		Timestamp: time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC),
	}
}

func endpointAnswering(t *testing.T, status int, body string) (*httptest.Server, chan url.Values) {
	t.Helper()
	queries := make(chan url.Values, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query()
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, queries
}

func TestDispatchSendsQuery(t *testing.T) {
	server, queries := endpointAnswering(t, http.StatusOK, `{"success":true}`)
	dispatcher := NewDispatcher(DispatcherConfig{Endpoint: server.URL + "/exec"})

	outcome, err := dispatcher.Dispatch(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, outcome)

	query := <-queries
	assert.Equal(t, "send_message", query.Get("action"))
	assert.Equal(t, "Luke", query.Get("name"))
	assert.Equal(t, "luke@rebellion.org", query.Get("email"))
	assert.Equal(t, "@farmboy", query.Get("telegram"))
	assert.Equal(t, "I want to join", query.Get("message"))
	assert.Equal(t, "Imperial Commando", query.Get("project"))
	assert.Equal(t, "2024-05-04T10:00:00Z", query.Get("timestamp"))
	assert.Equal(t, "project-apply", query.Get("source"))
}

func TestDispatchResultShapes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		success bool
	}{
		{"success flag", http.StatusOK, `{"success":true}`, true},
		{"status OK", http.StatusOK, `{"status":"OK"}`, true},
		{"callback wrapped", http.StatusOK, "cb_1714({\"success\":true});", true},
		{"callback wrapped status", http.StatusOK, "window.cb_1714({\"status\":\"OK\"})", true},
		{"explicit failure", http.StatusOK, `{"success":false,"error":"quota"}`, false},
		{"status lowercase", http.StatusOK, `{"status":"ok"}`, false},
		{"empty object", http.StatusOK, `{}`, false},
		{"html page", http.StatusOK, `<html>moved</html>`, false},
		{"server error", http.StatusInternalServerError, `{"success":true}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := endpointAnswering(t, tt.status, tt.body)
			dispatcher := NewDispatcher(DispatcherConfig{Endpoint: server.URL})

			_, err := dispatcher.Dispatch(context.Background(), submission())
			if tt.success {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errs.IsDispatchError(err), "got %v", err)
		})
	}
}

func TestDispatchMisconfigured(t *testing.T) {
	for _, endpoint := range []string{"", "   ", "YOUR_SCRIPT_URL", "https://script.google.com/macros/s/your-deployment-id/exec", "not a url"} {
		dispatcher := NewDispatcher(DispatcherConfig{Endpoint: endpoint})
		assert.False(t, dispatcher.Configured(), endpoint)

		start := time.Now()
		_, err := dispatcher.Dispatch(context.Background(), submission())
		assert.True(t, errs.IsDispatchMisconfiguredError(err), endpoint)
		assert.Less(t, time.Since(start), time.Second)
	}
}

func TestDispatchTimeoutAssumesDelivery(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	dispatcher := NewDispatcher(DispatcherConfig{
		Endpoint:         server.URL,
		Timeout:          50 * time.Millisecond,
		TimeoutAsSuccess: true,
	})

	outcome, err := dispatcher.Dispatch(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAssumed, outcome)
}

func TestDispatchTimeoutAsFailure(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	dispatcher := NewDispatcher(DispatcherConfig{Endpoint: server.URL, Timeout: 50 * time.Millisecond})

	_, err := dispatcher.Dispatch(context.Background(), submission())
	assert.True(t, errs.IsDispatchError(err))
}

func TestDispatchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	dispatcher := NewDispatcher(DispatcherConfig{Endpoint: endpoint, TimeoutAsSuccess: true})
	_, err := dispatcher.Dispatch(context.Background(), submission())
	assert.ErrorIs(t, err, errs.ErrDispatchUnreachable)
}

func TestDispatcherConfigFrom(t *testing.T) {
	cfg := DispatcherConfigFrom(map[string]string{"NOTIFY_ENDPOINT": "https://hooks.example/exec"})
	assert.Equal(t, "https://hooks.example/exec", cfg.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.True(t, cfg.TimeoutAsSuccess)

	cfg = DispatcherConfigFrom(map[string]string{"NOTIFY_TIMEOUT_SECONDS": "3", "NOTIFY_TIMEOUT_AS_SUCCESS": "false"})
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.False(t, cfg.TimeoutAsSuccess)
}
