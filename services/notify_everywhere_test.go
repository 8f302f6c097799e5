package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeMirror struct {
	name string
	err  error

	mu   sync.Mutex
	seen []models.ContactSubmission
}

func (m *fakeMirror) Name() string { return m.name }

func (m *fakeMirror) Mirror(ctx context.Context, submission models.ContactSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, submission)
	return m.err
}

func TestNotifierFansOut(t *testing.T) {
	server, _ := endpointAnswering(t, http.StatusOK, `{"success":true}`)
	healthy := &fakeMirror{name: "healthy"}
	broken := &fakeMirror{name: "broken", err: errors.New("mailbox full")}

	notifier := NewNotifier(NewDispatcher(DispatcherConfig{Endpoint: server.URL}), healthy, broken)

	sub := submission()
	outcome, err := notifier.Notify(context.Background(), sub)
	require.NoError(t, err, "mirror failures are not reported")
	assert.Equal(t, OutcomeDelivered, outcome)
	notifier.Wait()

	require.Len(t, healthy.seen, 1)
	assert.Equal(t, sub.Timestamp, healthy.seen[0].Timestamp)
	assert.Len(t, broken.seen, 1)
}

func TestNotifierReportsPrimaryFailure(t *testing.T) {
	server, _ := endpointAnswering(t, http.StatusOK, `{"success":false}`)
	mirror := &fakeMirror{name: "copy"}
	notifier := NewNotifier(NewDispatcher(DispatcherConfig{Endpoint: server.URL}), mirror)

	_, err := notifier.Notify(context.Background(), submission())
	assert.ErrorIs(t, err, errs.ErrDispatchRejected)
	notifier.Wait()
	assert.Len(t, mirror.seen, 1)
}

// blockingMirror holds every copy until released.
type blockingMirror struct {
	release chan struct{}
	done    chan struct{}
}

func (m *blockingMirror) Name() string { return "slow" }

func (m *blockingMirror) Mirror(ctx context.Context, submission models.ContactSubmission) error {
	<-m.release
	close(m.done)
	return nil
}

func TestNotifierDoesNotWaitForMirrors(t *testing.T) {
	server, _ := endpointAnswering(t, http.StatusOK, `{"success":true}`)
	slow := &blockingMirror{release: make(chan struct{}), done: make(chan struct{})}
	notifier := NewNotifier(NewDispatcher(DispatcherConfig{Endpoint: server.URL}), slow)

	answered := make(chan Outcome, 1)
	go func() {
		outcome, err := notifier.Notify(context.Background(), submission())
		assert.NoError(t, err)
		answered <- outcome
	}()

	select {
	case outcome := <-answered:
		assert.Equal(t, OutcomeDelivered, outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("visitor kept waiting for a mirror")
	}

	close(slow.release)
	notifier.Wait()
	select {
	case <-slow.done:
	default:
		t.Fatal("Wait returned before the mirror finished")
	}
}

func TestNotifierMisconfiguredSkipsMirrors(t *testing.T) {
	mirror := &fakeMirror{name: "copy"}
	notifier := NewNotifier(NewDispatcher(DispatcherConfig{}), mirror)

	_, err := notifier.Notify(context.Background(), submission())
	assert.True(t, errs.IsDispatchMisconfiguredError(err))
	assert.Empty(t, mirror.seen)
}

func TestNotifierStampsTimestamp(t *testing.T) {
	server, queries := endpointAnswering(t, http.StatusOK, `{"status":"OK"}`)
	mirror := &fakeMirror{name: "copy"}
	notifier := NewNotifier(NewDispatcher(DispatcherConfig{Endpoint: server.URL}), mirror)

	sub := submission()
	sub.Timestamp = time.Time{}

	_, err := notifier.Notify(context.Background(), sub)
	require.NoError(t, err)
	assert.NotEmpty(t, (<-queries).Get("timestamp"))
	notifier.Wait()
	require.Len(t, mirror.seen, 1)
	assert.False(t, mirror.seen[0].Timestamp.IsZero())
}

func TestNewNotifierFromConfigSkipsUnconfiguredMirrors(t *testing.T) {
	notifier := NewNotifierFromConfig(map[string]string{"NOTIFY_ENDPOINT": "https://hooks.example/exec"})
	assert.Empty(t, notifier.mirrors)
	assert.True(t, notifier.primary.Configured())

	notifier = NewNotifierFromConfig(map[string]string{
		"RESEND_API_KEY":    "re_test",
		"RESEND_FROM_EMAIL": "Reunion <site@reunion.example>",
		"NOTIFY_EMAIL_TO":   "ops@reunion.example",
	})
	require.Len(t, notifier.mirrors, 1)
	assert.Equal(t, "email", notifier.mirrors[0].Name())
}

func TestEmailMirrorSendsResendPayload(t *testing.T) {
	var received ResendEmailRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer server.Close()

	mirror := NewEmailMirror(map[string]string{
		"RESEND_API_KEY":    "re_test",
		"RESEND_FROM_EMAIL": "Reunion <site@reunion.example>",
		"NOTIFY_EMAIL_TO":   "ops@reunion.example, producer@reunion.example",
		"RESEND_BASE_URL":   server.URL,
		"SITE_BASE_URL":     "https://reunion.example/",
	}, server.Client())
	require.NotNil(t, mirror)

	sub := submission()
	sub.ProjectID = "8d7f"
	sub.Message = "<script>alert(1)</script>"
	require.NoError(t, mirror.Mirror(context.Background(), sub))

	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, []string{"ops@reunion.example", "producer@reunion.example"}, received.To)
	assert.Equal(t, "luke@rebellion.org", received.ReplyTo)
	assert.Equal(t, "Project application: Luke (Imperial Commando)", received.Subject)
	assert.Contains(t, received.Html, "https://reunion.example/project/8d7f")
	assert.NotContains(t, received.Html, "<script>")
}

func TestEmailMirrorReportsResendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer server.Close()

	mirror := NewEmailMirror(map[string]string{
		"RESEND_API_KEY":    "re_test",
		"RESEND_FROM_EMAIL": "bad",
		"NOTIFY_EMAIL_TO":   "ops@reunion.example",
		"RESEND_BASE_URL":   server.URL,
	}, nil)

	err := mirror.Mirror(context.Background(), submission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from address")
}

type fakeMessages struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeMessages) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestSMSMirror(t *testing.T) {
	assert.Nil(t, NewSMSMirror(map[string]string{"TWILIO_ACCOUNT_SID": "AC1"}))

	messages := &fakeMessages{}
	mirror := &SMSMirror{messages: messages, from: "+15550000", recipients: []string{"+15551111", "+15552222"}}

	require.NoError(t, mirror.Mirror(context.Background(), submission()))
	require.Len(t, messages.params, 2)
	assert.Equal(t, "+15551111", *messages.params[0].To)
	assert.Equal(t, "+15550000", *messages.params[0].From)
	assert.Contains(t, *messages.params[0].Body, "Telegram: @farmboy")

	messages = &fakeMessages{err: errors.New("unverified number")}
	mirror.messages = messages
	assert.Error(t, mirror.Mirror(context.Background(), submission()))
	assert.Len(t, messages.params, 1)
}
