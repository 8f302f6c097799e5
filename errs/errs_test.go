package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFamilies(t *testing.T) {
	assert.True(t, IsValidationError(NewMissingRequiredFieldsError([]string{"title"})))
	assert.True(t, IsValidationError(NewInvalidEmailError("email")))
	assert.True(t, IsInvalidHandleError(NewInvalidHandleError("telegram")))
	assert.False(t, IsStoreError(NewInvalidEmailError("email")))

	assert.True(t, IsStoreError(NewDatabaseError("create", "project", errors.New("boom"))))
	assert.True(t, IsDispatchError(NewDispatchRejectedError("telegram", "status ERROR")))
	assert.True(t, IsDispatchMisconfiguredError(NewDispatchMisconfiguredError("telegram")))

	assert.True(t, IsAuthError(NewSignInClosedError()))
	assert.True(t, IsUnauthorized(NewSignInClosedError()))
	assert.True(t, IsUnauthorized(Unauthorized))
	assert.False(t, IsAuthError(Unauthorized))

	assert.True(t, IsNotFound(NewNotFound("project")))
	assert.True(t, IsNotFound(NewNotFoundError("project not found")))
}

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
		family error
	}{
		{"duplicate", errors.New(`ERROR: duplicate key value violates unique constraint`), http.StatusConflict, ErrAlreadyExists},
		{"not found", errors.New("record not found"), http.StatusNotFound, ErrNotFound},
		{"connection", errors.New("failed to connect: connection refused"), http.StatusServiceUnavailable, ErrDatabaseConnection},
		{"deadline", errors.New("context deadline exceeded"), http.StatusServiceUnavailable, ErrDatabaseTimeout},
		{"generic", errors.New("syntax error"), http.StatusInternalServerError, ErrDatabaseQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := NewDatabaseError("update", "project", tt.cause)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.ErrorIs(t, apiErr, tt.family)
		})
	}
}

func TestNewDatabaseErrorKeepsClassification(t *testing.T) {
	notFound := NewNotFound("project")
	assert.Same(t, notFound, NewDatabaseError("update", "project", notFound))
}

func TestMessages(t *testing.T) {
	missing := NewMissingRequiredFieldsError([]string{"title", "status"})
	assert.Equal(t, MsgFillRequiredFields, missing.Message())
	assert.Equal(t, "title", missing.Field)
	assert.Contains(t, missing.GetFullError(), "missing: title, status")

	plain := NewApiErr(http.StatusTeapot, "short and stout")
	assert.Equal(t, "short and stout", plain.Message())
	assert.Equal(t, "short and stout", plain.Error())
}

func TestFromResponse(t *testing.T) {
	expired := FromResponse(http.StatusUnauthorized, "Session is invalid or has expired", "authorization")
	assert.True(t, IsUnauthorized(expired))
	assert.Equal(t, "Session is invalid or has expired", expired.Message())

	assert.True(t, IsValidationError(FromResponse(http.StatusBadRequest, MsgFillRequiredFields, "title")))
	assert.True(t, IsValidationError(FromResponse(http.StatusPreconditionRequired, "confirm", "confirm")))
	assert.True(t, IsNotFound(FromResponse(http.StatusNotFound, "project not found", "")))
	assert.True(t, IsStoreError(FromResponse(http.StatusServiceUnavailable, "down", "")))
	assert.True(t, IsDispatchError(FromResponse(http.StatusBadGateway, "rejected", "")))
}
