package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrValidation is the root of every input validation failure. Submissions
// that fail validation are blocked before any store call or dispatch.
var ErrValidation = errors.New("validation failed")

// Request & Input-Validation Errors
var (
	ErrMalformedPayload     = fmt.Errorf("%w: malformed payload", ErrValidation)
	ErrMissingRequiredField = fmt.Errorf("%w: missing required field", ErrValidation)
	ErrInvalidField         = fmt.Errorf("%w: invalid field", ErrValidation)
	ErrInvalidEmail         = fmt.Errorf("%w: invalid email", ErrValidation)
	ErrInvalidHandle        = fmt.Errorf("%w: invalid telegram handle", ErrValidation)
	ErrMaxBodySizeExceeded  = fmt.Errorf("%w: max body size exceeded", ErrValidation)
	ErrConfirmationRequired = fmt.Errorf("%w: confirmation required", ErrValidation)
)

// User-facing messages, one per validation step.
const (
	MsgFillRequiredFields = "Please fill in all required fields"
	MsgInvalidEmail       = "Please enter a valid email address"
	MsgInvalidHandle      = "Telegram username must be 5-32 letters, digits or underscores"
)

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

// NewMissingRequiredFieldsError reports every blank required field. Field
// carries the first one so a form can focus it.
func NewMissingRequiredFieldsError(fieldNames []string) *ApiErr {
	apiErr := &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingRequiredField,
		Details:    MsgFillRequiredFields,
	}
	if len(fieldNames) > 0 {
		apiErr.Field = fieldNames[0]
		apiErr.Cause = fmt.Errorf("missing: %s", strings.Join(fieldNames, ", "))
	}
	return apiErr
}

func NewInvalidFieldError(fieldName string, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidField,
		Details:    fmt.Sprintf("Invalid field %s: %s", fieldName, reason),
		Field:      fieldName,
	}
}

func NewInvalidEmailError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidEmail,
		Details:    MsgInvalidEmail,
		Field:      fieldName,
	}
}

func NewInvalidHandleError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidHandle,
		Details:    MsgInvalidHandle,
		Field:      fieldName,
	}
}

func NewMaxBodySizeExceededError(maxSize int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrMaxBodySizeExceeded,
		Details:    fmt.Sprintf("Request body size exceeded maximum allowed size of %d bytes", maxSize),
		Field:      "body_size",
	}
}

func NewConfirmationRequiredError(action string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusPreconditionRequired,
		err:        ErrConfirmationRequired,
		Details:    fmt.Sprintf("Confirm the %s by repeating the request with confirm=true", action),
		Field:      "confirm",
	}
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsMissingRequiredFieldError(err error) bool {
	return errors.Is(err, ErrMissingRequiredField)
}

func IsInvalidFieldError(err error) bool {
	return errors.Is(err, ErrInvalidField)
}

func IsInvalidEmailError(err error) bool {
	return errors.Is(err, ErrInvalidEmail)
}

func IsInvalidHandleError(err error) bool {
	return errors.Is(err, ErrInvalidHandle)
}
