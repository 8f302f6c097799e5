package errs

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrDispatch is the root of every notification delivery failure.
var ErrDispatch = errors.New("notification dispatch failed")

// Dispatch Errors
var (
	ErrDispatchMisconfigured = fmt.Errorf("%w: endpoint not configured", ErrDispatch)
	ErrDispatchUnreachable   = fmt.Errorf("%w: endpoint unreachable", ErrDispatch)
	ErrDispatchRejected      = fmt.Errorf("%w: endpoint rejected the message", ErrDispatch)
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
)

// Object storage errors
var (
	ErrUploadFailed = errors.New("upload failed")
)

func NewDispatchMisconfiguredError(channel string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrDispatchMisconfigured,
		Details:    fmt.Sprintf("The %s channel is not configured", channel),
	}
}

func NewDispatchUnreachableError(channel string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrDispatchUnreachable,
		Details:    fmt.Sprintf("Could not reach the %s endpoint", channel),
		Cause:      cause,
	}
}

func NewDispatchRejectedError(channel string, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrDispatchRejected,
		Details:    fmt.Sprintf("The %s endpoint did not accept the message: %s", channel, reason),
	}
}

func NewDispatchTimeoutError(channel string, timeout time.Duration) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusGatewayTimeout,
		err:        ErrDispatchUnreachable,
		Details:    fmt.Sprintf("The %s endpoint did not answer within %v", channel, timeout),
	}
}

func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("Configuration error for %s", configName),
		Cause:      cause,
	}
}

func NewUploadError(key string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrUploadFailed,
		Details:    fmt.Sprintf("Failed to store %s", key),
		Cause:      cause,
	}
}

func IsDispatchError(err error) bool {
	return errors.Is(err, ErrDispatch)
}

func IsDispatchMisconfiguredError(err error) bool {
	return errors.Is(err, ErrDispatchMisconfigured)
}
