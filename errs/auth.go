package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuth is the root of every sign-in failure.
var ErrAuth = fmt.Errorf("%w: sign-in failed", ErrUnauthorized)

// Authentication Errors
var (
	ErrMissingToken     = fmt.Errorf("%w: missing session token", ErrUnauthorized)
	ErrInvalidToken     = fmt.Errorf("%w: invalid session token", ErrUnauthorized)
	ErrSignInClosed     = fmt.Errorf("%w: sign-in window closed", ErrAuth)
	ErrSignInBlocked    = fmt.Errorf("%w: sign-in blocked", ErrAuth)
	ErrSignInCancelled  = fmt.Errorf("%w: sign-in cancelled", ErrAuth)
	ErrSignInGeneric    = fmt.Errorf("%w: sign-in error", ErrAuth)
	ErrInvalidPassword  = fmt.Errorf("%w: invalid password", ErrAuth)
	ErrSignInNotEnabled = fmt.Errorf("%w: sign-in method not enabled", ErrAuth)
)

var (
	Unauthorized = &ApiErr{StatusCode: http.StatusUnauthorized, err: ErrMissingToken, Details: "Sign in to continue"}
)

func NewInvalidTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidToken,
		Details:    "Session is invalid or has expired",
		Field:      "authorization",
	}
}

func NewSignInClosedError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrSignInClosed,
		Details:    "The sign-in window was closed before completing",
	}
}

func NewSignInBlockedError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrSignInBlocked,
		Details:    "The sign-in window was blocked. Allow pop-ups and try again",
	}
}

func NewSignInCancelledError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrSignInCancelled,
		Details:    "The sign-in request was cancelled. Try again",
	}
}

func NewSignInError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrSignInGeneric,
		Details:    "Sign-in failed. Try again later",
		Cause:      cause,
	}
}

func NewInvalidPasswordError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidPassword,
		Details:    "Invalid password",
		Field:      "password",
	}
}

func NewSignInNotEnabledError(method string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        ErrSignInNotEnabled,
		Details:    fmt.Sprintf("%s sign-in is not enabled", method),
	}
}

func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuth)
}
