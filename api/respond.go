package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/rs/zerolog"
)

// maxRequestBody bounds every JSON request body.
const maxRequestBody = 1 << 20

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteStatusJSON(w, http.StatusOK, data)
}

func (r Responder) WriteStatusJSON(w http.ResponseWriter, status int, data any) {
	// Marshal the data first so a failure can still become a 500
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().Msg(err.Error())
		r.WriteStatusJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal Server Error",
			Message: "An unexpected error occurred",
			Status:  "error",
		})
		return
	}

	response := ErrorResponse{
		Error:   apiErr.Error(),
		Message: apiErr.Message(),
		Status:  "error",
		Field:   apiErr.Field,
		Details: apiErr.Details,
	}

	// Add full error chain for debugging (especially useful for database errors)
	if apiErr.Cause != nil {
		response.Cause = apiErr.GetFullError()
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Err(apiErr).Msg("request failed")
	}

	r.WriteStatusJSON(w, apiErr.StatusCode, response)
}

// DecodeJSON reads a bounded JSON body into dst. Fields dst does not declare
// are ignored.
func (r Responder) DecodeJSON(w http.ResponseWriter, req *http.Request, payloadType string, dst any) error {
	body := http.MaxBytesReader(w, req.Body, maxRequestBody)
	decoder := json.NewDecoder(body)

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errs.NewMaxBodySizeExceededError(maxRequestBody)
		}
		r.logger.Debug().Err(err).Str("payload", payloadType).Msg("Failed to decode request body")
		return errs.NewMalformedPayloadError(payloadType, err)
	}
	if decoder.More() {
		return errs.NewMalformedPayloadError(payloadType, io.ErrUnexpectedEOF)
	}
	return nil
}
