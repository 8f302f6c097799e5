package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/reunionrs/reunion-site-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxUploadSize bounds a multipart media upload.
const maxUploadSize = 200 << 20

// MediaStore puts uploaded media somewhere durable. services.Uploader
// satisfies it.
type MediaStore interface {
	Put(ctx context.Context, upload services.Upload) (string, error)
}

type uploadHandler struct {
	responder Responder
	logger    zerolog.Logger
	media     MediaStore
}

func newUploadHandler(media MediaStore) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()

	return uploadHandler{
		responder: NewResponder(logger),
		logger:    logger,
		media:     media,
	}
}

// uploadMedia stores a poster, video or screenshot and returns its URL
// @Summary Upload media
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param kind formData string true "poster, video or screenshot"
// @Param file formData file true "Media file"
// @Success 201 {object} UploadResponse "Durable URL"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid upload"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Uploads are not configured"
// @Failure 502 {object} ErrorResponse "Object storage failed"
// @Router /admin/uploads [post]
func (h uploadHandler) uploadMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.media == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("media uploads are not configured"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(maxUploadSize))
				return
			}
			h.responder.WriteError(w, errs.NewMalformedPayloadError("upload", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldsError([]string{"file"}))
			return
		}
		defer file.Close()

		url, err := h.media.Put(r.Context(), services.Upload{
			Kind:        r.FormValue("kind"),
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteStatusJSON(w, http.StatusCreated, UploadResponse{URL: url})
	}
}
