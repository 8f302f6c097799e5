package api

import (
	"net/http"
	"time"

	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/rs/zerolog/log"
)

type siteHandler struct {
	responder   Responder
	content     models.SiteContent
	startupTime time.Time
}

func newSiteHandler(startupTime time.Time) siteHandler {
	logger := log.With().Str("handlerName", "siteHandler").Logger()

	return siteHandler{
		responder:   NewResponder(logger),
		content:     models.DefaultSiteContent(),
		startupTime: startupTime,
	}
}

// getSite returns the landing page copy
// @Summary Landing page content
// @Tags Site
// @Produce json
// @Success 200 {object} models.SiteContent "Landing content"
// @Router /site [get]
func (h siteHandler) getSite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, h.content)
	}
}

func (h siteHandler) healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, map[string]string{
			"status": "ok",
			"uptime": time.Since(h.startupTime).Round(time.Second).String(),
		})
	}
}
