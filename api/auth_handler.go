package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/reunionrs/reunion-site-backend/auth"
	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// adminHome is where a completed browser sign-in lands.
const adminHome = "/admin"

type authHandler struct {
	responder       Responder
	logger          zerolog.Logger
	tokens          *auth.Tokens
	google          *auth.GoogleProvider
	backendPassword string
	secureCookies   bool
}

func newAuthHandler(tokens *auth.Tokens, google *auth.GoogleProvider, backendPassword string, secureCookies bool) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		tokens:          tokens,
		google:          google,
		backendPassword: backendPassword,
		secureCookies:   secureCookies,
	}
}

// signIn starts the Google sign-in flow
// @Summary Start sign-in
// @Tags Auth
// @Success 302 "Redirect to the Google consent screen"
// @Failure 404 {object} ErrorResponse "Google sign-in is not configured"
// @Router /auth/signin [get]
func (h authHandler) signIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.google == nil {
			h.responder.WriteError(w, errs.NewSignInNotEnabledError("Google"))
			return
		}

		consentURL, stateCookie, err := h.google.Begin(h.secureCookies)
		if err != nil {
			h.responder.WriteError(w, errs.NewSignInError(err))
			return
		}

		http.SetCookie(w, stateCookie)
		http.Redirect(w, r, consentURL, http.StatusFound)
	}
}

// googleCallback finishes the Google sign-in flow and sets the session cookie
// @Summary Google sign-in callback
// @Tags Auth
// @Success 303 "Redirect to the admin panel"
// @Failure 401 {object} ErrorResponse "Sign-in failed"
// @Router /auth/google/callback [get]
func (h authHandler) googleCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.google == nil {
			h.responder.WriteError(w, errs.NewSignInNotEnabledError("Google"))
			return
		}

		user, err := h.google.Complete(r.Context(), r)
		if err != nil {
			h.logger.Warn().Err(err).Msg("google sign-in failed")
			h.responder.WriteError(w, err)
			return
		}

		token, expiresAt, err := h.tokens.Issue(user)
		if err != nil {
			h.responder.WriteError(w, errs.NewSignInError(err))
			return
		}

		h.logger.Info().Str("operator", user.ID).Msg("operator signed in")
		http.SetCookie(w, auth.SessionCookieFor(token, expiresAt, h.secureCookies))
		http.Redirect(w, r, adminHome, http.StatusSeeOther)
	}
}

// issueToken exchanges the operator password for a session token
// @Summary Issue session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body TokenRequest true "Operator password"
// @Success 200 {object} TokenResponse "Session token"
// @Failure 401 {object} ErrorResponse "Invalid password"
// @Failure 404 {object} ErrorResponse "Password sign-in is not configured"
// @Router /auth/token [post]
func (h authHandler) issueToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.backendPassword == "" {
			h.responder.WriteError(w, errs.NewSignInNotEnabledError("Password"))
			return
		}

		var req TokenRequest
		if err := h.responder.DecodeJSON(w, r, "credentials", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Password)), []byte(h.backendPassword)) != 1 {
			h.logger.Warn().Str("remote_addr", r.RemoteAddr).Msg("rejected operator password")
			h.responder.WriteError(w, errs.NewInvalidPasswordError())
			return
		}

		user := auth.User{ID: "operator", Name: "Operator", Provider: "password"}
		token, expiresAt, err := h.tokens.Issue(user)
		if err != nil {
			h.responder.WriteError(w, errs.NewSignInError(err))
			return
		}

		http.SetCookie(w, auth.SessionCookieFor(token, expiresAt, h.secureCookies))
		h.responder.WriteJSON(w, TokenResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			User:      user,
		})
	}
}

// signOut clears the session cookie
// @Summary Sign out
// @Tags Auth
// @Produce json
// @Success 200 {object} StatusResponse "Signed out"
// @Router /auth/signout [post]
func (h authHandler) signOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, auth.ClearedSessionCookie(h.secureCookies))
		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "signed out"})
	}
}

// session reports whether the caller is signed in. It never fails; an
// invalid token reads as unauthenticated.
// @Summary Current session
// @Tags Auth
// @Produce json
// @Success 200 {object} SessionResponse "Session state"
// @Router /auth/session [get]
func (h authHandler) session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.tokens.Verify(auth.TokenFromRequest(r))
		if err != nil {
			h.responder.WriteJSON(w, SessionResponse{State: auth.StateUnauthenticated.String()})
			return
		}
		h.responder.WriteJSON(w, SessionResponse{State: auth.StateAuthenticated.String(), User: user})
	}
}
