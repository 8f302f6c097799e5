package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/reunionrs/reunion-site-backend/config"
	"github.com/reunionrs/reunion-site-backend/errs"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// StateCookie holds the signed OAuth state between sign-in and callback.
	StateCookie = "reunion_oauth_state"

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	stateLifetime     = 10 * time.Minute
)

// googleUser is the part of the userinfo response we keep.
type googleUser struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleProvider runs the OAuth2 authorization code flow against Google.
type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
	stateKey    []byte
}

// NewGoogleProviderFromConfig reads GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and
// GOOGLE_REDIRECT_URL. It returns nil when Google sign-in is not configured.
func NewGoogleProviderFromConfig(cfg map[string]string, stateKey string) *GoogleProvider {
	clientID := config.GetString(cfg, "GOOGLE_CLIENT_ID", "")
	clientSecret := config.GetString(cfg, "GOOGLE_CLIENT_SECRET", "")
	redirectURL := config.GetString(cfg, "GOOGLE_REDIRECT_URL", "")
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil
	}
	return NewGoogleProvider(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}, googleUserInfoURL, stateKey)
}

func NewGoogleProvider(oauth *oauth2.Config, userInfoURL, stateKey string) *GoogleProvider {
	return &GoogleProvider{oauth: oauth, userInfoURL: userInfoURL, stateKey: []byte(stateKey)}
}

// Begin returns the consent URL and the cookie that pins its state.
func (g *GoogleProvider) Begin(secure bool) (string, *http.Cookie, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", nil, err
	}
	state := base64.RawURLEncoding.EncodeToString(nonce)

	cookie := &http.Cookie{
		Name:     StateCookie,
		Value:    state + "." + g.sign(state),
		Path:     "/auth",
		MaxAge:   int(stateLifetime.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), cookie, nil
}

// Complete handles the provider's redirect back to us. Provider errors and a
// state mismatch are mapped onto the sign-in error family.
func (g *GoogleProvider) Complete(ctx context.Context, r *http.Request) (User, error) {
	query := r.URL.Query()
	if code := query.Get("error"); code != "" {
		return User{}, MapProviderError(code)
	}

	cookie, err := r.Cookie(StateCookie)
	if err != nil || !g.stateMatches(cookie.Value, query.Get("state")) {
		return User{}, errs.NewSignInCancelledError()
	}

	code := query.Get("code")
	if code == "" {
		return User{}, errs.NewSignInCancelledError()
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return User{}, MapProviderError(exchangeErrorCode(err))
	}

	return g.fetchUser(ctx, token)
}

func (g *GoogleProvider) fetchUser(ctx context.Context, token *oauth2.Token) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return User{}, errs.NewSignInError(err)
	}

	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return User{}, errs.NewSignInError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return User{}, errs.NewSignInError(fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, body))
	}

	var info googleUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return User{}, errs.NewSignInError(err)
	}
	if info.Subject == "" {
		return User{}, errs.NewSignInError(fmt.Errorf("userinfo without subject"))
	}

	return User{
		ID:       "google:" + info.Subject,
		Email:    info.Email,
		Name:     info.Name,
		Provider: "google",
	}, nil
}

func (g *GoogleProvider) sign(state string) string {
	mac := hmac.New(sha256.New, g.stateKey)
	mac.Write([]byte(state))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (g *GoogleProvider) stateMatches(cookieValue, state string) bool {
	stored, signature, ok := strings.Cut(cookieValue, ".")
	if !ok || state == "" || stored != state {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(g.sign(stored)))
}

// MapProviderError turns an OAuth error code into the error shown to the
// operator.
func MapProviderError(code string) *errs.ApiErr {
	switch code {
	case "access_denied", "popup_closed_by_user", "cancelled_popup_request":
		return errs.NewSignInClosedError()
	case "interaction_required", "popup_blocked", "login_required":
		return errs.NewSignInBlockedError()
	case "state_mismatch":
		return errs.NewSignInCancelledError()
	default:
		return errs.NewSignInError(fmt.Errorf("provider error %q", code))
	}
}

func exchangeErrorCode(err error) string {
	if retrieveErr, ok := err.(*oauth2.RetrieveError); ok && retrieveErr.ErrorCode != "" {
		return retrieveErr.ErrorCode
	}
	return "exchange_failed"
}
