// Package auth holds the operator session: signed session tokens, the
// observable session holder, the guard state machine and the Google sign-in
// flow.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/reunionrs/reunion-site-backend/config"
	"github.com/reunionrs/reunion-site-backend/errs"
)

const (
	// SessionCookie carries the session token for browsers.
	SessionCookie = "reunion_session"
	tokenIssuer   = "reunion-site"
)

// User is the signed-in operator.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider"`
}

// SessionClaims is the JWT body of a session token.
type SessionClaims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NewTokensFromConfig reads JWT_SECRET and SESSION_TTL_HOURS.
func NewTokensFromConfig(cfg map[string]string) (*Tokens, error) {
	secret := config.GetString(cfg, "JWT_SECRET", "")
	if len(secret) < 16 {
		return nil, errs.NewConfigError("JWT_SECRET", fmt.Errorf("JWT_SECRET must be at least 16 characters"))
	}
	hours := config.GetInt(cfg, "SESSION_TTL_HOURS", 12)
	return NewTokens(secret, time.Duration(hours)*time.Hour), nil
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the user and returns it with its expiry.
func (t *Tokens) Issue(user User) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := SessionClaims{
		Email:    user.Email,
		Name:     user.Name,
		Provider: user.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, issuer and expiry of a token.
func (t *Tokens) Verify(tokenString string) (*User, error) {
	if tokenString == "" {
		return nil, errs.Unauthorized
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return nil, errs.NewInvalidTokenError()
	}

	return &User{
		ID:       claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Provider: claims.Provider,
	}, nil
}

// TokenFromRequest returns the bearer token, falling back to the session
// cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// SessionCookieFor builds the cookie that carries a token to the browser.
func SessionCookieFor(token string, expiresAt time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedSessionCookie removes the session cookie.
func ClearedSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
