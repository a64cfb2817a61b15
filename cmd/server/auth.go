package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
)

const (
	sessionCookieName = "freightcost_session"
	sessionTTL        = 12 * time.Hour
)

// authService guards the rate administration pages. There is a single admin
// account, configured through the environment.
type authService struct {
	adminEmail    string
	passwordHash  string
	sessionSecret []byte
	secureCookie  bool
	now           func() time.Time
}

func newAuthService(adminEmail, passwordHash, sessionSecret string, secureCookie bool) *authService {
	return &authService{
		adminEmail:    strings.ToLower(strings.TrimSpace(adminEmail)),
		passwordHash:  passwordHash,
		sessionSecret: []byte(sessionSecret),
		secureCookie:  secureCookie,
		now:           time.Now,
	}
}

// adminPasswordHash returns the configured argon2id hash, deriving one from the
// plain password when only that is set.
func adminPasswordHash(hash, password string) (string, error) {
	if hash != "" || password == "" {
		return hash, nil
	}
	created, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}
	return created, nil
}

func (a *authService) enabled() bool {
	return a.adminEmail != "" && a.passwordHash != ""
}

func (a *authService) validateCredentials(email, password string) (bool, error) {
	if !a.enabled() {
		return false, nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if subtle.ConstantTimeCompare([]byte(email), []byte(a.adminEmail)) != 1 {
		return false, nil
	}

	ok, err := argon2id.ComparePasswordAndHash(password, a.passwordHash)
	if err != nil {
		return false, fmt.Errorf("compare admin password: %w", err)
	}
	return ok, nil
}

func (a *authService) createSessionValue(email string, expires time.Time) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(email + "|" + strconv.FormatInt(expires.Unix(), 10)))
	mac := hmac.New(sha256.New, a.sessionSecret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return payload + "." + signature
}

func (a *authService) verifySessionValue(value string) (string, bool) {
	payload, signature, found := strings.Cut(value, ".")
	if !found {
		return "", false
	}

	mac := hmac.New(sha256.New, a.sessionSecret)
	_, _ = mac.Write([]byte(payload))
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(provided, expected) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}

	email, rawExpiry, found := strings.Cut(string(decoded), "|")
	if !found || email == "" {
		return "", false
	}
	expiry, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil || a.now().Unix() >= expiry {
		return "", false
	}
	if email != a.adminEmail {
		return "", false
	}

	return email, true
}

func (a *authService) setSessionCookie(w http.ResponseWriter, email string) {
	expires := a.now().Add(sessionTTL)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    a.createSessionValue(strings.ToLower(strings.TrimSpace(email)), expires),
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authService) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authService) authenticated(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}

	_, ok := a.verifySessionValue(cookie.Value)
	return ok
}

func (a *authService) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.authenticated(r) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
