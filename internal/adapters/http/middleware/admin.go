package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

// adminSessionTTL bounds how long an admin login stays valid.
const adminSessionTTL = 12 * time.Hour

const adminCookieName = "cohort_admin"

// SecureCookies controls the Secure flag on the admin cookie. Set true in
// production behind TLS.
var SecureCookies = false

// AdminSessions is an in-memory token store for the coach login. The
// dashboard has a single admin identity, so a session carries no profile,
// only its creation time.
type AdminSessions struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

// NewAdminSessions creates a new in-memory session store.
func NewAdminSessions() *AdminSessions {
	return &AdminSessions{tokens: make(map[string]time.Time)}
}

// Create stores a new session and returns the token.
// POST: Token is stored with the current creation time
func (s *AdminSessions) Create() (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = time.Now()
	return token, nil
}

// Valid reports whether the token names a live session.
// POST: Expired tokens are removed and report false
func (s *AdminSessions) Valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, ok := s.tokens[token]
	if !ok {
		return false
	}
	if time.Since(created) > adminSessionTTL {
		delete(s.tokens, token)
		return false
	}
	return true
}

// Delete removes a session by token.
func (s *AdminSessions) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// RequireAdmin returns middleware that blocks requests without a live
// admin session. The token rides in the session cookie or, for API
// clients, the X-Admin-Token header.
func RequireAdmin(sessions *AdminSessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.Valid(AdminToken(r)) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminToken extracts the session token from a request, header first.
func AdminToken(r *http.Request) string {
	if header := r.Header.Get("X-Admin-Token"); header != "" {
		return header
	}
	if cookie, err := r.Cookie(adminCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SetAdminCookie sets the admin session cookie on the response.
func SetAdminCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(adminSessionTTL / time.Second),
	})
}

// ClearAdminCookie removes the admin session cookie.
func ClearAdminCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
