package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAdminSessions_CreateAndValid(t *testing.T) {
	sessions := NewAdminSessions()

	token, err := sessions.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if token == "" {
		t.Fatal("Create() returned empty token")
	}
	if !sessions.Valid(token) {
		t.Error("Valid() = false for freshly created token")
	}
	if sessions.Valid("no-such-token") {
		t.Error("Valid() = true for unknown token")
	}
}

func TestAdminSessions_Expiry(t *testing.T) {
	sessions := NewAdminSessions()
	token, err := sessions.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sessions.mu.Lock()
	sessions.tokens[token] = time.Now().Add(-adminSessionTTL - time.Minute)
	sessions.mu.Unlock()

	if sessions.Valid(token) {
		t.Error("Valid() = true for expired token")
	}
	sessions.mu.RLock()
	_, stillThere := sessions.tokens[token]
	sessions.mu.RUnlock()
	if stillThere {
		t.Error("expired token was not removed from the store")
	}
}

func TestAdminSessions_Delete(t *testing.T) {
	sessions := NewAdminSessions()
	token, err := sessions.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sessions.Delete(token)
	if sessions.Valid(token) {
		t.Error("Valid() = true after Delete()")
	}
}

func TestRequireAdmin(t *testing.T) {
	sessions := NewAdminSessions()
	token, err := sessions.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	handler := RequireAdmin(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "no credentials",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid header token",
			setup: func(r *http.Request) {
				r.Header.Set("X-Admin-Token", token)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "valid cookie token",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: adminCookieName, Value: token})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "bogus header token",
			setup: func(r *http.Request) {
				r.Header.Set("X-Admin-Token", "bogus")
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSetAndClearAdminCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetAdminCookie(rec, "tok-123")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != adminCookieName || c.Value != "tok-123" {
		t.Errorf("cookie = %s=%s, want %s=tok-123", c.Name, c.Value, adminCookieName)
	}
	if !c.HttpOnly {
		t.Error("cookie is not HttpOnly")
	}

	rec = httptest.NewRecorder()
	ClearAdminCookie(rec)
	cookies = rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Error("ClearAdminCookie did not expire the cookie")
	}
}
