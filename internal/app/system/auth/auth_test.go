package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/gatherhub/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/groups", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_WithUser_Proceeds(t *testing.T) {
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := auth.WithTestUser(httptest.NewRequest("GET", "/groups", nil), &auth.SessionUser{ID: "u1", Name: "Ann"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := auth.CurrentUser(req); ok {
		t.Error("expected no user")
	}
	if id := auth.CurrentUserID(req); id != "" {
		t.Errorf("CurrentUserID = %q, want empty", id)
	}
}

func TestSignIn_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	if err := sm.SignIn(rec, httptest.NewRequest("POST", "/", nil), auth.SessionUser{ID: "u1", Name: "Ann"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	var gotID, gotName string
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := auth.CurrentUser(r); ok {
			gotID, gotName = u.ID, u.Name
		}
	}))

	req := httptest.NewRequest("GET", "/groups", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotID != "u1" || gotName != "Ann" {
		t.Errorf("loaded user = (%q, %q), want (u1, Ann)", gotID, gotName)
	}
}

func TestLoadSessionUser_TamperedCookieIsSignedOut(t *testing.T) {
	sm := newTestSessionManager(t)

	var signedIn bool
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, signedIn = auth.CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/groups", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-valid-cookie"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if signedIn {
		t.Error("tampered cookie should not sign the caller in")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected request to continue, got %d", rec.Code)
	}
}
