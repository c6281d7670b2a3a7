package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainAccount "regatta/internal/domain/account"
)

func TestSessionStore_CreateGetDelete(t *testing.T) {
	store := NewSessionStore()

	token, err := store.Create("acc-1", "office@regattaseries.example", domainAccount.RoleAdmin)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	session, ok := store.Get(token)
	if !ok {
		t.Fatal("expected session found")
	}
	if session.AccountID != "acc-1" || session.Role != domainAccount.RoleAdmin {
		t.Errorf("unexpected session: %+v", session)
	}

	store.Delete(token)
	if _, ok := store.Get(token); ok {
		t.Error("expected session gone after delete")
	}
}

func TestSessionStore_TokensAreUnique(t *testing.T) {
	store := NewSessionStore()

	first, _ := store.Create("acc-1", "a@example.org", domainAccount.RoleAdmin)
	second, _ := store.Create("acc-1", "a@example.org", domainAccount.RoleAdmin)
	if first == second {
		t.Error("expected distinct tokens per session")
	}
}

func TestSessionStore_ExpiredSession(t *testing.T) {
	store := NewSessionStore()
	token, _ := store.Create("acc-1", "a@example.org", domainAccount.RoleAdmin)

	// Age the session past the 24 hour limit.
	store.mu.Lock()
	s := store.sessions[token]
	s.CreatedAt = time.Now().Add(-25 * time.Hour)
	store.sessions[token] = s
	store.mu.Unlock()

	if _, ok := store.Get(token); ok {
		t.Error("expected expired session rejected")
	}
}

func TestAuth_PopulatesContextFromCookie(t *testing.T) {
	store := NewSessionStore()
	token, _ := store.Create("acc-1", "office@regattaseries.example", domainAccount.RoleAdmin)

	var got Session
	var ok bool
	handler := Auth(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/admin/submissions", nil)
	req.AddCookie(&http.Cookie{Name: "regatta_admin", Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok || got.AccountID != "acc-1" {
		t.Fatalf("expected session in context, got %+v (ok=%v)", got, ok)
	}

	// Without a cookie the request passes through unauthenticated.
	ok = false
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if ok {
		t.Error("expected no session without a cookie")
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireRole(domainAccount.RoleAdmin, domainAccount.RoleOrganizer)(next)

	// No session at all.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	// Authenticated but with an unlisted role.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(ContextWithSession(req.Context(), Session{AccountID: "acc-1", Role: "viewer"}))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}

	// Organizer passes.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(ContextWithSession(req.Context(), Session{AccountID: "acc-1", Role: domainAccount.RoleOrganizer}))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestIsAdmin(t *testing.T) {
	ctx := ContextWithSession(httptest.NewRequest("GET", "/", nil).Context(), Session{Role: domainAccount.RoleAdmin})
	if !IsAdmin(ctx) {
		t.Error("expected admin")
	}
	ctx = ContextWithSession(httptest.NewRequest("GET", "/", nil).Context(), Session{Role: domainAccount.RoleOrganizer})
	if IsAdmin(ctx) {
		t.Error("expected non-admin")
	}
}

func TestSessionTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/admin/logout", nil)
	if _, ok := SessionTokenFromRequest(req); ok {
		t.Error("expected no token without a cookie")
	}

	req.AddCookie(&http.Cookie{Name: "regatta_admin", Value: "tok-1"})
	token, ok := SessionTokenFromRequest(req)
	if !ok || token != "tok-1" {
		t.Errorf("expected tok-1, got %q (ok=%v)", token, ok)
	}
}
