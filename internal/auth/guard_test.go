package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func setupGuard(t *testing.T) (*Guard, *Store, *Sessions) {
	t.Helper()
	store := NewStore(t.TempDir())
	sessions := NewSessions()
	return &Guard{Store: store, Sessions: sessions}, store, sessions
}

func serveGuarded(g *Guard, r *http.Request) *httptest.ResponseRecorder {
	handler := g.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	return rec
}

func TestGuardBeforeBootstrap(t *testing.T) {
	g, _, _ := setupGuard(t)

	for _, path := range []string{"/api/status", "/api/run", "/api/env", "/anything"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if rec := serveGuarded(g, req); rec.Code != http.StatusOK {
			t.Errorf("%s before bootstrap: code = %d, want 200", path, rec.Code)
		}
	}
}

func TestGuardAfterBootstrap(t *testing.T) {
	g, store, sessions := setupGuard(t)
	if _, err := store.Bootstrap(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	t.Run("api without session gets 401 json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		rec := serveGuarded(g, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("code = %d, want 401", rec.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if body["error"] != "AUTH_REQUIRED" {
			t.Errorf("error = %v, want AUTH_REQUIRED", body["error"])
		}
	})

	t.Run("html navigation redirects to root", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/wizard", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		rec := serveGuarded(g, req)
		if rec.Code != http.StatusFound {
			t.Fatalf("code = %d, want 302", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/" {
			t.Errorf("Location = %q, want /", loc)
		}
	})

	t.Run("html accept on api path still gets 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Accept", "text/html")
		if rec := serveGuarded(g, req); rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %d, want 401", rec.Code)
		}
	})

	t.Run("always-open paths", func(t *testing.T) {
		open := []string{
			"/", "/index.html", "/metrics",
			"/api/auth/status", "/api/auth/login",
			"/assets/app.js", "/favicon.ico", "/apple-touch-icon.png", "/icon-192.png",
		}
		for _, path := range open {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if rec := serveGuarded(g, req); rec.Code != http.StatusOK {
				t.Errorf("%s: code = %d, want 200", path, rec.Code)
			}
		}
	})

	t.Run("valid session cookie is admitted", func(t *testing.T) {
		token, err := sessions.Create()
		if err != nil {
			t.Fatalf("create session: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		if rec := serveGuarded(g, req); rec.Code != http.StatusOK {
			t.Errorf("code = %d, want 200", rec.Code)
		}
	})

	t.Run("forged cookie is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "0123456789abcdef0123456789abcdef0123456789abcdef"})
		if rec := serveGuarded(g, req); rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %d, want 401", rec.Code)
		}
	})
}

func TestGuardOnDenyCallback(t *testing.T) {
	g, store, _ := setupGuard(t)
	if _, err := store.Bootstrap(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	denied := 0
	g.OnDeny = func() { denied++ }

	serveGuarded(g, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	serveGuarded(g, httptest.NewRequest(http.MethodGet, "/", nil))

	if denied != 1 {
		t.Errorf("deny callback fired %d times, want 1", denied)
	}
}
