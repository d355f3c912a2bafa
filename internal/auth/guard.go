package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// SessionCookie is the name of the dashboard session cookie.
const SessionCookie = "clawdash_session"

var staticPrefixes = []string{"/assets/", "/favicon", "/apple-touch", "/icon-"}

// Guard decides allow or deny for every inbound request before any
// protected handler runs. The decision is read-only.
type Guard struct {
	Store    *Store
	Sessions *Sessions
	OnDeny   func()
}

// Wrap applies the guard to next.
func (g *Guard) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.allow(r) {
			next.ServeHTTP(w, r)
			return
		}
		if g.OnDeny != nil {
			g.OnDeny()
		}
		g.deny(w, r)
	})
}

func (g *Guard) allow(r *http.Request) bool {
	path := r.URL.Path

	// Auth endpoints and static assets are always reachable.
	if strings.HasPrefix(path, "/api/auth/") {
		return true
	}
	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	// The scrape endpoint carries counters only, no wizard state.
	if path == "/metrics" {
		return true
	}

	// Root always loads; it renders the login screen when needed.
	if path == "/" || path == "/index.html" {
		return true
	}

	// Nothing to protect before the access code exists.
	if !g.Store.Bootstrapped() {
		return true
	}

	cookie, err := r.Cookie(SessionCookie)
	return err == nil && g.Sessions.Valid(cookie.Value)
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request) {
	// Page navigations go back to the entry point so the login screen is
	// always reached the same way; API calls get a structured failure.
	wantsHTML := r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
	if wantsHTML && !strings.HasPrefix(r.URL.Path, "/api/") {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "AUTH_REQUIRED"})
}
