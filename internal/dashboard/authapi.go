package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/clawdash/clawdash/internal/auth"
)

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	authed := false
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		authed = s.sessions.Valid(cookie.Value)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"bootstrapped": s.creds.Bootstrapped(),
		"authed":       authed,
	})
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	code, err := s.creds.Bootstrap()
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyBootstrapped) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "ALREADY_BOOTSTRAPPED"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	s.log.Info("access code bootstrapped")
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"code":    code,
		"warning": "Record this code now. Recovering a lost code requires a server-side reset.",
	})
}

// Login mistakes are ordinary 200 responses carrying an error code so a
// routine typo never shows up as a console-level error in the client.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	if !s.creds.Bootstrapped() {
		s.metrics.Logins.WithLabelValues("not_bootstrapped").Inc()
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "NOT_BOOTSTRAPPED"})
		return
	}

	code := strings.TrimSpace(req.Code)
	if len(code) < auth.MinCodeLength {
		// Too short to ever match; the derivation never runs.
		s.metrics.Logins.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "INVALID"})
		return
	}

	if !s.creds.Verify(code) {
		s.metrics.Logins.WithLabelValues("wrong").Inc()
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "WRONG"})
		return
	}

	token, err := s.sessions.Create()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.metrics.Logins.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
