package dashboard

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/clawdash/clawdash/internal/sysinfo"
	"github.com/clawdash/clawdash/internal/task"
)

func (s *Server) handleEnv(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"env":       sysinfo.DetectEnv(),
		"resources": sysinfo.MemSwap(),
		"checks":    sysinfo.CheckTools(sysinfo.WizardTools),
	})
}

// stateMarkers reports which stage-completion files the install scripts
// have dropped into the state dir.
func (s *Server) stateMarkers() map[string]bool {
	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(s.cfg.StateDir, name))
		return err == nil
	}
	markers := map[string]bool{
		"secrets":    exists("secrets.json"),
		"gatewayOk":  exists("gateway_ok.json"),
		"providerOk": exists("provider_ok.json"),
		"channelsOk": exists("channels_ok.json"),
		"nodeOk":     exists("node_ok.json"),
		"taskStatus": exists("task_status.json"),
	}

	markers["openclawConfig"] = false
	if home, err := os.UserHomeDir(); err == nil {
		_, err := os.Stat(filepath.Join(home, ".openclaw", "openclaw.json"))
		markers["openclawConfig"] = err == nil
	}
	return markers
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	env := sysinfo.DetectEnv()
	resources := sysinfo.MemSwap()
	checks := sysinfo.CheckTools(sysinfo.WizardTools)
	files := s.stateMarkers()
	taskStatus := s.ledger.All()

	// Persist the detected progress for debugging. Best-effort: a write
	// failure is logged and discarded, never surfaced to the caller.
	snapshot := map[string]any{
		"ts":         time.Now().Format(time.RFC3339),
		"env":        env,
		"checks":     checks,
		"files":      files,
		"taskStatus": taskStatus,
	}
	if data, err := json.MarshalIndent(snapshot, "", "  "); err == nil {
		path := filepath.Join(s.cfg.StateDir, "progress_detected.json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			s.log.Warn("progress snapshot write failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"env":        env,
		"resources":  resources,
		"checks":     checks,
		"files":      files,
		"taskStatus": taskStatus,
	})
}

// handleResetWizard clears exactly the ledger entry for one named step,
// plus any legacy alias keying the same step, and reports which keys
// were actually removed.
func (s *Server) handleResetWizard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Step string `json:"step"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	step := req.Step
	if step == "" {
		step = "doctor"
	}
	step = task.Normalize(step)

	keys := append([]string{step}, task.AliasesFor(step)...)
	reset, err := s.ledger.Reset(keys...)
	if err != nil {
		s.log.Warn("wizard reset write failed", "step", step, "error", err)
	}
	if reset == nil {
		reset = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "reset": reset})
}

func (s *Server) secretsPath() string {
	return filepath.Join(s.cfg.StateDir, "secrets.json")
}

// Secrets reads always succeed; a missing or corrupt document reads as
// empty. This is a local convenience store, not a vault.
func (s *Server) handleSecrets(w http.ResponseWriter, r *http.Request) {
	secrets := map[string]any{}
	if data, err := os.ReadFile(s.secretsPath()); err == nil {
		json.Unmarshal(data, &secrets)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "secrets": secrets})
}

func (s *Server) handleSaveSecrets(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		body = map[string]any{}
	}
	if _, ok := body["extraEnv"]; !ok {
		body["extraEnv"] = map[string]any{}
	}

	if err := os.MkdirAll(s.cfg.StateDir, 0755); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	data, err := json.MarshalIndent(body, "", "  ")
	if err == nil {
		err = os.WriteFile(s.secretsPath(), data, 0600)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
