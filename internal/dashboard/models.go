package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"
)

// modelCatalog proxies the model CLI's catalog with a short cache so the
// wizard's provider picker doesn't re-shell on every request.
type modelCatalog struct {
	cli string
	dir string
	ttl time.Duration

	mu   sync.Mutex
	at   time.Time
	data *catalogDoc
}

type catalogModel struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type catalogDoc struct {
	Models []catalogModel `json:"models"`
}

func newModelCatalog(cli, dir string) *modelCatalog {
	return &modelCatalog{cli: cli, dir: dir, ttl: time.Minute}
}

func (c *modelCatalog) load(ctx context.Context) (*catalogDoc, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data != nil && time.Since(c.at) < c.ttl {
		return c.data, nil
	}

	cmd := exec.CommandContext(ctx, c.cli, "models", "list", "--all", "--json")
	cmd.Dir = c.dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s models list failed: %s", c.cli, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s models list: %w", c.cli, err)
	}

	var doc catalogDoc
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c.data = &doc
	c.at = time.Now()
	return &doc, nil
}

func providerOf(key string) string {
	if idx := strings.Index(key, "/"); idx > 0 {
		return key[:idx]
	}
	return "unknown"
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	provider := strings.TrimSpace(r.URL.Query().Get("provider"))

	doc, err := s.catalog.load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	providerSet := map[string]struct{}{}
	for _, m := range doc.Models {
		providerSet[providerOf(m.Key)] = struct{}{}
	}
	providers := make([]string, 0, len(providerSet))
	for p := range providerSet {
		providers = append(providers, p)
	}
	sort.Strings(providers)

	filtered := doc.Models
	if provider != "" {
		filtered = nil
		for _, m := range doc.Models {
			if providerOf(m.Key) == provider {
				filtered = append(filtered, m)
			}
		}
	}
	// Stable ordering for the UI.
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Name != filtered[j].Name {
			return filtered[i].Name < filtered[j].Name
		}
		return filtered[i].Key < filtered[j].Key
	})
	if filtered == nil {
		filtered = []catalogModel{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"providers": providers,
		"count":     len(filtered),
		"models":    filtered,
	})
}

// handleModelTest runs a live auth probe for one provider through the
// model CLI, passing any caller-supplied API key via the environment.
func (s *Server) handleModelTest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider        string `json:"provider"`
		OpenAIAPIKey    string `json:"openaiApiKey"`
		AnthropicAPIKey string `json:"anthropicApiKey"`
		GeminiAPIKey    string `json:"geminiApiKey"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	provider := strings.TrimSpace(req.Provider)
	if provider == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "provider is required"})
		return
	}

	env := os.Environ()
	switch {
	case provider == "openai" && req.OpenAIAPIKey != "":
		env = append(env, "OPENAI_API_KEY="+req.OpenAIAPIKey)
	case provider == "anthropic" && req.AnthropicAPIKey != "":
		env = append(env, "ANTHROPIC_API_KEY="+req.AnthropicAPIKey)
	case provider == "google" && req.GeminiAPIKey != "":
		env = append(env, "GEMINI_API_KEY="+req.GeminiAPIKey)
	}

	cmd := exec.CommandContext(r.Context(), s.cfg.ModelCLI,
		"models", "status", "--probe", "--probe-provider", provider, "--json")
	cmd.Dir = s.cfg.Root
	cmd.Env = env

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(string(exitErr.Stderr))
			if msg == "" {
				msg = strings.TrimSpace(string(out))
			}
			if msg == "" {
				msg = "probe failed"
			}
			// A failed probe is a result, not a server error.
			writeJSON(w, http.StatusOK, map[string]any{"ok": false, "code": exitErr.ExitCode(), "error": msg})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	var result any
	if err := json.Unmarshal(out, &result); err != nil {
		result = map[string]any{"raw": strings.TrimSpace(string(out))}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "code": 0, "result": result})
}
