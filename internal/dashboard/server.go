// Package dashboard wires the install wizard's HTTP surface: session-gated
// access, single-flight task launches, and live log streaming.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/clawdash/clawdash/internal/auth"
	"github.com/clawdash/clawdash/internal/config"
	"github.com/clawdash/clawdash/internal/logtail"
	"github.com/clawdash/clawdash/internal/metrics"
	"github.com/clawdash/clawdash/internal/task"
)

// Server owns the dashboard's components. The supervisor is the only
// writer of job state and log files; everything else reads.
type Server struct {
	cfg      *config.Config
	creds    *auth.Store
	sessions *auth.Sessions
	sup      *task.Supervisor
	ledger   *task.Ledger
	tailer   *logtail.Tailer
	metrics  *metrics.Metrics
	catalog  *modelCatalog
	log      *slog.Logger

	httpSrv *http.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m := metrics.New()
	ledger := task.NewLedger(filepath.Join(cfg.StateDir, "task_status.json"))

	sup, err := task.NewSupervisor(task.Options{
		Root:     cfg.Root,
		StateDir: cfg.StateDir,
		RunDir:   cfg.RunDir(),
		Registry: task.NewRegistry(cfg.TasksDir),
		Ledger:   ledger,
		Logger:   logger,
		Hooks: task.Hooks{
			Started: func(*task.Job) {
				m.TasksStarted.Inc()
				m.TaskRunning.Set(1)
			},
			Finished: func(job *task.Job) {
				m.TasksCompleted.WithLabelValues(string(job.Status)).Inc()
				m.TaskRunning.Set(0)
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		creds:    auth.NewStore(cfg.StateDir),
		sessions: auth.NewSessions(),
		sup:      sup,
		ledger:   ledger,
		tailer:   logtail.NewTailer(cfg.RunDir()),
		metrics:  m,
		catalog:  newModelCatalog(cfg.ModelCLI, cfg.Root),
		log:      logger,
	}, nil
}

// Handler builds the full route table wrapped by the access guard.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/auth/status", s.handleAuthStatus)
	mux.HandleFunc("POST /api/auth/bootstrap", s.handleBootstrap)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.HandleFunc("POST /api/run", s.handleRun)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/log", s.handleLog)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("POST /api/reset-wizard", s.handleResetWizard)

	mux.HandleFunc("GET /api/env", s.handleEnv)
	mux.HandleFunc("GET /api/progress", s.handleProgress)
	mux.HandleFunc("GET /api/secrets", s.handleSecrets)
	mux.HandleFunc("POST /api/save-secrets", s.handleSaveSecrets)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("POST /api/model-test", s.handleModelTest)

	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("/", s.staticHandler())

	guard := &auth.Guard{
		Store:    s.creds,
		Sessions: s.sessions,
		OnDeny:   s.metrics.DeniedRequests.Inc,
	}
	return guard.Wrap(mux)
}

// staticHandler serves the wizard UI. The index is never cached so a
// redeploy is picked up on the next page load.
func (s *Server) staticHandler() http.Handler {
	fs := http.FileServer(http.Dir(s.cfg.WebDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			w.Header().Set("Cache-Control", "no-store")
		}
		fs.ServeHTTP(w, r)
	})
}

func (s *Server) ListenAndServe() error {
	s.httpSrv = &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.Handler(),
	}
	s.log.Info("dashboard listening", "addr", s.cfg.Addr())
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Task string            `json:"task"`
		Env  map[string]string `json:"env"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Task == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "task required"})
		return
	}

	job, err := s.sup.Launch(req.Task, req.Env)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "job": job})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"now":      time.Now().Format(time.RFC3339),
		"clientIp": clientIP(r),
		"current":  s.sup.Status(),
	})
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "id required"})
		return
	}

	data, err := s.tailer.ReadAll(id)
	if err != nil {
		if errors.Is(err, logtail.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "log not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	if r.URL.Query().Get("plain") == "1" {
		data = logtail.Plain(data)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(data)
}

// clientIP resolves the caller's address. The dashboard is expected to
// run without a reverse proxy; if one is added later the forwarded
// header must only be trusted from known proxies.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		return strings.TrimSpace(strings.Split(xf, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return strings.TrimPrefix(host, "::ffff:")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
