package task

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/creack/pty"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusError   Status = "error"
)

var ErrAlreadyRunning = errors.New("a task is already running")

// Environment variables every task sees, applied after caller-supplied
// overrides so they cannot be shadowed.
const (
	EnvRoot  = "CLAWDASH_ROOT"
	EnvState = "CLAWDASH_STATE"
)

// Job is one execution attempt of a named task. At most one Job is ever
// running; a finished Job stays visible until the next launch supersedes
// it (its log file remains on disk either way).
type Job struct {
	ID        string `json:"id"`
	Task      string `json:"task"`      // normalized name
	Requested string `json:"requested"` // pre-alias name as launched
	StartedAt string `json:"startedAt"`
	EndedAt   string `json:"endedAt,omitempty"`
	Status    Status `json:"status"`
	ExitCode  *int   `json:"exitCode,omitempty"`
	LogPath   string `json:"logPath"`
	PID       int    `json:"pid"`
}

// Hooks receive job lifecycle notifications. Both are optional.
type Hooks struct {
	Started  func(job *Job)
	Finished func(job *Job)
}

// Supervisor launches at most one external task at a time, captures its
// combined output to an append-only log, and records its terminal status.
// It is the only writer of job state and log files.
type Supervisor struct {
	registry *Registry
	ledger   *Ledger
	log      *slog.Logger
	hooks    Hooks

	root     string
	stateDir string
	runDir   string

	mu      sync.Mutex
	current *Job
}

type Options struct {
	Root     string
	StateDir string
	RunDir   string
	Registry *Registry
	Ledger   *Ledger
	Logger   *slog.Logger
	Hooks    Hooks
}

func NewSupervisor(opts Options) (*Supervisor, error) {
	if err := os.MkdirAll(opts.RunDir, 0755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		registry: opts.Registry,
		ledger:   opts.Ledger,
		log:      logger,
		hooks:    opts.Hooks,
		root:     opts.Root,
		stateDir: opts.StateDir,
		runDir:   opts.RunDir,
	}, nil
}

// newJobID is unique per launch: wall clock plus a random disambiguator.
// No ordering guarantee beyond uniqueness is needed.
func newJobID() string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(suffix))
}

// Launch starts the requested task with extraEnv layered over the process
// environment. Fails with ErrAlreadyRunning while a job is in flight and
// with ErrTaskNotFound when no script backs the name; a second launch is
// rejected outright, never queued.
func (s *Supervisor) Launch(requested string, extraEnv map[string]string) (*Job, error) {
	norm, script, err := s.registry.Resolve(requested)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.Status == StatusRunning {
		return nil, ErrAlreadyRunning
	}

	id := newJobID()
	logPath := filepath.Join(s.runDir, id+".log")
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	cmd := exec.Command("bash", script)
	cmd.Dir = s.root
	env := os.Environ()
	for k, v := range extraEnv {
		env = append(env, k+"="+v)
	}
	// Last entry wins for duplicate keys, so the fixed paths land on top
	// of any caller overrides.
	env = append(env, EnvRoot+"="+s.root, EnvState+"="+s.stateDir)
	cmd.Env = env

	// The child runs under a pty so stdout and stderr arrive already
	// interleaved in arrival order and installer progress output renders
	// the way it would in a terminal.
	ptmx, err := pty.Start(cmd)
	if err != nil {
		logFile.Close()
		os.Remove(logPath)
		return nil, fmt.Errorf("start task: %w", err)
	}

	startedAt := time.Now().Format(time.RFC3339)
	fmt.Fprintf(logFile, "[clawdash] task started: %s (req=%s) id=%s at=%s\n", norm, requested, id, startedAt)

	job := &Job{
		ID:        id,
		Task:      norm,
		Requested: requested,
		StartedAt: startedAt,
		Status:    StatusRunning,
		LogPath:   logPath,
		PID:       cmd.Process.Pid,
	}
	s.current = job

	if s.hooks.Started != nil {
		s.hooks.Started(snapshot(job))
	}
	s.log.Info("task started", "task", norm, "requested", requested, "id", id, "pid", job.PID)

	go s.watch(job, cmd, ptmx, logFile)

	return snapshot(job), nil
}

func (s *Supervisor) watch(job *Job, cmd *exec.Cmd, ptmx *os.File, logFile *os.File) {
	// The copy ends with a read error once the child exits and the slave
	// side closes; that error is expected and dropped.
	io.Copy(logFile, ptmx)
	ptmx.Close()

	code := 0
	if err := cmd.Wait(); err != nil {
		code = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
	}

	endedAt := time.Now().Format(time.RFC3339)
	fmt.Fprintf(logFile, "\n[clawdash] task finished: code=%d\n", code)
	logFile.Close()

	s.mu.Lock()
	job.Status = StatusOK
	if code != 0 {
		job.Status = StatusError
	}
	job.ExitCode = &code
	job.EndedAt = endedAt
	done := snapshot(job)
	s.mu.Unlock()

	// Ledger writes are diagnostic; a failure never fails the job.
	if err := s.ledger.Set(done.Requested, Outcome{
		Status:    string(done.Status),
		ExitCode:  code,
		LastRunID: done.ID,
		StartedAt: done.StartedAt,
		EndedAt:   endedAt,
	}); err != nil {
		s.log.Warn("ledger update failed", "task", done.Requested, "error", err)
	}

	if s.hooks.Finished != nil {
		s.hooks.Finished(done)
	}
	s.log.Info("task finished", "task", done.Task, "id", done.ID, "code", code)
}

// Status returns a copy of the current job, or nil when none has run.
// Never blocks on a running task.
func (s *Supervisor) Status() *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.current)
}

func snapshot(job *Job) *Job {
	if job == nil {
		return nil
	}
	dup := *job
	if job.ExitCode != nil {
		code := *job.ExitCode
		dup.ExitCode = &code
	}
	return &dup
}
