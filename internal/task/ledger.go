package task

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Outcome is the last known result of one wizard step.
type Outcome struct {
	Status    string `json:"status"`
	ExitCode  int    `json:"exitCode"`
	LastRunID string `json:"lastRunId"`
	StartedAt string `json:"startedAt"`
	EndedAt   string `json:"endedAt"`
}

// Ledger is the persisted map from requested task name to its last
// outcome. Writes are read-modify-write over one JSON document and are
// best-effort from the caller's point of view: the supervisor logs and
// discards failures rather than failing the job.
type Ledger struct {
	path string
	mu   sync.Mutex
}

func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

func (l *Ledger) read() map[string]Outcome {
	entries := map[string]Outcome{}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return map[string]Outcome{}
	}
	return entries
}

// All returns the current ledger contents. A missing or corrupt document
// reads as empty.
func (l *Ledger) All() map[string]Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// Set overwrites the entry for key.
func (l *Ledger) Set(key string, o Outcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := l.read()
	entries[key] = o
	return l.write(entries)
}

// Reset deletes exactly the named keys and reports which were present.
func (l *Ledger) Reset(keys ...string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.read()
	var removed []string
	for _, key := range keys {
		if _, ok := entries[key]; ok {
			delete(entries, key)
			removed = append(removed, key)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, l.write(entries)
}

func (l *Ledger) write(entries map[string]Outcome) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
