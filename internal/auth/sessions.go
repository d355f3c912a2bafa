package auth

import (
	"sync"
	"time"
)

// Sessions is the process-lifetime table of login sessions. Tokens are
// never persisted; a restart logs everyone out.
type Sessions struct {
	mu sync.RWMutex
	m  map[string]time.Time
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]time.Time)}
}

// Create mints and stores a fresh session token.
func (s *Sessions) Create() (string, error) {
	token, err := NewSessionToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.m[token] = time.Now()
	s.mu.Unlock()
	return token, nil
}

func (s *Sessions) Valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[token]
	return ok
}
