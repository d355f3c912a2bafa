package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 150_000
	pbkdf2KeyLen     = 32
	saltLen          = 16

	// MinCodeLength is the cheap pre-filter applied to login attempts
	// before the expensive derivation runs.
	MinCodeLength = 12
)

var ErrAlreadyBootstrapped = errors.New("access code already bootstrapped")

// Record is the persisted, hashed form of the dashboard access code.
// Exactly zero or one record exists; once written it is never updated,
// only deleted via Reset.
type Record struct {
	Algo       string `json:"algo"`
	Digest     string `json:"digest"`
	Iterations int    `json:"iterations"`
	Salt       string `json:"salt"`
	Hash       string `json:"hash"`
	CreatedAt  string `json:"createdAt"`
	Note       string `json:"note,omitempty"`
}

// Store persists the credential record as a small JSON document.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(stateDir string) *Store {
	return &Store{path: filepath.Join(stateDir, "auth.json")}
}

func (s *Store) load() *Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	if rec.Hash == "" || rec.Salt == "" {
		return nil
	}
	return &rec
}

// Bootstrapped reports whether a credential record exists.
func (s *Store) Bootstrapped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load() != nil
}

// Bootstrap creates the credential record and returns the plaintext code.
// The code is never recoverable afterwards.
func (s *Store) Bootstrap() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.load() != nil {
		return "", ErrAlreadyBootstrapped
	}

	code, err := GenerateCode(DefaultCodeLength)
	if err != nil {
		return "", err
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	hash := pbkdf2.Key([]byte(code), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)

	rec := Record{
		Algo:       "pbkdf2",
		Digest:     "sha256",
		Iterations: pbkdf2Iterations,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Hash:       base64.StdEncoding.EncodeToString(hash),
		CreatedAt:  time.Now().Format(time.RFC3339),
		Note:       "Store this code safely. It will not be shown again.",
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return "", fmt.Errorf("write record: %w", err)
	}
	return code, nil
}

// Verify re-derives the hash for code with the stored parameters and
// compares it in constant time. A missing or malformed record verifies
// as false.
func (s *Store) Verify(code string) bool {
	s.mu.Lock()
	rec := s.load()
	s.mu.Unlock()

	if rec == nil || rec.Algo != "pbkdf2" || rec.Digest != "sha256" {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(rec.Salt)
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(rec.Hash)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(code), salt, rec.Iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(want, got) == 1
}

// Reset deletes the credential record. This is the manual recovery path
// for a lost access code.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove record: %w", err)
	}
	return nil
}
