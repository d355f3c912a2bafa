package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBootstrapAndVerify(t *testing.T) {
	store := NewStore(t.TempDir())

	if store.Bootstrapped() {
		t.Fatal("fresh store should not be bootstrapped")
	}

	code, err := store.Bootstrap()
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if len(code) != DefaultCodeLength {
		t.Errorf("code length = %d, want %d", len(code), DefaultCodeLength)
	}
	if !store.Bootstrapped() {
		t.Fatal("store should be bootstrapped after Bootstrap")
	}

	t.Run("exact code verifies", func(t *testing.T) {
		if !store.Verify(code) {
			t.Error("exact code should verify")
		}
	})

	t.Run("single character mutation fails", func(t *testing.T) {
		mutated := []byte(code)
		if mutated[0] == 'A' {
			mutated[0] = 'B'
		} else {
			mutated[0] = 'A'
		}
		if store.Verify(string(mutated)) {
			t.Error("mutated code should not verify")
		}
	})

	t.Run("case matters", func(t *testing.T) {
		if code != flipCase(code) && store.Verify(flipCase(code)) {
			t.Error("case-flipped code should not verify")
		}
	})
}

func flipCase(s string) string {
	out := []byte(s)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z':
			out[i] = c - 'a' + 'A'
		case c >= 'A' && c <= 'Z':
			out[i] = c - 'A' + 'a'
		}
	}
	return string(out)
}

func TestBootstrapIsSingleUse(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	code, err := store.Bootstrap()
	if err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}

	recordPath := filepath.Join(dir, "auth.json")
	before, err := os.ReadFile(recordPath)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}

	if _, err := store.Bootstrap(); err != ErrAlreadyBootstrapped {
		t.Fatalf("second bootstrap error = %v, want ErrAlreadyBootstrapped", err)
	}

	after, err := os.ReadFile(recordPath)
	if err != nil {
		t.Fatalf("read record after second bootstrap: %v", err)
	}
	if string(before) != string(after) {
		t.Error("failed bootstrap must not touch the existing record")
	}
	if !store.Verify(code) {
		t.Error("original code should still verify")
	}
}

func TestVerifyWithoutRecord(t *testing.T) {
	store := NewStore(t.TempDir())
	if store.Verify("anything-at-all-here") {
		t.Error("verify should fail when no record exists")
	}
}

func TestReset(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Reset(); err != nil {
		t.Fatalf("reset without record should be a no-op: %v", err)
	}

	code, err := store.Bootstrap()
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if store.Bootstrapped() {
		t.Error("store should not be bootstrapped after reset")
	}
	if store.Verify(code) {
		t.Error("old code should not verify after reset")
	}
}

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for range 20 {
		code, err := GenerateCode(DefaultCodeLength)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != DefaultCodeLength {
			t.Fatalf("length = %d, want %d", len(code), DefaultCodeLength)
		}
		for _, c := range code {
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
				t.Fatalf("code %q contains non-URL-safe character %q", code, c)
			}
		}
		if seen[code] {
			t.Fatalf("duplicate code generated: %q", code)
		}
		seen[code] = true
	}
}
