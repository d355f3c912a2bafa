package auth

import "testing"

func TestSessions(t *testing.T) {
	sessions := NewSessions()

	t.Run("unknown token is invalid", func(t *testing.T) {
		if sessions.Valid("deadbeef") {
			t.Error("unknown token should be invalid")
		}
		if sessions.Valid("") {
			t.Error("empty token should be invalid")
		}
	})

	t.Run("created token is valid", func(t *testing.T) {
		token, err := sessions.Create()
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(token) != 48 {
			t.Errorf("token length = %d, want 48 hex chars", len(token))
		}
		if !sessions.Valid(token) {
			t.Error("freshly created token should be valid")
		}
	})

	t.Run("tokens are unique", func(t *testing.T) {
		a, _ := sessions.Create()
		b, _ := sessions.Create()
		if a == b {
			t.Error("two sessions should never share a token")
		}
	})
}
