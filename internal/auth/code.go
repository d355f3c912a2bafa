package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// DefaultCodeLength is the length of a freshly bootstrapped access code.
// 24 base64url characters carry roughly 144 bits of source entropy.
const DefaultCodeLength = 24

// GenerateCode returns a URL-safe, copy-paste friendly access code.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}
	raw := make([]byte, (length*6+7)/8)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	code := base64.RawURLEncoding.EncodeToString(raw)
	if len(code) > length {
		code = code[:length]
	}
	return code, nil
}

// NewSessionToken returns an opaque 192-bit session token.
func NewSessionToken() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
