package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// Reader is the entropy source. Tests may swap it for a deterministic one.
var Reader io.Reader = rand.Reader

// Hex generates a cryptographically secure random hex string.
// The output length is twice the input length (each byte = 2 hex chars).
func Hex(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("random: invalid length %d", length)
	}
	bytes := make([]byte, length)
	if _, err := io.ReadFull(Reader, bytes); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
