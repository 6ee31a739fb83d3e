package domain

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateID creates a short unique ID (16 hex chars).
func GenerateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
