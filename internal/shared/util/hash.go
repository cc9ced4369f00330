package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashUserKey returns a filesystem-safe identifier for a user ID.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// UserKey returns the storage namespace for a username. Names that are
// already filesystem-safe are used verbatim; anything else is hashed so two
// distinct names never share a namespace.
func UserKey(username string) (string, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return "", ErrInvalidName
	}
	if safe, err := SanitizeFileName(name); err == nil && safe == name {
		return name, nil
	}
	return "u_" + HashUserKey(name)[:24], nil
}
