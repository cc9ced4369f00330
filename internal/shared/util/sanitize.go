package util

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidName is returned when a name sanitizes down to nothing.
var ErrInvalidName = errors.New("invalid file name")

// SanitizeFileName reduces name to a filesystem-safe ASCII key.
// Path separators become spaces, whitespace runs become a single underscore,
// anything outside [A-Za-z0-9._-] is dropped and leading/trailing dots and
// underscores are trimmed, so "../../etc/passwd" becomes "etc_passwd".
func SanitizeFileName(name string) (string, error) {
	folded := norm.NFKD.String(name)
	folded = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		if r == '/' || r == '\\' {
			return ' '
		}
		return r
	}, folded)

	joined := strings.Join(strings.Fields(folded), "_")

	var b strings.Builder
	for _, r := range joined {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}

	s := strings.Trim(b.String(), "._")
	if s == "" {
		return "", ErrInvalidName
	}
	return s, nil
}
