package respond

import (
	"strings"

	"docassist-backend/internal/shared/telemetry"
)

// clientSafePatterns maps provider error fragments to messages safe to return.
// Checked in order so the result is deterministic.
var clientSafePatterns = []struct {
	pattern string
	message string
}{
	{"rate limit", "rate limit exceeded"},
	{"quota", "quota exceeded"},
	{"circuit breaker", "provider temporarily unavailable"},
	{"timeout", "request timed out"},
	{"context dead", "request cancelled"},
	{"invalid api", "authentication failed with provider"},
	{"api key", "authentication failed with provider"},
	{"unauthorized", "authentication failed with provider"},
	{"forbidden", "access denied by provider"},
	{"not configured", "provider not configured"},
	{"not found", "resource not found"},
}

// SanitizeForClient converts a collaborator error to a client-safe message.
// The full error is logged server-side.
func SanitizeForClient(err error) string {
	if err == nil {
		return ""
	}

	errLower := strings.ToLower(err.Error())
	for _, p := range clientSafePatterns {
		if strings.Contains(errLower, p.pattern) {
			return p.message
		}
	}

	telemetry.Error("upstream.error", map[string]any{"error": err})
	return "provider temporarily unavailable"
}
