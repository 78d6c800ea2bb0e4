package logger

import (
	"log/slog"
	"strings"
)

// Attribute names whose string values are never written out. Store keys
// are logged under "key", so bare "key" is deliberately absent.
var sensitiveKeyPatterns = []string{
	"passphrase",
	"password",
	"secret",
	"credential",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// IsSensitiveKey reports whether an attribute name suggests secret content.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
