package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Attribute keys that carry client-supplied payloads. Only their size is logged.
var payloadKeys = map[string]struct{}{
	"value":   {},
	"payload": {},
	"args":    {},
}

// Keys whose values are never logged.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
}

const redactedValue = "***REDACTED***"

func redactPayload(a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)

	if _, ok := payloadKeys[key]; ok {
		return slog.String(a.Key, describeSize(a.Value))
	}

	if a.Value.Kind() == slog.KindString && a.Value.String() != "" {
		for _, pattern := range sensitiveKeyPatterns {
			if strings.Contains(key, pattern) {
				return slog.String(a.Key, redactedValue)
			}
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactPayload(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	return a
}

// describeSize replaces a payload with its length in bytes.
func describeSize(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return fmt.Sprintf("<%d bytes>", len(v.String()))
	case slog.KindAny:
		switch x := v.Any().(type) {
		case []byte:
			return fmt.Sprintf("<%d bytes>", len(x))
		case [][]byte:
			n := 0
			for _, b := range x {
				n += len(b)
			}
			return fmt.Sprintf("<%d args, %d bytes>", len(x), n)
		}
	}
	return redactedValue
}
