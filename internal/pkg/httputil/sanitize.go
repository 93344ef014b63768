package httputil

import (
	"context"
	"errors"
	"strings"
)

// publicMessage maps an internal error to a message that is safe to return
// to API consumers. The full error is only ever logged.
func publicMessage(err error) string {
	if err == nil {
		return "internal server error"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "request timed out"
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "dial tcp"):
		return "service temporarily unavailable"

	case strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded"):
		return "request timed out"

	case strings.Contains(s, "pq:") ||
		strings.Contains(s, "sql") ||
		strings.Contains(s, "database") ||
		strings.Contains(s, "dynamodb"):
		return "a database error occurred"

	case strings.Contains(s, "accessdenied") ||
		strings.Contains(s, "access denied") ||
		strings.Contains(s, "permission"):
		return "access denied"

	default:
		return "internal server error"
	}
}
