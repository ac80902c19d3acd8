package logger

import "strings"

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactIdentifier truncates a pseudonymous identifier (email hash, click id)
// to its first 8 characters so log lines stay correlatable without exposing
// the full value.
func RedactIdentifier(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "…"
}
