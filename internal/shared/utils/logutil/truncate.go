// Package logutil holds helpers for values that end up in log lines.
package logutil

// MaxFieldLen bounds client supplied strings such as user agents in logs.
const MaxFieldLen = 256

// TruncateForLog keeps at most maxLen bytes of s and marks the cut with "...".
func TruncateForLog(s string, maxLen int) string {
	if maxLen <= 0 {
		return "..."
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
