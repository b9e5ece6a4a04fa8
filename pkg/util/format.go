package util

import "time"

// OrDash returns the string if non-empty, otherwise "-".
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// FormatLocal renders a timestamp in local time for table output, or "-" for
// the zero time.
func FormatLocal(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// Truncate shortens s to at most n bytes, appending an ellipsis when it was
// cut. Full JWTs are unreadable in tables otherwise.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
