package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", OrDash(""))
	assert.Equal(t, "x", OrDash("x"))
}

func TestFormatLocal(t *testing.T) {
	assert.Equal(t, "-", FormatLocal(time.Time{}))
	assert.NotEqual(t, "-", FormatLocal(time.Now()))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		n        int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a-very-long-token-value", 10, "a-very-..."},
		{"abc", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Truncate(tt.in, tt.n))
	}
}
