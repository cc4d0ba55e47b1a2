package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	for _, name := range []string{"probe-1", "HackerOne", "worker_01", "a.b c"} {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", "   ", "<script>", "a/b", strings.Repeat("x", 65)} {
		assert.Error(t, ValidateName(name), name)
	}
}

func TestValidatePattern(t *testing.T) {
	assert.NoError(t, ValidatePattern("header:missing_security_headers"))
	assert.Error(t, ValidatePattern(""))
	assert.Error(t, ValidatePattern("  "))
	assert.Error(t, ValidatePattern(strings.Repeat("x", 513)))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("abc\x00"))
	assert.Equal(t, "a b", SanitizeString("  a\x1b b \x07 "))
	assert.Equal(t, "line1\nline2", SanitizeString("line1\nline2"))
}
