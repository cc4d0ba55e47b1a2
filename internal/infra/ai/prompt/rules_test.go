package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanLines(t *testing.T) {
	got := CleanLines("  header:x \n\n\nstatus:y\n   \nurl:z  ")
	assert.Equal(t, []string{"header:x", "status:y", "url:z"}, got)

	assert.Nil(t, CleanLines(""))
	assert.Nil(t, CleanLines("\n \n\t\n"))
}

func TestSummaryUserPromptRendersBullets(t *testing.T) {
	got := SummaryUserPrompt([]string{"Reachability: 200 (info)", "Missing headers (medium)"})
	assert.Contains(t, got, "- Reachability: 200 (info)\n")
	assert.Contains(t, got, "- Missing headers (medium)\n")
	assert.Contains(t, got, "Short summary:")
}
