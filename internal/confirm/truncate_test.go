package confirm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate_ShortContentUnchanged(t *testing.T) {
	assert.Equal(t, "H104 Summary", Truncate("H104 Summary"))
	assert.Equal(t, "", Truncate(""))
	assert.Equal(t, "   ", Truncate("   "))
}

func TestTruncate_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", Truncate("a\n  b\t c"))
}

func TestTruncate_KeepsLeadingSentences(t *testing.T) {
	content := "An Act relative to utility oversight. It directs the department to report annually. " +
		strings.Repeat("Further detail follows here. ", 20)

	got := Truncate(content)

	assert.Equal(t, "An Act relative to utility oversight. It directs the department to report annually.", got)
}

func TestTruncate_FallsBackToWordLimit(t *testing.T) {
	// One long sentence: no sentence boundary to cut on.
	content := strings.Repeat("word ", 40)

	got := Truncate(content)

	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, strings.Fields(strings.TrimSuffix(got, "...")), judgmentWordLimit)
}

func TestTruncate_HardCharacterCutoff(t *testing.T) {
	// Fifteen enormous words still blow the ceiling.
	content := strings.Repeat(strings.Repeat("x", 30)+" ", 16)

	got := Truncate(content)

	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), maxJudgmentChars+3)
}

func TestTruncate_StripsBoilerplateTail(t *testing.T) {
	content := "H104 Summary of committee action. Register for MyLegislature and other site links follow here in the page chrome, none of which matters."

	got := Truncate(content)

	assert.Equal(t, "H104 Summary of committee action.", got)
}
