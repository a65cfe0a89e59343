package confirm

import "strings"

// maxJudgmentChars is the hard ceiling on content sent for automated
// judgment. Long candidate text slows the model down without improving the
// decision; the information-dense prefix is what matters.
const maxJudgmentChars = 200

const judgmentWordLimit = 15

// boilerplateMarkers are site chrome fragments that frequently lead or trail
// scraped candidate text. When one appears past the start of the content,
// everything from it onward is noise.
var boilerplateMarkers = []string{
	"The information contained in this website is for general information purposes only",
	"Update Testimony Either add testimony in the text field",
	"Register for MyLegislature",
	"Sign in to MyLegislature",
	"Copyright © 2025 The General Court of the Commonwealth of Massachusetts",
}

// Truncate reduces candidate text for automated judgment: first one or two
// sentences when that fits the ceiling, else the first words, else a hard
// character cutoff.
func Truncate(content string) string {
	if strings.TrimSpace(content) == "" {
		return content
	}

	content = strings.Join(strings.Fields(content), " ")

	for _, marker := range boilerplateMarkers {
		pos := strings.Index(content, marker)
		if pos > 0 && pos < len(content)/2 {
			content = strings.TrimSpace(content[:pos])
			break
		}
	}

	if sentences := strings.SplitN(content, ". ", 3); len(sentences) > 1 {
		lead := strings.Join(sentences[:2], ". ")
		if !strings.HasSuffix(lead, ".") {
			lead += "."
		}
		if len(lead) <= maxJudgmentChars {
			return lead
		}
	}

	if words := strings.Fields(content); len(words) > judgmentWordLimit {
		lead := strings.Join(words[:judgmentWordLimit], " ")
		if len(lead) <= maxJudgmentChars {
			return lead + "..."
		}
	}

	if len(content) > maxJudgmentChars {
		return content[:maxJudgmentChars] + "..."
	}
	return content
}
