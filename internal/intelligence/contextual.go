package intelligence

import (
	"strings"

	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

const (
	// ContextBeforePattern identifies matches on a cue in the preceding line
	ContextBeforePattern = "contextBefore"
	// ContextAfterPattern identifies matches on a cue in the following line
	ContextAfterPattern = "contextAfter"

	maxContextLineLength = 100
)

// genericWords are common words that say little about whether a line is a header
var genericWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true, "to": true,
	"in": true, "on": true, "for": true, "with": true, "at": true, "by": true, "from": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true, "has": true,
	"have": true, "had": true, "he": true, "she": true, "they": true, "his": true, "her": true,
	"their": true, "it": true, "this": true, "that": true, "as": true, "not": true, "no": true,
	"yes": true, "other": true, "information": true, "details": true, "notes": true,
	"general": true, "page": true, "see": true, "section": true, "report": true,
}

// genericWordFraction is the share of the line's words found in genericWords
func genericWordFraction(words []string) float64 {
	if len(words) == 0 {
		return 1
	}
	generic := 0
	for _, w := range words {
		if genericWords[strings.Trim(w, ".,:;-()")] {
			generic++
		}
	}
	return float64(generic) / float64(len(words))
}

// genericPenalty discounts short and common-word lines
func genericPenalty(line string) float64 {
	words := strings.Fields(line)
	g := genericWordFraction(words)
	if len(words) < 3 {
		return 0.5 + 0.5*g
	}
	return 0.7 * g
}

// MatchContext scores a line as a section start from cue phrases in its neighbours. The
// preceding line is checked against the before cues first, then the following line against
// the after cues; the first cue that matches wins.
func MatchContext(line string, index int, lines []string, section string, before, after []patterns.CompiledCue, contextWeight float64) *DetectedSection {
	if contextWeight <= 0 || (len(before) == 0 && len(after) == 0) {
		return nil
	}

	key := normalizeLine(line)
	if key == "" || len(key) >= maxContextLineLength || IsNumericOnly(key) || IsPageMarker(key) {
		return nil
	}

	penalty := genericPenalty(key)
	candidate := func(cue patterns.CompiledCue, id string) *DetectedSection {
		return &DetectedSection{
			Type:       section,
			Title:      strings.TrimSpace(line),
			Confidence: clampConfidence(cue.Confidence * contextWeight * (1 - penalty)),
			Pattern:    id,
			Frequency:  cue.Frequency,
		}
	}

	if index > 0 && index-1 < len(lines) {
		prev := normalizeLine(lines[index-1])
		for _, cue := range before {
			if cue.Matches(prev) {
				return candidate(cue, ContextBeforePattern)
			}
		}
	}

	if index >= 0 && index+1 < len(lines) {
		next := normalizeLine(lines[index+1])
		for _, cue := range after {
			if cue.Matches(next) {
				return candidate(cue, ContextAfterPattern)
			}
		}
	}

	return nil
}

func isContextual(d *DetectedSection) bool {
	return d != nil && strings.HasPrefix(d.Pattern, "context")
}
