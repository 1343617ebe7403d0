package intelligence

import (
	"fmt"
)

// DetectedSection is a candidate section start for a single line
type DetectedSection struct {
	Type          string  `json:"type"`
	Title         string  `json:"title"`
	Confidence    float64 `json:"confidence"` // 0.0 to 1.0
	Pattern       string  `json:"pattern"`    // identifier of the rule that matched
	Frequency     int     `json:"frequency"`
	MatchCount    int     `json:"matchCount,omitempty"`
	OutOfSequence bool    `json:"outOfSequence,omitempty"`
}

// AssembledSection is a run of document lines attributed to one section type.
// Content starts with the boundary line the section was opened on.
type AssembledSection struct {
	Section       string  `json:"section"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Confidence    float64 `json:"confidence"`
	Pattern       string  `json:"pattern"`
	OutOfSequence bool    `json:"outOfSequence,omitempty"`
}

// Detection is the output of section detection. Preamble holds the lines that preceded the
// first accepted boundary.
type Detection struct {
	Sections []AssembledSection `json:"sections"`
	Preamble string             `json:"preamble,omitempty"`
}

// PatternPriority is a tie-break hint consumed by SelectPatternStrategy
type PatternPriority string

const (
	PriorityBalanced     PatternPriority = "balanced"
	PrioritySectionFirst PatternPriority = "section-first"
	PriorityContentFirst PatternPriority = "content-first"
)

// IsValid checks if the priority is one of the known values
func (p PatternPriority) IsValid() bool {
	switch p {
	case PriorityBalanced, PrioritySectionFirst, PriorityContentFirst:
		return true
	default:
		return false
	}
}

// Options configures section detection
type Options struct {
	ConfidenceThreshold        float64         `json:"confidenceThreshold"`
	ContextWeight              float64         `json:"contextWeight"`
	PatternPriority            PatternPriority `json:"patternPriority"`
	FallbackEnabled            bool            `json:"fallbackEnabled"`
	RequireMultiplePatterns    bool            `json:"requireMultiplePatterns"`
	StrongSectionHeaderPattern bool            `json:"strongSectionHeaderPattern"`
}

// DefaultOptions returns the default detection options
func DefaultOptions() Options {
	return Options{
		ConfidenceThreshold:        0.4,
		ContextWeight:              0.3,
		PatternPriority:            PriorityBalanced,
		FallbackEnabled:            true,
		RequireMultiplePatterns:    false,
		StrongSectionHeaderPattern: true,
	}
}

// Validate checks the options for values outside their ranges
func (o Options) Validate() error {
	if o.ConfidenceThreshold < 0 || o.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold %.2f must be between 0 and 1", o.ConfidenceThreshold)
	}
	if o.ContextWeight < 0 || o.ContextWeight > 1 {
		return fmt.Errorf("context weight %.2f must be between 0 and 1", o.ContextWeight)
	}
	if !o.PatternPriority.IsValid() {
		return fmt.Errorf("invalid pattern priority: %q (must be one of: balanced, section-first, content-first)", o.PatternPriority)
	}
	return nil
}
