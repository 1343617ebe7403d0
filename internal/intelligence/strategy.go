package intelligence

import "math"

const (
	highComplexity       = 0.6
	lowTypeConfidence    = 0.5
	fallbackThreshold    = 0.35
	maxContentWeight     = 0.6
	minStrategyThreshold = 0.1
)

// SelectPatternStrategy derives detection options for one document from its classification.
// Base supplies the values the decision table leaves alone; priority shifts the balance
// between explicit headers and content cues.
func SelectPatternStrategy(c DocumentClassification, priority PatternPriority, base Options) Options {
	opts := base
	opts.PatternPriority = priority
	if !priority.IsValid() {
		opts.PatternPriority = PriorityBalanced
	}

	switch c.Structure {
	case StructureForm:
		// short label lines: trust headers, distrust neighbours
		opts.ConfidenceThreshold = 0.45
		opts.ContextWeight = 0.2
	case StructureNarrative:
		opts.ConfidenceThreshold = 0.35
		opts.ContextWeight = 0.35
		if c.Complexity > highComplexity {
			opts.RequireMultiplePatterns = true
		}
	}

	if c.Type == TypeGeneral || c.Type == "" || c.Confidence < lowTypeConfidence {
		opts.FallbackEnabled = true
		opts.ConfidenceThreshold = math.Min(opts.ConfidenceThreshold, fallbackThreshold)
	}

	switch opts.PatternPriority {
	case PrioritySectionFirst:
		opts.ContextWeight *= 0.5
		opts.StrongSectionHeaderPattern = true
	case PriorityContentFirst:
		opts.ContextWeight = math.Min(maxContentWeight, opts.ContextWeight+0.2)
		opts.ConfidenceThreshold -= 0.05
		opts.StrongSectionHeaderPattern = false
	}

	opts.ConfidenceThreshold = math.Max(minStrategyThreshold, clampConfidence(opts.ConfidenceThreshold))
	opts.ContextWeight = clampConfidence(opts.ContextWeight)
	return opts
}
