package intelligence

import (
	"math"
	"strings"

	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

const (
	// PatternIDPrefix prefixes the Pattern identifier of statistical matches
	PatternIDPrefix = "pattern:"

	frequencySaturation = 50.0
	multiMatchCeiling   = 0.95
)

// NormalizeConfidence maps a raw pattern confidence into the section's observed range
func NormalizeConfidence(confidence, min, max, avg float64) float64 {
	return avg*0.3 + (min+confidence*(max-min))*0.7
}

// frequencyFactor saturates at 1 once a pattern has been seen frequencySaturation times
func frequencyFactor(frequency int) float64 {
	if frequency <= 0 {
		return 0
	}
	return math.Min(1, float64(frequency)/frequencySaturation)
}

// scorePattern blends the normalized confidence 70/30 with its frequency-weighted value
func scorePattern(p patterns.Pattern, stats patterns.SectionStats) float64 {
	n := NormalizeConfidence(p.Confidence, stats.Min, stats.Max, stats.Avg)
	return clampConfidence(0.7*(n*frequencyFactor(p.Frequency)) + 0.3*n)
}

// MatchPatterns tests a line against one section's learned patterns and returns the best
// scoring match, or nil when none of them match.
func MatchPatterns(line, section string, compiled []patterns.CompiledPattern, stats patterns.SectionStats) *DetectedSection {
	key := normalizeLine(line)
	if key == "" || len(compiled) == 0 {
		return nil
	}

	var best *DetectedSection
	matchCount := 0
	for _, cp := range compiled {
		if !cp.Matches(key) {
			continue
		}
		matchCount++
		score := scorePattern(cp.Pattern, stats)
		if best == nil || score > best.Confidence {
			best = &DetectedSection{
				Type:       section,
				Title:      strings.TrimSpace(line),
				Confidence: score,
				Pattern:    PatternIDPrefix + cp.Text,
				Frequency:  cp.Frequency,
			}
		}
	}
	if best == nil {
		return nil
	}

	if matchCount > 1 {
		best.Confidence = clampConfidence(math.Min(multiMatchCeiling, best.Confidence*(1+float64(matchCount)*0.1)))
		best.MatchCount = matchCount
	}
	return best
}

func clampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
