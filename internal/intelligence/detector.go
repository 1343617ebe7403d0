package intelligence

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

// ContextTieMargin is how close the top two candidates must be for a direct match to be
// preferred over a contextual one
const ContextTieMargin = 0.05

// Detector finds section boundaries in document text using a fixed pattern table and options.
// A Detector holds no mutable state and is safe for concurrent use.
type Detector struct {
	set    *patterns.Set
	opts   Options
	logger *slog.Logger
}

// NewDetector creates a detector over a pattern table. An uncompiled table is compiled on a
// private copy so the caller's value is never modified.
func NewDetector(set *patterns.Set, opts Options, logger *slog.Logger) (*Detector, error) {
	if set == nil {
		return nil, fmt.Errorf("pattern set cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection options: %w", err)
	}
	if !set.IsCompiled() {
		set = set.Clone()
		if err := set.Compile(); err != nil {
			return nil, fmt.Errorf("failed to compile pattern set: %w", err)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Detector{set: set, opts: opts, logger: logger}, nil
}

// Options returns the options the detector was built with
func (d *Detector) Options() Options {
	return d.opts
}

// PatternVersion returns the version of the pattern table in use
func (d *Detector) PatternVersion() string {
	return d.set.Version
}

// DetectSectionStart decides whether lines[index] opens a new section. Explicit headers are
// checked first; otherwise the statistical and contextual candidates of every section type
// compete on confidence.
func (d *Detector) DetectSectionStart(line string, index int, lines []string) *DetectedSection {
	var candidates []*DetectedSection

	if header := MatchHeader(line); header != nil {
		if d.opts.StrongSectionHeaderPattern {
			return header
		}
		candidates = append(candidates, header)
	}

	for _, section := range d.set.SectionTypes() {
		if stat := MatchPatterns(line, section, d.set.PatternsFor(section), d.set.StatsFor(section)); stat != nil {
			if !d.opts.RequireMultiplePatterns || stat.MatchCount >= 2 {
				candidates = append(candidates, stat)
			}
			continue
		}

		// contextual evidence never corroborates on its own
		if d.opts.RequireMultiplePatterns || d.opts.ContextWeight <= 0 {
			continue
		}
		before, after := d.set.ContextFor(section)
		if ctx := MatchContext(line, index, lines, section, before, after, d.opts.ContextWeight); ctx != nil {
			candidates = append(candidates, ctx)
		}
	}

	return pickCandidate(candidates)
}

// withinTieMargin reports whether b trails a by at most ContextTieMargin. The tolerance keeps a
// gap of exactly the margin (0.55 vs 0.50) inside it despite float rounding.
func withinTieMargin(a, b *DetectedSection) bool {
	return a.Confidence-b.Confidence <= ContextTieMargin+1e-9
}

// pickCandidate returns the highest-confidence candidate, preferring direct evidence over
// contextual inference when the top two are within ContextTieMargin.
func pickCandidate(candidates []*DetectedSection) *DetectedSection {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	top := candidates[0]
	if !isContextual(top) || !withinTieMargin(top, candidates[1]) {
		return top
	}
	for _, c := range candidates[1:] {
		if !withinTieMargin(top, c) {
			break
		}
		if !isContextual(c) {
			return c
		}
	}
	return top
}
