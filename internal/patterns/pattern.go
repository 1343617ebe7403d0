package patterns

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Section type labels shared by the pattern tables, the header table and the extractors
const (
	SectionDemographics     = "DEMOGRAPHICS"
	SectionPurpose          = "PURPOSE"
	SectionMedicalHistory   = "MEDICAL_HISTORY"
	SectionSymptoms         = "SYMPTOMS"
	SectionFunctionalStatus = "FUNCTIONAL_STATUS"
	SectionTypicalDay       = "TYPICAL_DAY"
	SectionEnvironmental    = "ENVIRONMENTAL"
	SectionADL              = "ADL"
	SectionAttendantCare    = "ATTENDANT_CARE"
	SectionRecommendations  = "RECOMMENDATIONS"
)

// Pattern is a learned header pattern for one section type. Text is either a literal phrase
// or, when Regex is set, a regular expression source.
type Pattern struct {
	Text       string  `yaml:"text" json:"text"`
	Regex      bool    `yaml:"regex,omitempty" json:"regex,omitempty"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
	Frequency  int     `yaml:"frequency" json:"frequency"`
}

// SectionStats is the empirically observed confidence range of a section's patterns
type SectionStats struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
	Avg float64 `yaml:"avg" json:"avg"`
}

// DefaultStats is used for section types the stats table does not cover
var DefaultStats = SectionStats{Min: 0, Max: 1, Avg: 0.5}

// ContextPatterns are cue phrases expected in the line before or after a real header
type ContextPatterns struct {
	Before []Pattern `yaml:"before,omitempty" json:"before,omitempty"`
	After  []Pattern `yaml:"after,omitempty" json:"after,omitempty"`
}

// Set is a complete, versioned pattern table. A Set must not be modified once it has been
// compiled; produce a new Set (see Clone and Improve) instead.
type Set struct {
	Version  string                     `yaml:"version" json:"version"`
	Sections []string                   `yaml:"sections" json:"sections"`
	Patterns map[string][]Pattern       `yaml:"patterns" json:"patterns"`
	Stats    map[string]SectionStats    `yaml:"stats,omitempty" json:"stats,omitempty"`
	Context  map[string]ContextPatterns `yaml:"context,omitempty" json:"context,omitempty"`

	order    []string
	compiled map[string][]CompiledPattern
	before   map[string][]CompiledCue
	after    map[string][]CompiledCue
}

// CompiledPattern is a Pattern with its four structural match forms
type CompiledPattern struct {
	Pattern
	forms [4]*regexp.Regexp
}

// Matches reports whether the normalized line is the pattern on its own, the pattern followed
// by ':' or '-', or the pattern behind a leading enumeration such as "1. ".
func (cp CompiledPattern) Matches(line string) bool {
	for _, re := range cp.forms {
		if re != nil && re.MatchString(line) {
			return true
		}
	}
	return false
}

// CompiledCue is a contextual cue phrase ready to be searched for in a neighbouring line
type CompiledCue struct {
	Pattern
	re *regexp.Regexp
}

// Matches reports whether the cue occurs anywhere in the line
func (cc CompiledCue) Matches(line string) bool {
	return cc.re != nil && cc.re.MatchString(line)
}

func patternBody(p Pattern) string {
	if p.Regex {
		return p.Text
	}
	return regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(p.Text)))
}

func compilePattern(p Pattern) (CompiledPattern, error) {
	body := patternBody(p)
	sources := [4]string{
		`(?i)^(?:` + body + `)$`,
		`(?i)^(?:` + body + `)\s*:`,
		`(?i)^(?:` + body + `)\s*-`,
		`(?i)^\d+\.\s*(?:` + body + `)\s*(?:[:\-].*)?$`,
	}

	cp := CompiledPattern{Pattern: p}
	for i, src := range sources {
		re, err := regexp.Compile(src)
		if err != nil {
			return CompiledPattern{}, fmt.Errorf("compiling pattern %q: %w", p.Text, err)
		}
		cp.forms[i] = re
	}
	return cp, nil
}

func compileCue(p Pattern) (CompiledCue, error) {
	body := patternBody(p)
	if !p.Regex {
		body = `\b` + body
	}
	re, err := regexp.Compile(`(?i)` + body)
	if err != nil {
		return CompiledCue{}, fmt.Errorf("compiling context cue %q: %w", p.Text, err)
	}
	return CompiledCue{Pattern: p, re: re}, nil
}

// Validate checks the table for values that would break the confidence invariants
func (s *Set) Validate() error {
	if s == nil {
		return fmt.Errorf("pattern set cannot be nil")
	}
	if len(s.Patterns) == 0 && len(s.Context) == 0 {
		return fmt.Errorf("pattern set %q has no patterns", s.Version)
	}

	for section, list := range s.Patterns {
		if strings.TrimSpace(section) == "" {
			return fmt.Errorf("pattern section name cannot be empty")
		}
		for i, p := range list {
			if err := validatePattern(p); err != nil {
				return fmt.Errorf("section %s pattern %d: %w", section, i, err)
			}
		}
	}

	for section, cues := range s.Context {
		for i, p := range cues.Before {
			if err := validatePattern(p); err != nil {
				return fmt.Errorf("section %s before cue %d: %w", section, i, err)
			}
		}
		for i, p := range cues.After {
			if err := validatePattern(p); err != nil {
				return fmt.Errorf("section %s after cue %d: %w", section, i, err)
			}
		}
	}

	for section, st := range s.Stats {
		if st.Min < 0 || st.Max > 1 || st.Min > st.Max {
			return fmt.Errorf("section %s stats: min %.3f / max %.3f out of range", section, st.Min, st.Max)
		}
		if st.Avg < 0 || st.Avg > 1 {
			return fmt.Errorf("section %s stats: avg %.3f out of range", section, st.Avg)
		}
	}

	return nil
}

func validatePattern(p Pattern) error {
	if strings.TrimSpace(p.Text) == "" {
		return fmt.Errorf("text cannot be empty")
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("confidence %.3f must be between 0 and 1", p.Confidence)
	}
	if p.Frequency < 0 {
		return fmt.Errorf("frequency %d cannot be negative", p.Frequency)
	}
	if p.Regex {
		if _, err := regexp.Compile(p.Text); err != nil {
			return fmt.Errorf("regex %q does not compile: %w", p.Text, err)
		}
	}
	return nil
}

// Compile validates the set and prepares the match forms. It is safe to call more than once.
func (s *Set) Compile() error {
	if err := s.Validate(); err != nil {
		return err
	}

	compiled := make(map[string][]CompiledPattern, len(s.Patterns))
	for section, list := range s.Patterns {
		for _, p := range list {
			cp, err := compilePattern(p)
			if err != nil {
				return fmt.Errorf("section %s: %w", section, err)
			}
			compiled[section] = append(compiled[section], cp)
		}
	}

	before := make(map[string][]CompiledCue)
	after := make(map[string][]CompiledCue)
	for section, cues := range s.Context {
		for _, p := range cues.Before {
			cc, err := compileCue(p)
			if err != nil {
				return fmt.Errorf("section %s: %w", section, err)
			}
			before[section] = append(before[section], cc)
		}
		for _, p := range cues.After {
			cc, err := compileCue(p)
			if err != nil {
				return fmt.Errorf("section %s: %w", section, err)
			}
			after[section] = append(after[section], cc)
		}
	}

	s.order = s.sectionOrder()
	s.compiled = compiled
	s.before = before
	s.after = after
	return nil
}

// sectionOrder lists the declared sections first, then any section that only appears in the
// pattern or context tables, sorted, so iteration is deterministic.
func (s *Set) sectionOrder() []string {
	seen := make(map[string]bool)
	var order []string
	for _, section := range s.Sections {
		if section == "" || seen[section] {
			continue
		}
		seen[section] = true
		order = append(order, section)
	}

	var extra []string
	for section := range s.Patterns {
		if !seen[section] {
			seen[section] = true
			extra = append(extra, section)
		}
	}
	for section := range s.Context {
		if !seen[section] {
			seen[section] = true
			extra = append(extra, section)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

// IsCompiled reports whether Compile has run
func (s *Set) IsCompiled() bool {
	return s != nil && s.order != nil
}

// SectionTypes returns the section types in priority order
func (s *Set) SectionTypes() []string {
	if s == nil {
		return nil
	}
	if s.order == nil {
		return s.sectionOrder()
	}
	return s.order
}

// PatternsFor returns the compiled statistical patterns of a section type
func (s *Set) PatternsFor(section string) []CompiledPattern {
	if s == nil {
		return nil
	}
	return s.compiled[section]
}

// StatsFor returns the normalization range of a section type, falling back to DefaultStats
func (s *Set) StatsFor(section string) SectionStats {
	if s == nil {
		return DefaultStats
	}
	if st, ok := s.Stats[section]; ok {
		return st
	}
	return DefaultStats
}

// ContextFor returns the compiled before/after cues of a section type
func (s *Set) ContextFor(section string) (before, after []CompiledCue) {
	if s == nil {
		return nil, nil
	}
	return s.before[section], s.after[section]
}

// HasSection reports whether the section type appears anywhere in the table
func (s *Set) HasSection(section string) bool {
	for _, name := range s.SectionTypes() {
		if name == section {
			return true
		}
	}
	return false
}

// Clone returns an uncompiled deep copy
func (s *Set) Clone() *Set {
	if s == nil {
		return nil
	}
	c := &Set{
		Version:  s.Version,
		Sections: append([]string(nil), s.Sections...),
		Patterns: make(map[string][]Pattern, len(s.Patterns)),
		Stats:    make(map[string]SectionStats, len(s.Stats)),
		Context:  make(map[string]ContextPatterns, len(s.Context)),
	}
	for section, list := range s.Patterns {
		c.Patterns[section] = append([]Pattern(nil), list...)
	}
	for section, st := range s.Stats {
		c.Stats[section] = st
	}
	for section, cues := range s.Context {
		c.Context[section] = ContextPatterns{
			Before: append([]Pattern(nil), cues.Before...),
			After:  append([]Pattern(nil), cues.After...),
		}
	}
	return c
}

// ComputeStats derives min/max/avg from the confidences of a pattern list
func ComputeStats(list []Pattern) SectionStats {
	if len(list) == 0 {
		return DefaultStats
	}
	st := SectionStats{Min: list[0].Confidence, Max: list[0].Confidence}
	var sum float64
	for _, p := range list {
		if p.Confidence < st.Min {
			st.Min = p.Confidence
		}
		if p.Confidence > st.Max {
			st.Max = p.Confidence
		}
		sum += p.Confidence
	}
	st.Avg = sum / float64(len(list))
	return st
}
