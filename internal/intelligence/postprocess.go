package intelligence

import (
	"math"
	"strings"
)

const (
	// ResplitThreshold is the boundary threshold used when retrying a single-section result
	ResplitThreshold = 0.25
	// ResplitCeiling is the confidence below which a lone section is retried
	ResplitCeiling = 0.7
	// SequenceCeiling is the highest confidence still subject to sequence demotion
	SequenceCeiling = 0.7
	// SequencePenalty multiplies the confidence of an out-of-sequence section
	SequencePenalty = 0.8
)

// PostProcess re-splits a lone low-confidence section, merges adjacent sections of the same
// type and demotes sections that break the expected order. The input is not modified.
func (d *Detector) PostProcess(det *Detection) *Detection {
	if det == nil {
		return &Detection{}
	}
	out := &Detection{
		Sections: append([]AssembledSection(nil), det.Sections...),
		Preamble: det.Preamble,
	}

	if d.opts.FallbackEnabled {
		out.Sections = d.resplit(out.Sections, ResplitThreshold)
	}
	out.Sections = MergeAdjacent(out.Sections)
	out.Sections = ApplySequenceConsistency(out.Sections)
	return out
}

// resplit retries detection inside a single low-confidence section at the given threshold and
// keeps the retry when it finds more than one section.
func (d *Detector) resplit(sections []AssembledSection, threshold float64) []AssembledSection {
	if len(sections) != 1 || sections[0].Confidence >= ResplitCeiling {
		return sections
	}

	retry := d.assemble(PreprocessLines(sections[0].Content), threshold)
	if len(retry.Sections) <= 1 {
		return sections
	}

	d.logger.Debug("single section re-split",
		"section", sections[0].Section,
		"confidence", sections[0].Confidence,
		"sections", len(retry.Sections))

	if retry.Preamble != "" {
		retry.Sections[0].Content = retry.Preamble + "\n" + retry.Sections[0].Content
	}
	return retry.Sections
}

// MergeAdjacent collapses runs of neighbouring sections that share a type. Content is joined
// with a newline and the highest confidence is kept.
func MergeAdjacent(sections []AssembledSection) []AssembledSection {
	if len(sections) < 2 {
		return sections
	}

	merged := make([]AssembledSection, 0, len(sections))
	for _, s := range sections {
		last := len(merged) - 1
		if last >= 0 && merged[last].Section == s.Section {
			prev := &merged[last]
			prev.Content = strings.Join([]string{prev.Content, s.Content}, "\n")
			if s.Confidence > prev.Confidence {
				prev.Confidence = s.Confidence
				prev.Pattern = s.Pattern
			}
			prev.OutOfSequence = prev.OutOfSequence || s.OutOfSequence
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// ApplySequenceConsistency demotes low-confidence sections sandwiched between two section
// types that normally border each other but not the section itself. Sections are never
// removed or moved.
func ApplySequenceConsistency(sections []AssembledSection) []AssembledSection {
	if len(sections) < 3 {
		return sections
	}

	out := append([]AssembledSection(nil), sections...)
	for i := 1; i < len(out)-1; i++ {
		cur := &out[i]
		if cur.OutOfSequence || cur.Confidence > SequenceCeiling {
			continue
		}
		prev, next := out[i-1].Section, out[i+1].Section
		if !adjacent(prev, next) || adjacent(cur.Section, prev) || adjacent(cur.Section, next) {
			continue
		}
		cur.Confidence = clampConfidence(math.Round(cur.Confidence*SequencePenalty*1e6) / 1e6)
		cur.OutOfSequence = true
	}
	return out
}
