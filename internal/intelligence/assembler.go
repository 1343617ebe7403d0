package intelligence

import (
	"strings"
	"unicode/utf8"
)

// DetectSections splits document text into sections and post-processes the result. Text that
// is empty, whitespace only or not valid UTF-8 is rejected with a *ValidationError and an
// empty detection.
func (d *Detector) DetectSections(text string) (*Detection, error) {
	if err := validateText(text); err != nil {
		return &Detection{}, err
	}

	lines := PreprocessLines(text)
	raw := d.assemble(lines, d.opts.ConfidenceThreshold)
	result := d.PostProcess(raw)

	d.logger.Debug("sections detected",
		"lines", len(lines),
		"raw_sections", len(raw.Sections),
		"sections", len(result.Sections),
		"patterns_version", d.set.Version)

	return result, nil
}

func validateText(text string) error {
	switch {
	case text == "":
		return &ValidationError{Field: "text", Reason: "text cannot be empty"}
	case !utf8.ValidString(text):
		return &ValidationError{Field: "text", Reason: "text is not valid UTF-8"}
	case strings.TrimSpace(text) == "":
		return &ValidationError{Field: "text", Reason: "text contains only whitespace"}
	}
	return nil
}

// assemble walks the preprocessed lines, opening a section on every detection at or above
// threshold. Lines seen before the first boundary go to the preamble.
func (d *Detector) assemble(lines []string, threshold float64) *Detection {
	var (
		out      []AssembledSection
		current  *AssembledSection
		body     []string
		preamble []string
	)

	flush := func() {
		if current == nil || len(body) == 0 {
			return
		}
		current.Content = strings.Join(body, "\n")
		out = append(out, *current)
	}

	for i, line := range lines {
		det := d.DetectSectionStart(line, i, lines)
		if det != nil && det.Confidence >= threshold {
			flush()
			current = &AssembledSection{
				Section:    det.Type,
				Title:      det.Title,
				Confidence: det.Confidence,
				Pattern:    det.Pattern,
			}
			body = []string{line}
			continue
		}

		if current != nil {
			body = append(body, line)
		} else {
			preamble = append(preamble, line)
		}
	}
	flush()

	return &Detection{Sections: out, Preamble: strings.Join(preamble, "\n")}
}

// Text reassembles the detection into document text: the preamble followed by every section's
// content, newline separated.
func (det *Detection) Text() string {
	parts := make([]string, 0, len(det.Sections)+1)
	if det.Preamble != "" {
		parts = append(parts, det.Preamble)
	}
	for _, s := range det.Sections {
		parts = append(parts, s.Content)
	}
	return strings.Join(parts, "\n")
}
