package intelligence

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	pageMarkerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^page\s+\d+(\s+of\s+\d+)?$`),
		regexp.MustCompile(`(?i)^\d+\s+of\s+\d+$`),
		regexp.MustCompile(`^-\s*\d+\s*-$`),
	}
	numericOnlyPattern = regexp.MustCompile(`^[\d\s.,:/%$#()+-]+$`)
	lineBreakReplacer  = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n")
)

// SplitLines splits raw document text into lines. Form feeds (page breaks from the PDF
// reader) count as line breaks.
func SplitLines(text string) []string {
	return strings.Split(lineBreakReplacer.Replace(text), "\n")
}

// IsBlank reports whether the line carries no text
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// IsPageMarker reports whether the line is a page number or "Page x of y" footer
func IsPageMarker(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, re := range pageMarkerPatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// IsNumericOnly reports whether the line holds only numbers and numeric punctuation
func IsNumericOnly(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && numericOnlyPattern.MatchString(trimmed)
}

// PreprocessLines splits text into lines and drops blank lines and page markers. The kept
// lines are returned unchanged so section content reproduces the source.
func PreprocessLines(text string) []string {
	raw := SplitLines(text)
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if IsBlank(line) || IsPageMarker(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// normalizeLine produces the matching key of a line: NFKC folded, trimmed, lower-cased
func normalizeLine(line string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(line)))
}
