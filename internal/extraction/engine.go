package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Extractor pulls typed fields for one document type out of raw document text
type Extractor interface {
	DocumentType() string
	Extract(text string) *Result
}

// Kind is the value type a field rule produces
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindList
)

// FieldRule describes how to extract one field. Alternatives are tried in order against the
// whole document text; the first one whose capture converts to a usable value wins and the
// field is recorded with Confidence.
type FieldRule struct {
	Section      string
	Name         string
	Kind         Kind
	Alternatives []*regexp.Regexp
	Confidence   float64
}

// RuleExtractor applies an ordered list of field rules
type RuleExtractor struct {
	documentType string
	rules        []FieldRule
}

// NewRuleExtractor creates an extractor for a document type
func NewRuleExtractor(documentType string, rules []FieldRule) *RuleExtractor {
	return &RuleExtractor{documentType: documentType, rules: rules}
}

// DocumentType returns the document type the extractor handles
func (e *RuleExtractor) DocumentType() string {
	return e.documentType
}

// Rules returns the field rules in evaluation order
func (e *RuleExtractor) Rules() []FieldRule {
	return e.rules
}

// Extract runs every rule over the text. Fields that never match are left out of the result
// and of the document confidence, which is the mean of the recorded field confidences.
func (e *RuleExtractor) Extract(text string) *Result {
	result := &Result{DocumentType: e.documentType}

	var sum float64
	for _, rule := range e.rules {
		value, ok := applyRule(rule, text)
		if !ok {
			continue
		}
		conf := clamp01(rule.Confidence)
		result.add(rule.Section, Field{Name: rule.Name, Value: value, Confidence: conf})
		sum += conf
	}

	if n := result.FieldCount(); n > 0 {
		result.DocumentConfidence = sum / float64(n)
	}
	return result
}

func applyRule(rule FieldRule, text string) (interface{}, bool) {
	for _, re := range rule.Alternatives {
		capture, ok := firstCapture(re, text)
		if !ok {
			continue
		}
		if value, ok := convert(rule.Kind, capture); ok {
			return value, true
		}
	}
	return nil, false
}

// firstCapture returns the first non-empty capture group of the leftmost match
func firstCapture(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	for _, group := range m[1:] {
		if trimmed := strings.TrimSpace(group); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

func convert(kind Kind, capture string) (interface{}, bool) {
	switch kind {
	case KindNumber:
		return parseNumber(capture)
	case KindList:
		items := SplitList(capture)
		return items, len(items) > 0
	default:
		if !meaningful(capture) {
			return nil, false
		}
		return capture, true
	}
}

// meaningful rejects captures that hold no letters or digits
func meaningful(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

var numberCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(numberCleaner.Replace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var (
	bulletPrefix  = regexp.MustCompile(`^[ \t]*(?:[-•*●▪◦–]|\d+[.)])[ \t]+`)
	listSeparator = regexp.MustCompile(`[,;]`)
)

// SplitList splits a captured block into items. Bullet markers are preferred, then line
// breaks, then commas. Empty items are dropped.
func SplitList(s string) []string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")

	hasBullets := false
	for _, line := range lines {
		if bulletPrefix.MatchString(line) {
			hasBullets = true
			break
		}
	}

	var raw []string
	switch {
	case hasBullets:
		for _, line := range lines {
			if loc := bulletPrefix.FindStringIndex(line); loc != nil {
				raw = append(raw, line[loc[1]:])
				continue
			}
			// continuation of a wrapped bullet
			if len(raw) > 0 && strings.TrimSpace(line) != "" {
				raw[len(raw)-1] += " " + strings.TrimSpace(line)
			}
		}
	case len(lines) > 1:
		raw = lines
	default:
		raw = listSeparator.Split(s, -1)
	}

	items := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if meaningful(item) {
			items = append(items, item)
		}
	}
	return items
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
