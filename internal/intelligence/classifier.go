package intelligence

import (
	"strings"
	"unicode"
)

// Document types recognised by the classifier
const (
	TypeInHomeAssessment        = "in-home-assessment"
	TypeAttendantCareAssessment = "attendant-care-assessment"
	TypeOTAssessment            = "ot-assessment"
	TypeGeneral                 = "general"
)

// Document structures
const (
	StructureForm      = "form"
	StructureNarrative = "narrative"
)

const (
	shortLineLength   = 50
	formLineShare     = 0.7
	complexityWords   = 5000.0
	unknownConfidence = 0.3
)

// DocumentClassification is a coarse pre-analysis of a document used to tune detection
type DocumentClassification struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Structure  string  `json:"structure"`
	Length     int     `json:"length"`
	Complexity float64 `json:"complexity"`
}

// ClassificationRule assigns a document type when any of its keywords occurs in the text
type ClassificationRule struct {
	Type       string   `json:"type"`
	Keywords   []string `json:"keywords"`
	Confidence float64  `json:"confidence"`
}

// DocumentClassifier performs keyword-based document classification
type DocumentClassifier struct {
	rules   []ClassificationRule
	version string
}

// NewDocumentClassifier creates a classifier with the default trigger rules
func NewDocumentClassifier() *DocumentClassifier {
	return &DocumentClassifier{
		rules:   getDefaultRules(),
		version: "1.0.0",
	}
}

// getDefaultRules returns the trigger rules in priority order
func getDefaultRules() []ClassificationRule {
	return []ClassificationRule{
		{
			Type:       TypeInHomeAssessment,
			Keywords:   []string{"IN-HOME ASSESSMENT", "IN HOME ASSESSMENT"},
			Confidence: 0.9,
		},
		{
			Type:       TypeAttendantCareAssessment,
			Keywords:   []string{"ASSESSMENT OF ATTENDANT CARE NEEDS", "FORM 1"},
			Confidence: 0.85,
		},
		{
			Type: TypeOTAssessment,
			Keywords: []string{
				"OCCUPATIONAL THERAPY ASSESSMENT",
				"OCCUPATIONAL THERAPIST",
				"OT ASSESSMENT",
			},
			Confidence: 0.8,
		},
	}
}

// Classify infers the document type, structure and complexity of raw text. It never fails;
// text that matches no trigger is classified as general with low confidence.
func (dc *DocumentClassifier) Classify(text string) DocumentClassification {
	result := DocumentClassification{
		Type:       TypeGeneral,
		Confidence: unknownConfidence,
		Structure:  classifyStructure(text),
		Length:     len(text),
		Complexity: complexity(text),
	}

	upper := strings.ToUpper(text)
	for _, rule := range dc.rules {
		if containsAny(upper, rule.Keywords) {
			result.Type = rule.Type
			result.Confidence = rule.Confidence
			break
		}
	}

	return result
}

// GetVersion returns the classifier version
func (dc *DocumentClassifier) GetVersion() string {
	return dc.version
}

func containsAny(upper string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(upper, strings.ToUpper(k)) {
			return true
		}
	}
	return false
}

// classifyStructure calls a document a form when most of its lines are short
func classifyStructure(text string) string {
	total, short := 0, 0
	for _, line := range SplitLines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		total++
		if len(trimmed) < shortLineLength {
			short++
		}
	}
	if total > 0 && float64(short)/float64(total) > formLineShare {
		return StructureForm
	}
	return StructureNarrative
}

func complexity(text string) float64 {
	unique := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}) {
		unique[w] = struct{}{}
	}
	c := float64(len(unique)) / complexityWords
	if c > 1 {
		return 1
	}
	return c
}
