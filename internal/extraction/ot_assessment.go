package extraction

import (
	"regexp"

	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

// Building blocks shared by the rule tables. Field regexes run over the whole document, so
// single-line values never cross a line break.
const (
	lineValue   = `[ \t]*:[ \t]*([^\n]*?)[ \t]*$`
	bullet      = `[ \t]*(?:[-•*●▪◦–]|\d+[.)])[ \t]+[^\n]+\n?`
	bulletBlock = `[ \t]*:?[ \t]*\n(` + bullet + `(?:` + bullet + `|[ \t]+\S[^\n]*\n?)*)`
	money       = `(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`
	amount      = `\$?[ \t]*` + money
)

func rx(sources ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(sources))
	for i, src := range sources {
		out[i] = regexp.MustCompile(src)
	}
	return out
}

// labelled matches "Label: value" on its own line
func labelled(label string) string {
	return `(?im)^[ \t]*(?:` + label + `)` + lineValue
}

// listed matches a label followed by a bullet block on the next lines
func listed(label string) string {
	return `(?im)^[ \t]*(?:\d+\.[ \t]*)?(?:` + label + `)` + bulletBlock
}

var (
	nameRule = FieldRule{
		Section: patterns.SectionDemographics, Name: "name", Kind: KindText, Confidence: 0.9,
		Alternatives: rx(
			`(?im)^[ \t]*(?:(?:client|claimant|patient)[ \t]+)?name`+lineValue,
			`(?m)^[ \t]*RE[ \t]*:[ \t]*([A-Z][A-Za-z'\-]+(?:[ \t]+[A-Z][A-Za-z'\-]+)+)`,
		),
	}
	dateOfLossRule = FieldRule{
		Section: patterns.SectionDemographics, Name: "dateOfLoss", Kind: KindText, Confidence: 0.85,
		Alternatives: rx(
			labelled(`date[ \t]+of[ \t]+(?:loss|accident|injury)|d\.?o\.?l\.?`),
			`(?i)\b(?:mva|accident)[ \t]+(?:of|on)[ \t]+(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4}|[A-Z][a-z]+[ \t]+\d{1,2},?[ \t]+\d{4})`,
		),
	}
	claimNumberRule = FieldRule{
		Section: patterns.SectionDemographics, Name: "claimNumber", Kind: KindText, Confidence: 0.9,
		Alternatives: rx(
			`(?im)^[ \t]*claim[ \t]*(?:number|no\.?|#)[ \t]*:?[ \t]*([A-Z0-9][A-Z0-9\-/]*\d[A-Z0-9\-/]*)`,
			`(?im)\bfile[ \t]*(?:number|no\.?|#)[ \t]*:?[ \t]*([A-Z0-9][A-Z0-9\-/]*\d[A-Z0-9\-/]*)`,
		),
	}
)

// otAssessmentRules is the field table of occupational therapy in-home assessments
func otAssessmentRules() []FieldRule {
	return []FieldRule{
		nameRule,
		{
			Section: patterns.SectionDemographics, Name: "dateOfBirth", Kind: KindText, Confidence: 0.9,
			Alternatives: rx(labelled(`date[ \t]+of[ \t]+birth|d\.?o\.?b\.?|birth[ \t]*date`)),
		},
		dateOfLossRule,
		{
			Section: patterns.SectionDemographics, Name: "assessmentDate", Kind: KindText, Confidence: 0.85,
			Alternatives: rx(labelled(`date[ \t]+of[ \t]+(?:assessment|visit)|assessment[ \t]+date`)),
		},
		{
			Section: patterns.SectionDemographics, Name: "address", Kind: KindText, Confidence: 0.8,
			Alternatives: rx(labelled(`(?:home[ \t]+)?address`)),
		},
		{
			Section: patterns.SectionDemographics, Name: "phone", Kind: KindText, Confidence: 0.85,
			Alternatives: rx(
				`(?im)^[ \t]*(?:tel(?:ephone)?|phone)(?:[ \t]+(?:number|no\.?))?[ \t]*:[ \t]*(\+?[(\d][\d \t().\-]{6,}\d)`,
			),
		},
		claimNumberRule,
		{
			Section: patterns.SectionDemographics, Name: "therapist", Kind: KindText, Confidence: 0.8,
			Alternatives: rx(labelled(`(?:occupational[ \t]+)?therapist(?:[ \t]+name)?|assessor`)),
		},
		{
			Section: patterns.SectionMedicalHistory, Name: "diagnoses", Kind: KindList, Confidence: 0.8,
			Alternatives: rx(
				listed(`diagnos[ei]s|impressions?`),
				labelled(`diagnos[ei]s|impressions?`),
			),
		},
		{
			Section: patterns.SectionMedicalHistory, Name: "injuries", Kind: KindList, Confidence: 0.85,
			Alternatives: rx(
				listed(`(?:summary[ \t]+of[ \t]+)?injuries(?:[ \t]+sustained)?`),
				labelled(`injuries(?:[ \t]+sustained)?`),
			),
		},
		{
			Section: patterns.SectionMedicalHistory, Name: "medications", Kind: KindList, Confidence: 0.8,
			Alternatives: rx(
				listed(`(?:current[ \t]+)?medications?`),
				labelled(`(?:current[ \t]+)?medications?`),
			),
		},
		{
			Section: patterns.SectionSymptoms, Name: "painRating", Kind: KindNumber, Confidence: 0.85,
			Alternatives: rx(
				`(?i)\bpain\b[^\n]{0,40}?\b(\d{1,2}(?:\.\d)?)[ \t]*/[ \t]*10\b`,
				`(?i)\bpain[ \t]+(?:rating|level|score)[ \t]*:?[ \t]*(\d{1,2}(?:\.\d)?)\b`,
			),
		},
		{
			Section: patterns.SectionSymptoms, Name: "physicalSymptoms", Kind: KindList, Confidence: 0.8,
			Alternatives: rx(
				listed(`physical[ \t]+symptoms|current[ \t]+complaints|reported[ \t]+symptoms`),
				labelled(`physical[ \t]+symptoms|current[ \t]+complaints`),
			),
		},
		{
			Section: patterns.SectionAttendantCare, Name: "hoursPerWeek", Kind: KindNumber, Confidence: 0.85,
			Alternatives: rx(
				`(?i)\b(\d+(?:\.\d+)?)[ \t]*(?:hours?|hrs?\.?)[ \t]*(?:per|/|a)[ \t]*(?:week|wk)\b`,
			),
		},
		{
			Section: patterns.SectionAttendantCare, Name: "monthlyCost", Kind: KindNumber, Confidence: 0.9,
			Alternatives: rx(
				`(?i)\bmonthly[ \t]+(?:attendant[ \t]+care[ \t]+)?(?:allowance|cost|amount|benefit)[ \t]*:?[ \t]*`+amount,
				`(?i)`+amount+`[ \t]*(?:per|/|a)[ \t]*month\b`,
			),
		},
		{
			Section: patterns.SectionRecommendations, Name: "items", Kind: KindList, Confidence: 0.8,
			Alternatives: rx(listed(`(?:summary[ \t]+of[ \t]+)?recommendations?`)),
		},
		{
			Section: patterns.SectionRecommendations, Name: "totalCost", Kind: KindNumber, Confidence: 0.85,
			Alternatives: rx(
				`(?i)\btotal[ \t]+(?:estimated[ \t]+)?(?:cost|amount)[ \t]*:?[ \t]*`+amount,
			),
		},
	}
}

// NewOTAssessmentExtractor returns the extractor for occupational therapy assessments
func NewOTAssessmentExtractor() *RuleExtractor {
	return NewRuleExtractor(DocumentTypeOTAssessment, otAssessmentRules())
}
