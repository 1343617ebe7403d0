package extraction

import "github.com/a3tai/mcp-assessment-import/internal/patterns"

// levelMonthly matches the monthly amount reported for one attendant care level, either as
// "Part 2" (Form 1 wording) or "Level 2"
func levelMonthly(level string) []string {
	return []string{
		`(?i)\bpart[ \t]*` + level + `\b[^\n$]*\$[ \t]*` + money,
		`(?i)\blevel[ \t]*` + level + `\b[^\n$]*\$[ \t]*` + money,
	}
}

// attendantCareRules is the field table of Form 1 attendant care assessments
func attendantCareRules() []FieldRule {
	return []FieldRule{
		nameRule,
		dateOfLossRule,
		claimNumberRule,
		{
			Section: patterns.SectionAttendantCare, Name: "level1Monthly", Kind: KindNumber, Confidence: 0.85,
			Alternatives: rx(levelMonthly("1")...),
		},
		{
			Section: patterns.SectionAttendantCare, Name: "level2Monthly", Kind: KindNumber, Confidence: 0.85,
			Alternatives: rx(levelMonthly("2")...),
		},
		{
			Section: patterns.SectionAttendantCare, Name: "level3Monthly", Kind: KindNumber, Confidence: 0.85,
			Alternatives: rx(levelMonthly("3")...),
		},
		{
			Section: patterns.SectionAttendantCare, Name: "totalWeeklyHours", Kind: KindNumber, Confidence: 0.85,
			Alternatives: rx(
				`(?i)\btotal[ \t]+(?:weekly[ \t]+)?hours(?:[ \t]+per[ \t]+week)?[ \t]*:?[ \t]*(\d+(?:\.\d+)?)`,
				`(?i)\b(\d+(?:\.\d+)?)[ \t]*(?:hours?|hrs?\.?)[ \t]*(?:per|/|a)[ \t]*(?:week|wk)\b`,
			),
		},
		{
			Section: patterns.SectionAttendantCare, Name: "monthlyCost", Kind: KindNumber, Confidence: 0.9,
			Alternatives: rx(
				`(?i)\btotal[ \t]+(?:assessed[ \t]+)?monthly[ \t]+(?:attendant[ \t]+care[ \t]+)?(?:benefit|allowance|cost|amount)[ \t]*:?[ \t]*`+amount,
				`(?i)\bmonthly[ \t]+(?:allowance|cost|amount|benefit)[ \t]*:?[ \t]*`+amount,
			),
		},
	}
}

// NewAttendantCareExtractor returns the extractor for Form 1 attendant care assessments
func NewAttendantCareExtractor() *RuleExtractor {
	return NewRuleExtractor(DocumentTypeAttendantCare, attendantCareRules())
}
