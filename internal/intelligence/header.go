package intelligence

import (
	"regexp"
	"strings"

	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

const (
	// ExplicitHeaderConfidence is assigned to every explicit header match
	ExplicitHeaderConfidence = 0.9
	// ExplicitHeaderPattern identifies header-table matches
	ExplicitHeaderPattern = "explicitHeader"

	maxHeaderLength = 100
)

type headerRule struct {
	section  string
	patterns []*regexp.Regexp
}

// headerTable is checked in order; the first section with a matching regex wins
var headerTable = []headerRule{
	{patterns.SectionDemographics, compileAll(
		`\bdemographics\b`,
		`\bclient\s+name\b`,
		`^(?:\d+\.\s*)?(?:client|claimant)\s+information\b`,
		`^(?:\d+\.\s*)?identifying\s+(?:information|data)\b`,
	)},
	{patterns.SectionPurpose, compileAll(
		`^(?:\d+\.\s*)?purpose\s+of\s+(?:the\s+)?(?:assessment|report|evaluation)\b`,
		`^(?:\d+\.\s*)?reason\s+for\s+referral\b`,
	)},
	{patterns.SectionMedicalHistory, compileAll(
		`^(?:\d+\.\s*)?(?:pre-?accident\s+|past\s+)?medical\s+history\b`,
		`^(?:\d+\.\s*)?(?:summary\s+of\s+)?injuries(?:\s+sustained)?\s*:?$`,
	)},
	{patterns.SectionSymptoms, compileAll(
		`^(?:\d+\.\s*)?(?:subjective|reported|current|physical)?\s*(?:symptoms|complaints)\s*:?$`,
		`^(?:\d+\.\s*)?subjective\s+information\b`,
	)},
	{patterns.SectionFunctionalStatus, compileAll(
		`^(?:\d+\.\s*)?functional\s+(?:status|abilities|assessment|observations)\b`,
		`^(?:\d+\.\s*)?physical\s+abilities\b`,
	)},
	{patterns.SectionTypicalDay, compileAll(
		`^(?:\d+\.\s*)?(?:pre-?accident\s+|post-?accident\s+)?typical\s+day\b`,
		`^(?:\d+\.\s*)?daily\s+routine\s*:?$`,
	)},
	{patterns.SectionEnvironmental, compileAll(
		`^(?:\d+\.\s*)?environmental\s+(?:assessment|information)\b`,
		`^(?:\d+\.\s*)?home\s+environment\b`,
	)},
	{patterns.SectionADL, compileAll(
		`^(?:\d+\.\s*)?activities\s+of\s+daily\s+living\b`,
		`^(?:\d+\.\s*)?self[-\s]care\s*:?$`,
	)},
	{patterns.SectionAttendantCare, compileAll(
		`^(?:\d+\.\s*)?(?:assessment\s+of\s+)?attendant\s+care(?:\s+needs)?\b`,
	)},
	{patterns.SectionRecommendations, compileAll(
		`^(?:\d+\.\s*)?(?:summary\s+of\s+)?recommendations?\s*:?$`,
	)},
}

func compileAll(sources ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(sources))
	for i, src := range sources {
		out[i] = regexp.MustCompile(`(?i)` + src)
	}
	return out
}

// MatchHeader tests a line against the explicit header table. Explicit headers are trusted
// most and always carry ExplicitHeaderConfidence.
func MatchHeader(line string) *DetectedSection {
	key := normalizeLine(line)
	if key == "" || len(key) > maxHeaderLength {
		return nil
	}

	for _, rule := range headerTable {
		for _, re := range rule.patterns {
			if re.MatchString(key) {
				return &DetectedSection{
					Type:       rule.section,
					Title:      strings.TrimSpace(line),
					Confidence: ExplicitHeaderConfidence,
					Pattern:    ExplicitHeaderPattern,
				}
			}
		}
	}
	return nil
}

// HeaderSections returns the section types covered by the header table, in priority order
func HeaderSections() []string {
	out := make([]string, len(headerTable))
	for i, rule := range headerTable {
		out[i] = rule.section
	}
	return out
}
