package intelligence

import "github.com/a3tai/mcp-assessment-import/internal/patterns"

// sectionProximity lists the section types that typically border each section type in an
// assessment report
var sectionProximity = map[string][]string{
	patterns.SectionDemographics:     {patterns.SectionPurpose, patterns.SectionMedicalHistory},
	patterns.SectionPurpose:          {patterns.SectionDemographics, patterns.SectionMedicalHistory},
	patterns.SectionMedicalHistory:   {patterns.SectionPurpose, patterns.SectionDemographics, patterns.SectionSymptoms},
	patterns.SectionSymptoms:         {patterns.SectionMedicalHistory, patterns.SectionFunctionalStatus},
	patterns.SectionFunctionalStatus: {patterns.SectionSymptoms, patterns.SectionTypicalDay, patterns.SectionADL},
	patterns.SectionTypicalDay:       {patterns.SectionFunctionalStatus, patterns.SectionEnvironmental},
	patterns.SectionEnvironmental:    {patterns.SectionTypicalDay, patterns.SectionADL},
	patterns.SectionADL:              {patterns.SectionEnvironmental, patterns.SectionFunctionalStatus, patterns.SectionAttendantCare},
	patterns.SectionAttendantCare:    {patterns.SectionADL, patterns.SectionRecommendations},
	patterns.SectionRecommendations:  {patterns.SectionAttendantCare},
}

// adjacent reports whether either section type lists the other as a neighbour
func adjacent(a, b string) bool {
	return listed(sectionProximity[a], b) || listed(sectionProximity[b], a)
}

func listed(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
