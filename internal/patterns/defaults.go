package patterns

// DefaultVersion identifies the built-in pattern table
const DefaultVersion = "builtin-1"

// DefaultSet returns the built-in pattern table used when no artifact is configured.
// The returned set is not compiled.
func DefaultSet() *Set {
	set := &Set{
		Version: DefaultVersion,
		Sections: []string{
			SectionDemographics,
			SectionPurpose,
			SectionMedicalHistory,
			SectionSymptoms,
			SectionFunctionalStatus,
			SectionTypicalDay,
			SectionEnvironmental,
			SectionADL,
			SectionAttendantCare,
			SectionRecommendations,
		},
		Patterns: map[string][]Pattern{
			SectionDemographics: {
				{Text: "demographic information", Confidence: 0.85, Frequency: 42},
				{Text: "client information", Confidence: 0.8, Frequency: 35},
				{Text: "personal information", Confidence: 0.7, Frequency: 21},
				{Text: "claimant information", Confidence: 0.75, Frequency: 12},
				{Text: `referral\s+(?:information|details)`, Regex: true, Confidence: 0.6, Frequency: 9},
			},
			SectionPurpose: {
				{Text: "purpose of assessment", Confidence: 0.85, Frequency: 38},
				{Text: "reason for referral", Confidence: 0.8, Frequency: 27},
				{Text: "referral question", Confidence: 0.6, Frequency: 8},
				{Text: `(?:assessment\s+)?objectives?`, Regex: true, Confidence: 0.55, Frequency: 11},
			},
			SectionMedicalHistory: {
				{Text: "medical history", Confidence: 0.85, Frequency: 48},
				{Text: "pre-accident medical history", Confidence: 0.8, Frequency: 22},
				{Text: "past medical history", Confidence: 0.8, Frequency: 19},
				{Text: "medical documentation reviewed", Confidence: 0.65, Frequency: 14},
				{Text: "injuries sustained", Confidence: 0.7, Frequency: 25},
				{Text: `(?:current\s+)?medications?`, Regex: true, Confidence: 0.55, Frequency: 17},
			},
			SectionSymptoms: {
				{Text: "subjective information", Confidence: 0.75, Frequency: 30},
				{Text: "current complaints", Confidence: 0.8, Frequency: 26},
				{Text: "reported symptoms", Confidence: 0.8, Frequency: 18},
				{Text: "physical symptoms", Confidence: 0.7, Frequency: 33},
				{Text: "cognitive symptoms", Confidence: 0.65, Frequency: 16},
				{Text: "emotional symptoms", Confidence: 0.65, Frequency: 15},
				{Text: `pain(?:\s+(?:profile|description))?`, Regex: true, Confidence: 0.5, Frequency: 20},
			},
			SectionFunctionalStatus: {
				{Text: "functional abilities", Confidence: 0.8, Frequency: 29},
				{Text: "physical abilities", Confidence: 0.75, Frequency: 24},
				{Text: "functional observations", Confidence: 0.7, Frequency: 13},
				{Text: "mobility", Confidence: 0.6, Frequency: 31},
				{Text: "transfers", Confidence: 0.55, Frequency: 22},
				{Text: `range\s+of\s+motion`, Regex: true, Confidence: 0.55, Frequency: 19},
			},
			SectionTypicalDay: {
				{Text: "typical day", Confidence: 0.85, Frequency: 40},
				{Text: "daily routine", Confidence: 0.75, Frequency: 17},
				{Text: "pre-accident typical day", Confidence: 0.8, Frequency: 14},
				{Text: "post-accident typical day", Confidence: 0.8, Frequency: 14},
			},
			SectionEnvironmental: {
				{Text: "environmental assessment", Confidence: 0.85, Frequency: 28},
				{Text: "home environment", Confidence: 0.8, Frequency: 23},
				{Text: "dwelling description", Confidence: 0.7, Frequency: 12},
				{Text: `(?:home\s+)?layout`, Regex: true, Confidence: 0.5, Frequency: 10},
			},
			SectionADL: {
				{Text: "activities of daily living", Confidence: 0.85, Frequency: 44},
				{Text: "self-care", Confidence: 0.7, Frequency: 26},
				{Text: "housekeeping", Confidence: 0.65, Frequency: 21},
				{Text: "home maintenance", Confidence: 0.6, Frequency: 15},
				{Text: `(?:instrumental\s+)?adls?`, Regex: true, Confidence: 0.6, Frequency: 18},
			},
			SectionAttendantCare: {
				{Text: "attendant care needs", Confidence: 0.85, Frequency: 36},
				{Text: "assessment of attendant care needs", Confidence: 0.85, Frequency: 20},
				{Text: "form 1", Confidence: 0.7, Frequency: 16},
				{Text: `level\s+[123]\s+attendant\s+care`, Regex: true, Confidence: 0.65, Frequency: 11},
			},
			SectionRecommendations: {
				{Text: "recommendations", Confidence: 0.9, Frequency: 50},
				{Text: "summary of recommendations", Confidence: 0.85, Frequency: 25},
				{Text: "treatment plan", Confidence: 0.65, Frequency: 13},
				{Text: "conclusions", Confidence: 0.6, Frequency: 12},
			},
		},
		Context: map[string]ContextPatterns{
			SectionDemographics: {
				After: []Pattern{
					{Text: "date of birth", Confidence: 0.8, Frequency: 30},
					{Text: "claim number", Confidence: 0.7, Frequency: 18},
				},
			},
			SectionMedicalHistory: {
				After: []Pattern{
					{Text: "was diagnosed", Confidence: 0.75, Frequency: 20},
					{Text: "prior to the accident", Confidence: 0.7, Frequency: 16},
				},
			},
			SectionSymptoms: {
				After: []Pattern{
					{Text: "reports", Confidence: 0.6, Frequency: 40},
					{Text: "complains of", Confidence: 0.75, Frequency: 22},
				},
			},
			SectionFunctionalStatus: {
				Before: []Pattern{
					{Text: "the following observations", Confidence: 0.7, Frequency: 9},
				},
				After: []Pattern{
					{Text: "ambulat", Regex: true, Confidence: 0.7, Frequency: 15},
					{Text: "range of motion", Confidence: 0.75, Frequency: 19},
				},
			},
			SectionTypicalDay: {
				After: []Pattern{
					{Text: `(?:wakes|awakens)\s+(?:up\s+)?at`, Regex: true, Confidence: 0.8, Frequency: 21},
				},
			},
			SectionAttendantCare: {
				After: []Pattern{
					{Text: "hours per week", Confidence: 0.8, Frequency: 18},
					{Text: "monthly allowance", Confidence: 0.75, Frequency: 11},
				},
			},
			SectionRecommendations: {
				After: []Pattern{
					{Text: "it is recommended", Confidence: 0.85, Frequency: 27},
					{Text: "the following are recommended", Confidence: 0.8, Frequency: 10},
				},
			},
		},
	}

	set.Stats = make(map[string]SectionStats, len(set.Patterns))
	for section, list := range set.Patterns {
		set.Stats[section] = ComputeStats(list)
	}
	return set
}
