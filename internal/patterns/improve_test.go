package patterns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet() *Set {
	return &Set{
		Version:  "base",
		Sections: []string{"A", "B"},
		Patterns: map[string][]Pattern{
			"A": {
				{Text: "alpha", Confidence: 0.6, Frequency: 10},
				{Text: "alpha prime", Confidence: 0.3, Frequency: 40},
			},
			"B": {{Text: "beta", Confidence: 0.5, Frequency: 5}},
		},
		Stats: map[string]SectionStats{
			"A": {Min: 0.3, Max: 0.6, Avg: 0.45},
			"B": {Min: 0.5, Max: 0.5, Avg: 0.5},
		},
	}
}

func TestImprove_UpdatesExistingPattern(t *testing.T) {
	base := testSet()
	analysis := &Analysis{Observations: []Observation{
		{Section: "A", Text: "ALPHA", Hits: 8, Misses: 2},
	}}

	next, report, err := Improve(base, analysis, DefaultImproveOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, []string{"A"}, report.Sections)
	assert.Equal(t, "base+1", next.Version)

	var alpha Pattern
	for _, p := range next.Patterns["A"] {
		if p.Text == "alpha" {
			alpha = p
		}
	}
	assert.Equal(t, 18, alpha.Frequency)
	assert.InDelta(t, 0.7, alpha.Confidence, 1e-9) // 0.6*0.5 + 0.8*0.5

	// base untouched
	assert.Equal(t, 10, base.Patterns["A"][0].Frequency)
	assert.InDelta(t, 0.6, base.Patterns["A"][0].Confidence, 1e-9)
}

func TestImprove_AddsPrunesAndSorts(t *testing.T) {
	analysis := &Analysis{Observations: []Observation{
		{Section: "A", Text: `alpha\s+section`, Regex: true, Hits: 60, Misses: 0},
		{Section: "A", Text: "alpha prime", Hits: 0, Misses: 20},
		{Section: "B", Text: "rare", Hits: 1, Misses: 0},
		{Section: "Q", Text: "unknown", Hits: 5},
		{Section: "B", Text: "", Hits: 5},
	}}

	next, report, err := Improve(testSet(), analysis, ImproveOptions{
		Version:       "v7",
		MinHits:       3,
		MinConfidence: 0.2,
		LearningRate:  0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "v7", next.Version)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Pruned)
	assert.Len(t, report.Skipped, 3)

	list := next.Patterns["A"]
	require.Len(t, list, 2)
	assert.Equal(t, `alpha\s+section`, list[0].Text, "highest frequency first")
	assert.InDelta(t, 0.9, list[0].Confidence, 1e-9)
	assert.Equal(t, "alpha", list[1].Text)

	st := next.Stats["A"]
	assert.InDelta(t, 0.6, st.Min, 1e-9)
	assert.InDelta(t, 0.9, st.Max, 1e-9)
	assert.InDelta(t, 0.75, st.Avg, 1e-9)

	// section B only had skipped observations
	assert.Equal(t, testSet().Patterns["B"], next.Patterns["B"])
	require.NoError(t, next.Compile())
}

func TestImprove_InvalidArguments(t *testing.T) {
	_, _, err := Improve(nil, &Analysis{}, DefaultImproveOptions())
	assert.Error(t, err)

	_, _, err = Improve(testSet(), nil, DefaultImproveOptions())
	assert.Error(t, err)

	_, _, err = Improve(testSet(), &Analysis{}, ImproveOptions{LearningRate: 0})
	assert.Error(t, err)
}

func TestImprove_RejectsUncompilableRegex(t *testing.T) {
	analysis := &Analysis{Observations: []Observation{
		{Section: SectionRecommendations, Text: `plan\s+(of care`, Regex: true, Hits: 5},
	}}
	next, _, err := Improve(DefaultSet(), analysis, DefaultImproveOptions())
	require.Error(t, err)
	assert.Nil(t, next)
	assert.Contains(t, err.Error(), "does not compile")

	path := filepath.Join(t.TempDir(), "patterns.yaml")
	bad := DefaultSet().Clone()
	bad.Patterns[SectionRecommendations] = append(bad.Patterns[SectionRecommendations],
		Pattern{Text: `plan\s+(of care`, Regex: true, Confidence: 0.5, Frequency: 5})
	require.Error(t, WriteFile(path, bad))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no artifact is written for an invalid set")
}

func TestImprove_ArtifactLoadsIntoRepository(t *testing.T) {
	analysis := &Analysis{Observations: []Observation{
		{Section: SectionRecommendations, Text: `plan\s+of\s+care`, Regex: true, Hits: 5},
	}}
	next, report, err := Improve(DefaultSet(), analysis, DefaultImproveOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)

	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, WriteFile(path, next))

	repo, err := NewRepositoryFromFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, next.Version, repo.Current().Version)
}

func TestLoadAnalysis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	content := `source: reviewed-2024-q2
observations:
  - section: SYMPTOMS
    text: current complaints
    hits: 12
    misses: 1
  - section: ADL
    text: 'self\s*care'
    regex: true
    hits: 4
    misses: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	analysis, err := LoadAnalysis(path)
	require.NoError(t, err)
	assert.Equal(t, "reviewed-2024-q2", analysis.Source)
	require.Len(t, analysis.Observations, 2)
	assert.True(t, analysis.Observations[1].Regex)
	assert.Equal(t, 12, analysis.Observations[0].Hits)

	_, err = LoadAnalysis(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
