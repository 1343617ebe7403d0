package intelligence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

// resplitSet scores "alpha" at 0.57 and "beta" at 0.30
func resplitSet() *patterns.Set {
	return &patterns.Set{
		Sections: []string{"X", "Y"},
		Patterns: map[string][]patterns.Pattern{
			"X": {{Text: "alpha", Confidence: 1, Frequency: 50}},
			"Y": {{Text: "beta", Confidence: 0, Frequency: 50}},
		},
		Stats: map[string]patterns.SectionStats{
			"X": {Min: 0.4, Max: 0.6, Avg: 0.5},
			"Y": {Min: 0.3, Max: 0.3, Avg: 0.3},
		},
	}
}

func TestMergeAdjacent(t *testing.T) {
	fs := patterns.SectionFunctionalStatus
	in := []AssembledSection{
		{Section: fs, Title: "Mobility", Content: "Mobility\nwalks slowly", Confidence: 0.5, Pattern: "pattern:mobility"},
		{Section: fs, Title: "Transfers", Content: "Transfers\nneeds a rail", Confidence: 0.62, Pattern: "pattern:transfers"},
		{Section: patterns.SectionTypicalDay, Title: "Typical Day", Content: "Typical Day", Confidence: 0.9},
	}

	got := MergeAdjacent(in)
	require.Len(t, got, 2)
	assert.Equal(t, fs, got[0].Section)
	assert.Equal(t, "Mobility", got[0].Title)
	assert.Equal(t, "Mobility\nwalks slowly\nTransfers\nneeds a rail", got[0].Content)
	assert.Equal(t, 0.62, got[0].Confidence)
	assert.Equal(t, patterns.SectionTypicalDay, got[1].Section)

	// input untouched
	assert.Equal(t, 0.5, in[0].Confidence)
	assert.Equal(t, "Mobility\nwalks slowly", in[0].Content)
}

func TestMergeAdjacent_Runs(t *testing.T) {
	in := []AssembledSection{
		{Section: "A", Content: "1", Confidence: 0.3},
		{Section: "A", Content: "2", Confidence: 0.4},
		{Section: "A", Content: "3", Confidence: 0.2},
		{Section: "B", Content: "4", Confidence: 0.5},
		{Section: "A", Content: "5", Confidence: 0.6},
	}
	got := MergeAdjacent(in)
	require.Len(t, got, 3)
	assert.Equal(t, "1\n2\n3", got[0].Content)
	assert.Equal(t, 0.4, got[0].Confidence)
	assert.Equal(t, "A", got[2].Section)
}

func TestApplySequenceConsistency(t *testing.T) {
	t.Run("sandwiched section is demoted", func(t *testing.T) {
		in := []AssembledSection{
			{Section: patterns.SectionSymptoms, Confidence: 0.9},
			{Section: patterns.SectionRecommendations, Confidence: 0.6},
			{Section: patterns.SectionFunctionalStatus, Confidence: 0.9},
		}
		got := ApplySequenceConsistency(in)
		require.Len(t, got, 3)
		assert.InDelta(t, 0.48, got[1].Confidence, 1e-9)
		assert.True(t, got[1].OutOfSequence)
		assert.False(t, got[0].OutOfSequence)
		assert.False(t, got[2].OutOfSequence)
		assert.Equal(t, 0.6, in[1].Confidence)
	})

	t.Run("confident section is left alone", func(t *testing.T) {
		got := ApplySequenceConsistency([]AssembledSection{
			{Section: patterns.SectionSymptoms, Confidence: 0.9},
			{Section: patterns.SectionRecommendations, Confidence: 0.75},
			{Section: patterns.SectionFunctionalStatus, Confidence: 0.9},
		})
		assert.Equal(t, 0.75, got[1].Confidence)
		assert.False(t, got[1].OutOfSequence)
	})

	t.Run("section adjacent to a neighbour is left alone", func(t *testing.T) {
		got := ApplySequenceConsistency([]AssembledSection{
			{Section: patterns.SectionSymptoms, Confidence: 0.9},
			{Section: patterns.SectionMedicalHistory, Confidence: 0.5},
			{Section: patterns.SectionFunctionalStatus, Confidence: 0.9},
		})
		assert.Equal(t, 0.5, got[1].Confidence)
	})

	t.Run("neighbours that do not border each other", func(t *testing.T) {
		got := ApplySequenceConsistency([]AssembledSection{
			{Section: patterns.SectionDemographics, Confidence: 0.9},
			{Section: patterns.SectionRecommendations, Confidence: 0.5},
			{Section: patterns.SectionTypicalDay, Confidence: 0.9},
		})
		assert.False(t, got[1].OutOfSequence)
	})
}

func TestPostProcess_Resplit(t *testing.T) {
	text := "alpha\nsome text\nbeta\nmore text"

	d, err := NewDetector(resplitSet(), DefaultOptions(), nil)
	require.NoError(t, err)

	raw := d.assemble(PreprocessLines(text), d.Options().ConfidenceThreshold)
	require.Len(t, raw.Sections, 1)
	assert.InDelta(t, 0.57, raw.Sections[0].Confidence, 1e-9)

	det, err := d.DetectSections(text)
	require.NoError(t, err)
	require.Len(t, det.Sections, 2)
	assert.Equal(t, "X", det.Sections[0].Section)
	assert.Equal(t, "alpha\nsome text", det.Sections[0].Content)
	assert.Equal(t, "Y", det.Sections[1].Section)
	assert.InDelta(t, 0.30, det.Sections[1].Confidence, 1e-9)
	assert.Equal(t, text, det.Text())
}

func TestPostProcess_ResplitDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.FallbackEnabled = false
	d, err := NewDetector(resplitSet(), opts, nil)
	require.NoError(t, err)

	det, err := d.DetectSections("alpha\nsome text\nbeta\nmore text")
	require.NoError(t, err)
	assert.Len(t, det.Sections, 1)
}

func TestPostProcess_Idempotent(t *testing.T) {
	d, err := NewDetector(resplitSet(), DefaultOptions(), nil)
	require.NoError(t, err)

	inputs := []*Detection{
		{Sections: []AssembledSection{
			{Section: patterns.SectionSymptoms, Content: "a", Confidence: 0.9},
			{Section: patterns.SectionSymptoms, Content: "b", Confidence: 0.4},
			{Section: patterns.SectionRecommendations, Content: "c", Confidence: 0.6},
			{Section: patterns.SectionFunctionalStatus, Content: "d", Confidence: 0.65},
			{Section: patterns.SectionFunctionalStatus, Content: "e", Confidence: 0.5},
		}},
		{Sections: []AssembledSection{
			{Section: "X", Title: "alpha", Content: "alpha\nsome text\nbeta\nmore text\nbeta", Confidence: 0.57},
		}},
		{Preamble: "intro"},
	}

	for _, in := range inputs {
		once := d.PostProcess(in)
		twice := d.PostProcess(once)
		assert.Equal(t, once, twice)
	}

	first := d.PostProcess(inputs[0])
	require.Len(t, first.Sections, 3)
	assert.InDelta(t, 0.48, first.Sections[1].Confidence, 1e-9)
	assert.Equal(t, 0.65, first.Sections[2].Confidence)
}

func TestPostProcess_Nil(t *testing.T) {
	d, err := NewDetector(resplitSet(), DefaultOptions(), nil)
	require.NoError(t, err)
	assert.NotNil(t, d.PostProcess(nil))
}
