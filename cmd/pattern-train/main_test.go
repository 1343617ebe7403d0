package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

const analysisYAML = `source: q3-review
observations:
  - section: RECOMMENDATIONS
    text: Recommendations
    hits: 10
    misses: 0
  - section: RECOMMENDATIONS
    text: plan of care
    hits: 6
    misses: 1
  - section: DISCHARGE
    text: discharge plan
    hits: 4
    misses: 0
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeAnalysis(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(analysisYAML), 0o644))
	return path
}

func TestImprove(t *testing.T) {
	dir := t.TempDir()
	analysis := writeAnalysis(t, dir)
	output := filepath.Join(dir, "trained.yaml")

	out, err := execute(t, "improve", "--analysis", analysis, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "version builtin-1+1, from builtin-1")
	assert.Contains(t, out, "Updated: 1")
	assert.Contains(t, out, "Added:   1")
	assert.Contains(t, out, `unknown section "DISCHARGE"`)

	set, err := patterns.LoadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "builtin-1+1", set.Version)

	var found bool
	for _, p := range set.Patterns[patterns.SectionRecommendations] {
		switch p.Text {
		case "recommendations":
			assert.InDelta(t, 0.95, p.Confidence, 1e-9)
			assert.Equal(t, 60, p.Frequency)
		case "plan of care":
			found = true
			assert.Equal(t, 6, p.Frequency)
		}
	}
	assert.True(t, found, "new pattern should be added")
}

func TestImprove_JSONAndExplicitVersion(t *testing.T) {
	dir := t.TempDir()
	analysis := writeAnalysis(t, dir)
	output := filepath.Join(dir, "trained.yaml")

	out, err := execute(t, "improve", "-a", analysis, "-o", output, "--set-version", "trained-2", "--min-hits", "10", "--json")
	require.NoError(t, err)

	var report struct {
		Version string   `json:"version"`
		Output  string   `json:"output"`
		Updated int      `json:"updated"`
		Added   int      `json:"added"`
		Skipped []string `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "trained-2", report.Version)
	assert.Equal(t, output, report.Output)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Added)
	assert.Len(t, report.Skipped, 2)
}

func TestImprove_Errors(t *testing.T) {
	dir := t.TempDir()
	analysis := writeAnalysis(t, dir)

	_, err := execute(t, "improve")
	assert.Error(t, err, "analysis flag is required")

	_, err = execute(t, "improve", "-a", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "improve", "-a", analysis, "-o", filepath.Join(dir, "out.yaml"), "--learning-rate", "0")
	assert.Error(t, err)

	_, err = execute(t, "improve", "-a", analysis, "--base", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, patterns.WriteFile(path, patterns.DefaultSet()))

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid (version builtin-1")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("version: x\nsections: [A]\npatterns:\n  A:\n    - text: \"(\"\n      regex: true\n      confidence: 0.5\n"), 0o644))
	_, err = execute(t, "validate", broken)
	assert.Error(t, err)

	_, err = execute(t, "validate")
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	out, err := execute(t, "show", "--section", patterns.SectionRecommendations)
	require.NoError(t, err)
	assert.Contains(t, out, "Pattern table builtin-1")
	assert.Contains(t, out, "RECOMMENDATIONS (min")
	assert.Contains(t, out, "summary of recommendations")
	assert.NotContains(t, out, "MEDICAL_HISTORY")

	out, err = execute(t, "show", "-f", "yaml", "-s", patterns.SectionRecommendations)
	require.NoError(t, err)
	set, err := patterns.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{patterns.SectionRecommendations}, set.SectionTypes())

	_, err = execute(t, "show", "-s", "NOPE")
	assert.Error(t, err)

	_, err = execute(t, "show", "-f", "xml")
	assert.Error(t, err)
}
