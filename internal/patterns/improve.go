package patterns

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Observation records how a pattern performed against reviewed documents: Hits are lines the
// reviewer confirmed as a header of Section, Misses are lines the pattern matched wrongly.
type Observation struct {
	Section string `yaml:"section" json:"section"`
	Text    string `yaml:"text" json:"text"`
	Regex   bool   `yaml:"regex,omitempty" json:"regex,omitempty"`
	Hits    int    `yaml:"hits" json:"hits"`
	Misses  int    `yaml:"misses" json:"misses"`
}

// Analysis is the input of an offline improvement run
type Analysis struct {
	Source       string        `yaml:"source,omitempty" json:"source,omitempty"`
	Observations []Observation `yaml:"observations" json:"observations"`
}

// ImproveOptions tunes an improvement run
type ImproveOptions struct {
	Version       string  // version stamped on the new table
	MinHits       int     // hits needed before an unseen pattern is added
	MinConfidence float64 // patterns whose confidence drops below this are pruned
	LearningRate  float64 // weight of the observed precision against the old confidence
}

// DefaultImproveOptions returns the options used by the pattern-train tool
func DefaultImproveOptions() ImproveOptions {
	return ImproveOptions{
		MinHits:       3,
		MinConfidence: 0.2,
		LearningRate:  0.5,
	}
}

// ImproveReport summarises what an improvement run changed
type ImproveReport struct {
	Updated  int      `json:"updated"`
	Added    int      `json:"added"`
	Pruned   int      `json:"pruned"`
	Skipped  []string `json:"skipped,omitempty"`
	Sections []string `json:"sections"`
}

// LoadAnalysis reads a YAML analysis file
func LoadAnalysis(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading analysis: %w", err)
	}

	var analysis Analysis
	if err := yaml.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("parsing analysis: %w", err)
	}
	return &analysis, nil
}

// Improve folds the observations into a copy of base and returns the new table. base is
// never modified, so a live table can be used as the starting point.
func Improve(base *Set, analysis *Analysis, opts ImproveOptions) (*Set, ImproveReport, error) {
	var report ImproveReport
	if base == nil {
		return nil, report, fmt.Errorf("base pattern set cannot be nil")
	}
	if analysis == nil {
		return nil, report, fmt.Errorf("analysis cannot be nil")
	}
	if opts.LearningRate <= 0 || opts.LearningRate > 1 {
		return nil, report, fmt.Errorf("learning rate %.2f must be in (0, 1]", opts.LearningRate)
	}

	next := base.Clone()
	known := make(map[string]bool)
	for _, section := range base.SectionTypes() {
		known[section] = true
	}

	touched := make(map[string]bool)
	for i, obs := range analysis.Observations {
		if !known[obs.Section] {
			report.Skipped = append(report.Skipped, fmt.Sprintf("observation %d: unknown section %q", i, obs.Section))
			continue
		}
		if strings.TrimSpace(obs.Text) == "" || obs.Hits < 0 || obs.Misses < 0 || obs.Hits+obs.Misses == 0 {
			report.Skipped = append(report.Skipped, fmt.Sprintf("observation %d: nothing to learn", i))
			continue
		}

		precision := float64(obs.Hits) / float64(obs.Hits+obs.Misses)
		list := next.Patterns[obs.Section]

		idx := findPattern(list, obs.Text, obs.Regex)
		switch {
		case idx >= 0:
			p := list[idx]
			p.Frequency += obs.Hits
			p.Confidence = round4(clamp01(p.Confidence*(1-opts.LearningRate) + precision*opts.LearningRate))
			list[idx] = p
			report.Updated++
		case obs.Hits >= opts.MinHits:
			list = append(list, Pattern{
				Text:       strings.TrimSpace(obs.Text),
				Regex:      obs.Regex,
				Confidence: round4(clamp01(precision * 0.9)),
				Frequency:  obs.Hits,
			})
			report.Added++
		default:
			report.Skipped = append(report.Skipped, fmt.Sprintf("observation %d: %d hits below minimum %d", i, obs.Hits, opts.MinHits))
			continue
		}

		next.Patterns[obs.Section] = list
		touched[obs.Section] = true
	}

	for section := range touched {
		kept := next.Patterns[section][:0]
		for _, p := range next.Patterns[section] {
			if p.Confidence < opts.MinConfidence {
				report.Pruned++
				continue
			}
			kept = append(kept, p)
		}
		sort.SliceStable(kept, func(i, j int) bool {
			return kept[i].Frequency > kept[j].Frequency
		})
		next.Patterns[section] = kept
		next.Stats[section] = ComputeStats(kept)
		report.Sections = append(report.Sections, section)
	}
	sort.Strings(report.Sections)

	next.Version = opts.Version
	if next.Version == "" {
		next.Version = base.Version + "+1"
	}

	if err := next.Validate(); err != nil {
		return nil, report, fmt.Errorf("improved pattern set is invalid: %w", err)
	}
	return next, report, nil
}

func findPattern(list []Pattern, text string, regex bool) int {
	text = strings.TrimSpace(text)
	for i, p := range list {
		if p.Regex != regex {
			continue
		}
		if regex && p.Text == text {
			return i
		}
		if !regex && strings.EqualFold(strings.TrimSpace(p.Text), text) {
			return i
		}
	}
	return -1
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
