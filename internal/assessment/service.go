package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/mcp-assessment-import/internal/document"
	"github.com/a3tai/mcp-assessment-import/internal/extraction"
	"github.com/a3tai/mcp-assessment-import/internal/intelligence"
	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

// Analysis is the combined result of importing one document
type Analysis struct {
	ID             string                              `json:"analysisId"`
	Source         *document.Document                  `json:"source,omitempty"`
	Classification intelligence.DocumentClassification `json:"classification"`
	Options        intelligence.Options                `json:"options"`
	PatternVersion string                              `json:"patternVersion"`
	Sections       []intelligence.AssembledSection     `json:"sections"`
	Preamble       string                              `json:"preamble,omitempty"`
	Fields         *extraction.Result                  `json:"fields"`
	ProcessingMs   float64                             `json:"processingMs"`
}

// Service runs the import pipeline: classify, pick a strategy, detect sections and extract
// fields. It holds no per-document state and is safe for concurrent use.
type Service struct {
	reader     *document.Reader
	patterns   *patterns.Repository
	classifier *intelligence.DocumentClassifier
	extractors *extraction.Registry
	scanner    *document.Scanner
	options    intelligence.Options
	adaptive   bool
	logger     *slog.Logger
}

// Config holds the service settings that are not collaborators
type Config struct {
	Options intelligence.Options
	// Adaptive derives per-document options from the classification
	Adaptive bool
}

// NewService wires the pipeline. reader may be nil when only text analysis is needed.
func NewService(reader *document.Reader, repo *patterns.Repository, extractors *extraction.Registry, cfg Config, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pattern repository cannot be nil")
	}
	if extractors == nil {
		extractors = extraction.NewRegistry()
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection options: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		reader:     reader,
		patterns:   repo,
		classifier: intelligence.NewDocumentClassifier(),
		extractors: extractors,
		scanner:    document.DefaultScanner(),
		options:    cfg.Options,
		adaptive:   cfg.Adaptive,
		logger:     logger,
	}, nil
}

// ImportFile reads a document from the document directory and analyzes it
func (s *Service) ImportFile(ctx context.Context, path, documentType string) (*Analysis, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("document reading is not configured")
	}

	doc, err := s.reader.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	analysis, err := s.AnalyzeText(ctx, doc.Text, documentType)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", doc.Path, err)
	}
	analysis.Source = doc
	return analysis, nil
}

// AnalyzeText runs the full pipeline over raw document text. An empty documentType lets the
// classifier choose the extractor.
func (s *Service) AnalyzeText(ctx context.Context, text, documentType string) (*Analysis, error) {
	start := time.Now()

	classification := s.Classify(text)
	opts := s.optionsFor(classification)

	detection, version, err := s.detect(ctx, text, opts)
	if err != nil {
		return nil, err
	}

	extractor, err := s.extractors.Resolve(documentType, classification.Type)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fields := extractor.Extract(text)

	analysis := &Analysis{
		ID:             uuid.NewString(),
		Classification: classification,
		Options:        opts,
		PatternVersion: version,
		Sections:       detection.Sections,
		Preamble:       detection.Preamble,
		Fields:         fields,
		ProcessingMs:   float64(time.Since(start).Microseconds()) / 1000,
	}

	s.logger.Info("document analyzed",
		"analysis_id", analysis.ID,
		"type", classification.Type,
		"structure", classification.Structure,
		"sections", len(analysis.Sections),
		"fields", fields.FieldCount(),
		"document_confidence", fields.DocumentConfidence,
		"processing_ms", analysis.ProcessingMs)

	return analysis, nil
}

// DetectSections runs section detection only and returns the options it used
func (s *Service) DetectSections(ctx context.Context, text string) (*intelligence.Detection, intelligence.Options, error) {
	opts := s.optionsFor(s.Classify(text))
	detection, _, err := s.detect(ctx, text, opts)
	return detection, opts, err
}

// ExtractFields runs field extraction only
func (s *Service) ExtractFields(ctx context.Context, text, documentType string) (*extraction.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	classification := ""
	if documentType == "" {
		classification = s.Classify(text).Type
	}
	extractor, err := s.extractors.Resolve(documentType, classification)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(text), nil
}

// Classify returns the coarse classification of a document
func (s *Service) Classify(text string) intelligence.DocumentClassification {
	return s.classifier.Classify(text)
}

// DocumentTypes lists the document types fields can be extracted for
func (s *Service) DocumentTypes() []string {
	return s.extractors.Types()
}

// PatternVersion returns the version of the active pattern table
func (s *Service) PatternVersion() string {
	return s.patterns.Current().Version
}

// Options returns the configured base detection options
func (s *Service) Options() intelligence.Options {
	return s.options
}

// Adaptive reports whether options are derived per document
func (s *Service) Adaptive() bool {
	return s.adaptive
}

// Reader returns the document reader, or nil when file import is disabled
func (s *Service) Reader() *document.Reader {
	return s.reader
}

func (s *Service) optionsFor(c intelligence.DocumentClassification) intelligence.Options {
	if !s.adaptive {
		return s.options
	}
	return intelligence.SelectPatternStrategy(c, s.options.PatternPriority, s.options)
}

// detect builds a detector over the pattern table current at call time, so a table swapped in
// mid-flight never mixes with the one a document started on.
func (s *Service) detect(ctx context.Context, text string, opts intelligence.Options) (*intelligence.Detection, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	set := s.patterns.Current()
	detector, err := intelligence.NewDetector(set, opts, s.logger)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create detector: %w", err)
	}

	detection, err := detector.DetectSections(text)
	if err != nil {
		return nil, set.Version, err
	}
	return detection, set.Version, nil
}
