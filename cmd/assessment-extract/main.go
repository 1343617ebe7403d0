package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/a3tai/mcp-assessment-import/internal/assessment"
	"github.com/a3tai/mcp-assessment-import/internal/document"
	"github.com/a3tai/mcp-assessment-import/internal/extraction"
	"github.com/a3tai/mcp-assessment-import/internal/intelligence"
	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

var (
	diagnosticMode = flag.Bool("diagnostic", false, "Show form fields and per-section detection details")
	outputFormat   = flag.String("format", "text", "Output format: text, json")
	documentType   = flag.String("type", "", "Extractor to use (OT_ASSESSMENT, ATTENDANT_CARE); classifier decides when empty")
	patternsFile   = flag.String("patterns", "", "Pattern table YAML file (built-in tables when empty)")
	fixedOptions   = flag.Bool("fixed", false, "Use default detection options instead of adapting them to the document")
	verbose        = flag.Bool("verbose", false, "Enable verbose logging on stderr")
	help           = flag.Bool("help", false, "Show help message")
)

const maxFileSize = 50 * 1024 * 1024

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: document path required\n\n")
		printUsage()
		os.Exit(1)
	}

	path, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	analysis, err := importDocument(context.Background(), path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing document: %v\n", err)
		os.Exit(1)
	}

	if err := outputResults(os.Stdout, analysis); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Assessment Extract - import one clinical assessment and print its sections and fields")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  assessment-extract report.pdf")
	fmt.Println("  assessment-extract -diagnostic -type ATTENDANT_CARE form1.pdf")
	fmt.Println("  assessment-extract -format json -patterns trained.yaml reports/smith.docx")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  assessment-extract [OPTIONS] <document>")
}

// importDocument runs the import pipeline with the file's own directory as document root
func importDocument(ctx context.Context, path string, logger *slog.Logger) (*assessment.Analysis, error) {
	repo, err := patterns.NewRepositoryFromFile(*patternsFile, logger)
	if err != nil {
		return nil, err
	}

	reader, err := document.NewReader(filepath.Dir(path), maxFileSize, logger)
	if err != nil {
		return nil, err
	}

	service, err := assessment.NewService(reader, repo, extraction.NewRegistry(), assessment.Config{
		Options:  intelligence.DefaultOptions(),
		Adaptive: !*fixedOptions,
	}, logger)
	if err != nil {
		return nil, err
	}

	return service.ImportFile(ctx, filepath.Base(path), *documentType)
}

func outputResults(w io.Writer, a *assessment.Analysis) error {
	switch *outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(a)
	case "text":
		outputText(w, a)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputText(w io.Writer, a *assessment.Analysis) {
	if a.Source != nil {
		fmt.Fprintf(w, "Document: %s (%s, %d bytes", a.Source.Path, a.Source.Format, a.Source.Size)
		if a.Source.Pages > 0 {
			fmt.Fprintf(w, ", %d pages", a.Source.Pages)
		}
		fmt.Fprintln(w, ")")
	}
	fmt.Fprintf(w, "Classification: %s (%s, confidence %.2f)\n",
		a.Classification.Type, a.Classification.Structure, a.Classification.Confidence)
	fmt.Fprintf(w, "Extractor: %s (document confidence %.2f)\n\n", a.Fields.DocumentType, a.Fields.DocumentConfidence)

	if len(a.Sections) == 0 {
		fmt.Fprintln(w, "No sections detected")
	} else {
		fmt.Fprintf(w, "Sections (%d):\n", len(a.Sections))
		for i, s := range a.Sections {
			marker := ""
			if s.OutOfSequence {
				marker = " [out of sequence]"
			}
			fmt.Fprintf(w, "[%d] %s %.2f%s\n", i+1, s.Section, s.Confidence, marker)
			if *diagnosticMode {
				fmt.Fprintf(w, "    Title: %s\n", s.Title)
				fmt.Fprintf(w, "    Pattern: %s\n", s.Pattern)
				fmt.Fprintf(w, "    Lines: %d\n", strings.Count(s.Content, "\n")+1)
			}
		}
	}
	fmt.Fprintln(w)

	if a.Fields.FieldCount() == 0 {
		fmt.Fprintln(w, "No fields extracted")
	} else {
		fmt.Fprintf(w, "Fields (%d):\n", a.Fields.FieldCount())
		for _, s := range a.Fields.Sections {
			fmt.Fprintf(w, "%s\n", s.Name)
			for _, f := range s.Fields {
				fmt.Fprintf(w, "    %s: %v (%.2f)\n", f.Name, f.Value, f.Confidence)
			}
		}
	}

	if *diagnosticMode {
		printDiagnosticSummary(w, a)
	}
}

func printDiagnosticSummary(w io.Writer, a *assessment.Analysis) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "DIAGNOSTIC SUMMARY")
	fmt.Fprintln(w, "==================")
	fmt.Fprintf(w, "Analysis ID: %s\n", a.ID)
	fmt.Fprintf(w, "Pattern Version: %s\n", a.PatternVersion)
	fmt.Fprintf(w, "Options: threshold %.2f, context weight %.2f, priority %s, fallback %t, require multiple %t, strong headers %t\n",
		a.Options.ConfidenceThreshold, a.Options.ContextWeight, a.Options.PatternPriority,
		a.Options.FallbackEnabled, a.Options.RequireMultiplePatterns, a.Options.StrongSectionHeaderPattern)
	fmt.Fprintf(w, "Complexity: %.3f\n", a.Classification.Complexity)
	fmt.Fprintf(w, "Processing: %.1f ms\n", a.ProcessingMs)

	if a.Preamble != "" {
		fmt.Fprintf(w, "Preamble lines: %d\n", strings.Count(a.Preamble, "\n")+1)
	}

	if a.Source != nil && len(a.Source.FormFields) > 0 {
		fields := append([]document.FormField(nil), a.Source.FormFields...)
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		fmt.Fprintf(w, "\nForm fields (%d):\n", len(fields))
		for _, f := range fields {
			fmt.Fprintf(w, "  %s = %s\n", f.Name, f.Value)
		}
	}
	if a.Source != nil && a.Source.Truncated {
		fmt.Fprintln(w, "\nWarning: document text was truncated")
	}
}

func init() {
	flag.Usage = func() {
		printHelp()
	}
}
