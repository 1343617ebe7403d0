package document

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"
)

const defaultMaxTextSize = 10 * 1024 * 1024 // 10MB text limit

// Reader extracts plain text from PDF, DOCX and text files inside the document directory
type Reader struct {
	paths       *PathValidator
	maxFileSize int64
	maxTextSize int
	logger      *slog.Logger
}

// NewReader creates a reader confined to dir
func NewReader(dir string, maxFileSize int64, logger *slog.Logger) (*Reader, error) {
	paths, err := NewPathValidator(dir)
	if err != nil {
		return nil, err
	}
	if maxFileSize <= 0 {
		return nil, fmt.Errorf("max file size must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		paths:       paths,
		maxFileSize: maxFileSize,
		maxTextSize: defaultMaxTextSize,
		logger:      logger,
	}, nil
}

// Directory returns the directory documents are read from
func (r *Reader) Directory() string {
	return r.paths.Root()
}

// MaxFileSize returns the largest accepted file size in bytes
func (r *Reader) MaxFileSize() int64 {
	return r.maxFileSize
}

// ReadFile resolves path inside the document directory and extracts its text
func (r *Reader) ReadFile(ctx context.Context, path string) (*Document, error) {
	resolved, err := r.paths.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() > r.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), r.maxFileSize)
	}

	format, ok := FormatFromPath(resolved)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s (supported: .pdf, .docx, .txt)", path)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &Document{Path: resolved, Format: format, Size: info.Size()}
	switch format {
	case FormatPDF:
		err = r.readPDF(ctx, doc)
	case FormatDOCX:
		err = r.readDOCX(doc)
	default:
		err = r.readText(doc)
	}
	if err != nil {
		return nil, err
	}

	r.truncate(doc)
	r.logger.Debug("document read",
		"path", resolved,
		"format", format,
		"bytes", doc.Size,
		"pages", doc.Pages,
		"form_fields", len(doc.FormFields))

	return doc, nil
}

func (r *Reader) readText(doc *Document) error {
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return fmt.Errorf("failed to read text file: %w", err)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("text file is not valid UTF-8: %s", doc.Path)
	}
	doc.Text = string(data)
	return nil
}

// truncate caps the text at maxTextSize without splitting a UTF-8 sequence
func (r *Reader) truncate(doc *Document) {
	if len(doc.Text) <= r.maxTextSize {
		return
	}
	cut := r.maxTextSize
	for cut > 0 && !utf8.RuneStart(doc.Text[cut]) {
		cut--
	}
	doc.Text = doc.Text[:cut]
	doc.Truncated = true
}
