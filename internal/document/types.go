package document

import (
	"path/filepath"
	"strings"
)

// Format is a supported document file format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
)

// FormatFromPath returns the format implied by a file extension
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDOCX, true
	case ".txt", ".text":
		return FormatText, true
	default:
		return "", false
	}
}

// FormField is a filled AcroForm field of a PDF
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Document is the extracted text of an uploaded file
type Document struct {
	Path       string      `json:"path"`
	Format     Format      `json:"format"`
	Size       int64       `json:"size"`
	Pages      int         `json:"pages,omitempty"`
	Text       string      `json:"-"`
	FormFields []FormField `json:"formFields,omitempty"`
	Truncated  bool        `json:"truncated,omitempty"`
}
