package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// readDOCX extracts paragraph text, one line per paragraph
func (r *Reader) readDOCX(doc *Document) error {
	f, err := os.Open(doc.Path)
	if err != nil {
		return fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer f.Close()

	parsed, err := docx.Parse(f, doc.Size)
	if err != nil {
		return fmt.Errorf("parse docx: %w", err)
	}

	var lines []string
	for _, item := range parsed.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		lines = append(lines, paragraphText(para))
	}

	doc.Text = strings.Join(lines, "\n")
	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("no text content could be extracted from DOCX")
	}
	return nil
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
