package document

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pageSeparator ends every page of extracted PDF text
const pageSeparator = "\f"

// readPDF extracts page text and any filled AcroForm fields. Form values are appended as
// "Label: value" lines so the field extractors see them like printed labels.
func (r *Reader) readPDF(ctx context.Context, doc *Document) error {
	f, reader, err := pdf.Open(doc.Path)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	doc.Pages = reader.NumPage()

	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			r.logger.Warn("skipping unreadable page", "path", doc.Path, "page", pageNum, "error", err)
			continue
		}

		builder.WriteString(content)
		if pageNum < reader.NumPage() {
			builder.WriteString(pageSeparator)
		}
		if builder.Len() > r.maxTextSize {
			break
		}
	}

	fields, err := readFormFields(doc.Path)
	if err != nil {
		// a broken form dictionary should not hide the page text
		r.logger.Warn("form fields unavailable", "path", doc.Path, "error", err)
	}
	doc.FormFields = fields

	if lines := formLines(fields); lines != "" {
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(lines)
	}

	doc.Text = builder.String()
	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("no text content could be extracted from PDF")
	}
	return nil
}

// readFormFields returns the filled text and choice fields of the AcroForm, in field order
func readFormFields(path string) ([]FormField, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	root, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	acroFormObj, found := root.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroForm, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroForm == nil {
		return nil, err
	}
	fieldsObj, found := acroForm.Find("Fields")
	if !found {
		return nil, nil
	}
	fieldRefs, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	var fields []FormField
	for _, ref := range fieldRefs {
		fields = collectField(ctx, ref, "", fields)
	}
	return fields, nil
}

// collectField walks a field and its kids, building dotted names for nested fields
func collectField(ctx *model.Context, obj types.Object, parent string, out []FormField) []FormField {
	dict, err := ctx.DereferenceDict(obj)
	if err != nil || dict == nil {
		return out
	}

	name := parent
	if nameObj, found := dict.Find("T"); found {
		if partial, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil && partial != "" {
			if name != "" {
				name += "."
			}
			name += partial
		}
	}

	if valueObj, found := dict.Find("V"); found && name != "" {
		if value := fieldValue(ctx, valueObj); value != "" {
			out = append(out, FormField{Name: name, Value: value})
		}
	}

	if kidsObj, found := dict.Find("Kids"); found {
		if kids, err := ctx.DereferenceArray(kidsObj); err == nil {
			for _, kid := range kids {
				out = collectField(ctx, kid, name, out)
			}
		}
	}
	return out
}

func fieldValue(ctx *model.Context, obj types.Object) string {
	if s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
		return strings.TrimSpace(s)
	}
	if n, err := ctx.DereferenceName(obj, model.V10, nil); err == nil {
		if n == "Off" {
			return ""
		}
		return string(n)
	}
	if arr, err := ctx.DereferenceArray(obj); err == nil {
		var values []string
		for _, item := range arr {
			if s, err := ctx.DereferenceStringOrHexLiteral(item, model.V10, nil); err == nil && s != "" {
				values = append(values, s)
			}
		}
		return strings.Join(values, ", ")
	}
	return ""
}

// formLines renders form fields as "Label: value" lines. Field names like
// "client_name" or "form1[0].DateOfLoss[0]" become "client name" and "Date Of Loss".
func formLines(fields []FormField) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		value := strings.Join(strings.Fields(f.Value), " ")
		if value == "" {
			continue
		}
		lines = append(lines, fieldLabel(f.Name)+": "+value)
	}
	return strings.Join(lines, "\n")
}

func fieldLabel(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}

	var b strings.Builder
	prevLower := false
	for _, r := range name {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
			prevLower = false
			continue
		case prevLower && r >= 'A' && r <= 'Z':
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prevLower = (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
