package extraction

import (
	"bytes"
	"encoding/json"
)

// Document types with a registered extractor
const (
	DocumentTypeOTAssessment  = "OT_ASSESSMENT"
	DocumentTypeAttendantCare = "ATTENDANT_CARE"
)

// Field is one extracted value. Value holds a string, a float64 or a []string.
type Field struct {
	Name       string      `json:"name"`
	Value      interface{} `json:"value"`
	Confidence float64     `json:"confidence"`
}

// SectionFields holds the fields extracted for one section, in rule order
type SectionFields struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Get returns the named field
func (s *SectionFields) Get(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Result is the output of one extractor run over a document
type Result struct {
	DocumentType       string          `json:"_documentType"`
	DocumentConfidence float64         `json:"_documentConfidence"`
	Sections           []SectionFields `json:"sections"`
}

// Section returns the fields of a section, or nil when nothing was extracted for it
func (r *Result) Section(name string) *SectionFields {
	for i := range r.Sections {
		if r.Sections[i].Name == name {
			return &r.Sections[i]
		}
	}
	return nil
}

// Field returns a single field of a section
func (r *Result) Field(section, name string) (Field, bool) {
	s := r.Section(section)
	if s == nil {
		return Field{}, false
	}
	return s.Get(name)
}

// FieldCount returns the number of extracted fields across all sections
func (r *Result) FieldCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Fields)
	}
	return n
}

func (r *Result) add(section string, f Field) {
	s := r.Section(section)
	if s == nil {
		r.Sections = append(r.Sections, SectionFields{Name: section})
		s = &r.Sections[len(r.Sections)-1]
	}
	s.Fields = append(s.Fields, f)
}

// MarshalJSON writes the nested form consumed by the form-filling layer:
//
//	{"_documentType": "...", "_documentConfidence": 0.9,
//	 "DEMOGRAPHICS": {"name": "...", "confidence": {"name": 0.9}}}
//
// Keys keep extraction order.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeMember(&buf, "_documentType", r.DocumentType, true); err != nil {
		return nil, err
	}
	if err := writeMember(&buf, "_documentConfidence", r.DocumentConfidence, false); err != nil {
		return nil, err
	}

	for _, s := range r.Sections {
		key, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteString(":{")

		for i, f := range s.Fields {
			if err := writeMember(&buf, f.Name, f.Value, i == 0); err != nil {
				return nil, err
			}
		}

		if len(s.Fields) > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"confidence":{`)
		for i, f := range s.Fields {
			if err := writeMember(&buf, f.Name, f.Confidence, i == 0); err != nil {
				return nil, err
			}
		}
		buf.WriteString("}}")
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, name string, value interface{}, first bool) error {
	key, err := json.Marshal(name)
	if err != nil {
		return err
	}
	val, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if !first {
		buf.WriteByte(',')
	}
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}
