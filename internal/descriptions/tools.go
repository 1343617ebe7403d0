package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	ImportFileDescription = `Import a clinical assessment document (PDF, DOCX or plain text) and return its sections and extracted fields.

**When to use:** A report file sits in the document directory and you need its structured content.

**Why it's useful:** Runs the whole pipeline in one call: reads the file (including filled PDF form fields), classifies the document, detects sections such as DEMOGRAPHICS or RECOMMENDATIONS and pulls typed fields with per-field confidence.

**Examples:**
• "Import ot-assessment-2024-03.pdf and list the recommendations"
• "Import form1-attendant-care.pdf and give me the monthly cost"
• "Import the DOCX report for claim AB-123 and check the date of loss"

**Common workflows:**
1. Intake: assessment_server_info → pick a file → assessment_import_file
2. Review: Import → check low-confidence fields → confirm with the source document

**Best practices:** Leave document_type empty to let the classifier choose the extractor; set it when the classification confidence is low.`

	DetectSectionsDescription = `Split assessment text into labeled sections with a confidence and matching pattern for each.

**When to use:** You already have report text and need to know where each section starts and ends.

**Why it's useful:** Combines explicit headers, learned pattern statistics and context cues, then merges duplicates and demotes out-of-sequence sections.

**Examples:**
• "Which sections does this pasted report contain?"
• "Show me the MEDICAL_HISTORY section of this text"

**Common workflows:**
1. Paste text → assessment_detect_sections → inspect outOfSequence flags
2. Detect sections → assessment_extract_fields on the same text

**Best practices:** Sections flagged outOfSequence had their confidence reduced; treat them as tentative.`

	ExtractFieldsDescription = `Extract typed fields (names, dates, costs, lists) from assessment text.

**When to use:** You need specific values such as date of loss, claim number or attendant care hours.

**Why it's useful:** Each field carries its own confidence and the document confidence is the mean over fields found.

**Examples:**
• "Extract the claim number and date of loss from this report"
• "What is the total weekly attendant care time in this Form 1?"

**Common workflows:**
1. assessment_classify → choose document_type → assessment_extract_fields

**Best practices:** Supported document types are listed by assessment_server_info.`

	ClassifyDescription = `Classify assessment text by type, layout and complexity.

**When to use:** Before importing, to see which extractor and detection strategy will apply.

**Why it's useful:** Form-like documents and long narrative reports need different detection settings; the classification drives that choice.

**Examples:**
• "Is this an attendant care form or an OT assessment?"

**Best practices:** A general classification with low confidence means no known report type matched.`

	ServerInfoDescription = `Show server configuration, supported document types and the documents available for import.

**When to use:** At the start of a session, to find files and check the active pattern version.

**Why it's useful:** Lists importable files in the document directory along with the detection options in effect.

**Examples:**
• "What assessment files can I import?"
• "Which pattern version is the server using?"`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"assessment_import_file":     ImportFileDescription,
	"assessment_detect_sections": DetectSectionsDescription,
	"assessment_extract_fields":  ExtractFieldsDescription,
	"assessment_classify":        ClassifyDescription,
	"assessment_server_info":     ServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
