package descriptions

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/a3tai/mcp-assessment-import/internal/intelligence"
)

func TestDetectSectionsDescription_NamesJSONField(t *testing.T) {
	data, err := json.Marshal(intelligence.AssembledSection{OutOfSequence: true})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	const field = "outOfSequence"
	if !strings.Contains(string(data), `"`+field+`"`) {
		t.Fatalf("AssembledSection JSON = %s, missing %q", data, field)
	}
	if !strings.Contains(DetectSectionsDescription, field) {
		t.Errorf("DetectSectionsDescription does not mention the %q field", field)
	}
	if strings.Contains(DetectSectionsDescription, "out_of_sequence") {
		t.Error("DetectSectionsDescription refers to a field name the JSON output does not use")
	}
}

func TestToolDescriptions(t *testing.T) {
	names := GetAllToolNames()
	if len(names) != len(ToolDescriptions) {
		t.Fatalf("GetAllToolNames() returned %d names, want %d", len(names), len(ToolDescriptions))
	}
	for i, name := range names {
		if i > 0 && names[i-1] > name {
			t.Errorf("GetAllToolNames() not sorted: %v", names)
		}
		if GetToolDescription(name) == "" {
			t.Errorf("GetToolDescription(%q) is empty", name)
		}
	}
}
