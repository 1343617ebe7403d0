package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/mcp-assessment-import/internal/assessment"
	"github.com/a3tai/mcp-assessment-import/internal/config"
	"github.com/a3tai/mcp-assessment-import/internal/document"
	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

const testReport = `IN-HOME ASSESSMENT
DEMOGRAPHICS
Client Name: Mary O'Neil
Date of Loss: March 3, 2022
Claim No: AB-20931

Recommendations:
1. Physiotherapy twice weekly
2. Housekeeping assistance`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	tempDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DocumentDirectory = tempDir
	cfg.ServerName = "test-server"
	cfg.MaxFileSize = 1024 * 1024

	repo, err := patterns.NewRepository(patterns.DefaultSet(), nil)
	if err != nil {
		t.Fatalf("Failed to create pattern repository: %v", err)
	}
	reader, err := document.NewReader(tempDir, cfg.MaxFileSize, nil)
	if err != nil {
		t.Fatalf("Failed to create document reader: %v", err)
	}
	service, err := assessment.NewService(reader, repo, nil,
		assessment.Config{Options: cfg.MatchOptions(), Adaptive: cfg.AdaptiveStrategy}, nil)
	if err != nil {
		t.Fatalf("Failed to create assessment service: %v", err)
	}

	server, err := NewServer(cfg, service, nil)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server, tempDir
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	server, _ := newTestServer(t)
	if server.mcpServer == nil {
		t.Error("mcpServer should be initialized")
	}

	if _, err := NewServer(nil, server.service, nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewServer(server.config, nil, nil); err == nil {
		t.Error("expected error for nil service")
	}
}

func TestServer_HandleImportFile(t *testing.T) {
	server, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, "oneil.txt"), []byte(testReport), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result, err := server.handleImportFile(context.Background(), callRequest(map[string]interface{}{
		"path": "oneil.txt",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", extractTextFromResult(result))
	}

	text := extractTextFromResult(result)
	header, body, ok := strings.Cut(text, "\n\n")
	if !ok {
		t.Fatalf("expected header and JSON body, got: %s", text)
	}
	if !strings.Contains(header, "in-home-assessment") {
		t.Errorf("header should name the classification, got: %s", header)
	}

	var analysis struct {
		ID       string `json:"analysisId"`
		Sections []struct {
			Section string `json:"section"`
		} `json:"sections"`
		Fields map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(body), &analysis); err != nil {
		t.Fatalf("body is not JSON: %v\n%s", err, body)
	}
	if analysis.ID == "" {
		t.Error("analysis ID should be set")
	}
	if len(analysis.Sections) == 0 || analysis.Sections[0].Section != patterns.SectionDemographics {
		t.Errorf("expected DEMOGRAPHICS first, got %+v", analysis.Sections)
	}
	demo, ok := analysis.Fields[patterns.SectionDemographics].(map[string]interface{})
	if !ok || demo["name"] != "Mary O'Neil" {
		t.Errorf("expected extracted name, got %v", analysis.Fields[patterns.SectionDemographics])
	}
}

func TestServer_HandleImportFile_Errors(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantMsg string
	}{
		{name: "missing path", args: map[string]interface{}{}, wantMsg: "path"},
		{name: "missing file", args: map[string]interface{}{"path": "nope.pdf"}, wantMsg: "file does not exist"},
		{name: "outside directory", args: map[string]interface{}{"path": "../../etc/passwd"}, wantMsg: "outside"},
		{name: "unknown document type", args: map[string]interface{}{"path": "nope.txt", "document_type": "PSYCH"}, wantMsg: "file does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleImportFile(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned Go error: %v", err)
			}
			if !result.IsError {
				t.Fatalf("expected tool error, got: %s", extractTextFromResult(result))
			}
			if text := extractTextFromResult(result); !strings.Contains(text, tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", text, tt.wantMsg)
			}
		})
	}
}

func TestServer_HandleDetectSections(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.handleDetectSections(context.Background(), callRequest(map[string]interface{}{
		"text": testReport,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := extractTextFromResult(result)
	if !strings.HasPrefix(text, "Detected 2 section(s)") {
		t.Errorf("unexpected header: %s", text)
	}
	for _, want := range []string{`"sections"`, `"options"`, `"RECOMMENDATIONS"`} {
		if !strings.Contains(text, want) {
			t.Errorf("result should contain %s", want)
		}
	}

	result, _ = server.handleDetectSections(context.Background(), callRequest(map[string]interface{}{
		"text": "   ",
	}))
	if !result.IsError || !strings.Contains(extractTextFromResult(result), "invalid input") {
		t.Errorf("expected invalid input error, got: %s", extractTextFromResult(result))
	}
}

func TestServer_HandleExtractFields(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.handleExtractFields(context.Background(), callRequest(map[string]interface{}{
		"text":          "Name: John Smith\nDate of Loss: 2023-01-10",
		"document_type": "OT_ASSESSMENT",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := extractTextFromResult(result)
	if !strings.HasPrefix(text, "Extracted 2 field(s) as OT_ASSESSMENT (confidence 0.88)") {
		t.Errorf("unexpected header: %s", text)
	}
	if !strings.Contains(text, `"name": "John Smith"`) {
		t.Errorf("expected extracted name in: %s", text)
	}

	result, _ = server.handleExtractFields(context.Background(), callRequest(map[string]interface{}{
		"text":          "Name: John Smith",
		"document_type": "PSYCH",
	}))
	if !result.IsError {
		t.Error("expected error for unsupported document type")
	}
}

func TestServer_HandleClassify(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.handleClassify(context.Background(), callRequest(map[string]interface{}{
		"text": "FORM 1\nASSESSMENT OF ATTENDANT CARE NEEDS",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if text := extractTextFromResult(result); !strings.HasPrefix(text, "Classified as attendant-care-assessment (form, confidence 0.85)") {
		t.Errorf("unexpected result: %s", text)
	}
}

func TestServer_HandleServerInfo(t *testing.T) {
	server, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, "report.docx"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result, err := server.handleServerInfo(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := extractTextFromResult(result)
	for _, want := range []string{
		"test-server v1.0.0",
		"Pattern Version: " + patterns.DefaultVersion,
		"1. report.docx (docx, 1 bytes)",
		"ATTENDANT_CARE, OT_ASSESSMENT",
		"assessment_import_file",
		"assessment_server_info",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("server info should contain %q, got:\n%s", want, text)
		}
	}
}

// extractTextFromResult returns the first text content of a tool result
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
