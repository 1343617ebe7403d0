package assessment

import (
	"context"
	"strings"

	"github.com/a3tai/mcp-assessment-import/internal/descriptions"
	"github.com/a3tai/mcp-assessment-import/internal/document"
	"github.com/a3tai/mcp-assessment-import/internal/intelligence"
)

// ToolInfo summarises one MCP tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ServerInfo describes the running server and what it can import
type ServerInfo struct {
	ServerName         string               `json:"serverName"`
	Version            string               `json:"version"`
	DocumentDirectory  string               `json:"documentDirectory,omitempty"`
	MaxFileSize        int64                `json:"maxFileSize,omitempty"`
	PatternVersion     string               `json:"patternVersion"`
	AdaptiveStrategy   bool                 `json:"adaptiveStrategy"`
	Options            intelligence.Options `json:"options"`
	DocumentTypes      []string             `json:"documentTypes"`
	SupportedFormats   []string             `json:"supportedFormats"`
	Tools              []ToolInfo           `json:"tools"`
	Documents          []document.FileInfo  `json:"documents"`
	DocumentsTruncated bool                 `json:"documentsTruncated,omitempty"`
}

// ServerInfo reports configuration and lists importable documents. A failed directory scan
// leaves the listing empty rather than failing the call.
func (s *Service) ServerInfo(ctx context.Context, serverName, version string) (*ServerInfo, error) {
	info := &ServerInfo{
		ServerName:       serverName,
		Version:          version,
		PatternVersion:   s.PatternVersion(),
		AdaptiveStrategy: s.adaptive,
		Options:          s.options,
		DocumentTypes:    s.DocumentTypes(),
		SupportedFormats: []string{string(document.FormatPDF), string(document.FormatDOCX), string(document.FormatText)},
		Documents:        []document.FileInfo{},
	}

	for _, name := range descriptions.GetAllToolNames() {
		info.Tools = append(info.Tools, ToolInfo{Name: name, Description: summary(descriptions.GetToolDescription(name))})
	}

	if s.reader == nil {
		return info, nil
	}
	info.DocumentDirectory = s.reader.Directory()
	info.MaxFileSize = s.reader.MaxFileSize()

	scan, err := s.scanner.Scan(ctx, info.DocumentDirectory)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("document directory scan failed", "dir", info.DocumentDirectory, "error", err)
		return info, nil
	}
	info.Documents = scan.Files
	info.DocumentsTruncated = scan.Truncated
	return info, nil
}

// summary returns the first line of a tool description
func summary(desc string) string {
	if i := strings.IndexByte(desc, '\n'); i >= 0 {
		return desc[:i]
	}
	return desc
}
