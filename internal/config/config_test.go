package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}
	if cfg.ServerName != "mcp-assessment-import" {
		t.Errorf("Expected default server name to be 'mcp-assessment-import', got '%s'", cfg.ServerName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 50*1024*1024 {
		t.Errorf("Expected default max file size to be 50MB, got %d", cfg.MaxFileSize)
	}
	if !cfg.AdaptiveStrategy {
		t.Error("Expected adaptive strategy to be enabled by default")
	}
	if cfg.PatternsFile != "" || cfg.WatchPatterns {
		t.Errorf("Expected built-in patterns by default, got %q (watch %v)", cfg.PatternsFile, cfg.WatchPatterns)
	}

	currentDir, _ := os.Getwd()
	if cfg.DocumentDirectory != currentDir {
		t.Errorf("Expected default document directory to be '%s', got '%s'", currentDir, cfg.DocumentDirectory)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid config - stdio mode", mutate: func(c *Config) {}},
		{name: "valid config - server mode", mutate: func(c *Config) { c.Mode = ModeServer }},
		{name: "invalid mode", mutate: func(c *Config) { c.Mode = "invalid" }, wantErr: "mode must be"},
		{name: "invalid port - too low (server mode)", mutate: func(c *Config) { c.Mode = ModeServer; c.Port = 0 }, wantErr: "port"},
		{name: "invalid port - too high (server mode)", mutate: func(c *Config) { c.Mode = ModeServer; c.Port = 70000 }, wantErr: "port"},
		{name: "invalid port ignored in stdio mode", mutate: func(c *Config) { c.Port = 0 }},
		{name: "empty document directory", mutate: func(c *Config) { c.DocumentDirectory = "" }, wantErr: "directory cannot be empty"},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "invalid" }, wantErr: "invalid log level"},
		{name: "invalid max file size", mutate: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "file size"},
		{name: "threshold out of range", mutate: func(c *Config) { c.ConfidenceThreshold = -0.1 }, wantErr: "confidence threshold"},
		{name: "context weight out of range", mutate: func(c *Config) { c.ContextWeight = 2 }, wantErr: "context weight"},
		{name: "unknown priority", mutate: func(c *Config) { c.PatternPriority = "fastest" }, wantErr: "pattern priority"},
		{name: "watch without patterns file", mutate: func(c *Config) { c.WatchPatterns = true }, wantErr: "patterns file"},
		{name: "watch with patterns file", mutate: func(c *Config) { c.WatchPatterns = true; c.PatternsFile = "p.yaml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DocumentDirectory = t.TempDir()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Config.Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Config.Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 9000}
	if got := cfg.Address(); got != "localhost:9000" {
		t.Errorf("Expected address 'localhost:9000', got '%s'", got)
	}
}

func TestConfigSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level}
			if got := cfg.SlogLevel(); got != tt.want {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.want)
			}
			if cfg.IsDebug() != (tt.level == "debug") {
				t.Errorf("IsDebug() = %v for level %s", cfg.IsDebug(), tt.level)
			}
		})
	}
}

func TestConfigMatchOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0.5
	cfg.PatternPriority = "content-first"
	cfg.StrongSectionHeaderPattern = false

	opts := cfg.MatchOptions()
	if opts.ConfidenceThreshold != 0.5 {
		t.Errorf("ConfidenceThreshold = %v, want 0.5", opts.ConfidenceThreshold)
	}
	if opts.PatternPriority != "content-first" {
		t.Errorf("PatternPriority = %v, want content-first", opts.PatternPriority)
	}
	if opts.StrongSectionHeaderPattern {
		t.Error("StrongSectionHeaderPattern should be false")
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("MatchOptions() produced invalid options: %v", err)
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:              "server",
		Host:              "localhost",
		Port:              8080,
		DocumentDirectory: "/test/dir",
		LogLevel:          "debug",
		MaxFileSize:       1024,
		PatternsFile:      "p.yaml",
	}

	str := cfg.String()
	for _, want := range []string{"Mode: server", "Port: 8080", "DocumentDirectory: /test/dir", `PatternsFile: "p.yaml"`} {
		if !strings.Contains(str, want) {
			t.Errorf("String() = %s, missing %q", str, want)
		}
	}
}

func TestConfigValidateDirectoryCreation(t *testing.T) {
	tempDir := t.TempDir()
	nonExistentDir := filepath.Join(tempDir, "reports", "incoming")

	cfg := DefaultConfig()
	cfg.DocumentDirectory = nonExistentDir

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() should create directory, but got error: %v", err)
	}

	if _, err := os.Stat(nonExistentDir); os.IsNotExist(err) {
		t.Error("Validate() should have created the directory")
	}
}

func TestConfigModes(t *testing.T) {
	tests := []struct {
		mode       string
		wantServer bool
		wantStdio  bool
	}{
		{"server", true, false},
		{"stdio", false, true},
		{"other", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := &Config{Mode: tt.mode}
			if got := cfg.IsServerMode(); got != tt.wantServer {
				t.Errorf("IsServerMode() = %v, want %v", got, tt.wantServer)
			}
			if got := cfg.IsStdioMode(); got != tt.wantStdio {
				t.Errorf("IsStdioMode() = %v, want %v", got, tt.wantStdio)
			}
		})
	}
}
