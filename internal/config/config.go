package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-assessment-import/internal/intelligence"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix prefixes every environment variable, e.g. ASSESSMENT_IMPORT_LOG_LEVEL
	EnvPrefix = "ASSESSMENT_IMPORT"
)

// Config holds all configuration for the assessment import server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Document configuration
	DocumentDirectory string
	MaxFileSize       int64 // Maximum document size in bytes

	// Pattern tables
	PatternsFile  string // optional YAML artifact; built-in tables when empty
	WatchPatterns bool

	// Section detection
	AdaptiveStrategy           bool
	ConfidenceThreshold        float64
	ContextWeight              float64
	PatternPriority            string
	FallbackEnabled            bool
	RequireMultiplePatterns    bool
	StrongSectionHeaderPattern bool

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	match := intelligence.DefaultOptions()
	return &Config{
		Mode:                       ModeStdio, // MCP clients talk over stdio by default
		Host:                       DefaultHost,
		Port:                       DefaultPort,
		DocumentDirectory:          currentDir,
		MaxFileSize:                DefaultMaxFileSize,
		AdaptiveStrategy:           true,
		ConfidenceThreshold:        match.ConfidenceThreshold,
		ContextWeight:              match.ContextWeight,
		PatternPriority:            string(match.PatternPriority),
		FallbackEnabled:            match.FallbackEnabled,
		RequireMultiplePatterns:    match.RequireMultiplePatterns,
		StrongSectionHeaderPattern: match.StrongSectionHeaderPattern,
		Version:                    "1.0.0",
		ServerName:                 "mcp-assessment-import",
		LogLevel:                   DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.DocumentDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.DocumentDirectory); err == nil {
			cfg.DocumentDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// flagNames lists every flag bound to viper
var flagNames = []string{
	"mode", "host", "port", "dir", "log-level", "max-file-size",
	"patterns", "watch-patterns", "adaptive",
	"threshold", "context-weight", "priority",
	"fallback", "require-multiple", "strong-headers",
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.DocumentDirectory)
	viper.SetDefault("log-level", cfg.LogLevel)
	viper.SetDefault("max-file-size", cfg.MaxFileSize)
	viper.SetDefault("patterns", cfg.PatternsFile)
	viper.SetDefault("watch-patterns", cfg.WatchPatterns)
	viper.SetDefault("adaptive", cfg.AdaptiveStrategy)
	viper.SetDefault("threshold", cfg.ConfidenceThreshold)
	viper.SetDefault("context-weight", cfg.ContextWeight)
	viper.SetDefault("priority", cfg.PatternPriority)
	viper.SetDefault("fallback", cfg.FallbackEnabled)
	viper.SetDefault("require-multiple", cfg.RequireMultiplePatterns)
	viper.SetDefault("strong-headers", cfg.StrongSectionHeaderPattern)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP/SSE server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.DocumentDirectory, "Directory containing assessment documents")
	pflag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("max-file-size", cfg.MaxFileSize, "Maximum document size in bytes")
	pflag.String("patterns", cfg.PatternsFile, "Pattern table YAML file (built-in tables when empty)")
	pflag.Bool("watch-patterns", cfg.WatchPatterns, "Reload the pattern file when it changes")
	pflag.Bool("adaptive", cfg.AdaptiveStrategy, "Derive detection options from the document classification")
	pflag.Float64("threshold", cfg.ConfidenceThreshold, "Minimum confidence for a section boundary")
	pflag.Float64("context-weight", cfg.ContextWeight, "Weight of context-cue matches (0 disables them)")
	pflag.String("priority", cfg.PatternPriority, "Pattern priority (balanced, section-first, content-first)")
	pflag.Bool("fallback", cfg.FallbackEnabled, "Retry at a lower threshold when only one weak section is found")
	pflag.Bool("require-multiple", cfg.RequireMultiplePatterns, "Require two or more pattern hits on a line")
	pflag.Bool("strong-headers", cfg.StrongSectionHeaderPattern, "Let explicit headers win immediately")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range flagNames {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP Assessment Import - section detection and field extraction for clinical assessments\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/reports                   "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --patterns=patterns.yaml --watch-patterns "+
			"# trained pattern tables, hot reload\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081  # SSE server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		for _, name := range flagNames {
			env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
			fmt.Fprintf(os.Stderr, "  %s\n", env)
		}
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.DocumentDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("log-level")
	cfg.MaxFileSize = viper.GetInt64("max-file-size")
	cfg.PatternsFile = viper.GetString("patterns")
	cfg.WatchPatterns = viper.GetBool("watch-patterns")
	cfg.AdaptiveStrategy = viper.GetBool("adaptive")
	cfg.ConfidenceThreshold = viper.GetFloat64("threshold")
	cfg.ContextWeight = viper.GetFloat64("context-weight")
	cfg.PatternPriority = viper.GetString("priority")
	cfg.FallbackEnabled = viper.GetBool("fallback")
	cfg.RequireMultiplePatterns = viper.GetBool("require-multiple")
	cfg.StrongSectionHeaderPattern = viper.GetBool("strong-headers")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters in server mode
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.DocumentDirectory == "" {
		return errors.New("document directory cannot be empty")
	}

	// Create the document directory if it doesn't exist
	if _, err := os.Stat(c.DocumentDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.DocumentDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create document directory %s: %w", c.DocumentDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access document directory %s: %w", c.DocumentDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.WatchPatterns && c.PatternsFile == "" {
		return errors.New("watching patterns requires a patterns file")
	}

	if err := c.MatchOptions().Validate(); err != nil {
		return err
	}

	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the slog level for LogLevel, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	if level, ok := logLevels[c.LogLevel]; ok {
		return level
	}
	return slog.LevelInfo
}

// MatchOptions returns the base section detection options
func (c *Config) MatchOptions() intelligence.Options {
	return intelligence.Options{
		ConfidenceThreshold:        c.ConfidenceThreshold,
		ContextWeight:              c.ContextWeight,
		PatternPriority:            intelligence.PatternPriority(c.PatternPriority),
		FallbackEnabled:            c.FallbackEnabled,
		RequireMultiplePatterns:    c.RequireMultiplePatterns,
		StrongSectionHeaderPattern: c.StrongSectionHeaderPattern,
	}
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, DocumentDirectory: %s, LogLevel: %s, MaxFileSize: %d, PatternsFile: %q, Adaptive: %t}",
		c.Mode, c.Host, c.Port, c.DocumentDirectory, c.LogLevel, c.MaxFileSize, c.PatternsFile, c.AdaptiveStrategy)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
