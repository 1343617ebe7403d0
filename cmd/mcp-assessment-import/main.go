package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-assessment-import/internal/assessment"
	"github.com/a3tai/mcp-assessment-import/internal/config"
	"github.com/a3tai/mcp-assessment-import/internal/document"
	"github.com/a3tai/mcp-assessment-import/internal/extraction"
	"github.com/a3tai/mcp-assessment-import/internal/mcp"
	"github.com/a3tai/mcp-assessment-import/internal/patterns"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging builds the process logger. Logs always go to w (stderr in main) so stdout
// stays free for the MCP protocol in stdio mode.
func setupLogging(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.SlogLevel(),
		AddSource: cfg.IsServerMode() && cfg.IsDebug(),
	}

	var handler slog.Handler
	if cfg.IsServerMode() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler).With("service", cfg.ServerName)
	slog.SetDefault(logger)
	return logger
}

// buildServer wires the pattern repository, document reader and assessment service behind an
// MCP server. The returned cleanup stops the pattern watcher.
func buildServer(cfg *config.Config, logger *slog.Logger) (*mcp.Server, func(), error) {
	repo, err := patterns.NewRepositoryFromFile(cfg.PatternsFile, logger.With("component", "patterns"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load patterns: %w", err)
	}

	cleanup := func() {}
	if cfg.WatchPatterns {
		if err := repo.Watch(); err != nil {
			return nil, nil, fmt.Errorf("failed to watch patterns: %w", err)
		}
		cleanup = repo.StopWatch
	}

	reader, err := document.NewReader(cfg.DocumentDirectory, cfg.MaxFileSize, logger.With("component", "document"))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create document reader: %w", err)
	}

	service, err := assessment.NewService(reader, repo, extraction.NewRegistry(), assessment.Config{
		Options:  cfg.MatchOptions(),
		Adaptive: cfg.AdaptiveStrategy,
	}, logger.With("component", "assessment"))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create assessment service: %w", err)
	}

	server, err := mcp.NewServer(cfg, service, logger.With("component", "mcp"))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create MCP server: %w", err)
	}

	return server, cleanup, nil
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger *slog.Logger) int {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()

		if err := <-serverErrCh; err != nil && err != context.Canceled {
			logger.Error("server shutdown with error", "error", err)
			return 1
		}

	case err := <-serverErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// runStdioMode handles stdio mode execution. The parent process controls the lifecycle and
// the server exits when stdin closes.
func runStdioMode(ctx context.Context, server *mcp.Server, logger *slog.Logger) int {
	if err := server.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}

func run() int {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return 0
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger := setupLogging(cfg, os.Stderr)
	logger.Debug("starting with configuration", "config", cfg.String())

	server, cleanup, err := buildServer(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		return runServerMode(ctx, cancel, server, logger)
	}
	return runStdioMode(ctx, server, logger)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP Assessment Import\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
