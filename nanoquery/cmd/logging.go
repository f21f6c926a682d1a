package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/arthur-debert/nanoquery/types"
)

var (
	// Global loggers
	mainLogger    = slog.Default()
	queriesLogger *slog.Logger

	// Log level mapping
	logLevelMap = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
)

// initLogging sets up the main logger on stderr and the queries logger,
// which always writes JSON to the cache dir and is echoed to stderr at
// debug level.
func initLogging(logLevel string, stderr io.Writer) error {
	level, ok := logLevelMap[strings.ToLower(logLevel)]
	if !ok {
		level = slog.LevelWarn // Default to WARN
	}

	mainHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: level,
	})
	mainLogger = slog.New(mainHandler)
	slog.SetDefault(mainLogger)

	logDir := getXDGCacheDir()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	queriesLogPath := filepath.Join(logDir, "nanoquery-queries.log")
	queriesLogFile, err := os.OpenFile(queriesLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open queries log file: %w", err)
	}

	var queriesHandler slog.Handler = slog.NewJSONHandler(queriesLogFile, &slog.HandlerOptions{
		Level: slog.LevelInfo, // Always log queries at INFO level
	})
	if level <= slog.LevelDebug {
		queriesHandler = &multiHandler{
			handlers: []slog.Handler{queriesHandler, mainHandler},
		}
	}
	queriesLogger = slog.New(queriesHandler).With("logger", "queries")

	mainLogger.Debug("logging initialized",
		"level", level.String(),
		"queries_file", queriesLogPath)

	return nil
}

// getXDGCacheDir returns the XDG cache directory for nanoquery
func getXDGCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "nanoquery")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Last resort - use temp directory
		return filepath.Join(os.TempDir(), "nanoquery")
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(homeDir, "Library", "Caches", "nanoquery")
	}

	return filepath.Join(homeDir, ".cache", "nanoquery")
}

// multiHandler implements slog.Handler to write to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// logQuery records the criteria a command ran against a collection
func logQuery(operation, collection string, criteria types.Criteria) {
	if queriesLogger == nil {
		return
	}
	encoded, err := criteria.Record().MarshalJSON()
	if err != nil {
		encoded = []byte(err.Error())
	}
	queriesLogger.Info("query",
		"operation", operation,
		"collection", collection,
		"criteria", string(encoded),
	)
}
