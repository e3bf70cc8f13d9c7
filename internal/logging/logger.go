// Package logging configures the process-wide slog default. Every
// internal component derives its logger from slog.Default() with a
// "component" attribute, so pointing the default at a file is enough to
// capture the whole pipeline.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Config controls the slog setup.
type Config struct {
	Debug      bool   // debug level plus source locations
	OutputFile string // also write here when non-empty
	JSONFormat bool   // JSON handler instead of text
	MaxSize    int64  // rotate OutputFile above this many bytes
}

// DefaultConfig writes JSON lines to stderr and to a file under
// ~/.payagent/logs.
func DefaultConfig(debug bool) Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		Debug:      debug,
		OutputFile: filepath.Join(homeDir, ".payagent", "logs", "payagent.log"),
		JSONFormat: true,
		MaxSize:    10 * 1024 * 1024,
	}
}

// Setup installs the default logger and returns a close function for the
// log file, if one was opened.
func Setup(cfg Config) (func() error, error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	writers := []io.Writer{os.Stderr}
	closeFn := func() error { return nil }

	if cfg.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		if err := rotateIfNeeded(cfg.OutputFile, cfg.MaxSize); err != nil {
			return nil, err
		}
		file, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, file)
		closeFn = file.Close
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.Debug}
	out := io.MultiWriter(writers...)

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler))
	return closeFn, nil
}

// rotateIfNeeded moves an oversized log aside so the file never grows
// without bound. One backup is kept.
func rotateIfNeeded(path string, maxSize int64) error {
	if maxSize <= 0 {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < maxSize {
		return nil
	}
	if err := os.Rename(path, path+".1"); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return nil
}
