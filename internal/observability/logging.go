// Package observability provides structured logging and opt-in tracing for
// the distributor client.
//
// Loggers are slog-based and travel in the context: resolver packages call
// FromContext rather than holding a logger field. Log output goes to stderr
// when the session is non-interactive, and to a rotated file under the user
// state directory otherwise, so resolver output on stdout stays parseable.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/greentic-ai/greentic-distributor-client/internal/paths"
)

const redactedValue = "[REDACTED]"

// Default-log-file rotation bounds. Explicit --log-file paths are the
// caller's responsibility and are never rotated.
const (
	defaultLogMaxBytes int64 = 10 << 20
	defaultLogBackups        = 5
)

type contextKey struct{}

// Config holds the configuration for the observability logger.
type Config struct {
	Level          string
	Format         string
	LogFile        string
	StderrMode     string
	InteractiveTTY bool
	SessionID      string
	CommandPath    string
	Version        string
	Commit         string
}

// WithLogger returns a new context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger from ctx, falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return slog.Default()
}

// NewLogger creates a structured logger from the given configuration.
func NewLogger(cfg *Config) (*slog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	sink, cleanup, err := openSink(cfg)
	if err != nil {
		return nil, nil, err
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactAttr,
	}

	var handler slog.Handler

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		handler = slog.NewJSONHandler(sink, handlerOpts)
	case "text":
		handler = slog.NewTextHandler(sink, handlerOpts)
	default:
		_ = cleanup()

		return nil, nil, fmt.Errorf("invalid log format: %q (allowed: json, text)", cfg.Format)
	}

	logger := slog.New(handler).With(
		slog.String("session.id", cfg.SessionID),
		slog.String("command.path", cfg.CommandPath),
		slog.String("build.version", cfg.Version),
		slog.String("build.commit", cfg.Commit),
	)

	return logger, cleanup, nil
}

// openSink resolves where log records go: stderr, an explicit file, the
// rotated default file, or several of these combined.
func openSink(cfg *Config) (io.Writer, func() error, error) {
	stderrEnabled, err := stderrMode(cfg.StderrMode, cfg.InteractiveTTY)
	if err != nil {
		return nil, nil, err
	}

	logFilePath := strings.TrimSpace(cfg.LogFile)
	rotate := false

	if logFilePath == "" && !stderrEnabled {
		defaultLogFile, pathErr := paths.DefaultLogFile()
		if pathErr != nil {
			return nil, nil, fmt.Errorf("resolve default log file: %w", pathErr)
		}

		logFilePath = defaultLogFile
		rotate = true
	}

	var writers []io.Writer

	if stderrEnabled {
		writers = append(writers, os.Stderr)
	}

	noCleanup := func() error { return nil }

	if logFilePath == "" {
		return io.MultiWriter(writers...), noCleanup, nil
	}

	if rotate {
		if err := rotateLogFile(logFilePath, defaultLogMaxBytes, defaultLogBackups); err != nil {
			return nil, nil, fmt.Errorf("rotate default log file: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log file directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Clean(logFilePath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writers = append(writers, file)

	return io.MultiWriter(writers...), file.Close, nil
}

// rotateLogFile shifts path to path.1, path.1 to path.2 and so on, keeping
// at most maxBackups rotated files. Rotation only happens once the current
// file reaches maxBytes.
func rotateLogFile(path string, maxBytes int64, maxBackups int) error {
	if maxBytes <= 0 || maxBackups <= 0 {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("stat log file: %w", err)
	}

	if info.Size() < maxBytes {
		return nil
	}

	for i := maxBackups; i >= 1; i-- {
		src := path
		if i > 1 {
			src = fmt.Sprintf("%s.%d", path, i-1)
		}

		dst := fmt.Sprintf("%s.%d", path, i)

		if _, statErr := os.Stat(src); statErr != nil {
			if os.IsNotExist(statErr) {
				continue
			}

			return fmt.Errorf("stat rotated log %s: %w", src, statErr)
		}

		if removeErr := os.Remove(dst); removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("remove rotated log %s: %w", dst, removeErr)
		}

		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("rotate log %s -> %s: %w", src, dst, err)
		}
	}

	return nil
}

func stderrMode(mode string, interactiveTTY bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return !interactiveTTY, nil
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --log-stderr value %q (allowed: auto, on, off)", mode)
	}
}

func parseLevel(level string) (slog.Leveler, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, fmt.Errorf("invalid log level: %q (allowed: error, warn, info, debug)", level)
	}
}

// redactAttr blanks attributes that could carry registry or backend
// credentials. Pulls are anonymous today, but the registry transport and
// the future repo/store auth both speak bearer tokens, and a reference
// string pasted from a docker config can carry userinfo.
func redactAttr(_ []string, attr slog.Attr) slog.Attr {
	if isSensitiveKey(strings.ToLower(attr.Key)) {
		return slog.String(attr.Key, redactedValue)
	}

	return attr
}

func isSensitiveKey(key string) bool {
	switch key {
	case "authorization", "www-authenticate", "userinfo":
		return true
	}

	for _, pattern := range []string{"token", "secret", "credential", "password", "bearer"} {
		if strings.Contains(key, pattern) {
			return true
		}
	}

	return false
}
