// Package logger configures the process-wide slog logger: tint on a console,
// JSON elsewhere, with source locations only where they help.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/cryptogift/ledger/internal/shared/config"
)

// ServiceName is attached to every record.
const ServiceName = "referral-ledger"

var (
	mu     sync.RWMutex
	std    *slog.Logger
	level  = new(slog.LevelVar)
	output io.Closer
)

// Init builds the process logger. mode is the gin mode; in "debug" every
// level carries its source location, otherwise only warnings and errors do.
func Init(cfg *config.LoggerConfig, mode string) error {
	lvl, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	w, closer, err := openOutput(cfg.OutputPath)
	if err != nil {
		return err
	}

	sourceFrom := slog.LevelWarn
	if mode == "debug" {
		sourceFrom = slog.LevelDebug
	}

	level.Set(lvl)
	l := slog.New(newHandler(w, strings.EqualFold(cfg.Format, "json"), sourceFrom)).
		With("service", ServiceName)

	mu.Lock()
	if output != nil {
		_ = output.Close()
	}
	std, output = l, closer
	mu.Unlock()

	slog.SetDefault(l)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func openOutput(path string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(path) {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f, nil
}

func newHandler(w io.Writer, jsonFormat bool, sourceFrom slog.Level) slog.Handler {
	if jsonFormat {
		return NewConditionalSourceHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), sourceFrom)
	}
	return NewConditionalSourceHandler(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(w),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if err, ok := a.Value.Any().(error); ok && a.Key == "error" {
				return tint.Err(err)
			}
			return a
		},
	}), sourceFrom)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetLevel changes the minimum level at runtime.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Get returns the process logger, falling back to a console logger on
// stdout when Init has not run (tests, early start-up failures).
func Get() *slog.Logger {
	mu.RLock()
	l := std
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if std == nil {
		std = slog.New(newHandler(os.Stdout, false, slog.LevelWarn))
	}
	return std
}

func Debug(msg string, args ...any) { (&slogLogger{logger: Get()}).log(slog.LevelDebug, msg, args...) }
func Info(msg string, args ...any)  { (&slogLogger{logger: Get()}).log(slog.LevelInfo, msg, args...) }
func Warn(msg string, args ...any)  { (&slogLogger{logger: Get()}).log(slog.LevelWarn, msg, args...) }
func Error(msg string, args ...any) { (&slogLogger{logger: Get()}).log(slog.LevelError, msg, args...) }
