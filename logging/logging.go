// Package logging builds the slog loggers used by recipes and processors.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
)

const (
	KeyLevel  = "aozan.log.level"
	KeyPath   = "aozan.log.path"
	KeyFormat = "aozan.log.format"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel maps debug, info, warn and error (any case) to slog levels. The
// Java-style names "warning" and "severe" are accepted too.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "fine", "finer", "finest":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "severe":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level: %q", s)
}

// New creates the logger described by conf. Logs go to the file named by
// aozan.log.path, or to stderr. The returned closer releases the file.
func New(conf *config.Configuration) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(conf.GetString(KeyLevel, "info"))
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	path, err := conf.Path(KeyPath, "")
	if err != nil {
		return nil, nil, err
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening log file: %w", err)
		}
		w, closer = f, f
	}

	logger, err := NewWithWriter(w, level, conf.GetString(KeyFormat, "text"))
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return logger, closer, nil
}

// NewWithWriter creates a logger writing in format ("text" or "json") to w.
func NewWithWriter(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format: %q", format)
}

// OrDiscard returns logger, or a logger dropping everything when it is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// ForRun returns a logger whose records carry the run id.
func ForRun(logger *slog.Logger, id rundata.RunID) *slog.Logger {
	logger = OrDiscard(logger)
	if id.OriginalID != "" && id.OriginalID != id.ID {
		return logger.With("run", id.ID, "original_run", id.OriginalID)
	}
	return logger.With("run", id.ID)
}
