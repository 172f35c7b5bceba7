// Package logger installs a slog handler that writes timestamped
// [INFO]/[ERROR] lines to standard output (errors to standard error) and
// appends the same lines to the configured log file.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

type Handler struct {
	mu     *sync.Mutex
	out    io.Writer
	errOut io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
}

// NewHandler writes records below error level to out and error records to
// errOut. Both writers share one mutex as they may point at the same file.
func NewHandler(out, errOut io.Writer, level slog.Leveler) *Handler {
	return &Handler{
		mu:     &sync.Mutex{},
		out:    out,
		errOut: errOut,
		level:  level,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	fmt.Fprintf(&sb, "[%s] [%s] %s", ts.Format(timestampLayout), record.Level.String(), record.Message)

	for _, attr := range h.attrs {
		fmt.Fprintf(&sb, " %s=%v", attr.Key, attr.Value)
	}

	record.Attrs(func(attr slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", attr.Key, attr.Value)
		return true
	})

	sb.WriteByte('\n')

	writer := h.out
	if record.Level >= slog.LevelError {
		writer = h.errOut
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(writer, sb.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// Groups are not used by this tool, the handler flattens them away.
func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

// Setup opens logFile for appending and makes the default slog logger
// mirror every line to stdout (errors to stderr) and the file. The returned
// closer releases the log file and is safe to defer even when logging to
// the standard streams only.
func Setup(logFile string, verbose bool) (func() error, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	out := io.Writer(os.Stdout)
	errOut := io.Writer(os.Stderr)
	closer := func() error { return nil }

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("fail to open log file %s, error: %v", logFile, err)
		}

		out = io.MultiWriter(os.Stdout, file)
		errOut = io.MultiWriter(os.Stderr, file)
		closer = file.Close
	}

	slog.SetDefault(slog.New(NewHandler(out, errOut, level)))
	return closer, nil
}
