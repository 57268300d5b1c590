// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/patterneta/internal/core/ports"
)

// messager matches errors that can report their own message without the chain, like zerr.Error.
type messager interface {
	Message() string
}

// metadataer matches errors carrying structured metadata, like zerr.Error.
type metadataer interface {
	Metadata() map[string]any
}

var _ ports.Logger = (*Logger)(nil)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	output   io.Writer
	jsonMode bool
}

// New creates a Logger writing pretty output to stderr.
func New() *Logger {
	l := &Logger{output: os.Stderr}
	l.rebuild()
	return l
}

// SetOutput updates the output destination, keeping the current mode. A nil writer means stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty output.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

// rebuild replaces the slog logger. Callers must hold mu or own l exclusively.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if l.jsonMode {
		handler = slog.NewJSONHandler(l.output, opts)
	} else {
		handler = NewPrettyHandler(l.output, opts)
	}
	l.logger = slog.New(handler)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs err. Pretty output renders the error chain one cause per line.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err.Error())
		return
	}
	l.logger.Error(FormatChain(err))
}

// FormatChain renders err as a headline followed by its causes.
// The walk stops at the first error that cannot report its own message.
func FormatChain(err error) string {
	var links []string
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			links = append(links, current.Error())
			break
		}
		if msg := m.Message(); msg != "" {
			links = append(links, msg+formatMetadata(current))
		}
		current = errors.Unwrap(current)
	}

	var b strings.Builder
	for i, link := range links {
		lines := strings.Split(link, "\n")
		switch i {
		case 0:
			b.WriteString("Error: " + lines[0])
			for _, line := range lines[1:] {
				b.WriteString("\n       " + line)
			}
		case 1:
			b.WriteString("\n\n  Caused by:")
			fallthrough
		default:
			b.WriteString("\n    → " + lines[0])
			for _, line := range lines[1:] {
				b.WriteString("\n      " + line)
			}
		}
	}
	return b.String()
}

func formatMetadata(err error) string {
	md, ok := err.(metadataer)
	if !ok {
		return ""
	}
	fields := md.Metadata()
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
