// Package logger is the process-wide slog logger behind printf-style helpers.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	level  slog.LevelVar
	mu     sync.RWMutex
	active *slog.Logger
)

func init() {
	SetOutput(os.Stdout)
}

// SetOutput redirects all subsequent log lines to w; nil means stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &level}))
	mu.Lock()
	active = l
	mu.Unlock()
}

// ParseLevel maps a config level name to a slog level. ok is false for
// unknown names, which map to info. Empty means info.
func ParseLevel(name string) (lv slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// SetLevel applies a config level name; unknown names select info.
func SetLevel(name string) {
	lv, _ := ParseLevel(name)
	level.Set(lv)
}

func logf(lv slog.Level, format string, v ...any) {
	mu.RLock()
	l := active
	mu.RUnlock()
	ctx := context.Background()
	if !l.Enabled(ctx, lv) {
		return
	}
	l.Log(ctx, lv, fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...any) { logf(slog.LevelDebug, format, v...) }

func Infof(format string, v ...any) { logf(slog.LevelInfo, format, v...) }

func Warnf(format string, v ...any) { logf(slog.LevelWarn, format, v...) }

func Errorf(format string, v ...any) { logf(slog.LevelError, format, v...) }

// Section logs title and then each non-blank line at info, all tagged with
// the same section attribute so they can be grepped together.
func Section(title string, lines []string) {
	mu.RLock()
	l := active.With("section", title)
	mu.RUnlock()
	l.Info(title)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		l.Info(line)
	}
}
