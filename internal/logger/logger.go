// Package logger implements a zerolog logger with a module tag.
// The module tag names the component that emitted the event.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logging is the logger configuration.
type Logging struct {
	Level  string
	Format string // "json" or "console"
	Out    io.Writer
}

// Logger is a zerolog logger scoped to a module.
type Logger struct {
	*zerolog.Logger
	module string

	// base is the untagged root logger sub-loggers derive from.
	base *zerolog.Logger
}

// Module returns the logger's module name.
func (l Logger) Module() string {
	return l.module
}

// Named returns a sub-logger for a nested module.
func (l *Logger) Named(name string) *Logger {
	module := name
	if l.module != rootName {
		module = l.module + "." + name
	}
	sub := l.base.With().Str("module", module).Logger()
	return &Logger{Logger: &sub, module: module, base: l.base}
}

const rootName = "root"

var (
	rootMu sync.RWMutex
	root   *Logger
)

// Init replaces the root logger.
func Init(cfg Logging) error {
	l, err := newLogger(cfg)
	if err != nil {
		return err
	}
	rootMu.Lock()
	root = l
	rootMu.Unlock()
	return nil
}

// GetLogger returns a logger for module. Without Init the root logger
// writes JSON at info level to stderr.
func GetLogger(module ...string) *Logger {
	rootMu.RLock()
	l := root
	rootMu.RUnlock()
	if l == nil {
		rootMu.Lock()
		if root == nil {
			root, _ = newLogger(Logging{Level: "info"})
		}
		l = root
		rootMu.Unlock()
	}

	if len(module) == 0 {
		return l
	}
	return l.Named(strings.Join(module, "."))
}

func newLogger(cfg Logging) (*Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		lvl, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = lvl
	}

	w := cfg.Out
	if w == nil {
		w = os.Stderr
	}
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{Logger: &l, module: rootName, base: &l}, nil
}
