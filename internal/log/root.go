package log

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// Modules used across the repository.
const (
	Translate = "d3d9"
	Compile   = "nine"
	CLI       = "ninec"
)

var root atomic.Value

func init() {
	root.Store(Logger(&logger{slog.New(DiscardHandler())}))
}

// ParseLevel parses a level name such as "debug" or "TRACE".
func ParseLevel(lvl string) (slog.Level, error) {
	switch strings.ToUpper(lvl) {
	case "MAX", "MAXVERBOSITY":
		return levelMaxVerbosity, nil
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("invalid level: %s", lvl)
	}
}

// SetDefault sets the default global logger
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

var (
	modulesMu       sync.RWMutex
	disabledModules = make(map[string]bool)
)

// EnableModule enables logging for the specified module.
func EnableModule(module string) {
	modulesMu.Lock()
	delete(disabledModules, module)
	modulesMu.Unlock()
}

// DisableModule disables logging for the specified module.
func DisableModule(module string) {
	modulesMu.Lock()
	disabledModules[module] = true
	modulesMu.Unlock()
}

func isModuleEnabled(module string) bool {
	modulesMu.RLock()
	defer modulesMu.RUnlock()
	return !disabledModules[module]
}

// Trace logs a message at the trace level for a specific module.
func Trace(module string, msg string, ctx ...any) {
	Root().Trace(module, msg, ctx...)
}

// Debug logs a message at the debug level for a specific module.
func Debug(module string, msg string, ctx ...any) {
	Root().Debug(module, msg, ctx...)
}

func Info(module string, msg string, ctx ...any) {
	Root().Info(module, msg, ctx...)
}

func Warn(module string, msg string, ctx ...any) {
	Root().Warn(module, msg, ctx...)
}

func Error(module string, msg string, ctx ...any) {
	Root().Error(module, msg, ctx...)
}

// New returns a logger derived from the root with extra attributes.
func New(ctx ...any) Logger {
	return Root().With(ctx...)
}
