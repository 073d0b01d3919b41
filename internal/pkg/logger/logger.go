// Package logger is a thin facade over logrus giving every component a
// named, field-scoped logger (component, tenant_id, request_id, generation),
// matching the per-module logger convention used throughout this codebase.
package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	base     = logrus.New()
	initOnce sync.Once
)

// Init configures the base logger's level and formatter. Safe to call once
// at process startup; subsequent calls are no-ops.
func Init(level string, logQueries bool) {
	initOnce.Do(func() {
		base.SetOutput(os.Stdout)
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		base.SetLevel(lvl)
		_ = logQueries // not read: no component logs SQL text based on this setting
	})
}

// Logger wraps a logrus.Entry scoped to one component.
type Logger struct {
	entry *logrus.Entry
}

// For returns a component-scoped Logger, e.g. For("tenant_registry").
func For(component string) *Logger {
	return &Logger{entry: base.WithField("component", component)}
}

// With returns a derived Logger with additional structured fields attached,
// e.g. l.With("tenant_id", id, "request_id", rid).
func (l *Logger) With(kv ...any) *Logger {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			fields[key] = kv[i+1]
		}
	}
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

// package-level convenience loggers for call sites that don't hold a *Logger.
var root = For("hivegate")

func Debugf(format string, args ...any) { root.Debugf(format, args...) }
func Infof(format string, args ...any)  { root.Infof(format, args...) }
func Warnf(format string, args ...any)  { root.Warnf(format, args...) }
func Errorf(format string, args ...any) { root.Errorf(format, args...) }
