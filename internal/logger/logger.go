// Package logger defines the structured logging hooks used when compiled
// statements are handed to a database client.
package logger

import "log/slog"

// Logger is the minimal structured logger chainsql writes to.
// Arguments are alternating key/value pairs, as with log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Nop discards every record. It is the default when no logger is configured.
type Nop struct{}

// Debug does nothing.
func (Nop) Debug(string, ...any) {}

// Info does nothing.
func (Nop) Info(string, ...any) {}

// Warn does nothing.
func (Nop) Warn(string, ...any) {}

// Error does nothing.
func (Nop) Error(string, ...any) {}

// Slog adapts a *slog.Logger.
type Slog struct {
	l *slog.Logger
}

// NewSlog wraps l. A nil l yields Nop.
func NewSlog(l *slog.Logger) Logger {
	if l == nil {
		return Nop{}
	}
	return &Slog{l: l}
}

// Debug logs at debug level.
func (a *Slog) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }

// Info logs at info level.
func (a *Slog) Info(msg string, args ...any) { a.l.Info(msg, args...) }

// Warn logs at warn level.
func (a *Slog) Warn(msg string, args ...any) { a.l.Warn(msg, args...) }

// Error logs at error level.
func (a *Slog) Error(msg string, args ...any) { a.l.Error(msg, args...) }
