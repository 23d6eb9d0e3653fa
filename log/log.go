// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a leveled key/value logger backed by the go-ethereum slog handlers.
package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12
)

// Logger writes leveled records with alternating key/value context.
type Logger interface {
	With(ctx ...any) Logger
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	Enabled(level slog.Level) bool
}

type logger struct {
	inner ethlog.Logger
}

func (l *logger) With(ctx ...any) Logger { return &logger{l.inner.With(ctx...)} }
func (l *logger) Trace(msg string, ctx ...any) { l.inner.Trace(msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.inner.Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any) { l.inner.Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any) { l.inner.Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.inner.Error(msg, ctx...) }
func (l *logger) Crit(msg string, ctx ...any) { l.inner.Crit(msg, ctx...) }
func (l *logger) Enabled(level slog.Level) bool { return l.inner.Enabled(context.Background(), level) }

// contextLogger resolves the root logger on every call, so package level
// loggers follow later SetDefault calls.
type contextLogger struct {
	ctx []any
}

func (l *contextLogger) get() ethlog.Logger { return ethlog.Root().With(l.ctx...) }

func (l *contextLogger) With(ctx ...any) Logger {
	return &contextLogger{ctx: append(append([]any(nil), l.ctx...), ctx...)}
}
func (l *contextLogger) Trace(msg string, ctx ...any) { l.get().Trace(msg, ctx...) }
func (l *contextLogger) Debug(msg string, ctx ...any) { l.get().Debug(msg, ctx...) }
func (l *contextLogger) Info(msg string, ctx ...any) { l.get().Info(msg, ctx...) }
func (l *contextLogger) Warn(msg string, ctx ...any) { l.get().Warn(msg, ctx...) }
func (l *contextLogger) Error(msg string, ctx ...any) { l.get().Error(msg, ctx...) }
func (l *contextLogger) Crit(msg string, ctx ...any) { l.get().Crit(msg, ctx...) }
func (l *contextLogger) Enabled(level slog.Level) bool {
	return ethlog.Root().Enabled(context.Background(), level)
}

// Root returns the root logger.
func Root() Logger {
	return &logger{ethlog.Root()}
}

// WithContext returns a logger carrying ctx on top of whatever root logger is current.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

// NewLogger returns a logger writing to h.
func NewLogger(h slog.Handler) Logger {
	return &logger{ethlog.NewLogger(h)}
}

// SetDefault replaces the root logger with one writing to h.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// Handler returns the handler of the current root logger.
func Handler() slog.Handler {
	return ethlog.Root().Handler()
}

func NewTerminalHandler(w io.Writer, useColor bool) slog.Handler {
	return ethlog.NewTerminalHandler(w, useColor)
}

func JSONHandler(w io.Writer) slog.Handler {
	return ethlog.JSONHandler(w)
}

func LogfmtHandler(w io.Writer) slog.Handler {
	return ethlog.LogfmtHandler(w)
}

func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}

// FilterHandler wraps h so only records at or above level pass.
func FilterHandler(h slog.Handler, level slog.Level) slog.Handler {
	glogger := ethlog.NewGlogHandler(h)
	glogger.Verbosity(level)
	return glogger
}

var verbosityLevels = [...]slog.Level{LevelCrit, LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace}

// LevelFromVerbosity maps a 0 (crit) to 5 (trace) verbosity onto a level.
// Out of range values are clamped.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v < 0:
		v = 0
	case v >= len(verbosityLevels):
		v = len(verbosityLevels) - 1
	}
	return verbosityLevels[v]
}
