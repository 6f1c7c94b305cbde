// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"log/slog"
	"os"
	"sync/atomic"
)

// Logger is the key-value logger used across packages.
type Logger interface {
	With(ctx ...any) Logger

	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

type logger struct {
	inner *slog.Logger
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Debug(msg string, ctx ...any) { l.inner.Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.inner.Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.inner.Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.inner.Error(msg, ctx...) }

var (
	root     atomic.Pointer[logger]
	levelVar = new(slog.LevelVar)
)

func init() {
	root.Store(&logger{slog.New(NewTerminalHandlerWithLevel(os.Stderr, levelVar, useColor(os.Stderr)))})
}

// SetDefault sets the handler of the root logger.
func SetDefault(h slog.Handler) {
	root.Store(&logger{slog.New(h)})
}

// SetLevel adjusts the verbosity of the root logger and all loggers derived from it.
func SetLevel(lvl slog.Level) {
	levelVar.Set(lvl)
}

// WithContext returns a logger carrying the given context key-value pairs.
// The conventional first pair is ("pkg", <package name>).
func WithContext(ctx ...any) Logger {
	return root.Load().With(ctx...)
}

// Debug logs at debug level on the root logger.
func Debug(msg string, ctx ...any) { root.Load().Debug(msg, ctx...) }

// Info logs at info level on the root logger.
func Info(msg string, ctx ...any) { root.Load().Info(msg, ctx...) }

// Warn logs at warn level on the root logger.
func Warn(msg string, ctx ...any) { root.Load().Warn(msg, ctx...) }

// Error logs at error level on the root logger.
func Error(msg string, ctx ...any) { root.Load().Error(msg, ctx...) }
