// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger backs Logger with go.uber.org/zap's SugaredLogger, the
// production logging path for a running bus (StructuredLogger remains
// available for tests and any caller that wants a dependency-free sink).
type ZapLogger struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// NewZapLogger builds a ZapLogger writing JSON to stdout/stderr at level.
func NewZapLogger(level Level) *ZapLogger {
	atom := zap.NewAtomicLevelAt(toZapLevel(level))
	cfg := zap.NewProductionConfig()
	cfg.Level = atom
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build()
	if err != nil {
		// zap.NewProductionConfig().Build() only fails on a broken sink
		// spec; stdout/stderr never hit that path.
		base = zap.NewNop()
	}

	return &ZapLogger{base: base, level: atom}
}

func newZapLoggerFrom(base *zap.Logger, atom zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{base: base, level: atom}
}

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []Field) []zap.Field {
	zf := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		zf = append(zf, zap.Any(f.Key, f.Value))
	}
	return zf
}

func (z *ZapLogger) Debug(_ context.Context, msg string, fields ...Field) {
	z.base.Debug(msg, toZapFields(fields)...)
}

func (z *ZapLogger) Info(_ context.Context, msg string, fields ...Field) {
	z.base.Info(msg, toZapFields(fields)...)
}

func (z *ZapLogger) Warn(_ context.Context, msg string, fields ...Field) {
	z.base.Warn(msg, toZapFields(fields)...)
}

func (z *ZapLogger) Error(_ context.Context, msg string, fields ...Field) {
	z.base.Error(msg, toZapFields(fields)...)
}

func (z *ZapLogger) Fatal(_ context.Context, msg string, fields ...Field) {
	z.base.Fatal(msg, toZapFields(fields)...)
}

// With mirrors AgentLogger from the original Python: a child logger
// carrying a fixed "agent_id" (or any other) field on every entry.
func (z *ZapLogger) With(fields ...Field) Logger {
	return newZapLoggerFrom(z.base.With(toZapFields(fields)...), z.level)
}

func (z *ZapLogger) SetLevel(level Level) {
	z.level.SetLevel(toZapLevel(level))
}

// SetSamplingRate is a no-op for ZapLogger: zap's own sampling core
// (enabled in NewProductionConfig) already governs repeated log volume.
func (z *ZapLogger) SetSamplingRate(_ float64) {}

// Sync flushes any buffered log entries; call before process exit.
func (z *ZapLogger) Sync() error {
	return z.base.Sync()
}
