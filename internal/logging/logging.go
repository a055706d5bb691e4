// Package logging wraps log/slog with a component-scoped logger: a
// small set of phase helpers for turn/step/hold transitions plus
// leveled methods, matching the call-site shape the rest of this
// codebase expects from its structured logger.
package logging

import (
	"log/slog"
	"os"
)

// Logger is a component-scoped wrapper over *slog.Logger.
type Logger struct {
	base *slog.Logger
}

// New builds a Logger writing JSON-structured records to stdout at
// Info level, a sensible production default.
func New() *Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &Logger{base: slog.New(h)}
}

// WithComponent returns a new logger tagging every record with
// component=name (e.g. "interp", "builtins:http").
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{base: l.base.With("component", name)}
}

// WithTraceID returns a new logger tagging every record with the
// given turn/session correlation id.
func (l *Logger) WithTraceID(id string) *Logger {
	return &Logger{base: l.base.With("trace_id", id)}
}

// SetLevel adjusts the minimum level a Logger built via New emits.
func (l *Logger) SetLevel(level slog.Level) {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	l.base = slog.New(h)
}

func (l *Logger) Debug(msg string, fields ...any) { l.base.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...any)  { l.base.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...any)  { l.base.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...any) { l.base.Error(msg, fields...) }

// TurnStart logs the beginning of one interpreter turn.
func (l *Logger) TurnStart(flow, step string) {
	l.base.Info("turn_start", "flow", flow, "step", step)
}

// TurnComplete logs a turn's terminal next-state.
func (l *Logger) TurnComplete(flow, step, nextKind string, err error) {
	if err != nil {
		l.base.Error("turn_complete", "flow", flow, "step", step, "next", nextKind, "error", err.Error())
		return
	}
	l.base.Info("turn_complete", "flow", flow, "step", step, "next", nextKind)
}

// StepStart logs entry into a step's block, noting whether this entry
// is a fresh dispatch or a goto/hold resume.
func (l *Logger) StepStart(flow, step string, resuming bool) {
	l.base.Debug("step_start", "flow", flow, "step", step, "resuming", resuming)
}

// StepEnd logs a step block's completion (normal, goto, hold, or
// error exit).
func (l *Logger) StepEnd(flow, step, exitKind string, err error) {
	if err != nil {
		l.base.Error("step_end", "flow", flow, "step", step, "exit", exitKind, "error", err.Error())
		return
	}
	l.base.Debug("step_end", "flow", flow, "step", step, "exit", exitKind)
}

// HoldSet logs a turn suspending on a hold statement.
func (l *Logger) HoldSet(flow, step string, instructionIndex int) {
	l.base.Info("hold_set", "flow", flow, "step", step, "instruction_index", instructionIndex)
}

// HoldResume logs a turn resuming past a previously recorded hold.
func (l *Logger) HoldResume(flow, step string, instructionIndex int) {
	l.base.Info("hold_resume", "flow", flow, "step", step, "instruction_index", instructionIndex)
}

// Default is the global default logger.
var Default = New()

func Debug(msg string, fields ...any)   { Default.Debug(msg, fields...) }
func Info(msg string, fields ...any)    { Default.Info(msg, fields...) }
func Warn(msg string, fields ...any)    { Default.Warn(msg, fields...) }
func Error(msg string, fields ...any)   { Default.Error(msg, fields...) }
func WithComponent(name string) *Logger { return Default.WithComponent(name) }
