package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{base: slog.New(h)}
}

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Info("hello", "key", "value")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("failed to parse log record: %v", err)
	}
	if rec["msg"] != "hello" {
		t.Errorf("expected msg 'hello', got %v", rec["msg"])
	}
	if rec["key"] != "value" {
		t.Errorf("expected key='value', got %v", rec["key"])
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf).WithComponent("interp")

	logger.Info("test message")

	var rec map[string]any
	json.Unmarshal(buf.Bytes(), &rec)
	if rec["component"] != "interp" {
		t.Errorf("expected component 'interp', got %v", rec["component"])
	}
}

func TestLogger_TurnStartAndComplete(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.TurnStart("main", "start")

	var rec map[string]any
	json.Unmarshal(buf.Bytes(), &rec)
	if rec["msg"] != "turn_start" || rec["flow"] != "main" || rec["step"] != "start" {
		t.Errorf("unexpected turn_start record: %v", rec)
	}

	buf.Reset()
	logger.TurnComplete("main", "start", "End", nil)
	json.Unmarshal(buf.Bytes(), &rec)
	if rec["next"] != "End" {
		t.Errorf("expected next='End', got %v", rec["next"])
	}
}

func TestLogger_HoldSetAndResume(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.HoldSet("main", "start", 3)

	var rec map[string]any
	json.Unmarshal(buf.Bytes(), &rec)
	if rec["instruction_index"].(float64) != 3 {
		t.Errorf("expected instruction_index 3, got %v", rec["instruction_index"])
	}

	buf.Reset()
	logger.HoldResume("main", "start", 3)
	json.Unmarshal(buf.Bytes(), &rec)
	if rec["msg"] != "hold_resume" {
		t.Errorf("expected msg 'hold_resume', got %v", rec["msg"])
	}
}
