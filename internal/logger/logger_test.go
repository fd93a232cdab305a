package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

type logRecord struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
	Seq   int    `json:"seq"`
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	original := Logger
	SetOutput(&buf, true)
	defer func() {
		Logger = original
		_ = SetLevel("info")
	}()

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("set level: %v", err)
	}

	tests := []struct {
		name  string
		fn    func(msg string, args ...any)
		level string
	}{
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("pipeline run", "seq", 7)

			var rec logRecord
			if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
				t.Fatalf("failed to unmarshal log output: %v", err)
			}
			if rec.Level != tt.level || rec.Msg != "pipeline run" || rec.Seq != 7 {
				t.Errorf("unexpected record %+v", rec)
			}
		})
	}
}

func TestSetLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	original := Logger
	SetOutput(&buf, false)
	defer func() {
		Logger = original
		_ = SetLevel("info")
	}()

	if err := SetLevel("warn"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}
	if err := SetLevel("loud"); err == nil {
		t.Fatalf("expected invalid level to fail")
	}
}
