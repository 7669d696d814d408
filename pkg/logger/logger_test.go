package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn)

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	out := buf.String()
	if strings.Contains(out, "[DEBUG]") || strings.Contains(out, "[INFO]") {
		t.Errorf("below-level messages should be suppressed: %q", out)
	}
	if !strings.Contains(out, "[WARN] w") || !strings.Contains(out, "[ERROR] e") {
		t.Errorf("warn and error should be emitted: %q", out)
	}
	if !strings.Contains(out, "gofsh") {
		t.Errorf("prefix missing: %q", out)
	}
}

func TestLogger_CountsIncludeSuppressed(t *testing.T) {
	log := New(&bytes.Buffer{}, LevelError)

	log.Warn("one")
	log.Warn("two")
	log.Error("boom")

	if got := log.Count(LevelWarn); got != 2 {
		t.Errorf("Count(Warn) = %d; want 2", got)
	}
	if got := log.Count(LevelError); got != 1 {
		t.Errorf("Count(Error) = %d; want 1", got)
	}
	if got := log.Count(LevelDebug); got != 0 {
		t.Errorf("Count(Debug) = %d; want 0", got)
	}
}

func TestLogger_SetLevelAndOutput(t *testing.T) {
	var first, second bytes.Buffer
	log := New(&first, LevelInfo)

	log.Info("before")
	log.SetOutput(&second)
	log.SetLevel(LevelDebug)
	log.Debug("after")

	if !strings.Contains(first.String(), "before") {
		t.Error("first buffer should hold the first message")
	}
	if !strings.Contains(second.String(), "after") {
		t.Error("second buffer should hold the second message")
	}
	if strings.Contains(second.String(), "before") {
		t.Error("second buffer should not hold the first message")
	}
}

func TestLogger_Formatting(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo)
	log.Info("value %d of %s", 3, "x")
	if !strings.Contains(buf.String(), "value 3 of x") {
		t.Errorf("formatted output missing: %q", buf.String())
	}
}

func TestNop_DiscardsEverything(t *testing.T) {
	log := Nop()
	log.Error("nothing happens")
	if got := log.Count(LevelError); got != 1 {
		t.Errorf("Nop still counts, got %d", got)
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d.String() = %q; want %q", tt.level, got, tt.want)
		}
	}
}
