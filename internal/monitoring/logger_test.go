package monitoring

import (
	"fmt"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// Now set to nil and verify it doesn't call our logger
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}

func TestTimed(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	done := Timed("roommodel", "plane map")
	if len(lines) != 0 {
		t.Fatalf("Timed logged before the stage finished: %v", lines)
	}
	done()

	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "[roommodel] plane map took ") {
		t.Errorf("unexpected log line %q", lines[0])
	}
}

func TestTimed_ComponentPrefix(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	Timed("roommodel", "bsp build")()
	Timed("sqlite", "insert")()

	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "[roommodel] bsp build took ") {
		t.Errorf("unexpected log line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[sqlite] insert took ") {
		t.Errorf("unexpected log line %q", lines[1])
	}
}
