package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected LogLevel
	}{
		{name: "Debug", value: "debug", expected: LevelDebug},
		{name: "Info", value: "info", expected: LevelInfo},
		{name: "Warn", value: "warn", expected: LevelWarn},
		{name: "Error", value: "error", expected: LevelError},
		{name: "Case insensitive", value: "DEBUG", expected: LevelDebug},
		{name: "Warning alias", value: "warning", expected: LevelWarn},
		{name: "Surrounding whitespace", value: " error ", expected: LevelError},
		{name: "Empty defaults to info", value: "", expected: LevelInfo},
		{name: "Unknown defaults to info", value: "verbose", expected: LevelInfo},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.value); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

// TestLevelFiltering verifies messages below the configured level are dropped.
// It mutates package state, so it does not run in parallel.
func TestLevelFiltering(t *testing.T) {
	previous := GetLevel()
	defer SetLevel(previous)

	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	SetLevel(LevelWarn)
	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)

	out := buf.String()
	for _, unexpected := range []string{"debug 1", "info 2"} {
		if strings.Contains(out, unexpected) {
			t.Errorf("Expected %q to be filtered, got output:\n%s", unexpected, out)
		}
	}
	for _, expected := range []string{"WARN", "warn 3", "ERROR", "error 4"} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected output to contain %q, got:\n%s", expected, out)
		}
	}

	buf.Reset()
	SetLevel(LevelDebug)
	if !IsDebugEnabled() {
		t.Fatal("Expected debug to be enabled after SetLevel(LevelDebug)")
	}
	Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("Expected debug message in output, got:\n%s", buf.String())
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	With("worker", 3).Infof("started")

	out := buf.String()
	if !strings.Contains(out, "started") || !strings.Contains(out, "\"worker\": 3") {
		t.Errorf("Expected structured field in output, got:\n%s", out)
	}
}

func TestWithFollowsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	prev := GetLevel()
	SetLevel(LevelInfo)
	defer SetLevel(prev)

	log := With("worker", 1)
	log.Debugf("hidden")
	log.Warnf("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug line to be filtered at info level, got:\n%s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("Expected warn line in output, got:\n%s", out)
	}

	SetLevel(LevelDebug)
	log.Debugf("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("Expected debug line once level is debug, got:\n%s", buf.String())
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
