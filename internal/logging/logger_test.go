package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestSecretRedaction(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "secret is redacted",
			input:    "my-secret-password",
			expected: "[REDACTED]",
		},
		{
			name:     "empty secret is still redacted",
			input:    "",
			expected: "[REDACTED]",
		},
		{
			name:     "complex secret is redacted",
			input:    "password123!@#",
			expected: "[REDACTED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Secret(tt.input).String()
			if result != tt.expected {
				t.Errorf("Secret(%q).String() = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSecretJSON(t *testing.T) {
	out, err := json.Marshal(map[string]any{"token": Secret("abc123")})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"token":"[REDACTED]"}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestLevelFromFlags(t *testing.T) {
	tests := []struct {
		name                string
		quiet, debug, trace bool
		want                zerolog.Level
	}{
		{name: "default", want: zerolog.InfoLevel},
		{name: "quiet", quiet: true, want: zerolog.ErrorLevel},
		{name: "debug", debug: true, want: zerolog.DebugLevel},
		{name: "trace", trace: true, want: zerolog.TraceLevel},
		{name: "debug beats quiet", quiet: true, debug: true, want: zerolog.DebugLevel},
		{name: "trace beats debug", debug: true, trace: true, want: zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFromFlags(tt.quiet, tt.debug, tt.trace); got != tt.want {
				t.Errorf("LevelFromFlags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: zerolog.TraceLevel, NoColor: true, Out: &buf})

	logger.Info("formatted %s message", "info")
	logger.Warn("formatted %s message", "warn")
	logger.Error("formatted %s message", "error")
	logger.Debug("formatted %s message", "debug")
	logger.Trace("formatted %s message", "trace")

	for _, want := range []string{"INF formatted info", "WRN formatted warn", "ERR formatted error", "DBG formatted debug", "TRC formatted trace"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: zerolog.InfoLevel, JSON: true, Out: &buf}).With("resolution", "abc")

	logger.Info("resolved")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if line["resolution"] != "abc" || line["message"] != "resolved" || line["level"] != "info" {
		t.Errorf("unexpected line %v", line)
	}
}

func TestNop(t *testing.T) {
	Nop().Error("nothing %d", 1)
}
