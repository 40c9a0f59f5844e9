// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got %q", cfg.Level)
	}

	if cfg.Format != FormatText {
		t.Errorf("expected default format 'text', got %q", cfg.Format)
	}

	if cfg.Output != os.Stderr {
		t.Errorf("expected default output to be os.Stderr")
	}

	if cfg.AddSource {
		t.Errorf("expected default AddSource to be false")
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected *Config
	}{
		{
			name:     "defaults when no env vars",
			envVars:  map[string]string{},
			expected: &Config{Level: "info", Format: FormatText},
		},
		{
			name:     "LOG_LEVEL=DEBUG (case insensitive)",
			envVars:  map[string]string{"LOG_LEVEL": "DEBUG"},
			expected: &Config{Level: "debug", Format: FormatText},
		},
		{
			name: "EXPRMIGRATE_LOG_LEVEL wins over LOG_LEVEL",
			envVars: map[string]string{
				"EXPRMIGRATE_LOG_LEVEL": "warn",
				"LOG_LEVEL":             "error",
			},
			expected: &Config{Level: "warn", Format: FormatText},
		},
		{
			name: "EXPRMIGRATE_DEBUG wins over levels",
			envVars: map[string]string{
				"EXPRMIGRATE_DEBUG":     "1",
				"EXPRMIGRATE_LOG_LEVEL": "error",
			},
			expected: &Config{Level: "debug", Format: FormatText, AddSource: true},
		},
		{
			name: "all env vars",
			envVars: map[string]string{
				"LOG_LEVEL":  "error",
				"LOG_FORMAT": "JSON",
				"LOG_SOURCE": "1",
			},
			expected: &Config{Level: "error", Format: FormatJSON, AddSource: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"EXPRMIGRATE_DEBUG", "EXPRMIGRATE_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := FromEnv()

			if cfg.Level != tt.expected.Level {
				t.Errorf("expected level %q, got %q", tt.expected.Level, cfg.Level)
			}
			if cfg.Format != tt.expected.Format {
				t.Errorf("expected format %q, got %q", tt.expected.Format, cfg.Format)
			}
			if cfg.AddSource != tt.expected.AddSource {
				t.Errorf("expected AddSource %v, got %v", tt.expected.AddSource, cfg.AddSource)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})

	logger.Info("converted", slog.String(TriggerKey, "disk full"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "converted" {
		t.Errorf("expected msg 'converted', got %v", entry["msg"])
	}
	if entry[TriggerKey] != "disk full" {
		t.Errorf("expected trigger field, got %v", entry[TriggerKey])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatText, Output: &buf})

	logger.Info("hello", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "msg=hello") || !strings.Contains(output, "key=value") {
		t.Errorf("unexpected text output %q", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}

	if ValidLevel("bogus") {
		t.Errorf("expected 'bogus' to be invalid")
	}
	if !ValidLevel("Trace") {
		t.Errorf("expected 'Trace' to be valid")
	}
}

func TestLogLevel_Filtering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "warn", Format: FormatText, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("info message should be filtered at warn level")
	}
	if !strings.Contains(output, "shown") {
		t.Errorf("warn message should be logged")
	}
}

func TestWithComponentAndFile(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	WithFile(WithComponent(logger, "watch"), "alerts/disk.trigger.yaml").Info("changed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if entry[ComponentKey] != "watch" {
		t.Errorf("expected component 'watch', got %v", entry[ComponentKey])
	}
	if entry[FileKey] != "alerts/disk.trigger.yaml" {
		t.Errorf("expected file field, got %v", entry[FileKey])
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	Trace(New(&Config{Level: "debug", Output: &buf}), "invisible")
	if buf.Len() != 0 {
		t.Errorf("trace should be filtered at debug level, got %q", buf.String())
	}

	Trace(New(&Config{Level: "trace", Output: &buf}), "visible", slog.String(ExpressionKey, "t1 > 0"))
	if !strings.Contains(buf.String(), "visible") || !strings.Contains(buf.String(), "t1 > 0") {
		t.Errorf("expected trace output, got %q", buf.String())
	}
}

func TestErrorAttr(t *testing.T) {
	attr := Error(errors.New("boom"))
	if attr.Key != "error" {
		t.Errorf("expected key 'error', got %q", attr.Key)
	}
	if attr.Value.Any().(error).Error() != "boom" {
		t.Errorf("unexpected error value %v", attr.Value)
	}
}

func TestNilConfig(t *testing.T) {
	if New(nil) == nil {
		t.Fatal("expected logger for nil config")
	}
}
