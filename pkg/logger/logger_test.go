package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wonny/quantedge/pkg/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output: %v (%q)", err, buf.String())
	}
	return entry
}

func TestNewWithWriterSetsLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(&config.Config{Env: "development", LogLevel: tt.level}, &buf)
			if log == nil {
				t.Fatal("Expected logger to be created")
			}
			if zerolog.GlobalLevel() != tt.want {
				t.Errorf("Expected global level %v, got %v", tt.want, zerolog.GlobalLevel())
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestJSONOutputCarriesEnv(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{Env: "staging", LogLevel: "debug", LogFormat: "json"}, &buf)

	log.Info("feed live")

	entry := decodeLine(t, &buf)
	if entry["env"] != "staging" {
		t.Errorf("Expected env=staging, got %v", entry["env"])
	}
	if entry["level"] != "info" {
		t.Errorf("Expected level info, got %v", entry["level"])
	}
	if entry["message"] != "feed live" {
		t.Errorf("Expected message 'feed live', got %v", entry["message"])
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{Env: "development", LogLevel: "info", LogFormat: "console"}, &buf)

	log.Info("console message")

	if !strings.Contains(buf.String(), "console message") {
		t.Errorf("Expected output to contain message, got: %s", buf.String())
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log := &Logger{zlog: zerolog.New(&buf)}

	log.WithFields(map[string]interface{}{
		"symbol": "RELIANCE",
		"price":  1300.5,
	}).WithField("batch", 2).Warn("batch failed")

	entry := decodeLine(t, &buf)
	if entry["symbol"] != "RELIANCE" {
		t.Errorf("Expected symbol RELIANCE, got %v", entry["symbol"])
	}
	if entry["price"] != 1300.5 {
		t.Errorf("Expected price 1300.5, got %v", entry["price"])
	}
	if entry["batch"] != float64(2) {
		t.Errorf("Expected batch 2, got %v", entry["batch"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := &Logger{zlog: zerolog.New(&buf)}

	log.WithError(errors.New("provider timeout")).Error("refresh failed")

	entry := decodeLine(t, &buf)
	if entry["error"] != "provider timeout" {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log := &Logger{zlog: zerolog.New(&buf)}

	zl := log.Component("forecast.engine")
	zl.Info().Msg("forecast computed")

	entry := decodeLine(t, &buf)
	if entry["component"] != "forecast.engine" {
		t.Errorf("Expected component field, got %v", entry["component"])
	}
}

func TestNop(t *testing.T) {
	// 패닉 없이 버려져야 함
	Nop().WithField("k", "v").Error("discarded")
}
