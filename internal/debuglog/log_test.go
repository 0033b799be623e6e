package debuglog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, test := range tests {
		if got := test.level.String(); got != test.expected {
			t.Errorf("LogLevel.String() = %q, want %q", got, test.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"info", LevelInfo},
		{"WARN", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"off", LevelOff},
		{"", LevelOff},
		{"INVALID", LevelInfo},
	}

	for _, test := range tests {
		if got := ParseLogLevel(test.input); got != test.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", test.input, got, test.expected)
		}
	}
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	if err := Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(content)
}

func TestSetupWithLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "test.log")

	if err := Setup(LevelInfo, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	if GetLevel() != LevelInfo {
		t.Errorf("GetLevel() = %v, want %v", GetLevel(), LevelInfo)
	}

	Debugf("debug message")
	Infof("info message %d", 1)
	Warnf("warn message")
	Errorf("error message")

	logContent := readLog(t, logPath)
	if strings.Contains(logContent, "debug message") {
		t.Error("DEBUG message should not appear with INFO level")
	}
	if !strings.Contains(logContent, "info message 1") {
		t.Error("INFO message should appear with INFO level")
	}
	if !strings.Contains(logContent, "level=WARN") {
		t.Error("WARN record should carry its level")
	}
	if !strings.Contains(logContent, "error message") {
		t.Error("ERROR message should appear with INFO level")
	}
}

func TestSetupWithLevelOff(t *testing.T) {
	if err := Setup(LevelOff); err != nil {
		t.Fatalf("Setup with LevelOff failed: %v", err)
	}

	if GetLevel() != LevelOff {
		t.Errorf("GetLevel() = %v, want %v", GetLevel(), LevelOff)
	}

	Errorf("error message")
	if Logger().Enabled(t.Context(), LevelError.slogLevel()) {
		t.Error("logger should be disabled at LevelOff")
	}
}

func TestSetupBadPath(t *testing.T) {
	dir := t.TempDir()
	if err := Setup(LevelInfo, dir); err == nil {
		t.Error("Setup should fail when the path is a directory")
	}
	Infof("does not panic")
}

func TestFieldLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "field_test.log")

	if err := Setup(LevelDebug, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	logger := WithFields(map[string]any{
		"component": "test",
		"action":    "testing",
		"count":     42,
	})

	logger.Infof("test message with fields")
	logger.Debugf("debug with fields")

	logContent := readLog(t, logPath)
	for _, want := range []string{
		"test message with fields",
		"debug with fields",
		"component=test",
		"action=testing",
		"count=42",
	} {
		if !strings.Contains(logContent, want) {
			t.Errorf("log should contain %q", want)
		}
	}
}

func TestLoggerHonoursLevelChanges(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")
	if err := Setup(LevelError, logPath); err != nil {
		t.Fatal(err)
	}

	Logger().Info("hidden")
	SetLevel(LevelDebug)
	Logger().Debug("visible", "key", "value")

	logContent := readLog(t, logPath)
	if strings.Contains(logContent, "hidden") {
		t.Error("INFO record should be filtered at ERROR level")
	}
	if !strings.Contains(logContent, "key=value") {
		t.Error("DEBUG record should appear after SetLevel(LevelDebug)")
	}
}

func TestSetLevel(t *testing.T) {
	SetLevel(LevelDebug)
	if GetLevel() != LevelDebug {
		t.Errorf("SetLevel(LevelDebug) failed, got %v", GetLevel())
	}

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("SetLevel(LevelError) failed, got %v", GetLevel())
	}
	SetLevel(LevelOff)
}
