package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, level Level) (Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := New(&Config{
		LogFilePath: path,
		MaxFileSize: 1024 * 1024,
		MaxBackups:  2,
		Level:       level,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return l, path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read log file: %v", err)
	}
	return string(data)
}

func TestLoggerWritesEntries(t *testing.T) {
	l, path := newTestLogger(t, LevelDebug)
	defer l.Close()

	l.Info("translation started", String("file", "paper.pdf"), Int("pages", 12))
	l.Error("backend failed", errors.New("boom"), String("unit", "u_1_0"))

	content := readLog(t, path)
	if !strings.Contains(content, "[INFO] translation started") {
		t.Errorf("info entry missing:\n%s", content)
	}
	if !strings.Contains(content, "file=paper.pdf") || !strings.Contains(content, "pages=12") {
		t.Errorf("fields missing:\n%s", content)
	}
	if !strings.Contains(content, `error="boom"`) {
		t.Errorf("error field missing:\n%s", content)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	l, path := newTestLogger(t, LevelWarn)
	defer l.Close()

	l.Debug("noise")
	l.Info("more noise")
	l.Warn("kept")

	content := readLog(t, path)
	if strings.Contains(content, "noise") {
		t.Errorf("filtered entries written:\n%s", content)
	}
	if !strings.Contains(content, "[WARN] kept") {
		t.Errorf("warn entry missing:\n%s", content)
	}
}

func TestLoggerRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotate.log")
	l, err := New(&Config{
		LogFilePath: path,
		MaxFileSize: 256,
		MaxBackups:  2,
		Level:       LevelInfo,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	for i := 0; i < 20; i++ {
		l.Info(strings.Repeat("x", 64))
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("no rotated backup created: %v", err)
	}
}

func TestFieldHelpers(t *testing.T) {
	testCases := []struct {
		name  string
		field Field
		key   string
	}{
		{"string", String("k", "v"), "k"},
		{"int", Int("n", 1), "n"},
		{"int64", Int64("n64", 2), "n64"},
		{"float64", Float64("f", 1.5), "f"},
		{"bool", Bool("b", true), "b"},
		{"duration", Duration("d", time.Second), "d"},
		{"error", Err(errors.New("e")), "error"},
		{"nil error", Err(nil), "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.field.Key != tc.key {
				t.Errorf("key = %q, want %q", tc.field.Key, tc.key)
			}
		})
	}

	if Duration("d", 2*time.Second).Value != "2s" {
		t.Errorf("duration value = %v", Duration("d", 2*time.Second).Value)
	}
}

func TestGlobalLoggerFallsBackToNoop(t *testing.T) {
	SetGlobalLogger(nil)
	defer SetGlobalLogger(nil)

	// must not panic without initialization
	Debug("a")
	Info("b")
	Warn("c")
	Error("d", errors.New("e"))
}
