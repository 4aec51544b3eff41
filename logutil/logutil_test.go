// logutil_test.go - Tests fuer den Text-Logger
package logutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestNewLoggerTraceLevel prueft die Ausgabe des TRACE-Levels
func TestNewLoggerTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelTrace)
	logger.Log(t.Context(), LevelTrace, "hello", "k", 1)

	out := buf.String()
	if !strings.Contains(out, "level=TRACE") {
		t.Errorf("erwartet level=TRACE, bekommen %q", out)
	}
	if !strings.Contains(out, "source=logutil_test.go:") {
		t.Errorf("erwartet kurzen Quellpfad, bekommen %q", out)
	}
}

// TestNewLoggerFiltersBelowLevel prueft, dass TRACE bei INFO verworfen wird
func TestNewLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	logger.Log(t.Context(), LevelTrace, "hidden")

	if buf.Len() != 0 {
		t.Errorf("erwartet keine Ausgabe, bekommen %q", buf.String())
	}
}
