package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRespectsVerbose(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{"info", false, false},
		{"debug", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.verbose, false)
			logger.Debugw("probe detail", "run", 1)
			logger.Infow("run started", "words", 42)
			_ = logger.Sync()

			out := buf.String()
			if got := strings.Contains(out, "probe detail"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "run started") || !strings.Contains(out, `"words": 42`) {
				t.Errorf("info line missing fields:\n%s", out)
			}
			if !strings.Contains(out, "INFO") {
				t.Errorf("expected plain level name, got:\n%s", out)
			}
		})
	}
}

func TestNewColorLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false, true)
	logger.Warnw("careful")
	_ = logger.Sync()

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI color codes, got %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	Nop().Infow("ignored", "k", "v")
}
