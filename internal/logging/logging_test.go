package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		level   string
		verbose bool
		want    zapcore.Level
	}{
		{"", false, zapcore.WarnLevel},
		{"info", false, zapcore.InfoLevel},
		{"error", false, zapcore.ErrorLevel},
		{"error", true, zapcore.DebugLevel},
	}
	for _, c := range cases {
		logger, err := New(c.level, c.verbose)
		if err != nil {
			t.Fatalf("New(%q, %v): %v", c.level, c.verbose, err)
		}
		if !logger.Core().Enabled(c.want) {
			t.Errorf("New(%q, %v): level %s not enabled", c.level, c.verbose, c.want)
		}
		if c.want > zapcore.DebugLevel && logger.Core().Enabled(c.want-1) {
			t.Errorf("New(%q, %v): level %s should be disabled", c.level, c.verbose, c.want-1)
		}
	}

	if _, err := New("chatty", false); err == nil {
		t.Errorf("expected error for unknown level")
	}
}
