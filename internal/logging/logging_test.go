package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	for _, tc := range []struct {
		verbose bool
		debug   bool
	}{
		{false, false},
		{true, true},
	} {
		l, err := New(tc.verbose, "solve")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if got := l.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
			t.Fatalf("verbose=%v: debug enabled=%v", tc.verbose, got)
		}
		if !l.Core().Enabled(zapcore.InfoLevel) {
			t.Fatalf("info should always be enabled")
		}
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("expected a logger")
	}
	l, _ := New(false, "")
	if OrNop(l) != l {
		t.Fatalf("expected the same logger back")
	}
}
