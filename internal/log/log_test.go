package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestFilterDropsBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	h := NewHelper(NewFilter(NewStdLogger(&buf), FilterLevel(LevelWarn)))

	h.Debug("should be dropped")
	h.Infof("also dropped %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("buf = %q, want empty after sub-threshold logs", buf.String())
	}

	h.Warnf("kept %d", 2)
	if !strings.Contains(buf.String(), "kept 2") {
		t.Fatalf("buf = %q, want it to contain %q", buf.String(), "kept 2")
	}
}

func TestNilHelperIsSafe(t *testing.T) {
	var h *Helper
	h.Debug("must not panic")
	h.Errorf("must not panic %d", 1)
}

func TestDefaultFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	h := Default(&buf, LevelError)
	h.Warn("dropped")
	if buf.Len() != 0 {
		t.Fatalf("buf = %q, want empty (Warn below LevelError)", buf.String())
	}
	h.Error("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("buf = %q, want it to contain %q", buf.String(), "kept")
	}
}
