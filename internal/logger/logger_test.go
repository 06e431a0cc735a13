package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		wantInfo bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(&buf, tt.verbose)
			log.Info("fetching history")
			log.Warn("message too long")

			if got := strings.Contains(buf.String(), "fetching history"); got != tt.wantInfo {
				t.Errorf("info visible = %v, want %v\n%s", got, tt.wantInfo, buf.String())
			}
			if !strings.Contains(buf.String(), "message too long") {
				t.Errorf("expected warning in output, got %q", buf.String())
			}
		})
	}
}

func TestWithRunID(t *testing.T) {
	var buf bytes.Buffer
	log := WithRunID(NewWithWriter(&buf, true), "abc-123")
	log.Info("run started")
	if !strings.Contains(buf.String(), "run_id=abc-123") {
		t.Errorf("expected run_id attribute, got %q", buf.String())
	}
}

func TestNew(t *testing.T) {
	if New(false) == nil || Discard() == nil {
		t.Fatal("expected non-nil logger")
	}
}
