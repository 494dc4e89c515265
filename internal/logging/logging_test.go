package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug", "json")
	log.Debug().Str("stage", "timing").Msg("allocated")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON line, got %q: %v", buf.String(), err)
	}
	if entry["stage"] != "timing" || entry["level"] != "debug" {
		t.Errorf("Unexpected entry %v", entry)
	}
}

func TestNewWriterLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn", "json")
	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("Info should be filtered at warn level, got %q", buf.String())
	}

	buf.Reset()
	log = NewWriter(&buf, "nonsense", "pretty")
	log.Info().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("Unknown level should fall back to info, got %q", buf.String())
	}
}
