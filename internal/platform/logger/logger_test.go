package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(l Logger) {
	l.(*StdLogger).now = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }
}

func TestStdLogger_TextIsSortedAndFiltered(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Format: FormatText, App: "parish-calendar", Out: &buf})
	fixedClock(l)

	l.Info("dropped", nil)
	l.Warn("event skipped", map[string]any{"event_id": "42", "": "ignored"})

	out := strings.TrimSpace(buf.String())
	assert.Equal(t, "app=parish-calendar event_id=42 level=warn msg=event skipped ts=2025-06-01T08:00:00Z", out)
}

func TestStdLogger_WithMergesFieldsAsJSON(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Level: Debug, Format: FormatJSON, Out: &buf})
	fixedClock(base)

	l := base.With(map[string]any{"request_id": "abc"})
	l.Error("storage failed", map[string]any{"error": "boom"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "error", entry["level"])
}

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel(" DEBUG "))
	assert.Equal(t, Warn, ParseLevel("warning"))
	assert.Equal(t, Info, ParseLevel("nope"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatText, ParseFormat(""))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().With(map[string]any{"k": "v"}).Error("nothing", nil)
	})
}
