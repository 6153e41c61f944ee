package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil); SetLevel("info") })

	SetLevel("warn")
	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")

	SetLevel("bogus")
	Infof("back to info %d", 3)
	assert.Contains(t, buf.String(), "back to info 3")
}

func TestParseLevel(t *testing.T) {
	lv, ok := ParseLevel(" Warning ")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, lv)

	lv, ok = ParseLevel("")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelInfo, lv)

	lv, ok = ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, lv)
}

func TestSectionTagsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	Section("startup", []string{"api: :8088", "  ", "journal: disabled"})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Contains(t, line, "section=startup")
	}
	assert.Contains(t, lines[1], `msg="api: :8088"`)
}

func TestPayloadDump(t *testing.T) {
	var buf bytes.Buffer
	SetPayloadWriter(&buf)
	t.Cleanup(func() { SetPayloadWriter(nil); EnablePayloadDump(false) })

	LogPredictRequest("t1", "/predict-all", `{"text":"hi"}`)
	assert.Empty(t, buf.String(), "request bodies are only dumped when enabled")

	EnablePayloadDump(true)
	LogPredictRequest("t1", "/predict-all", `{"text":"hi"}`)
	LogPredictResponse("t1", "/predict-all", 200, `{"imdb":{}}`)
	out := buf.String()
	assert.Contains(t, out, "[PREDICT][request][t1][/predict-all]")
	assert.Contains(t, out, "--- RAW ---")
	assert.Contains(t, out, "200")
}
