package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	SetVerbose(false)
	SetFormat(FormatText)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Equal(t, "level=DEBUG msg=\"test message arg\"\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("info message")
	Section("Ingest")
	Event("done", "chunks", 3)

	assert.Zero(t, buf.Len(), "expected no output when verbose is disabled")
}

func TestWarn_AlwaysEmitted(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("skipped %s", "a.txt")

	assert.Equal(t, "level=WARN msg=\"skipped a.txt\"\n", buf.String())
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Chunking")

	assert.Equal(t, "level=INFO msg=section name=Chunking\n", buf.String())
}

func TestInfo_NoArgsKeepsPercent(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Info("100% done")

	assert.Contains(t, buf.String(), "100% done")
}

func TestEvent_JSON(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat(FormatJSON)
	SetVerbose(true)

	Event("pipeline complete", "run_id", "abc", "chunks", 12)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "pipeline complete", record["msg"])
	assert.Equal(t, "abc", record["run_id"])
	assert.Equal(t, float64(12), record["chunks"])
	assert.Contains(t, record, "time")
}

func TestSetFormat_UnknownFallsBackToText(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat(Format("xml"))

	Warn("careful")

	assert.Equal(t, "level=WARN msg=careful\n", buf.String())
}
