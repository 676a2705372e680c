package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", JSONFormat, &buf)
	l.Debug().Str("project", "struts").Msg("analysis done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "struts", entry["project"])
	assert.Equal(t, "analysis done", entry["message"])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", JSONFormat, &buf)
	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())
	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	l := New("verbose", ConsoleFormat, &bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())

	l = New("", ConsoleFormat, &bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", ConsoleFormat, &buf)
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "INF")
}
