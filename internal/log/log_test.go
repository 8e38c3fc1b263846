package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("trace")
	require.NoError(t, err)
	assert.Equal(t, LevelTrace, lvl)

	lvl, err = ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerWritesModule(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(NewTextHandler(&buf, LevelTrace))

	l.Trace("test", "skipped opcode", "op", 75)
	out := buf.String()
	assert.Contains(t, out, "level=trace")
	assert.Contains(t, out, "module=test")
	assert.Contains(t, out, "op=75")
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(NewTextHandler(&buf, LevelWarn))

	l.Debug("test", "hidden")
	l.Warn("test", "shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestDisableModule(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(NewTextHandler(&buf, LevelDebug))

	DisableModule("quiet")
	defer EnableModule("quiet")
	l.Info("quiet", "dropped")
	l.Info("loud", "kept")
	assert.False(t, strings.Contains(buf.String(), "dropped"))
	assert.True(t, strings.Contains(buf.String(), "kept"))
}

func TestRootDefaultsToDiscard(t *testing.T) {
	assert.False(t, Root().Enabled(t.Context(), LevelError))
}
