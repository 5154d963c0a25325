package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, charmlog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, charmlog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, charmlog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, charmlog.InfoLevel, ParseLevel("bogus"))
}

func TestNew(t *testing.T) {
	t.Run("Should filter below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Level: "warn", Output: &buf})
		l.Info("hidden")
		l.Warn("shown", "rule", "rule1")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
		assert.Contains(t, buf.String(), "rule1")
	})

	t.Run("Should emit JSON when enabled", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Level: "info", Output: &buf, JSON: true})
		l.Info("rule finished", "rows", 3)

		var m map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
		assert.Equal(t, "rule finished", m["msg"])
		assert.EqualValues(t, 3, m["rows"])
	})

	t.Run("Should replace the package default", func(t *testing.T) {
		var buf bytes.Buffer
		prev := Default()
		defer func() { defaultLogger = prev }()

		Init(&Config{Level: "debug", Output: &buf})
		Debug("debug line")
		Info("listening", "addr", ":8080")
		Warn("report has no rows", "rule", "rule2")
		assert.Contains(t, buf.String(), "debug line")
		assert.Contains(t, buf.String(), ":8080")
		assert.Contains(t, buf.String(), "report has no rows")
	})
}
