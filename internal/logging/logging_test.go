package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Named("processor").Info("processed")
	log.Debug("hidden")
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "processor", entry["logger"])
	assert.Equal(t, "processed", entry["msg"])
}

func TestNew_ConsoleDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Output: &buf})
	require.NoError(t, err)

	log.Debug("conversion failed")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "conversion failed")
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tlav.log")
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Output: &buf, File: path})
	require.NoError(t, err)

	log.Warn("skipped trace")
	log.Info("not written")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"skipped trace"`)
	assert.NotContains(t, string(data), "not written")
	assert.Contains(t, buf.String(), "skipped trace")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.ErrorContains(t, err, "parse log level")

	_, err = New(Options{Format: "xml"})
	assert.ErrorContains(t, err, `unknown log format "xml"`)
}
