package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEntries_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log.json")
	l := NewIsolatedLogger(path)

	l.Debug("ENGINE", "spawned", nil)
	l.Info("ENGINE", "Engine process finished", map[string]interface{}{"subcommand": "summarize", "exit_code": 0})
	l.Warn("ENGINE", "slow run", map[string]interface{}{"elapsed_ms": 1200})
	l.Error("ENGINE", "Engine invocation failed", map[string]interface{}{"error": "exit status 3"})
	require.NoError(t, l.Sync())

	entries, err := ReadEntries(path, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	messages := make([]string, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, e.Message)
		assert.Equal(t, "ENGINE", e.Module)
		assert.NotEmpty(t, e.Id)
		assert.NotEmpty(t, e.Timestamp)
	}
	assert.Equal(t, []string{"Engine invocation failed", "slow run", "Engine process finished", "spawned"}, messages)

	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, "exit status 3", entries[0].Details["error"])
	assert.Equal(t, "summarize", entries[2].Details["subcommand"])
	assert.EqualValues(t, 0, entries[2].Details["exit_code"])
}

func TestReadEntries_FiltersAndPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log.json")
	l := NewIsolatedLogger(path)
	for _, msg := range []string{"one", "two", "three", "four"} {
		l.Info("APP", msg, nil)
	}
	l.Warn("APP", "careful", nil)
	require.NoError(t, l.Sync())

	warns, err := ReadEntries(path, "WARN", 0, 0)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "careful", warns[0].Message)

	page, err := ReadEntries(path, "INFO", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Message)
	assert.Equal(t, "two", page[1].Message)

	past, err := ReadEntries(path, "INFO", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestReadEntries_SkipsForeignLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.log")
	require.NoError(t, os.WriteFile(path, []byte(
		"plain text line\n"+
			`{"timestamp":"2026-01-01T00:00:00.000Z","level":"INFO","message":"kept","id":"fixed"}`+"\n"), 0o644))

	entries, err := ReadEntries(path, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "fixed", entries[0].Id)
}

func TestReadEntries_MissingFile(t *testing.T) {
	entries, err := ReadEntries(filepath.Join(t.TempDir(), "absent.json"), "", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
