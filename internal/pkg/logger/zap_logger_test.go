package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogs(t *testing.T) {
	log := NewIsolatedLogger(filepath.Join(t.TempDir(), "app.log"))

	log.Info("Dispatcher", "first", map[string]interface{}{"note_id": 1})
	log.Warn("Dispatcher", "second", nil)
	log.Info("Retention", "third", nil)
	require.NoError(t, log.Sync())

	all, err := log.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Message)
	assert.Equal(t, "first", all[2].Message)
	assert.EqualValues(t, 1, all[2].NoteId)
	assert.NotEmpty(t, all[0].Id)

	warns, err := log.GetLogs("WARN", 10, 0)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "second", warns[0].Message)

	page, err := log.GetLogs("", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Message)

	empty, err := log.GetLogs("", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetLogs_NoFile(t *testing.T) {
	entries, err := NewNopLogger().GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = NewIsolatedLogger(filepath.Join(t.TempDir(), "missing.log")).GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
