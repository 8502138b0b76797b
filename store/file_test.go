package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileLogAppendReadAll(t *testing.T) {
	log, err := NewFileLog(filepath.Join(t.TempDir(), "conv.txt"))
	require.NoError(t, err)

	require.NoError(t, log.Append("hello"))
	require.NoError(t, log.Append("hi there"))

	lines, err := log.ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "hi there"}, lines)

	// ReadAll does not consume entries.
	again, err := log.ReadAll()
	require.NoError(t, err)
	require.Equal(t, lines, again)
}

func TestFileLogReadAllMissingFile(t *testing.T) {
	log, err := NewFileLog(filepath.Join(t.TempDir(), "conv.txt"))
	require.NoError(t, err)

	lines, err := log.ReadAll()
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestFileLogSanitizesNewlines(t *testing.T) {
	log, err := NewFileLog(filepath.Join(t.TempDir(), "conv.txt"))
	require.NoError(t, err)

	require.NoError(t, log.Append("line one\nline two\r\nline three"))

	lines, err := log.ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"line one line two line three"}, lines)
}

func TestFileLogClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.txt")
	log, err := NewFileLog(path)
	require.NoError(t, err)

	require.NoError(t, log.Append("hello"))
	require.NoError(t, log.Clear())

	lines, err := log.ReadAll()
	require.NoError(t, err)
	require.Empty(t, lines)

	// The file itself survives, truncated to zero bytes.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, info.Size())

	require.NoError(t, log.Append("fresh start"))
	lines, err = log.ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"fresh start"}, lines)
}

func TestFileLogCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "conv.txt")
	log, err := NewFileLog(path)
	require.NoError(t, err)

	require.NoError(t, log.Append("hello"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(raw))
}

func TestFileStatusOverwrites(t *testing.T) {
	status, err := NewFileStatus(filepath.Join(t.TempDir(), "status.txt"))
	require.NoError(t, err)

	current, err := status.Get()
	require.NoError(t, err)
	require.Empty(t, current)

	require.NoError(t, status.Set("Processing audio..."))
	require.NoError(t, status.Set("Transcribing audio..."))

	current, err = status.Get()
	require.NoError(t, err)
	require.Equal(t, "Transcribing audio...", current)
}
