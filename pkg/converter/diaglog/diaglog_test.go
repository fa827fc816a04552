package diaglog_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/derhami/Converterz/pkg/converter/diaglog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesDirectoryAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	l, err := diaglog.Open(dir, "converter_log.txt", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	assert.Equal(t, filepath.Join(dir, "converter_log.txt"), l.Path())
	assert.FileExists(t, l.Path())
}

func TestCleanup_RemovesFileAndReopensOnWrite(t *testing.T) {
	l, err := diaglog.Open(t.TempDir(), "converter_log.txt", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	logger := slog.New(l.Handler(slog.LevelInfo))
	logger.Info("first run", "n", 1)
	assert.FileExists(t, l.Path())

	require.NoError(t, l.Cleanup())
	assert.NoFileExists(t, l.Path())

	// Cleanup twice in a row is fine.
	require.NoError(t, l.Cleanup())

	logger.Error("second run failed", "n", 2)
	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "second run failed")
	assert.NotContains(t, string(data), "first run", "history must not survive a cleanup")
}

func TestCleanup_RetainKeepsFile(t *testing.T) {
	l, err := diaglog.Open(t.TempDir(), "converter_log.txt", true)
	require.NoError(t, err)

	slog.New(l.Handler(slog.LevelInfo)).Info("kept")
	require.NoError(t, l.Cleanup())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
	require.NoError(t, l.Close())
	assert.FileExists(t, l.Path())
}

func TestHandler_RespectsLevel(t *testing.T) {
	l, err := diaglog.Open(t.TempDir(), "converter_log.txt", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	logger := slog.New(l.Handler(slog.LevelInfo))
	logger.Debug("hidden detail")
	logger.Info("visible")

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible")
	assert.NotContains(t, string(data), "hidden detail")
}

func TestWrite_AfterClose(t *testing.T) {
	l, err := diaglog.Open(t.TempDir(), "converter_log.txt", false)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = l.Write([]byte("late"))
	assert.Error(t, err)
	assert.NoFileExists(t, l.Path())
}
