package server

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupLogging(t *testing.T) {
	t.Setenv("AIR_RESTART_COUNT", "1")
	dir := filepath.Join(t.TempDir(), "logs")

	log, f, err := SetupLogging(dir, "warn")
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("sample dropped", "bpm", 42)
	require.NoError(t, f.Close())

	b, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	require.NotContains(t, string(b), "hidden")
	require.Contains(t, string(b), "sample dropped")
	require.Contains(t, string(b), "bpm=42")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseLevel("warning"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel("whatever"))
}
