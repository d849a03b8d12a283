package server

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// SetupLogging returns a logger writing to stdout and dir/app.log. The caller closes the file.
func SetupLogging(dir, level string) (*slog.Logger, *os.File, error) {
	// Create logs directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, err
	}

	logFileName := filepath.Join(dir, "app.log")
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer
	if os.Getenv("AIR_RESTART_COUNT") != "" {
		// air already captures stdout
		w = logFile
	} else {
		w = io.MultiWriter(os.Stdout, logFile)
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      parseLevel(level),
		TimeFormat: time.DateTime,
		AddSource:  true,
		NoColor:    true,
	})
	return slog.New(handler), logFile, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
