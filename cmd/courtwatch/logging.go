package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const logsDir = "logs"

// setupLogging writes structured logs to stdout and a daily file under logs/.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	writer := io.Writer(os.Stdout)
	if f := openDailyLogFile(); f != nil {
		writer = io.MultiWriter(os.Stdout, f)
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	slog.Info("=== Starting new session ===")
}

func openDailyLogFile() *os.File {
	if err := os.MkdirAll(logsDir, 0750); err != nil {
		slog.Warn("Error creating logs directory", "error", err)
		return nil
	}

	today := time.Now().Format("2006-01-02")
	logFile := filepath.Join(logsDir, today+".log")
	if !isValidLogPath(logFile) {
		slog.Warn("Invalid log file path", "path", logFile)
		return nil
	}

	f, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 - path is validated by isValidLogPath
	if err != nil {
		slog.Warn("Error opening log file", "error", err)
		return nil
	}
	return f
}

// isValidLogPath confines log files to the logs directory.
func isValidLogPath(path string) bool {
	dir, err := filepath.Abs(logsDir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(absPath, dir)
}
