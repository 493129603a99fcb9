package cli

import (
	"io"
	"log/slog"
	"os"
)

// DebugLogName is the log file written when --logs is set.
const DebugLogName = "mictune-debug.log"

// SetupLogger installs the default slog logger. With debug enabled it
// appends to path at debug level; otherwise logs are discarded so the
// terminal UI stays clean. The returned func closes the file.
func SetupLogger(debug bool, path string) (func(), error) {
	if !debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() {}, nil
	}
	if path == "" {
		path = DebugLogName
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return func() {}, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return func() { _ = f.Close() }, nil
}
