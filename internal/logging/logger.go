// Package logging configures the process-wide logrus logger for the
// service. The TUI writes to the logbook instead; structured logs would
// tear up the alternate screen.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Setup applies the shared logrus configuration. DEBUG=1 in the
// environment enables debug-level output.
func Setup() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
}

// TeeToFile mirrors log output into a file under logsDir so failures
// survive the terminal session. Returns a closer for the file handle.
func TeeToFile(logsDir, name string) (io.Closer, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logsDir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return f, nil
}
