package loadgen

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/roster/pkg/logger"
)

// SetupLogging initializes the global logger, teeing output into logFile
// when one is given.
func SetupLogging(logFile, format string) (io.Closer, error) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	if err := logger.Init(logger.WithFormat(format), logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return closer, nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Roster Load Tool
================

Seeds a running roster service with random players, then checks that
listing, ordering, paging and counting agree with local filtering.

Usage:
  go run ./cmd/roster-load [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -players int
        Number of players to create (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -page-size int
        Page size used while reading back (default 7)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Write created players to this JSON file
  -log string
        Also write log output to this file
  -log-format string
        text or json (default "text")
  -cleanup
        Delete created players at the end
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed and verify with default settings
  go run ./cmd/roster-load

  # Larger run that leaves nothing behind
  go run ./cmd/roster-load -players 5000 -workers 16 -cleanup
`)
}
