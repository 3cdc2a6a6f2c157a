package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New builds a logger that writes to stderr and appends to the given log
// file. The returned closer flushes the file handle.
func New(logFile string) (*log.Logger, func() error, error) {
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening log file %s: %w", logFile, err)
	}

	logger := log.NewWithOptions(io.MultiWriter(os.Stderr, f), log.Options{
		ReportTimestamp: true,
	})
	return logger, f.Close, nil
}
