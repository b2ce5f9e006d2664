package loadtest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/courtquote/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends log output to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "loadtest_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the load test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Court Quote Load Test
=====================

Submits concurrent quotation requests and checks that every created
quotation has a unique, well formed number and a consistent total.

Usage:
  go run ./cmd/loadtest [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -n int
        Number of quotation requests to submit (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -legacy int
        Percentage of requests sent in the legacy shape (default 20)
  -replay int
        Percentage of requests resubmitted with the same Idempotency-Key (default 10)
  -output string
        Output file for created quotations (default: quotations_TIMESTAMP.json)
  -log string
        Log file for test output (default: loadtest_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/loadtest -n 5000 -workers 32
  go run ./cmd/loadtest -legacy 50 -replay 0 -verbose
`)
}
