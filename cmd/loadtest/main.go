package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/courtquote/internal/loadtest"
)

// Default configuration constants.
const (
	defaultNumQuotations = 1000
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultLegacyPercent = 20
	defaultReplayPercent = 10
	defaultTimeout       = 30 * time.Second
	defaultTestTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8080", "Base URL of the service")
		num        = flag.Int("n", defaultNumQuotations, "Number of quotation requests to submit")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		legacy     = flag.Int("legacy", defaultLegacyPercent, "Percentage of requests in the legacy shape")
		replay     = flag.Int("replay", defaultReplayPercent, "Percentage of requests replayed with the same Idempotency-Key")
		outputFile = flag.String("output", "", "Output file for created quotations (default: quotations_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for test output (default: loadtest_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	closer, err := loadtest.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &loadtest.Config{
		BaseURL:       *baseURL,
		NumQuotations: *num,
		Workers:       max(*workers, 1),
		Timeout:       *timeout,
		LegacyPercent: *legacy,
		ReplayPercent: *replay,
		OutputFile:    *outputFile,
		LogFile:       *logFile,
		Verbose:       *verbose,
	}

	if err := loadtest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		closer.Close()
		os.Exit(1)
	}
}
