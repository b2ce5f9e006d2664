package loadtest

import "time"

// Submission outcomes.
const (
	outcomeCreated  = "created"
	outcomeReplayed = "replayed"
	outcomeFailed   = "failed"
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	ProgressInterval     = time.Second
	PercentageMultiplier = 100
	MaxListLimit         = 500
)
