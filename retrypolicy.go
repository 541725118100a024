package packsched

import (
	"time"
)

// RetryPolicy describes how many times and how often the scheduler asks the
// solver factory for a usable instance before giving up.
// Zero values are treated as "use defaults".
type RetryPolicy struct {
	// Attempts is the maximum number of factory calls per acquisition.
	Attempts int

	// Initial is the first backoff duration.
	Initial time.Duration

	// Max is the cap for backoff duration.
	Max time.Duration
}

// GetDefaultRP returns a pointer to the default acquisition retry policy.
// Useful in tests or when building Options with the same defaults.
func GetDefaultRP() *RetryPolicy {
	rp := RetryPolicy{
		Attempts: defaultAttempts,
		Initial:  defaultInitialRetry,
		Max:      defaultMaxRetry,
	}
	return &rp
}
