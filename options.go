package packsched

import (
	"runtime"
	"time"
)

const (
	defaultAttempts     = 3
	defaultInitialRetry = 200 * time.Millisecond
	defaultMaxRetry     = 5 * time.Second
)

// Options configure a Scheduler.
//
// All zero values are replaced with sensible defaults in FillDefaults.
type Options struct {
	// Workers is the pool size used when Start is called with a
	// non-positive worker count. Defaults to GOMAXPROCS.
	Workers int

	// PinWorkers locks every worker to an OS thread restricted to a
	// single CPU (Linux only).
	PinWorkers bool

	// Acquire controls retries when the solver factory fails to produce a
	// usable instance.
	Acquire RetryPolicy

	// OnInternalError receives non-fatal internal conditions, such as a
	// failed CPU pinning or a retried solver acquisition.
	OnInternalError func(error)
}

func (o *Options) FillDefaults() {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Acquire.Attempts <= 0 {
		o.Acquire.Attempts = defaultAttempts
	}
	if o.Acquire.Initial <= 0 {
		o.Acquire.Initial = defaultInitialRetry
	}
	if o.Acquire.Max <= 0 {
		o.Acquire.Max = defaultMaxRetry
	}
	if o.Acquire.Max < o.Acquire.Initial {
		o.Acquire.Max = o.Acquire.Initial
	}
}
