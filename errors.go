package packsched

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var (
	// ErrAlreadyStarted is returned by Start and AddProducer once the
	// scheduler has been started.
	ErrAlreadyStarted = errors.New("packsched: scheduler already started")

	// ErrNotStarted is returned by Stop when Start was never called.
	ErrNotStarted = errors.New("packsched: scheduler not started")

	// ErrAlreadyStopped is returned by a second call to Stop.
	ErrAlreadyStopped = errors.New("packsched: scheduler already stopped")

	// ErrNilProducer is returned when AddProducer gets a nil producer.
	ErrNilProducer = errors.New("packsched: producer is nil")

	// ErrNilFactory is returned by Start when no solver factory is set.
	ErrNilFactory = errors.New("packsched: solver factory is nil")

	// ErrProtocolViolation marks a producer that broke its contract, e.g.
	// rejected a returned pack as out of order or duplicated. Producers
	// wrap it in the error they return from SolvedPack.
	ErrProtocolViolation = errors.New("packsched: producer protocol violation")

	// ErrSolverAnomaly marks a solver instance that contradicted itself:
	// it rejected a problem while reporting free capacity, or solved a
	// different number of problems than it was given.
	ErrSolverAnomaly = errors.New("packsched: solver anomaly")

	// ErrSolverUnavailable is returned when the factory failed to produce
	// a usable instance within the acquisition retry policy.
	ErrSolverUnavailable = errors.New("packsched: no usable solver instance")

	// ErrAborted is returned by Stop when the run context was cancelled
	// before every producer finished.
	ErrAborted = errors.New("packsched: run aborted")
)

// fatalRecorder collects the fatal errors of one run.
//
// Cancellation is left to the errgroup; the recorder only keeps every
// error so that Stop reports all of them, not just the first.
type fatalRecorder struct {
	mu  sync.Mutex
	err error
}

func (f *fatalRecorder) record(err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	f.err = multierr.Append(f.err, err)
	f.mu.Unlock()
}

func (f *fatalRecorder) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
