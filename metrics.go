package packsched

import (
	"sync/atomic"
)

// MetricsPolicy defines hooks used by the scheduler to report intake,
// solver and return activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {

	// IncPacksReceived increments the counter of packs taken from producers.
	IncPacksReceived()

	// IncPacksReturned increments the counter of packs handed back to
	// producers.
	IncPacksReturned()

	// IncSolversCreated increments the counter of usable solver instances
	// obtained from the factory.
	IncSolversCreated()

	// IncSolves increments the counter of Solve invocations.
	IncSolves()

	// AddProblemsSubmitted adds n to the counter of problems passed to
	// solver instances.
	AddProblemsSubmitted(n int64)
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	received atomic.Uint64
	returned atomic.Uint64

	_ [48]byte // padding to avoid false sharing

	solvers   atomic.Uint64
	solves    atomic.Uint64
	submitted atomic.Int64
}

// PacksReceived returns the number of packs taken from producers.
func (m *AtomicMetrics) PacksReceived() uint64 { return m.received.Load() }

// PacksReturned returns the number of packs handed back to producers.
func (m *AtomicMetrics) PacksReturned() uint64 { return m.returned.Load() }

// SolversCreated returns the number of solver instances acquired.
func (m *AtomicMetrics) SolversCreated() uint64 { return m.solvers.Load() }

// Solves returns the number of Solve invocations.
func (m *AtomicMetrics) Solves() uint64 { return m.solves.Load() }

// ProblemsSubmitted returns the number of problems passed to solvers.
func (m *AtomicMetrics) ProblemsSubmitted() int64 { return m.submitted.Load() }

func (m *AtomicMetrics) IncPacksReceived()            { m.received.Add(1) }
func (m *AtomicMetrics) IncPacksReturned()            { m.returned.Add(1) }
func (m *AtomicMetrics) IncSolversCreated()           { m.solvers.Add(1) }
func (m *AtomicMetrics) IncSolves()                   { m.solves.Add(1) }
func (m *AtomicMetrics) AddProblemsSubmitted(n int64) { m.submitted.Add(n) }

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
//
// It can be used when metrics collection is disabled and
// zero overhead is desired.
type NoopMetrics struct{}

func (m *NoopMetrics) IncPacksReceived()            {}
func (m *NoopMetrics) IncPacksReturned()            {}
func (m *NoopMetrics) IncSolversCreated()           {}
func (m *NoopMetrics) IncSolves()                   {}
func (m *NoopMetrics) AddProblemsSubmitted(n int64) {}
