// Package packsched batches problems from several producers into
// fixed-capacity solver instances and returns each producer's packs,
// solved, in the order it handed them out.
//
// Design goals
//
// The package is designed around the following principles:
//
//   - Never solve an instance with free capacity while more problems may arrive
//   - Return packs to their producer strictly in arrival order
//   - Keep at most one instance filling at any time
//   - Terminate by itself once every producer is exhausted
//
// Solver instances are assumed to be expensive to create and to amortize
// well over many problems, so packsched optimizes for full instances
// rather than for the latency of a single pack.
//
// Architecture overview
//
// A run is composed of three loosely coupled layers:
//
//   1. Communicators
//      One receiving and one sending goroutine per producer. The receiver
//      pulls packs with WaitForPack into the producer's ordered buffer and
//      the shared intake queue. The sender hands solved packs back with
//      SolvedPack, stopping at the first pack that is not yet solved.
//
//   2. Workers
//      Workers take turns owning the single solver slot. The owner
//      acquires an instance from the SolverFactory on demand, feeds it
//      problems from the head of the intake queue, and once the instance
//      is full detaches it and solves it privately while the next worker
//      takes over the slot.
//
//   3. Pack lifecycle
//      Every pack moves Unfilled -> Partial -> Filled -> Solved. A pack
//      may be split across several instances; it is Solved only when every
//      one of its problems was solved.
//
// Termination
//
// When the last producer reports exhaustion and the intake queue is
// empty, the slot owner solves whatever its instance holds, even if not
// full. An instance that never received a problem is dropped unsolved.
// Stop waits for every goroutine and then checks that no pack is left
// behind.
//
// Error handling
//
// The scheduler distinguishes between three classes of errors:
//
//   - Usage errors: returned directly by AddProducer, Start and Stop
//   - Fatal errors: producer failures, solver anomalies and exhausted
//     acquisition retries; they abort the run and are returned by Stop
//   - Internal errors: recoverable conditions reported to
//     Options.OnInternalError, such as a failed CPU pinning
//
// Broken internal invariants panic.
//
// CPU pinning
//
// On Linux, workers may optionally be pinned to specific CPUs.
// When enabled, workers are locked to OS threads and restricted
// to run on a single CPU core.
//
// Solvers are often CPU-bound, so pinning can improve cache locality
// during Solve, but is not universally beneficial.
package packsched
