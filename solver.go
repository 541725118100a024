package packsched

import (
	"context"
	"sync"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/pkg/errors"
)

// Solver is an ephemeral, capacity-bounded compute instance.
//
// Problems are added one at a time until HasFreeCapacity reports false.
// Solve computes every added problem in place and returns how many it
// solved. An instance is single use: the scheduler never adds to it after
// Solve and never calls Solve twice.
type Solver[P any] interface {
	HasFreeCapacity() bool
	AddProblem(p P) bool
	Solve() int
}

// SolverFactory creates a fresh solver instance. Capacities may vary
// between instances. Returning an error, a nil instance or an instance
// without capacity counts as a failed acquisition and is retried according
// to Options.Acquire.
type SolverFactory[P any] func() (Solver[P], error)

// claim is a contiguous run of problems one pack gave to one instance.
type claim[P any] struct {
	pack *trackedPack[P]
	n    int
}

// solverSlot is the single shared place where an instance is filled.
// Holding mu is the right to fill it.
type solverSlot[P any] struct {
	mu     sync.Mutex
	solver Solver[P]
	claims []claim[P]
	added  int
}

func (sl *solverSlot[P]) record(tp *trackedPack[P]) {
	sl.added++
	if n := len(sl.claims); n > 0 && sl.claims[n-1].pack == tp {
		sl.claims[n-1].n++
		return
	}
	sl.claims = append(sl.claims, claim[P]{pack: tp, n: 1})
}

// detach hands the filled instance over to the caller and clears the
// slot. An instance that received no problem is dropped unsolved.
func (sl *solverSlot[P]) detach() *solveJob[P] {
	if sl.solver == nil {
		return nil
	}
	job := &solveJob[P]{solver: sl.solver, claims: sl.claims, added: sl.added}
	sl.solver, sl.claims, sl.added = nil, nil, 0
	if job.added == 0 {
		return nil
	}
	return job
}

// solveJob is an instance privately owned by one worker, together with
// the pack slices it received.
type solveJob[P any] struct {
	solver Solver[P]
	claims []claim[P]
	added  int
}

// acquireSolver asks the factory for a usable instance, backing off
// between failed attempts.
func (s *Scheduler[P, M]) acquireSolver(ctx context.Context) (Solver[P], error) {
	pol := s.opts.Acquire
	bo := boff.New(pol.Initial, pol.Max, time.Now().UnixNano())

	var lastErr error
	for attempt := 1; attempt <= pol.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inst, err := s.factory()
		switch {
		case err != nil:
			lastErr = err
		case inst == nil:
			lastErr = errors.New("factory returned no instance")
		case !inst.HasFreeCapacity():
			lastErr = errors.New("factory returned an instance without capacity")
		default:
			s.metrics.IncSolversCreated()
			return inst, nil
		}
		if attempt == pol.Attempts {
			break
		}

		delay := bo.Next()
		s.reportInternalError(errors.Wrapf(lastErr, "solver acquisition attempt %d", attempt))
		lg.FromContext(ctx).Warn("solver acquisition failed; backing off",
			lg.String("run", s.runID),
			lg.Int("attempt", attempt),
			lg.String("sleep", delay.String()),
			lg.Any("error", lastErr),
		)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return nil, ctx.Err()
		}
	}
	return nil, errors.Wrapf(ErrSolverUnavailable, "%d attempts, last: %v", pol.Attempts, lastErr)
}
