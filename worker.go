package packsched

import (
	"context"
	"fmt"
	"runtime"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/pkg/errors"
)

// worker alternates between filling the shared solver slot and solving the
// instance it detached from it, until no more problems can arrive.
func (s *Scheduler[P, M]) worker(ctx context.Context, id int) error {
	logger := lg.FromContext(ctx).With(lg.String("run", s.runID), lg.Int("worker", id))

	if s.opts.PinWorkers {
		// Never unlocked: the pinned thread exits with the worker instead
		// of going back to the runtime.
		runtime.LockOSThread()
		cpu := id % runtime.NumCPU()
		if err := PinToCPU(cpu); err != nil {
			s.reportInternalError(errors.Wrapf(err, "worker %d: pin to cpu %d", id, cpu))
		}
	}

	logger.Info("worker started")
	solves := 0
	defer func() {
		logger.Info("worker stopped", lg.Int("solves", solves))
	}()

	for {
		job, err := s.fill(ctx)
		if err != nil {
			logger.Error("filling solver failed", lg.Any("error", err))
			return err
		}
		if job == nil {
			return nil
		}
		if err := s.solve(job); err != nil {
			s.intake.abort()
			logger.Error("solving failed", lg.Any("error", err))
			return err
		}
		solves++
	}
}

// fill takes the solver slot and feeds it from the intake queue until the
// instance is full, or the queue is empty and no producer is live.
//
// It returns the detached instance ready to solve, or nil when the worker
// should exit: nothing is left to fill, or the run was aborted.
func (s *Scheduler[P, M]) fill(ctx context.Context) (*solveJob[P], error) {
	slot := &s.slot
	slot.mu.Lock()
	defer slot.mu.Unlock()

	in := &s.intake
	in.mu.Lock()
	for {
		for in.queue.Len() == 0 && in.live > 0 && !in.aborted {
			in.cond.Wait()
		}
		if in.aborted {
			in.mu.Unlock()
			return nil, nil
		}
		if in.queue.Len() == 0 {
			// Every producer stopped: no more problems can arrive, so a
			// partially filled instance is solved as is.
			in.mu.Unlock()
			in.cond.Broadcast()
			job := slot.detach()
			if job != nil {
				s.metrics.AddProblemsSubmitted(int64(job.added))
			}
			return job, nil
		}

		if slot.solver == nil {
			// Only acquire an instance once there is a problem for it.
			in.mu.Unlock()
			inst, err := s.acquireSolver(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil
				}
				// Abort while still holding the slot so that no peer
				// takes it and asks the factory again.
				s.intake.abort()
				return nil, err
			}
			slot.solver = inst
			in.mu.Lock()
			continue
		}

		if err := s.feed(slot, in); err != nil {
			in.aborted = true
			in.mu.Unlock()
			in.cond.Broadcast()
			return nil, err
		}
		if !slot.solver.HasFreeCapacity() {
			job := slot.detach()
			if job == nil {
				// lost its capacity before taking anything; get another
				continue
			}
			in.mu.Unlock()
			s.metrics.AddProblemsSubmitted(int64(job.added))
			return job, nil
		}
	}
}

// feed submits problems one at a time from the head pack of the intake
// queue. Packs whose last problem was submitted move to the processing set.
// Both slot.mu and in.mu must be held.
func (s *Scheduler[P, M]) feed(slot *solverSlot[P], in *intakeQueue[P]) error {
	for slot.solver.HasFreeCapacity() {
		tp, ok := in.queue.Front()
		if !ok {
			return nil
		}
		p, filled, ok := tp.takeNext()
		if !ok {
			panic(fmt.Sprintf("packsched: pack %d/%d in intake has nothing left to submit", tp.producer, tp.seq))
		}
		if !slot.solver.AddProblem(p) {
			return errors.Wrapf(ErrSolverAnomaly,
				"instance rejected a problem while reporting free capacity (%d added)", slot.added)
		}
		slot.record(tp)
		if filled {
			in.queue.Pop()
			s.processing.add(tp)
		}
	}
	return nil
}

// solve runs a privately owned instance and publishes completion to the
// packs it consumed.
func (s *Scheduler[P, M]) solve(job *solveJob[P]) error {
	n := job.solver.Solve()
	s.metrics.IncSolves()
	if n != job.added {
		return errors.Wrapf(ErrSolverAnomaly, "instance solved %d of %d problems", n, job.added)
	}
	for _, c := range job.claims {
		if c.pack.complete(c.n) {
			s.processing.remove(c.pack)
			s.communicators[c.pack.producer].notify()
		}
	}
	return nil
}
