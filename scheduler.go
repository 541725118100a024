package packsched

import (
	"context"
	"sync"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Scheduler feeds the packs of any number of producers to solver instances
// driven by a pool of workers, and returns every pack to its producer in
// the order the producer supplied it.
//
// Producers are registered with AddProducer before Start. Start launches a
// receiver and a sender per producer plus the workers; Stop waits for all
// of them. The run ends by itself once every producer is exhausted and
// every pack went back.
type Scheduler[P any, M MetricsPolicy] struct {
	factory SolverFactory[P]
	opts    Options
	metrics M
	runID   string

	// lifecycle
	mu      sync.Mutex
	started bool
	stopped bool

	communicators []*communicator[P]

	intake     intakeQueue[P]
	processing processingSet[P]
	slot       solverSlot[P]

	parent    context.Context
	cancel    context.CancelFunc
	stopAbort func() bool
	group     *errgroup.Group
	fatal     fatalRecorder
}

// NewScheduler creates a scheduler with default options and no metrics.
func NewScheduler[P any](factory SolverFactory[P]) *Scheduler[P, *NoopMetrics] {
	return NewSchedulerFromOptions[*NoopMetrics, P](&NoopMetrics{}, factory, Options{})
}

// NewSchedulerFromOptions creates a scheduler reporting to metrics.
func NewSchedulerFromOptions[M MetricsPolicy, P any](metrics M, factory SolverFactory[P], opts Options) *Scheduler[P, M] {
	opts.FillDefaults()
	return &Scheduler[P, M]{
		factory: factory,
		opts:    opts,
		metrics: metrics,
		runID:   uuid.NewString(),
	}
}

// RunID identifies this scheduler in log records.
func (s *Scheduler[P, M]) RunID() string { return s.runID }

// AddProducer registers a producer and returns its numeric identity.
// It must be called before Start.
func (s *Scheduler[P, M]) AddProducer(p Producer[P]) (int, error) {
	if p == nil {
		return -1, ErrNilProducer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return -1, ErrAlreadyStarted
	}
	id := len(s.communicators)
	s.communicators = append(s.communicators, newCommunicator(id, p))
	return id, nil
}

// Start launches the communicators and workers. A non-positive workers
// count falls back to Options.Workers. Cancelling ctx aborts the run.
func (s *Scheduler[P, M]) Start(ctx context.Context, workers int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	if s.factory == nil {
		return ErrNilFactory
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if workers <= 0 {
		workers = s.opts.Workers
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	s.parent, s.cancel, s.group = ctx, cancel, g

	s.intake.init(len(s.communicators))
	s.stopAbort = context.AfterFunc(gctx, s.intake.abort)

	lg.FromContext(ctx).Info("scheduler starting",
		lg.String("run", s.runID),
		lg.Int("producers", len(s.communicators)),
		lg.Int("workers", workers),
	)

	for _, c := range s.communicators {
		c := c
		s.spawn(func() error { return s.receive(gctx, c) })
		s.spawn(func() error { return s.send(gctx, c) })
	}
	for i := 0; i < workers; i++ {
		id := i
		s.spawn(func() error { return s.worker(gctx, id) })
	}
	return nil
}

func (s *Scheduler[P, M]) spawn(fn func() error) {
	s.group.Go(func() error {
		err := fn()
		s.fatal.record(err)
		return err
	})
}

// Stop blocks until every communicator and worker has returned.
//
// It returns nil only if every pack went back to its producer without a
// fatal condition. Otherwise it returns all fatal errors of the run, or
// ErrAborted when the context given to Start was cancelled first.
func (s *Scheduler[P, M]) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	if s.stopped {
		s.mu.Unlock()
		return ErrAlreadyStopped
	}
	s.stopped = true
	s.mu.Unlock()

	_ = s.group.Wait()
	s.stopAbort()
	s.cancel()

	logger := lg.FromContext(s.parent).With(lg.String("run", s.runID))

	if err := s.fatal.Err(); err != nil {
		logger.Error("scheduler stopped with errors", lg.Any("error", err))
		return err
	}
	for _, c := range s.communicators {
		if !c.drained() {
			err := errors.Wrapf(ErrAborted, "producer %d not drained: %v", c.id, s.parent.Err())
			logger.Error("scheduler stopped early", lg.Any("error", err))
			return err
		}
	}
	if n := s.processing.Len(); n != 0 {
		panic(errors.Errorf("packsched: %d packs still processing after every producer drained", n))
	}
	if n := s.intake.Len(); n != 0 {
		panic(errors.Errorf("packsched: %d packs still in intake after every producer drained", n))
	}
	logger.Info("scheduler stopped")
	return nil
}
