package packsched_test

import (
	"context"
	"testing"
	"time"

	ps "github.com/azargarov/packsched"
	"github.com/azargarov/packsched/internal/sim"
)

const stopTimeout = 10 * time.Second

var fastAcquire = ps.RetryPolicy{Attempts: 3, Initial: time.Millisecond, Max: 5 * time.Millisecond}

func newTestOptions(workers int) ps.Options {
	return ps.Options{
		Workers: workers,
		Acquire: fastAcquire,
	}
}

func newTestScheduler(t *testing.T, f *sim.Factory, workers int) (*ps.Scheduler[*sim.Problem, *ps.AtomicMetrics], *ps.AtomicMetrics) {
	t.Helper()

	m := &ps.AtomicMetrics{}
	s := ps.NewSchedulerFromOptions[*ps.AtomicMetrics, *sim.Problem](m, f.New, newTestOptions(workers))
	return s, m
}

// run registers producers, starts the scheduler and waits for Stop,
// failing the test if the run does not terminate.
func run[M ps.MetricsPolicy](t *testing.T, s *ps.Scheduler[*sim.Problem, M], workers int, producers ...ps.Producer[*sim.Problem]) error {
	t.Helper()

	for _, p := range producers {
		if _, err := s.AddProducer(p); err != nil {
			t.Fatalf("add producer: %v", err)
		}
	}
	if err := s.Start(context.Background(), workers); err != nil {
		t.Fatalf("start: %v", err)
	}
	return stopWithin(t, s, stopTimeout)
}

func stopWithin[M ps.MetricsPolicy](t *testing.T, s *ps.Scheduler[*sim.Problem, M], timeout time.Duration) error {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- s.Stop() }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		t.Fatal("scheduler did not stop; deadlock?")
		return nil
	}
}

// usedInstances filters out instances that never received a problem.
func usedInstances(f *sim.Factory) []*sim.Instance {
	var out []*sim.Instance
	for _, inst := range f.Instances() {
		if len(inst.ProblemIDs()) > 0 {
			out = append(out, inst)
		}
	}
	return out
}

func totalProblems(producers ...*sim.Producer) int {
	n := 0
	for _, p := range producers {
		n += p.Problems()
	}
	return n
}
