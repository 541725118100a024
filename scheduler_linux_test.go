//go:build linux

package packsched_test

import (
	"math/rand"
	"runtime"
	"sync/atomic"
	"testing"

	ps "github.com/azargarov/packsched"
	"github.com/azargarov/packsched/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinnedWorkersCompleteRun(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := sim.NewProducer(0, sim.RandomSizes(rng, 20, 4))
	b := sim.NewProducer(1000, sim.RandomSizes(rng, 20, 4))

	// A restricted cpuset may refuse a pin; that is reported, not fatal.
	var pinFailures atomic.Int32
	opts := newTestOptions(3)
	opts.PinWorkers = true
	opts.OnInternalError = func(error) { pinFailures.Add(1) }

	f := sim.NewFactory(sim.WithRandomCapacity(11, 1, 5))
	s := ps.NewSchedulerFromOptions[*ps.NoopMetrics, *sim.Problem](&ps.NoopMetrics{}, f.New, opts)

	require.NoError(t, run(t, s, 3, a, b))
	assert.True(t, a.AllProcessed())
	assert.True(t, b.AllProcessed())
	assert.LessOrEqual(t, pinFailures.Load(), int32(3))
}

func TestPinToCPU(t *testing.T) {
	errc := make(chan error, 1)
	go func() {
		// the locked thread is discarded when this goroutine exits
		runtime.LockOSThread()
		errc <- ps.PinToCPU(0)
	}()
	if err := <-errc; err != nil {
		t.Skipf("cpu 0 not in this process's cpuset: %v", err)
	}
}
