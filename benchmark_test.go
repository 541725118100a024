package packsched_test

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"testing"
	"time"

	ps "github.com/azargarov/packsched"
	"github.com/azargarov/packsched/internal/sim"
)

// BenchmarkRun measures a complete run: every producer drained through
// the scheduler and returned, for different worker and producer counts.
func BenchmarkRun(b *testing.B) {
	const packsPerProducer = 2_000
	workerCounts := []int{1, 4, runtime.NumCPU()}
	producerCounts := []int{1, 8, 32}

	for _, workers := range workerCounts {
		for _, producers := range producerCounts {
			name := fmt.Sprintf("%d_workers/%d_producers", workers, producers)
			b.Run(name, func(b *testing.B) {
				b.ReportAllocs()
				problems := 0
				start := time.Now()

				for i := 0; i < b.N; i++ {
					rng := rand.New(rand.NewSource(int64(i)))
					args := make([]ps.Producer[*sim.Problem], producers)
					for p := range args {
						sp := sim.NewProducer(p*packsPerProducer*8, sim.RandomSizes(rng, packsPerProducer, 4))
						problems += sp.Problems()
						args[p] = sp
					}
					f := sim.NewFactory(sim.WithRandomCapacity(int64(i), 8, 64))
					s := ps.NewSchedulerFromOptions[*ps.NoopMetrics, *sim.Problem](
						&ps.NoopMetrics{}, f.New, ps.Options{Workers: workers},
					)
					for _, p := range args {
						if _, err := s.AddProducer(p); err != nil {
							b.Fatal(err)
						}
					}
					if err := s.Start(context.Background(), workers); err != nil {
						b.Fatal(err)
					}
					if err := s.Stop(); err != nil {
						b.Fatal(err)
					}
				}

				elapsed := time.Since(start).Seconds()
				b.ReportMetric(float64(problems)/elapsed, "problems/s")
			})
		}
	}
}
