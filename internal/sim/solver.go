package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/azargarov/packsched"
	"github.com/pkg/errors"
)

// ErrFactoryDown is returned by Factory.New while injected failures last.
var ErrFactoryDown = errors.New("sim: solver factory unavailable")

// Instance is a simulated solver instance with a fixed capacity.
type Instance struct {
	index    int
	capacity int
	delay    time.Duration

	mu       sync.Mutex
	problems []*Problem
	solved   bool
	full     bool
	solves   int
}

func (in *Instance) HasFreeCapacity() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return !in.solved && len(in.problems) < in.capacity
}

func (in *Instance) AddProblem(p *Problem) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.solved || len(in.problems) >= in.capacity {
		return false
	}
	in.problems = append(in.problems, p)
	return true
}

// Solve computes every added problem. A second call solves nothing and
// returns 0.
func (in *Instance) Solve() int {
	in.mu.Lock()
	in.solves++
	if in.solved {
		in.mu.Unlock()
		return 0
	}
	in.solved = true
	in.full = len(in.problems) == in.capacity
	problems := in.problems
	in.mu.Unlock()

	if in.delay > 0 {
		time.Sleep(in.delay)
	}
	for _, p := range problems {
		p.Compute()
	}
	return len(problems)
}

// Index is the creation order of the instance.
func (in *Instance) Index() int { return in.index }

// Capacity is the instance's fixed capacity.
func (in *Instance) Capacity() int { return in.capacity }

// ProblemIDs returns the ids of the problems added, in order.
func (in *Instance) ProblemIDs() []int {
	in.mu.Lock()
	defer in.mu.Unlock()
	ids := make([]int, len(in.problems))
	for i, p := range in.problems {
		ids[i] = p.ID
	}
	return ids
}

// Solved reports whether Solve was called.
func (in *Instance) Solved() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.solved
}

// FullOnSolve reports whether the instance was at capacity when solved.
func (in *Instance) FullOnSolve() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.full
}

// SolveCalls returns how many times Solve was called.
func (in *Instance) SolveCalls() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.solves
}

// Factory creates Instances. Capacities are taken from a fixed list first,
// then drawn from a seeded range. An optional budget caps the total
// capacity ever handed out; once spent, the factory keeps returning
// instances without capacity, like a solver library that only creates a
// limited number of useful instances.
type Factory struct {
	mu         sync.Mutex
	capacities []int
	rng        *rand.Rand
	minCap     int
	maxCap     int
	budget     int
	failures   int
	solveDelay func(index int) time.Duration
	instances  []*Instance
	calls      int
}

// FactoryOption customizes a Factory.
type FactoryOption func(*Factory)

// WithCapacities sets the capacities of the first instances, in order.
func WithCapacities(caps ...int) FactoryOption {
	return func(f *Factory) { f.capacities = append([]int(nil), caps...) }
}

// WithRandomCapacity draws capacities in [lo, hi] once the fixed list is
// used up.
func WithRandomCapacity(seed int64, lo, hi int) FactoryOption {
	return func(f *Factory) {
		f.rng = rand.New(rand.NewSource(seed))
		f.minCap, f.maxCap = lo, hi
	}
}

// WithBudget caps the total capacity over all instances.
func WithBudget(total int) FactoryOption {
	return func(f *Factory) { f.budget = total }
}

// WithFailures makes the first n calls to New fail.
func WithFailures(n int) FactoryOption {
	return func(f *Factory) { f.failures = n }
}

// WithSolveDelay makes instance i sleep fn(i) inside Solve.
func WithSolveDelay(fn func(index int) time.Duration) FactoryOption {
	return func(f *Factory) { f.solveDelay = fn }
}

// NewFactory creates a factory. Without options every instance has
// capacity 4 and the budget is unlimited.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{minCap: 4, maxCap: 4, budget: -1}
	for _, o := range opts {
		o(f)
	}
	return f
}

// New satisfies packsched.SolverFactory.
func (f *Factory) New() (packsched.Solver[*Problem], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, ErrFactoryDown
	}

	capacity := f.nextCapacity()
	if f.budget >= 0 {
		if capacity > f.budget {
			capacity = f.budget
		}
		f.budget -= capacity
	}
	inst := &Instance{index: len(f.instances), capacity: capacity}
	if f.solveDelay != nil {
		inst.delay = f.solveDelay(inst.index)
	}
	f.instances = append(f.instances, inst)
	return inst, nil
}

func (f *Factory) nextCapacity() int {
	if n := len(f.instances); n < len(f.capacities) {
		return f.capacities[n]
	}
	if f.rng == nil || f.maxCap <= f.minCap {
		return f.minCap
	}
	return f.minCap + f.rng.Intn(f.maxCap-f.minCap+1)
}

// Instances returns every instance created so far, in creation order.
func (f *Factory) Instances() []*Instance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Instance(nil), f.instances...)
}

// Calls returns how many times New was called.
func (f *Factory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
