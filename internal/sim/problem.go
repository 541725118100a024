// Package sim provides simulated producers and solvers for exercising the
// scheduler: deterministic pack plans, order-checking producers and a
// factory of capacity-bounded solver instances.
package sim

import (
	"sync/atomic"

	"github.com/azargarov/packsched"
)

// Problem is a toy problem: its result is the sum of Values.
type Problem struct {
	ID     int   `json:"id"`
	Values []int `json:"values"`
	Result int   `json:"result"`

	// writes counts how many times a solver wrote Result.
	writes atomic.Int32
}

// Compute writes the result slot.
func (p *Problem) Compute() {
	sum := 0
	for _, v := range p.Values {
		sum += v
	}
	p.Result = sum
	p.writes.Add(1)
}

// Expected returns the result Compute should have written.
func (p *Problem) Expected() int {
	sum := 0
	for _, v := range p.Values {
		sum += v
	}
	return sum
}

// Writes reports how many times the result slot was written.
func (p *Problem) Writes() int32 { return p.writes.Load() }

// Pack is the pack type the simulation works with.
type Pack = packsched.Pack[*Problem]

// NewPack builds a pack of n problems with consecutive ids starting at
// firstID. Problem i holds the values [id, id+1, id+2].
func NewPack(firstID, n int) *Pack {
	pack := &Pack{Problems: make([]*Problem, n)}
	for i := range pack.Problems {
		id := firstID + i
		pack.Problems[i] = &Problem{ID: id, Values: []int{id, id + 1, id + 2}}
	}
	return pack
}
