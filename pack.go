package packsched

import (
	"fmt"
	"sync"
)

// Pack is an ordered batch of problems supplied by a producer.
//
// The scheduler never copies a Pack: the pointer handed out by
// Producer.WaitForPack is the one given back to Producer.SolvedPack,
// with every problem computed in place by some solver instance.
type Pack[P any] struct {
	Problems []P
}

// Len returns the number of problems in the pack.
func (p *Pack[P]) Len() int { return len(p.Problems) }

// PackState is the fill/solve state of a pack inside the scheduler.
type PackState uint8

const (
	// Unfilled: no problem has been submitted to a solver yet.
	Unfilled PackState = iota

	// Partial: some, but not all, problems were submitted.
	Partial

	// Filled: every problem was submitted; some may still be computing.
	Filled

	// Solved: every problem was computed.
	Solved
)

func (s PackState) String() string {
	switch s {
	case Unfilled:
		return "Unfilled"
	case Partial:
		return "Partial"
	case Filled:
		return "Filled"
	case Solved:
		return "Solved"
	default:
		return "Unknown"
	}
}

// trackedPack is the scheduler's bookkeeping around a producer pack.
//
// cursor counts problems handed to solvers, computed counts problems whose
// solver instance returned from Solve. A pack may be spread over several
// instances, so it becomes Solved only when computed reaches the length,
// not when the instance that took its last problem finishes.
type trackedPack[P any] struct {
	pack     *Pack[P]
	producer int
	seq      uint64

	mu       sync.Mutex
	cursor   int
	computed int
	phase    PackState
}

func newTrackedPack[P any](pack *Pack[P], producer int, seq uint64) *trackedPack[P] {
	tp := &trackedPack[P]{
		pack:     pack,
		producer: producer,
		seq:      seq,
	}
	if pack.Len() == 0 {
		tp.phase = Solved
	}
	return tp
}

// takeNext hands out the problem at the fill cursor and advances it. ok is
// false when nothing is left to submit; filled reports that this call
// submitted the pack's last problem.
func (tp *trackedPack[P]) takeNext() (p P, filled, ok bool) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if tp.cursor >= tp.pack.Len() {
		return p, false, false
	}
	p = tp.pack.Problems[tp.cursor]
	tp.cursor++

	if tp.cursor == tp.pack.Len() {
		tp.phase = Filled
		return p, true, true
	}
	tp.phase = Partial
	return p, false, true
}

// complete records n submitted problems as computed and reports whether the
// pack transitioned to Solved.
func (tp *trackedPack[P]) complete(n int) bool {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if tp.phase == Solved {
		panic(fmt.Sprintf("packsched: pack %d/%d completed after it was solved", tp.producer, tp.seq))
	}
	tp.computed += n
	if tp.computed > tp.cursor {
		panic(fmt.Sprintf("packsched: pack %d/%d computed %d problems but only %d were submitted",
			tp.producer, tp.seq, tp.computed, tp.cursor))
	}
	if tp.computed < tp.pack.Len() {
		return false
	}
	if tp.phase != Filled {
		panic(fmt.Sprintf("packsched: pack %d/%d solved while %s", tp.producer, tp.seq, tp.phase))
	}
	tp.phase = Solved
	return true
}

func (tp *trackedPack[P]) state() PackState {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.phase
}

func (tp *trackedPack[P]) solved() bool { return tp.state() == Solved }
