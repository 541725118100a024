package packsched

import (
	"fmt"
	"sync"
)

// intakeQueue holds packs that still have problems not submitted to any
// solver, in arrival order.
//
// The live-producer count shares the queue's mutex: a worker suspends only
// while the queue is empty and some producer is live, and both halves of
// that predicate must be read under the lock the condition variable uses.
type intakeQueue[P any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   *packQueue[P]
	live    int
	aborted bool
}

func (in *intakeQueue[P]) init(live int) {
	in.queue = newPackQueue[P](initialQueueCapacity)
	in.cond = sync.NewCond(&in.mu)
	in.live = live
}

// push appends a pack and wakes the filling worker, if it is suspended.
func (in *intakeQueue[P]) push(tp *trackedPack[P]) {
	in.mu.Lock()
	in.queue.Push(tp)
	in.mu.Unlock()
	in.cond.Signal()
}

// producerStopped records that one more producer is exhausted.
func (in *intakeQueue[P]) producerStopped() {
	in.mu.Lock()
	in.live--
	if in.live < 0 {
		in.mu.Unlock()
		panic("packsched: more producers stopped than were registered")
	}
	in.mu.Unlock()
	in.cond.Broadcast()
}

// abort releases every suspended worker without more work.
func (in *intakeQueue[P]) abort() {
	in.mu.Lock()
	in.aborted = true
	in.mu.Unlock()
	in.cond.Broadcast()
}

func (in *intakeQueue[P]) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.queue.Len()
}

// processingSet holds packs whose problems were all submitted but not all
// computed yet.
type processingSet[P any] struct {
	mu    sync.Mutex
	packs map[*trackedPack[P]]struct{}
}

func (ps *processingSet[P]) add(tp *trackedPack[P]) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.packs == nil {
		ps.packs = make(map[*trackedPack[P]]struct{})
	}
	if _, ok := ps.packs[tp]; ok {
		panic(fmt.Sprintf("packsched: pack %d/%d entered processing twice", tp.producer, tp.seq))
	}
	ps.packs[tp] = struct{}{}
}

func (ps *processingSet[P]) remove(tp *trackedPack[P]) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if _, ok := ps.packs[tp]; !ok {
		panic(fmt.Sprintf("packsched: solved pack %d/%d was not in processing", tp.producer, tp.seq))
	}
	delete(ps.packs, tp)
}

func (ps *processingSet[P]) Len() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.packs)
}
