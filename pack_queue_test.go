package packsched

import (
	"fmt"
	"testing"
)

func tracked(seq int) *trackedPack[int] {
	return newTrackedPack(newIntPack(1), 0, uint64(seq))
}

func TestPackQueueGrow_NoWrap(t *testing.T) {
	capacity := 4
	newSize := 5
	q := newPackQueue[int](capacity)

	for i := 1; i <= capacity; i++ {
		q.Push(tracked(i))
	}

	if q.size != capacity {
		t.Fatalf("expected size=4, got %d", q.size)
	}

	q.Push(tracked(5))

	if q.capacity <= capacity {
		t.Fatalf("grow() didn't increase capacity, got %d", q.capacity)
	}

	if q.Len() != newSize {
		t.Fatalf("after grow: expected size=%d, got %d", newSize, q.Len())
	}

	for expected := 1; expected <= newSize; expected++ {
		tp, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop returned false, expected %d", expected)
		}
		if tp.seq != uint64(expected) {
			t.Fatalf("FIFO order broken: expected %d, got %d", expected, tp.seq)
		}
	}
}

func TestPackQueueGrow_WithWrap(t *testing.T) {
	q := newPackQueue[int](4)

	q.Push(tracked(1))
	q.Push(tracked(2))
	q.Push(tracked(3))

	tp, _ := q.Pop()
	if tp.seq != 1 {
		t.Fatalf("expected to pop 1, got %d", tp.seq)
	}

	// head=1 tail=3, then wrap the tail around
	q.Push(tracked(4))
	q.Push(tracked(5))
	// full, head=1 tail=1: the next push grows an unwrapped copy
	q.Push(tracked(6))

	for expected := 2; expected <= 6; expected++ {
		tp, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop returned false, expected %d", expected)
		}
		if tp.seq != uint64(expected) {
			t.Fatalf("FIFO order broken after wrap: expected %d, got %d", expected, tp.seq)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestPackQueueFront(t *testing.T) {
	q := newPackQueue[int](0)
	if _, ok := q.Front(); ok {
		t.Fatal("Front on empty queue returned a pack")
	}
	q.Push(tracked(7))
	q.Push(tracked(8))
	tp, ok := q.Front()
	if !ok || tp.seq != 7 {
		t.Fatalf("Front = %v, %v; want seq 7", tp, ok)
	}
	if q.Len() != 2 {
		t.Fatalf("Front must not remove; len = %d", q.Len())
	}
}

func BenchmarkPackQueue(b *testing.B) {
	for _, depth := range []int{16, 1024} {
		b.Run(fmt.Sprintf("depth=%d", depth), func(b *testing.B) {
			q := newPackQueue[int](depth)
			for i := 0; i < depth/2; i++ {
				q.Push(tracked(i))
			}
			tp := tracked(depth)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				q.Push(tp)
				q.Pop()
			}
		})
	}
}
