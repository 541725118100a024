// pack_queue.go
package packsched

const (
	initialQueueCapacity = 16
)

// packQueue is a first-in–first-out ring of tracked packs.
//
// It backs both the shared intake queue and each communicator's ordered
// buffer. Packs come out strictly in the order they were pushed.
// packQueue is not safe for concurrent use; owners guard it with their
// own mutex. Unlike a fixed ring it never drops: a full buffer grows.
type packQueue[P any] struct {
	buf        []*trackedPack[P] // circular buffer
	head, tail int               // read/write indices
	size       int               // number of packs currently buffered
	capacity   int
}

func newPackQueue[P any](cap int) *packQueue[P] {
	if cap <= 0 {
		cap = initialQueueCapacity
	}
	return &packQueue[P]{
		buf:      make([]*trackedPack[P], cap),
		capacity: cap,
	}
}

// Len returns the number of packs currently waiting in the queue.
func (q *packQueue[P]) Len() int { return q.size }

// Push appends a pack at the tail, growing the ring when full.
func (q *packQueue[P]) Push(tp *trackedPack[P]) {
	if q.size == q.capacity {
		q.grow()
	}
	q.buf[q.tail] = tp
	q.tail++
	if q.tail == q.capacity {
		q.tail = 0
	}
	q.size++
}

// Front returns the oldest pack without removing it.
func (q *packQueue[P]) Front() (*trackedPack[P], bool) {
	if q.size == 0 {
		return nil, false
	}
	return q.buf[q.head], true
}

// Pop removes and returns the oldest pack.
func (q *packQueue[P]) Pop() (*trackedPack[P], bool) {
	if q.size == 0 {
		return nil, false
	}
	tp := q.buf[q.head]
	q.buf[q.head] = nil
	q.head++
	if q.head == q.capacity {
		q.head = 0
	}
	q.size--
	return tp, true
}

// grow doubles the ring, unwrapping it so head lands at index 0.
func (q *packQueue[P]) grow() {
	newCap := q.capacity * 2
	buf := make([]*trackedPack[P], newCap)
	if q.head < q.tail {
		copy(buf, q.buf[q.head:q.tail])
	} else {
		n := copy(buf, q.buf[q.head:])
		copy(buf[n:], q.buf[:q.tail])
	}
	q.buf = buf
	q.head = 0
	q.tail = q.size
	q.capacity = newCap
}
