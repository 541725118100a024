package packsched

import (
	"context"
	"sync"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/pkg/errors"
)

// communicator connects one producer to the scheduler.
//
// Its receiver pulls packs into the ordered buffer and the intake queue;
// its sender hands solved packs back from the head of the ordered buffer,
// so a producer only ever sees its own packs, in its own order.
type communicator[P any] struct {
	id       int
	producer Producer[P]

	mu      sync.Mutex
	buffer  *packQueue[P]
	stopped bool
	seq     uint64

	// wake carries "something changed" to the sender. One pending token is
	// enough: the sender rescans the whole buffer head on every wake.
	wake chan struct{}
}

func newCommunicator[P any](id int, producer Producer[P]) *communicator[P] {
	return &communicator[P]{
		id:       id,
		producer: producer,
		buffer:   newPackQueue[P](initialQueueCapacity),
		wake:     make(chan struct{}, 1),
	}
}

func (c *communicator[P]) notify() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// receive is the communicator's receiver loop.
func (s *Scheduler[P, M]) receive(ctx context.Context, c *communicator[P]) error {
	logger := lg.FromContext(ctx).With(lg.String("run", s.runID), lg.Int("producer", c.id))
	logger.Info("receiver started")

	for {
		if ctx.Err() != nil {
			return nil
		}
		pack, err := c.producer.WaitForPack(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("waiting for pack failed", lg.Any("error", err))
			return errors.Wrapf(err, "producer %d: waiting for pack", c.id)
		}

		if pack == nil {
			c.mu.Lock()
			c.stopped = true
			received := c.seq
			c.mu.Unlock()
			c.notify()
			s.intake.producerStopped()
			logger.Info("producer exhausted", lg.Int("packs", int(received)))
			return nil
		}

		c.mu.Lock()
		tp := newTrackedPack(pack, c.id, c.seq)
		c.seq++
		c.buffer.Push(tp)
		c.mu.Unlock()
		s.metrics.IncPacksReceived()

		if tp.solved() {
			c.notify()
			continue
		}
		s.intake.push(tp)
	}
}

// send is the communicator's sender loop. It returns once the receiver has
// stopped and every received pack was handed back.
func (s *Scheduler[P, M]) send(ctx context.Context, c *communicator[P]) error {
	logger := lg.FromContext(ctx).With(lg.String("run", s.runID), lg.Int("producer", c.id))
	returned := 0
	defer func() {
		logger.Info("sender stopped", lg.Int("returned", returned))
	}()

	for {
		select {
		case <-c.wake:
		case <-ctx.Done():
			return nil
		}

		for {
			tp, done := c.nextSolved()
			if done {
				return nil
			}
			if tp == nil {
				break
			}
			if err := c.producer.SolvedPack(ctx, tp.pack); err != nil {
				logger.Error("returning pack failed", lg.Int("seq", int(tp.seq)), lg.Any("error", err))
				return errors.Wrapf(err, "producer %d: returning pack %d", c.id, tp.seq)
			}
			returned++
			s.metrics.IncPacksReturned()
		}
	}
}

// nextSolved pops the head of the ordered buffer if it is solved. done
// reports that the receiver stopped and nothing is left to return.
func (c *communicator[P]) nextSolved() (tp *trackedPack[P], done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	head, ok := c.buffer.Front()
	if !ok {
		return nil, c.stopped
	}
	if !head.solved() {
		return nil, false
	}
	c.buffer.Pop()
	return head, false
}

// drained reports whether every pack the producer supplied went back.
func (c *communicator[P]) drained() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped && c.buffer.Len() == 0
}
