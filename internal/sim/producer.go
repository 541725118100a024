package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/azargarov/packsched"
	"github.com/pkg/errors"
)

// ErrBadResult is returned by Producer.SolvedPack when a returned problem
// was not computed exactly once or holds a wrong result.
var ErrBadResult = errors.New("sim: problem result invalid")

// Producer emits packs following a fixed plan of sizes and checks that
// they come back in order, once each, fully computed.
type Producer struct {
	sizes []int
	delay time.Duration

	mu       sync.Mutex
	next     int
	nextID   int
	done     bool
	issued   []*Pack
	returned int
}

// ProducerOption customizes a Producer.
type ProducerOption func(*Producer)

// WithDelay makes WaitForPack sleep before every pack, simulating a slow
// upstream.
func WithDelay(d time.Duration) ProducerOption {
	return func(p *Producer) { p.delay = d }
}

// NewProducer creates a producer that emits one pack per entry of sizes.
// Problem ids start at firstID and are consecutive across packs.
func NewProducer(firstID int, sizes []int, opts ...ProducerOption) *Producer {
	p := &Producer{sizes: append([]int(nil), sizes...), nextID: firstID}
	for _, o := range opts {
		o(p)
	}
	return p
}

// RandomSizes returns a plan of pack sizes drawn from [1, maxSize].
func RandomSizes(rng *rand.Rand, packs, maxSize int) []int {
	if maxSize < 1 {
		maxSize = 1
	}
	sizes := make([]int, packs)
	for i := range sizes {
		sizes[i] = rng.Intn(maxSize) + 1
	}
	return sizes
}

func (p *Producer) WaitForPack(ctx context.Context) (*Pack, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return nil, errors.Wrap(packsched.ErrProtocolViolation, "sim: WaitForPack called after exhaustion")
	}
	if p.next == len(p.sizes) {
		p.done = true
		return nil, nil
	}
	pack := NewPack(p.nextID, p.sizes[p.next])
	p.nextID += p.sizes[p.next]
	p.next++
	p.issued = append(p.issued, pack)
	return pack, nil
}

func (p *Producer) SolvedPack(_ context.Context, pack *Pack) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.returned
	if idx >= len(p.issued) {
		return errors.Wrapf(packsched.ErrProtocolViolation, "sim: SolvedPack called %d times, only %d packs issued", idx+1, len(p.issued))
	}
	if p.issued[idx] != pack {
		return errors.Wrapf(packsched.ErrProtocolViolation, "sim: order not preserved at pack %d", idx)
	}
	for _, pr := range pack.Problems {
		if w := pr.Writes(); w != 1 {
			return errors.Wrapf(ErrBadResult, "problem %d written %d times", pr.ID, w)
		}
		if pr.Result != pr.Expected() {
			return errors.Wrapf(ErrBadResult, "problem %d: got %d, want %d", pr.ID, pr.Result, pr.Expected())
		}
	}
	p.returned++
	return nil
}

// AllProcessed reports whether every planned pack was issued and returned.
func (p *Producer) AllProcessed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done && p.returned == len(p.sizes)
}

// Issued returns the packs handed out so far, in order.
func (p *Producer) Issued() []*Pack {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Pack(nil), p.issued...)
}

// Returned returns how many packs came back.
func (p *Producer) Returned() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.returned
}

// Problems returns the total number of problems in the plan.
func (p *Producer) Problems() int {
	total := 0
	for _, n := range p.sizes {
		total += n
	}
	return total
}
