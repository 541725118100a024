// Package redisproducer adapts a pair of Redis lists to packsched.Producer.
//
// Packs are JSON arrays of problems pushed onto an input list by some
// upstream; the literal element EOF ends the stream. Solved packs are
// JSON-encoded and appended to an output list in the order the scheduler
// hands them back.
package redisproducer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/azargarov/packsched"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// EndOfStream is the input list element that ends the stream.
const EndOfStream = "EOF"

const defaultPollTimeout = time.Second

// Producer reads packs from InKey and writes solved packs to OutKey.
type Producer[P any] struct {
	client redis.UniversalClient
	inKey  string
	outKey string

	// poll bounds every BLPOP so that cancellation is noticed between
	// calls; go-redis only interrupts a blocking read on a deadline.
	poll time.Duration

	mu       sync.Mutex
	done     bool
	issued   int
	returned int
}

// Option customizes a Producer.
type Option func(*options)

type options struct {
	poll time.Duration
}

// WithPollTimeout sets the BLPOP timeout used between cancellation checks.
func WithPollTimeout(d time.Duration) Option {
	return func(o *options) { o.poll = d }
}

// New creates a producer over the given lists.
func New[P any](client redis.UniversalClient, inKey, outKey string, opts ...Option) *Producer[P] {
	o := options{poll: defaultPollTimeout}
	for _, fn := range opts {
		fn(&o)
	}
	if o.poll <= 0 {
		o.poll = defaultPollTimeout
	}
	return &Producer[P]{client: client, inKey: inKey, outKey: outKey, poll: o.poll}
}

func (p *Producer[P]) WaitForPack(ctx context.Context) (*packsched.Pack[P], error) {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done {
		return nil, errors.Wrap(packsched.ErrProtocolViolation, "redisproducer: WaitForPack called after end of stream")
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.client.BLPop(ctx, p.poll, p.inKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, errors.Wrapf(err, "redisproducer: BLPOP %s", p.inKey)
		}
		if len(res) != 2 {
			return nil, errors.Errorf("redisproducer: BLPOP %s returned %d elements", p.inKey, len(res))
		}

		if res[1] == EndOfStream {
			p.mu.Lock()
			p.done = true
			p.mu.Unlock()
			return nil, nil
		}

		var problems []P
		if err := json.Unmarshal([]byte(res[1]), &problems); err != nil {
			return nil, errors.Wrapf(err, "redisproducer: decoding pack from %s", p.inKey)
		}
		p.mu.Lock()
		p.issued++
		p.mu.Unlock()
		return &packsched.Pack[P]{Problems: problems}, nil
	}
}

func (p *Producer[P]) SolvedPack(ctx context.Context, pack *packsched.Pack[P]) error {
	p.mu.Lock()
	if p.returned >= p.issued {
		p.mu.Unlock()
		return errors.Wrapf(packsched.ErrProtocolViolation,
			"redisproducer: pack returned %d times, only %d received", p.returned+1, p.issued)
	}
	p.returned++
	p.mu.Unlock()

	data, err := json.Marshal(pack.Problems)
	if err != nil {
		return errors.Wrap(err, "redisproducer: encoding solved pack")
	}
	if err := p.client.RPush(ctx, p.outKey, data).Err(); err != nil {
		return errors.Wrapf(err, "redisproducer: RPUSH %s", p.outKey)
	}
	return nil
}
