package redisproducer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/azargarov/packsched"
	"github.com/azargarov/packsched/internal/sim"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func pushPacks(t *testing.T, client *redis.Client, key string, sizes ...int) {
	t.Helper()
	ctx := context.Background()
	id := 0
	for _, n := range sizes {
		data, err := json.Marshal(sim.NewPack(id, n).Problems)
		require.NoError(t, err)
		require.NoError(t, client.RPush(ctx, key, data).Err())
		id += n
	}
	require.NoError(t, client.RPush(ctx, key, EndOfStream).Err())
}

func TestRoundTripThroughScheduler(t *testing.T) {
	client := newClient(t)
	pushPacks(t, client, "packs:in", 3, 1, 4, 2)

	producer := New[*sim.Problem](client, "packs:in", "packs:out")
	f := sim.NewFactory(sim.WithCapacities(3, 2, 5))
	s := packsched.NewSchedulerFromOptions[*packsched.NoopMetrics, *sim.Problem](
		&packsched.NoopMetrics{}, f.New, packsched.Options{Workers: 2},
	)
	_, err := s.AddProducer(producer)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background(), 2))
	require.NoError(t, s.Stop())

	out, err := client.LRange(context.Background(), "packs:out", 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, out, 4)

	wantSizes := []int{3, 1, 4, 2}
	nextID := 0
	for i, raw := range out {
		var problems []*sim.Problem
		require.NoError(t, json.Unmarshal([]byte(raw), &problems))
		require.Len(t, problems, wantSizes[i])
		for _, p := range problems {
			assert.Equal(t, nextID, p.ID, "pack %d out of order", i)
			assert.Equal(t, p.Expected(), p.Result)
			nextID++
		}
	}
}

func TestEndOfStream(t *testing.T) {
	client := newClient(t)
	require.NoError(t, client.RPush(context.Background(), "in", EndOfStream).Err())

	p := New[*sim.Problem](client, "in", "out")
	pack, err := p.WaitForPack(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pack)

	_, err = p.WaitForPack(context.Background())
	assert.ErrorIs(t, err, packsched.ErrProtocolViolation)
}

func TestReturnWithoutReceiveIsViolation(t *testing.T) {
	client := newClient(t)
	p := New[*sim.Problem](client, "in", "out")

	err := p.SolvedPack(context.Background(), sim.NewPack(0, 1))
	assert.ErrorIs(t, err, packsched.ErrProtocolViolation)
}

func TestWaitHonoursCancel(t *testing.T) {
	client := newClient(t)
	p := New[*sim.Problem](client, "empty", "out", WithPollTimeout(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.WaitForPack(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMalformedPack(t *testing.T) {
	client := newClient(t)
	require.NoError(t, client.RPush(context.Background(), "in", "{not json").Err())

	p := New[*sim.Problem](client, "in", "out")
	_, err := p.WaitForPack(context.Background())
	assert.Error(t, err)
}
