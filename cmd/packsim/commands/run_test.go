package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/azargarov/packsched"
	"github.com/azargarov/packsched/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate_ExactBudget(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 3
	cfg.Producers = []config.ProducerConfig{
		{Packs: 20, MaxPackSize: 4},
		{Packs: 15, MaxPackSize: 3},
		{Packs: 0, MaxPackSize: 1},
	}
	cfg.Acquire = config.RetryConfig{Attempts: 2, Initial: time.Millisecond, Max: time.Millisecond}
	require.NoError(t, cfg.Validate())

	res, err := simulate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Producers)
	assert.Equal(t, 35, res.Packs)
	assert.Positive(t, res.Problems)
	assert.NotEmpty(t, res.RunID)
	assert.Positive(t, res.Solved)
}

func TestSimulate_CancelledRunFails(t *testing.T) {
	cfg := config.Default()
	cfg.Producers = []config.ProducerConfig{{Packs: 5, MaxPackSize: 2, Delay: time.Hour}}
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := simulate(ctx, cfg)
	assert.ErrorIs(t, err, packsched.ErrAborted)
}

func TestLoadRunConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packsim.yml")
	doc := `workers: 2
producers:
  - packs: 3
    max_pack_size: 5
solver:
  min_capacity: 2
  max_capacity: 2
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cmd := runCmd
	t.Cleanup(func() {
		runConfigPath, runProducers, runPacks, runSeed = "", 0, 0, 0
		for _, name := range []string{"config", "producers", "packs", "seed"} {
			cmd.Flags().Lookup(name).Changed = false
		}
	})
	require.NoError(t, cmd.Flags().Set("config", path))
	require.NoError(t, cmd.Flags().Set("producers", "4"))
	require.NoError(t, cmd.Flags().Set("packs", "7"))
	require.NoError(t, cmd.Flags().Set("seed", "99"))

	cfg, err := loadRunConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, int64(99), cfg.Seed)
	require.Len(t, cfg.Producers, 4)
	for _, p := range cfg.Producers {
		assert.Equal(t, 7, p.Packs)
		assert.Equal(t, 5, p.MaxPackSize)
	}
}
