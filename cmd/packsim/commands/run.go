package commands

import (
	"context"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azargarov/packsched"
	"github.com/azargarov/packsched/internal/config"
	"github.com/azargarov/packsched/internal/sim"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 5 * time.Second

var (
	runConfigPath  string
	runWorkers     int
	runProducers   int
	runPacks       int
	runSeed        int64
	runMetricsAddr string
	runPin         bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulated workload through the scheduler",
	Long: `Run builds simulated producers and a solver factory from the configuration,
drives them through the scheduler until every producer is exhausted, and
checks that each pack came back in order with every problem computed once.

Flags override the corresponding configuration values.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(cmd)
		if err != nil {
			return printError("Invalid configuration", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := simulate(ctx, cfg)
		printSummary(cmd.OutOrStdout(), res)
		if err != nil {
			return printError("Run failed", err)
		}
		printSuccess(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runConfigPath, "config", "c", "", "path to a packsim YAML file")
	f.IntVarP(&runWorkers, "workers", "w", 0, "number of workers (0 = GOMAXPROCS)")
	f.IntVarP(&runProducers, "producers", "p", 0, "number of simulated producers")
	f.IntVar(&runPacks, "packs", 0, "packs emitted by every producer")
	f.Int64Var(&runSeed, "seed", 0, "seed for pack sizes and solver capacities")
	f.StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on host:port")
	f.BoolVar(&runPin, "pin", false, "pin workers to CPUs (linux)")
	rootCmd.AddCommand(runCmd)
}

// loadRunConfig reads the configuration file, if any, and applies the flags
// the user set explicitly.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		if cfg, err = config.Load(runConfigPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = runWorkers
	}
	if flags.Changed("producers") {
		if runProducers < 0 {
			return nil, errors.Errorf("--producers must be >= 0, got %d", runProducers)
		}
		template := config.ProducerConfig{}
		if len(cfg.Producers) > 0 {
			template = cfg.Producers[0]
		}
		cfg.Producers = make([]config.ProducerConfig, runProducers)
		for i := range cfg.Producers {
			cfg.Producers[i] = template
		}
	}
	if flags.Changed("packs") {
		for i := range cfg.Producers {
			cfg.Producers[i].Packs = runPacks
		}
	}
	if flags.Changed("seed") {
		cfg.Seed = runSeed
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = runMetricsAddr
	}
	if flags.Changed("pin") {
		cfg.PinWorkers = runPin
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runResult summarizes a finished run.
type runResult struct {
	RunID     string
	Producers int
	Packs     int
	Problems  int
	Instances int
	Solved    int
	Elapsed   time.Duration
}

func simulate(ctx context.Context, cfg *config.Config) (*runResult, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	res := &runResult{Producers: len(cfg.Producers)}

	producers := make([]*sim.Producer, len(cfg.Producers))
	nextID := 0
	for i, pc := range cfg.Producers {
		sizes := sim.RandomSizes(rng, pc.Packs, pc.MaxPackSize)
		var opts []sim.ProducerOption
		if pc.Delay > 0 {
			opts = append(opts, sim.WithDelay(pc.Delay))
		}
		producers[i] = sim.NewProducer(nextID, sizes, opts...)
		nextID += producers[i].Problems()
		res.Packs += len(sizes)
	}
	res.Problems = nextID

	fopts := []sim.FactoryOption{
		sim.WithRandomCapacity(cfg.Seed, cfg.Solver.MinCapacity, cfg.Solver.MaxCapacity),
	}
	if cfg.Solver.ExactBudget {
		fopts = append(fopts, sim.WithBudget(res.Problems))
	}
	if d := cfg.Solver.SolveDelay; d > 0 {
		fopts = append(fopts, sim.WithSolveDelay(func(int) time.Duration { return d }))
	}
	factory := sim.NewFactory(fopts...)

	reg := prometheus.NewRegistry()
	metrics, err := packsched.NewPromMetrics("packsim", reg)
	if err != nil {
		return res, err
	}
	if cfg.MetricsAddr != "" {
		shutdown, err := serveMetrics(cfg.MetricsAddr, reg)
		if err != nil {
			return res, err
		}
		defer shutdown()
	}

	opts := packsched.Options{
		Workers:    cfg.Workers,
		PinWorkers: cfg.PinWorkers,
		Acquire: packsched.RetryPolicy{
			Attempts: cfg.Acquire.Attempts,
			Initial:  cfg.Acquire.Initial,
			Max:      cfg.Acquire.Max,
		},
	}
	s := packsched.NewSchedulerFromOptions[*packsched.PromMetrics, *sim.Problem](metrics, factory.New, opts)
	res.RunID = s.RunID()
	for _, p := range producers {
		if _, err := s.AddProducer(p); err != nil {
			return res, err
		}
	}

	start := time.Now()
	if err := s.Start(ctx, cfg.Workers); err != nil {
		return res, err
	}
	err = s.Stop()
	res.Elapsed = time.Since(start)
	for _, inst := range factory.Instances() {
		if inst.Solved() {
			res.Solved++
		}
	}
	res.Instances = len(factory.Instances())
	if err != nil {
		return res, err
	}

	for i, p := range producers {
		if !p.AllProcessed() {
			return res, errors.Errorf("producer %d: %d of %d packs returned", i, p.Returned(), len(p.Issued()))
		}
	}
	return res, nil
}

// serveMetrics exposes reg on addr until the returned function is called.
func serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "metrics listener on %s", addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
