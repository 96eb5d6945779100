// Command fetchsim drives the simulated API call from a browser, an
// interactive prompt or a batch run.
package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/amp-labs/fetchsim/bgworker"
	"github.com/amp-labs/fetchsim/build"
	"github.com/amp-labs/fetchsim/config"
	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/amp-labs/fetchsim/inspect"
	"github.com/amp-labs/fetchsim/logger"
	"github.com/amp-labs/fetchsim/mockapi"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev" //nolint:gochecknoglobals

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Fatal("fetchsim failed", "error", err)
	}
}

// globals carries the root flags and the configuration they produce.
type globals struct {
	debug       bool
	quiet       bool
	jsonLogs    bool
	envFiles    []string
	delay       time.Duration
	failureRate float64
	seed        uint64

	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "fetchsim",
		Short:         "Simulate an asynchronous API call as a four-state machine",
		Version:       build.Read(version).String(),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return g.setup(root, cmd)
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&g.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&g.quiet, "quiet", false, "Discard all log output")
	flags.BoolVar(&g.jsonLogs, "json-logs", false, "Write logs as JSON")
	flags.StringSliceVar(&g.envFiles, "env-file", nil, "Environment files to load (default .env)")
	flags.DurationVar(&g.delay, "delay", mockapi.DefaultDelay, "Simulated call latency (overrides FETCHSIM_DELAY)")
	flags.Float64Var(&g.failureRate, "failure-rate", mockapi.DefaultFailureRate,
		"Probability that a call fails (overrides FETCHSIM_FAILURE_RATE)")
	flags.Uint64Var(&g.seed, "seed", 0, "Seed for reproducible outcomes (overrides FETCHSIM_SEED)")

	root.AddCommand(serveCmd(g), promptCmd(g), runCmd(g), diagramCmd())

	return root
}

func (g *globals) setup(root, cmd *cobra.Command) error {
	cfg, err := config.Load(g.envFiles...)
	if err != nil {
		return err
	}

	flags := root.PersistentFlags()

	if flags.Changed("delay") {
		cfg.Mock.Delay = g.delay
	}

	if flags.Changed("failure-rate") {
		cfg.Mock.FailureRate = g.failureRate
	}

	if flags.Changed("seed") {
		cfg.Mock.Seed = g.seed
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.Log.Level
	if g.debug {
		level = slog.LevelDebug
	}

	logger.ConfigureLoggingWithOptions(logger.Options{
		Subsystem: "fetchsim",
		JSON:      cfg.Log.JSON || g.jsonLogs,
		MinLevel:  level,
		Output:    cmd.ErrOrStderr(),
		OTel:      cfg.Telemetry.Enabled,
	})

	if g.quiet {
		cmd.SetContext(logger.WithMuted(cmd.Context(), true))
	}

	g.cfg = cfg

	return nil
}

// inspector returns the inspectors configured for a command: the log
// inspector when inspection is on, plus extra.
func (g *globals) inspector(extra ...fetchmachine.Inspector) fetchmachine.Inspector { //nolint:ireturn
	if !g.cfg.Inspect {
		return nil
	}

	return inspect.Multi(append([]fetchmachine.Inspector{inspect.Log(nil)}, extra...)...)
}

// newMachine starts a machine whose invocations run on a worker pool. The
// returned stop function stops the machine, waits for it, then the pool.
func (g *globals) newMachine(
	ctx context.Context,
	inspector fetchmachine.Inspector,
) (*fetchmachine.Machine, *bgworker.Pool, func(), error) {
	pool := bgworker.New(ctx, g.cfg.Workers)
	client := mockapi.FromConfig(g.cfg.Mock)

	m, err := fetchmachine.New(ctx,
		fetchmachine.WithOperation(client.Operation()),
		fetchmachine.WithExecutor(pool),
		fetchmachine.WithInspector(inspector))
	if err != nil {
		pool.Stop()

		return nil, nil, nil, err
	}

	stop := func() {
		m.Stop()
		m.Wait()
		pool.Stop()
	}

	return m, pool, stop, nil
}

// fetchOnce sends FETCH and waits for the invocation it started to settle.
// before is called with the Loading snapshot.
func fetchOnce(
	ctx context.Context,
	m *fetchmachine.Machine,
	before func(fetchmachine.Snapshot),
) (fetchmachine.Snapshot, error) {
	loading, err := m.Send(ctx, fetchmachine.EventFetch)
	if err != nil {
		return loading, err
	}

	if before != nil {
		before(loading)
	}

	return m.Await(ctx, func(snap fetchmachine.Snapshot) bool {
		return snap.Invocation == loading.Invocation && fetchmachine.Settled(snap)
	})
}
