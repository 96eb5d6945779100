package main

import (
	"errors"
	"fmt"

	"github.com/amp-labs/fetchsim/cli"
	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/amp-labs/fetchsim/logger"
	"github.com/amp-labs/fetchsim/shutdown"
	"github.com/amp-labs/fetchsim/view"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const defaultCycles = 10

var errCycles = errors.New("--cycles must be positive")

func runCmd(g *globals) *cobra.Command {
	var cycles int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run FETCH cycles without interaction and summarize the outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cycles <= 0 {
				return fmt.Errorf("%w, got %d", errCycles, cycles)
			}

			ctx := shutdown.SetupHandler(cmd.Context())

			m, pool, stop, err := g.newMachine(ctx, g.inspector())
			if err != nil {
				return err
			}

			defer stop()

			out := cmd.OutOrStdout()
			log := logger.Get(ctx)

			var succeeded, failed int

			for i := 1; i <= cycles; i++ {
				snap, err := fetchOnce(ctx, m, nil)
				if err != nil {
					return fmt.Errorf("cycle %d: %w", i, err)
				}

				if snap.State == fetchmachine.Success {
					succeeded++
				} else {
					failed++
				}

				_, _ = fmt.Fprintf(out, "%d/%d %s\n", i, cycles, view.Terminal(snap))

				log.Debug("cycle finished",
					"cycle", i,
					"state", snap.State,
					"workers_running", pool.Running(),
					"tasks_completed", pool.Completed())
			}

			summary := fmt.Sprintf("%d cycles\n%d succeeded\n%d failed", cycles, succeeded, failed)
			_, _ = fmt.Fprintln(out, cli.Banner(summary, cli.DefaultWidth, lipgloss.Center))

			return nil
		},
	}

	cmd.Flags().IntVar(&cycles, "cycles", defaultCycles, "Number of FETCH cycles to run")

	return cmd
}
