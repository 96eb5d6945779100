package main

import (
	"context"
	"time"

	"github.com/amp-labs/fetchsim/build"
	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/amp-labs/fetchsim/inspect"
	"github.com/amp-labs/fetchsim/logger"
	"github.com/amp-labs/fetchsim/shutdown"
	"github.com/amp-labs/fetchsim/telemetry"
	"github.com/amp-labs/fetchsim/web"
	"github.com/spf13/cobra"
)

const telemetryFlushTimeout = 5 * time.Second

func serveCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := shutdown.SetupHandler(cmd.Context())

			flush, err := telemetry.Initialize(ctx, g.cfg.Telemetry, build.Read(version).Version)
			if err != nil {
				return err
			}

			defer func() {
				flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryFlushTimeout)
				defer cancel()

				if err := flush(flushCtx); err != nil {
					logger.Get(ctx).Warn("failed to flush telemetry", "error", err)
				}
			}()

			if addr == "" {
				addr = g.cfg.Addr
			}

			var (
				opts  []web.Option
				extra []fetchmachine.Inspector
			)

			if g.cfg.Inspect {
				hub := inspect.NewHub(0)
				opts = append(opts, web.WithHub(hub))
				extra = append(extra, hub)
			}

			m, pool, stop, err := g.newMachine(ctx, g.inspector(extra...))
			if err != nil {
				return err
			}

			defer stop()

			// Hooks run in order: the machine cancels its call in flight,
			// then the pool drains.
			shutdown.BeforeShutdown(m.Stop)
			pool.StopOnShutdown(ctx)

			return web.New(m, opts...).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $FETCHSIM_ADDR)")

	return cmd
}
