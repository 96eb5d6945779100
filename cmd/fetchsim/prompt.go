package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/amp-labs/fetchsim/cli"
	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/amp-labs/fetchsim/shutdown"
	"github.com/amp-labs/fetchsim/view"
	"github.com/amp-labs/fetchsim/visualizer"
	"github.com/spf13/cobra"
)

const (
	choiceFetch   = "Fetch data"
	choiceDiagram = "Show diagram"
	choiceQuit    = "Quit"
)

func promptCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Drive the machine from an interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := shutdown.SetupHandler(cmd.Context())

			m, _, stop, err := g.newMachine(ctx, g.inspector())
			if err != nil {
				return err
			}

			defer stop()

			out := cmd.OutOrStdout()

			_, _ = fmt.Fprintln(out, view.Heading())
			_, _ = fmt.Fprintln(out, view.Terminal(m.Snapshot()))

			menu := &cli.Menu{
				Label: "Next",
				Items: []string{choiceFetch, choiceDiagram, choiceQuit},
			}

			for {
				choice, err := menu.Select()
				if errors.Is(err, cli.ErrQuit) {
					return nil
				}

				if err != nil {
					return err
				}

				if choice == choiceQuit {
					return nil
				}

				if err := handleChoice(ctx, m, choice, out); err != nil {
					return err
				}
			}
		},
	}
}

func handleChoice(ctx context.Context, m *fetchmachine.Machine, choice string, out io.Writer) error {
	switch choice {
	case choiceFetch:
		snap, err := fetchOnce(ctx, m, func(loading fetchmachine.Snapshot) {
			_, _ = fmt.Fprintln(out, view.Terminal(loading))
		})
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(out, view.Terminal(snap))
	case choiceDiagram:
		diagram, err := visualizer.GenerateMermaidForSnapshot(m.Definition(), m.Snapshot(),
			visualizer.DefaultOptions().WithFenced(false))
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(out, diagram)
	}

	return nil
}
