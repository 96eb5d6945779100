package main

import (
	"fmt"

	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/amp-labs/fetchsim/visualizer"
	"github.com/spf13/cobra"
)

func diagramCmd() *cobra.Command {
	var (
		definition string
		direction  string
		plain      bool
	)

	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Print the machine definition as a Mermaid state diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := fetchmachine.DefaultDefinition()

			if definition != "" {
				loaded, err := fetchmachine.LoadDefinitionFile(definition)
				if err != nil {
					return err
				}

				def = loaded
			}

			opts := visualizer.DefaultOptions().
				WithDirection(direction).
				WithFenced(!plain)

			out, err := visualizer.GenerateMermaidWithOptions(def, opts)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)

			return err
		},
	}

	cmd.Flags().StringVar(&definition, "definition", "", "YAML definition file (default: built-in)")
	cmd.Flags().StringVar(&direction, "direction", "LR", "Diagram direction: LR, RL, TB or BT")
	cmd.Flags().BoolVar(&plain, "plain", false, "Omit the markdown code fence")

	return cmd
}
