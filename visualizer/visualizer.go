// Package visualizer generates Mermaid state diagrams from a fetchmachine
// definition.
package visualizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amp-labs/fetchsim/fetchmachine"
)

// ErrDefinitionNil is returned when no definition is given.
var ErrDefinitionNil = errors.New("definition cannot be nil")

// GenerateMermaid converts a Definition to a Mermaid state diagram.
func GenerateMermaid(def *fetchmachine.Definition) (string, error) {
	return GenerateMermaidWithOptions(def, DefaultOptions())
}

// GenerateMermaidFromFile loads a definition from a file and generates a Mermaid diagram.
func GenerateMermaidFromFile(path string) (string, error) {
	def, err := fetchmachine.LoadDefinitionFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load definition: %w", err)
	}

	return GenerateMermaid(def)
}

// GenerateMermaidForSnapshot renders def with the snapshot's state highlighted.
func GenerateMermaidForSnapshot(def *fetchmachine.Definition, snap fetchmachine.Snapshot, opts Options) (string, error) {
	return GenerateMermaidWithOptions(def, opts.WithCurrent(snap.State))
}

// GenerateMermaidWithOptions generates a Mermaid diagram with custom options.
func GenerateMermaidWithOptions(def *fetchmachine.Definition, opts Options) (string, error) {
	if def == nil {
		return "", ErrDefinitionNil
	}

	if def.Initial == "" {
		return "", fetchmachine.ErrInitialStateRequired
	}

	var sb strings.Builder

	if opts.Fenced {
		sb.WriteString("```mermaid\n")
	}

	sb.WriteString("stateDiagram-v2\n")

	if opts.Direction != "" {
		fmt.Fprintf(&sb, "    direction %s\n", opts.Direction)
	}

	fmt.Fprintf(&sb, "    [*] --> %s\n", def.Initial)

	var invoking []string

	for _, state := range fetchmachine.States {
		src, ok := def.Invokes(state)
		if !ok {
			continue
		}

		invoking = append(invoking, string(state))

		if opts.ShowInvokes {
			fmt.Fprintf(&sb, "    %s: %s\\n[invoke %s]\n", state, state, src)
		}
	}

	for _, edge := range def.Edges() {
		label := ""
		if opts.ShowEvents {
			label = ": " + string(edge.Event)
		}

		fmt.Fprintf(&sb, "    %s --> %s%s\n", edge.From, edge.To, label)
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef invokeState fill:#e1f5ff,stroke:#01579b,stroke-width:2px\n")
	sb.WriteString("    classDef current fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")

	for _, state := range invoking {
		if fetchmachine.State(state) != opts.Current {
			fmt.Fprintf(&sb, "    class %s invokeState\n", state)
		}
	}

	if opts.Current != "" {
		fmt.Fprintf(&sb, "    class %s current\n", opts.Current)
	}

	if opts.Fenced {
		sb.WriteString("```\n")
	}

	return sb.String(), nil
}
