package visualizer

import "github.com/amp-labs/fetchsim/fetchmachine"

// Options configures the visualization output.
type Options struct {
	// ShowInvokes annotates invoking states with the operation they start.
	ShowInvokes bool

	// ShowEvents labels transitions with the event that fires them.
	ShowEvents bool

	// Direction controls diagram flow: "TB" (top-bottom) or "LR" (left-right).
	Direction string

	// Current highlights the state the machine is in. Empty highlights nothing.
	Current fetchmachine.State

	// Fenced wraps the diagram in a ```mermaid code fence.
	Fenced bool
}

// DefaultOptions returns sensible defaults for visualization.
func DefaultOptions() Options {
	return Options{
		ShowInvokes: true,
		ShowEvents:  true,
		Direction:   "LR",
		Fenced:      true,
	}
}

// WithShowInvokes enables/disables invoke annotations.
func (o Options) WithShowInvokes(show bool) Options {
	o.ShowInvokes = show

	return o
}

// WithShowEvents enables/disables transition labels.
func (o Options) WithShowEvents(show bool) Options {
	o.ShowEvents = show

	return o
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithCurrent sets the state to highlight.
func (o Options) WithCurrent(state fetchmachine.State) Options {
	o.Current = state

	return o
}

// WithFenced enables/disables the Markdown code fence.
func (o Options) WithFenced(fenced bool) Options {
	o.Fenced = fenced

	return o
}
