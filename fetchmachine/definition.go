package fetchmachine

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	amperrors "github.com/amp-labs/fetchsim/errors"
	"gopkg.in/yaml.v3"
)

const defaultDefinitionPath = "definition.yaml"

//go:embed definition.yaml
var definitionFS embed.FS

// Definition is the declarative description of the lifecycle, in the same
// shape as the xstate configuration it mirrors. It feeds the transition
// lookup and the diagram; it cannot describe any other workflow.
type Definition struct {
	Name    string              `json:"name"    yaml:"name"`
	Initial State               `json:"initial" yaml:"initial"`
	States  map[State]StateNode `json:"states"  yaml:"states"`
}

// StateNode configures one state.
type StateNode struct {
	On     map[EventType]State `json:"on,omitempty"     yaml:"on,omitempty"`
	Invoke *Invoke             `json:"invoke,omitempty" yaml:"invoke,omitempty"`
}

// Invoke names the operation started on entry and where its settlement leads.
type Invoke struct {
	Src     string `json:"src"     yaml:"src"`
	OnDone  State  `json:"onDone"  yaml:"onDone"`
	OnError State  `json:"onError" yaml:"onError"`
}

// Edge is one transition of a definition.
type Edge struct {
	From  State
	Event EventType
	To    State
}

// DefaultDefinition returns the embedded definition.
func DefaultDefinition() *Definition {
	def, err := LoadDefinitionFS(definitionFS, defaultDefinitionPath)
	if err != nil {
		panic(fmt.Sprintf("embedded definition is invalid: %v", err))
	}

	return def
}

// LoadDefinition parses and validates a YAML definition. Unknown keys are
// rejected.
func LoadDefinition(data []byte) (*Definition, error) {
	var def Definition

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &def, nil
}

// LoadDefinitionFile loads a definition from the filesystem.
func LoadDefinitionFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file %q: %w", path, err)
	}

	return LoadDefinition(data)
}

// LoadDefinitionFS loads a definition from fsys, typically an embed.FS.
func LoadDefinitionFS(fsys fs.FS, path string) (*Definition, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition from FS: %w", err)
	}

	return LoadDefinition(data)
}

// Validate checks that d describes the fetch lifecycle. Every problem found
// is reported, joined into one error.
func (d *Definition) Validate() error {
	errs := &amperrors.Collection{}

	if d.Name == "" {
		errs.Add(ErrDefinitionNameRequired)
	}

	switch {
	case d.Initial == "":
		errs.Add(ErrInitialStateRequired)
	case !d.Initial.Valid():
		errs.Add(WrapStateError(d.Initial, ErrUnknownState))
	case d.Initial != Idle:
		errs.Add(WrapStateError(d.Initial, ErrInvalidInitialState))
	}

	for _, name := range d.stateNames() {
		if !name.Valid() {
			errs.Add(WrapStateError(name, ErrUnknownState))
		}
	}

	for _, state := range States {
		node, ok := d.States[state]
		if !ok {
			errs.Add(WrapStateError(state, ErrMissingState))

			continue
		}

		d.validateNode(errs, state, node)
	}

	reachable := d.reachable()

	for _, state := range States {
		if !reachable[state] {
			errs.Add(WrapStateError(state, ErrUnreachableState))
		}
	}

	return errs.GetError()
}

// validateNode checks node against the Transition table, so a valid
// definition and Transition always agree.
func (d *Definition) validateNode(errs *amperrors.Collection, state State, node StateNode) {
	for ev, target := range node.On {
		want, defined := Transition(state, ev)

		switch {
		case ev != EventFetch:
			errs.Add(WrapStateError(state, fmt.Errorf("%w: %s", ErrUnknownEventName, ev)))
		case !defined:
			errs.Add(WrapStateError(state, ErrFetchWhileLoading))
		case !d.declared(target):
			errs.Add(WrapStateError(state, fmt.Errorf("%w: %s", ErrTargetNotFound, target)))
		case target != want:
			errs.Add(WrapStateError(state, fmt.Errorf("%w: FETCH -> %s", ErrUnexpectedTarget, target)))
		}
	}

	if _, invokes := Transition(state, EventDone); !invokes {
		if node.Invoke != nil {
			errs.Add(WrapStateError(state, ErrInvokeNotAllowed))
		}

		if _, ok := node.On[EventFetch]; !ok {
			errs.Add(WrapStateError(state, ErrFetchRequired))
		}

		return
	}

	if node.Invoke == nil || node.Invoke.Src == "" {
		errs.Add(WrapStateError(state, ErrInvokeRequired))

		return
	}

	onDone, _ := Transition(state, EventDone)
	onError, _ := Transition(state, EventError)

	d.validateSettlement(errs, state, "onDone", node.Invoke.OnDone, onDone)
	d.validateSettlement(errs, state, "onError", node.Invoke.OnError, onError)
}

func (d *Definition) validateSettlement(errs *amperrors.Collection, state State, key string, target, want State) {
	switch {
	case !d.declared(target):
		errs.Add(WrapStateError(state, fmt.Errorf("%w: %s %q", ErrTargetNotFound, key, target)))
	case target != want:
		errs.Add(WrapStateError(state, fmt.Errorf("%w: %s -> %s", ErrUnexpectedTarget, key, target)))
	}
}

func (d *Definition) declared(state State) bool {
	_, ok := d.States[state]

	return ok
}

// stateNames returns the declared names, known states first.
func (d *Definition) stateNames() []State {
	names := make([]State, 0, len(d.States))
	for name := range d.States {
		names = append(names, name)
	}

	slices.SortFunc(names, func(a, b State) int {
		ai, bi := slices.Index(States, a), slices.Index(States, b)

		switch {
		case ai >= 0 && bi >= 0:
			return ai - bi
		case ai >= 0:
			return -1
		case bi >= 0:
			return 1
		default:
			return bytes.Compare([]byte(a), []byte(b))
		}
	})

	return names
}

func (d *Definition) reachable() map[State]bool {
	reachable := map[State]bool{d.Initial: true}

	queue := []State{d.Initial}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range d.edgesFrom(current) {
			if !reachable[edge.To] {
				reachable[edge.To] = true
				queue = append(queue, edge.To)
			}
		}
	}

	return reachable
}

// Next is the pure transition function of the definition: the state that
// follows from on ev, or (from, false) when the definition has no such
// transition.
func (d *Definition) Next(from State, ev EventType) (State, bool) {
	node, ok := d.States[from]
	if !ok {
		return from, false
	}

	switch ev {
	case EventDone:
		if node.Invoke != nil {
			return node.Invoke.OnDone, true
		}
	case EventError:
		if node.Invoke != nil {
			return node.Invoke.OnError, true
		}
	default:
		if to, ok := node.On[ev]; ok {
			return to, true
		}
	}

	return from, false
}

// Invokes returns the operation name invoked on entry into state, if any.
func (d *Definition) Invokes(state State) (string, bool) {
	node, ok := d.States[state]
	if !ok || node.Invoke == nil {
		return "", false
	}

	return node.Invoke.Src, true
}

// Edges lists every transition, ordered by source state then event.
func (d *Definition) Edges() []Edge {
	var edges []Edge

	for _, state := range d.stateNames() {
		edges = append(edges, d.edgesFrom(state)...)
	}

	return edges
}

func (d *Definition) edgesFrom(state State) []Edge {
	node, ok := d.States[state]
	if !ok {
		return nil
	}

	events := make([]EventType, 0, len(node.On))
	for ev := range node.On {
		events = append(events, ev)
	}

	slices.Sort(events)

	edges := make([]Edge, 0, len(events)+2) //nolint:mnd
	for _, ev := range events {
		edges = append(edges, Edge{From: state, Event: ev, To: node.On[ev]})
	}

	if node.Invoke != nil {
		edges = append(edges,
			Edge{From: state, Event: EventDone, To: node.Invoke.OnDone},
			Edge{From: state, Event: EventError, To: node.Invoke.OnError})
	}

	return edges
}
