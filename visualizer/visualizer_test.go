package visualizer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	t.Parallel()

	diagram, err := GenerateMermaid(fetchmachine.DefaultDefinition())
	require.NoError(t, err)

	for _, want := range []string{
		"```mermaid\n",
		"stateDiagram-v2",
		"direction LR",
		"[*] --> Idle",
		"Loading: Loading\\n[invoke mockApiCall]",
		"Idle --> Loading: FETCH",
		"Loading --> Success: done.invoke",
		"Loading --> Failure: error.invoke",
		"Success --> Loading: FETCH",
		"Failure --> Loading: FETCH",
		"class Loading invokeState",
	} {
		assert.Contains(t, diagram, want)
	}

	assert.NotContains(t, diagram, "class Idle current")
	assert.True(t, strings.HasSuffix(diagram, "```\n"))
}

func TestGenerateMermaidWithOptions(t *testing.T) {
	t.Parallel()

	def := fetchmachine.DefaultDefinition()

	tests := []struct {
		name       string
		opts       Options
		contain    []string
		notContain []string
	}{
		{
			name:       "current state highlighted",
			opts:       DefaultOptions().WithCurrent(fetchmachine.Success),
			contain:    []string{"class Success current", "class Loading invokeState"},
			notContain: []string{"class Idle current"},
		},
		{
			name:       "highlight replaces invoke style",
			opts:       DefaultOptions().WithCurrent(fetchmachine.Loading),
			contain:    []string{"class Loading current"},
			notContain: []string{"class Loading invokeState"},
		},
		{
			name:       "bare labels",
			opts:       DefaultOptions().WithShowEvents(false).WithShowInvokes(false),
			contain:    []string{"Idle --> Loading\n"},
			notContain: []string{": FETCH", "[invoke"},
		},
		{
			name:       "unfenced top to bottom",
			opts:       DefaultOptions().WithFenced(false).WithDirection("TB"),
			contain:    []string{"direction TB"},
			notContain: []string{"```"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			diagram, err := GenerateMermaidWithOptions(def, tt.opts)
			require.NoError(t, err)

			for _, want := range tt.contain {
				assert.Contains(t, diagram, want)
			}

			for _, unwanted := range tt.notContain {
				assert.NotContains(t, diagram, unwanted)
			}
		})
	}
}

func TestGenerateMermaidForSnapshot(t *testing.T) {
	t.Parallel()

	diagram, err := GenerateMermaidForSnapshot(fetchmachine.DefaultDefinition(),
		fetchmachine.Snapshot{State: fetchmachine.Failure}, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, diagram, "class Failure current")
}

func TestGenerateMermaidErrors(t *testing.T) {
	t.Parallel()

	_, err := GenerateMermaid(nil)
	require.ErrorIs(t, err, ErrDefinitionNil)

	_, err = GenerateMermaid(&fetchmachine.Definition{Name: "empty"})
	require.ErrorIs(t, err, fetchmachine.ErrInitialStateRequired)
}

func TestGenerateMermaidFromFile(t *testing.T) {
	t.Parallel()

	def := "name: fetch\ninitial: Idle\nstates:\n" +
		"  Idle: {on: {FETCH: Loading}}\n" +
		"  Loading: {invoke: {src: remoteCall, onDone: Success, onError: Failure}}\n" +
		"  Success: {on: {FETCH: Loading}}\n" +
		"  Failure: {on: {FETCH: Loading}}\n"

	path := filepath.Join(t.TempDir(), "fetch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(def), 0o600))

	diagram, err := GenerateMermaidFromFile(path)
	require.NoError(t, err)
	assert.Contains(t, diagram, "[invoke remoteCall]")

	_, err = GenerateMermaidFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
