package view

import (
	"bytes"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, c.Render(t.Context(), &buf))

	return buf.String()
}

func snapshot(state fetchmachine.State) fetchmachine.Snapshot {
	snap := fetchmachine.Snapshot{State: state, Sequence: 3}

	switch state {
	case fetchmachine.Success:
		v := int64(123456)
		snap.Result = &v
	case fetchmachine.Failure:
		snap.Error = "Mock API error, fails 50% of the time"
	case fetchmachine.Idle, fetchmachine.Loading:
	}

	return snap
}

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state   fetchmachine.State
		label   string
		detail  string
		without []string
	}{
		{fetchmachine.Idle, "Idle", "", []string{"Loading...", "Success!", "Failure"}},
		{fetchmachine.Loading, "Loading...", "", []string{"Success!", "Failure"}},
		{fetchmachine.Success, "Success!", `<p class="data">Data: 123456</p>`, []string{"Loading...", "Failure"}},
		{
			fetchmachine.Failure, "Failure",
			`<p class="error">Mock API error, fails 50% of the time</p>`,
			[]string{"Loading...", "Success!"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			t.Parallel()

			html := render(t, Status(snapshot(tt.state)))

			assert.Contains(t, html, `<div id="status" class="status status-`+string(tt.state)+`"`)
			assert.Contains(t, html, `<p class="label">`+tt.label+`</p>`)
			assert.Contains(t, html, `data-sequence="3"`)

			if tt.detail != "" {
				assert.Contains(t, html, tt.detail)
			} else {
				assert.NotContains(t, html, `<p class="data">`)
				assert.NotContains(t, html, `<p class="error">`)
			}

			for _, other := range tt.without {
				assert.NotContains(t, html, other, "states render exclusively")
			}
		})
	}
}

func TestStatusEscapesError(t *testing.T) {
	t.Parallel()

	snap := fetchmachine.Snapshot{State: fetchmachine.Failure, Error: "<script>alert(1)</script>"}

	html := render(t, Status(snap))
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestPage(t *testing.T) {
	t.Parallel()

	live := render(t, Page(PageParams{Snapshot: snapshot(fetchmachine.Idle), Live: true, Inspector: true}))

	assert.Contains(t, live, "<h1>Simulated API calls</h1>")
	assert.Contains(t, live, "datastar.js")
	assert.Contains(t, live, `data-init="@get('/updates')"`)
	assert.Contains(t, live, `data-on:click="@post('/fetch')"`)
	assert.Contains(t, live, ">Fetch data</button>")
	assert.Contains(t, live, `<ul id="inspector">`)
	assert.Contains(t, live, `<p class="label">Idle</p>`)

	static := render(t, Page(PageParams{Snapshot: snapshot(fetchmachine.Success)}))

	assert.NotContains(t, static, "datastar.js")
	assert.Contains(t, static, `<form method="post" action="/fetch">`)
	assert.NotContains(t, static, `id="inspector"`)
	assert.Contains(t, static, "Success!")
}

func TestInspectorEntry(t *testing.T) {
	t.Parallel()

	html := render(t, InspectorEntry(fetchmachine.Inspection{
		Kind:    fetchmachine.KindEvent,
		At:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Event:   fetchmachine.EventFetch,
		From:    fetchmachine.Idle,
		To:      fetchmachine.Loading,
		Handled: true,
	}))

	assert.Equal(t, `<li class="inspection inspection-event">12:00:00.000 event FETCH Idle -&gt; Loading</li>`, html)
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Terminal(snapshot(fetchmachine.Idle)), "Idle")
	assert.Contains(t, Terminal(snapshot(fetchmachine.Loading)), "Loading...")

	success := Terminal(snapshot(fetchmachine.Success))
	assert.Contains(t, success, "Success!")
	assert.Contains(t, success, "Data: 123456")

	failure := Terminal(snapshot(fetchmachine.Failure))
	assert.Contains(t, failure, "Failure")
	assert.Contains(t, failure, "Mock API error, fails 50% of the time")

	assert.Contains(t, Heading(), "Simulated API calls")
}

func TestLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Idle", Label(fetchmachine.Idle))
	assert.Equal(t, "Loading...", Label(fetchmachine.Loading))
	assert.Equal(t, "Success!", Label(fetchmachine.Success))
	assert.Equal(t, "Failure", Label(fetchmachine.Failure))
}
