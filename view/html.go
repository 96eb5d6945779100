// Package view renders machine snapshots: templ components for the web UI
// and lipgloss-styled text for the terminal. Each state has exactly one
// representation.
package view

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/amp-labs/fetchsim/inspect"
)

// Element ids patched by the live UI.
const (
	StatusID    = "status"
	InspectorID = "inspector"
)

const (
	pageTitle   = "Simulated API calls"
	pagePrompt  = "Click the button to simulate an API call that succeeds or fails at random."
	fetchButton = "Fetch data"

	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
)

// Label is the headline text shown for a state.
func Label(state fetchmachine.State) string {
	switch state {
	case fetchmachine.Idle:
		return "Idle"
	case fetchmachine.Loading:
		return "Loading..."
	case fetchmachine.Success:
		return "Success!"
	case fetchmachine.Failure:
		return "Failure"
	default:
		return string(state)
	}
}

// Detail is the secondary text for a snapshot: the value on Success, the
// error description on Failure and nothing otherwise.
func Detail(snap fetchmachine.Snapshot) string {
	switch snap.State {
	case fetchmachine.Success:
		if v, ok := snap.Value(); ok {
			return "Data: " + strconv.FormatInt(v, 10)
		}
	case fetchmachine.Failure:
		return snap.Error
	case fetchmachine.Idle, fetchmachine.Loading:
	}

	return ""
}

// Status renders the #status block for snap.
func Status(snap fetchmachine.Snapshot) templ.Component { //nolint:ireturn
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		state := templ.EscapeString(string(snap.State))

		_, err := fmt.Fprintf(w,
			`<div id="%s" class="status status-%s" data-state="%s" data-sequence="%d"><p class="label">%s</p>`,
			StatusID, state, state, snap.Sequence, templ.EscapeString(Label(snap.State)))
		if err != nil {
			return err
		}

		if detail := Detail(snap); detail != "" {
			class := "data"
			if snap.State == fetchmachine.Failure {
				class = "error"
			}

			if _, err := fmt.Fprintf(w, `<p class="%s">%s</p>`, class, templ.EscapeString(detail)); err != nil {
				return err
			}
		}

		_, err = io.WriteString(w, `</div>`)

		return err
	})
}

// InspectorEntry renders one inspection as a list item of the #inspector log.
func InspectorEntry(in fetchmachine.Inspection) templ.Component { //nolint:ireturn
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<li class="inspection inspection-%s">%s</li>`,
			templ.EscapeString(string(in.Kind)), templ.EscapeString(inspect.Describe(in)))

		return err
	})
}

// PageParams is everything the full page needs.
type PageParams struct {
	Snapshot fetchmachine.Snapshot
	// Live enables the datastar wiring: the update stream and the button.
	Live bool
	// Inspector shows the inspector log panel.
	Inspector bool
}

// Page renders the complete HTML document.
func Page(params PageParams) templ.Component { //nolint:ireturn
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title>`,
			pageTitle); err != nil {
			return err
		}

		if params.Live {
			if _, err := fmt.Fprintf(w, `<script type="module" src="%s"></script>`, datastarScript); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `<style>`+pageStyle+`</style></head>`); err != nil {
			return err
		}

		body := `<body>`
		if params.Live {
			body = `<body data-init="@get('/updates')">`
		}

		if _, err := fmt.Fprintf(w, `%s<main><h1>%s</h1><p class="prompt">%s</p>`, body, pageTitle, pagePrompt); err != nil {
			return err
		}

		if err := Status(params.Snapshot).Render(ctx, w); err != nil {
			return err
		}

		button := `<form method="post" action="/fetch"><button type="submit">` + fetchButton + `</button></form>`
		if params.Live {
			button = `<button data-on:click="@post('/fetch')">` + fetchButton + `</button>`
		}

		if _, err := io.WriteString(w, button); err != nil {
			return err
		}

		if params.Inspector {
			if _, err := fmt.Fprintf(w, `<section><h2>Inspector</h2><ul id="%s"></ul></section>`, InspectorID); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</main></body></html>`)

		return err
	})
}

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem}` +
	`.status{padding:1rem;border-radius:.5rem;margin:1rem 0}` +
	`.status-Idle{background:#eceff1}.status-Loading{background:#fff9c4}` +
	`.status-Success{background:#c8e6c9}.status-Failure{background:#ffcdd2}` +
	`.label{font-size:1.5rem;font-weight:bold;margin:0}` +
	`#inspector{font-family:monospace;font-size:.8rem;max-height:20rem;overflow:auto}`
