package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/amp-labs/fetchsim/logger"
	"github.com/amp-labs/fetchsim/view"
	"github.com/amp-labs/fetchsim/visualizer"
	"github.com/starfederation/datastar-go/datastar"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
)

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", contentTypeHTML)

	page := view.Page(view.PageParams{
		Snapshot:  s.machine.Snapshot(),
		Live:      true,
		Inspector: s.hub != nil,
	})

	if err := page.Render(r.Context(), w); err != nil {
		logger.Get(r.Context()).Error("failed to render page", "error", err)
	}
}

// fetch sends FETCH. Datastar clients get the new status patched in place,
// plain form posts are redirected back to the page, anything else gets the
// snapshot as JSON.
func (s *Server) fetch(w http.ResponseWriter, r *http.Request) {
	snap, err := s.machine.Send(r.Context(), fetchmachine.EventFetch)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fetchmachine.ErrMachineStopped) {
			status = http.StatusServiceUnavailable
		}

		http.Error(w, err.Error(), status)

		return
	}

	switch {
	case isDatastar(r):
		sse := datastar.NewSSE(w, r)

		if err := sse.PatchElementTempl(view.Status(snap), datastar.WithSelector("#"+view.StatusID)); err != nil {
			logger.Get(r.Context()).Debug("failed to patch status", "error", err)
		}
	case acceptsHTML(r):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		writeJSON(w, r, snap)
	}
}

// updates streams the status block on every snapshot change, and inspection
// records while a hub is configured, until the client goes away or the
// machine stops.
func (s *Server) updates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.Get(ctx)
	sse := datastar.NewSSE(w, r)

	var records <-chan fetchmachine.Inspection

	if s.hub != nil {
		ch, unsubscribe := s.hub.Subscribe()
		defer unsubscribe()

		records = ch

		log.Debug("inspector subscribed", "subscribers", s.hub.Subscribers())
	}

	changed := s.machine.Changed()
	if err := s.patchStatus(sse); err != nil {
		log.Debug("update stream closed", "error", err)

		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			changed = s.machine.Changed()

			if err := s.patchStatus(sse); err != nil {
				log.Debug("update stream closed", "error", err)

				return
			}

			if s.machine.Stopped() {
				return
			}
		case in, ok := <-records:
			if !ok {
				records = nil

				continue
			}

			err := sse.PatchElementTempl(view.InspectorEntry(in),
				datastar.WithSelector("#"+view.InspectorID),
				datastar.WithMode(datastar.ElementPatchModeAppend))
			if err != nil {
				log.Debug("update stream closed", "error", err)

				return
			}
		}
	}
}

func (s *Server) patchStatus(sse *datastar.ServerSentEventGenerator) error {
	return sse.PatchElementTempl(view.Status(s.machine.Snapshot()), datastar.WithSelector("#"+view.StatusID))
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.machine.Snapshot())
}

func (s *Server) diagram(w http.ResponseWriter, r *http.Request) {
	out, err := visualizer.GenerateMermaidForSnapshot(
		s.machine.Definition(),
		s.machine.Snapshot(),
		visualizer.DefaultOptions().WithFenced(false))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", contentTypeText)

	if _, err := w.Write([]byte(out)); err != nil {
		logger.Get(r.Context()).Debug("failed to write diagram", "error", err)
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", contentTypeText)

	if s.machine.Stopped() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("stopped\n"))

		return
	}

	_, _ = w.Write([]byte("ok\n"))
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get(r.Context()).Error("failed to encode response", "error", err)
	}
}

// isDatastar reports whether r was issued by the datastar client.
func isDatastar(r *http.Request) bool {
	if r.Header.Get("Datastar-Request") == "true" {
		return true
	}

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return true
	}

	return r.URL.Query().Has("datastar")
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
