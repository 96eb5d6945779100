package inspect

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/amp-labs/fetchsim/mockapi"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventInspection(handled bool) fetchmachine.Inspection {
	return fetchmachine.Inspection{
		Kind:      fetchmachine.KindEvent,
		MachineID: "m-1",
		At:        time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
		Event:     fetchmachine.EventFetch,
		From:      fetchmachine.Idle,
		To:        fetchmachine.Loading,
		Handled:   handled,
	}
}

func TestLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Log(log).Inspect(t.Context(), eventInspection(true))

	out := buf.String()
	assert.Contains(t, out, "msg=inspect")
	assert.Contains(t, out, "kind=event")
	assert.Contains(t, out, "event=FETCH")
	assert.Contains(t, out, "to=Loading")
	assert.Contains(t, out, "machine_id=m-1")
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	value := int64(123456)

	tests := []struct {
		name string
		in   fetchmachine.Inspection
		want string
	}{
		{"handled event", eventInspection(true), "03:04:05.006 event FETCH Idle -> Loading"},
		{"ignored event", eventInspection(false), "03:04:05.006 event FETCH Idle -> Loading (ignored)"},
		{"actor", fetchmachine.Inspection{
			Kind:   fetchmachine.KindActor,
			At:     eventInspection(true).At,
			Status: fetchmachine.ActorStarted,
		}, "03:04:05.006 actor started"},
		{"success snapshot", fetchmachine.Inspection{
			Kind:     fetchmachine.KindSnapshot,
			At:       eventInspection(true).At,
			Snapshot: &fetchmachine.Snapshot{State: fetchmachine.Success, Sequence: 2, Result: &value},
		}, "03:04:05.006 snapshot #2 Success data=123456"},
		{"failed event", fetchmachine.Inspection{
			Kind:    fetchmachine.KindEvent,
			At:      eventInspection(true).At,
			Event:   fetchmachine.EventError,
			From:    fetchmachine.Loading,
			To:      fetchmachine.Failure,
			Handled: true,
			Error:   "boom",
		}, "03:04:05.006 event error.invoke Loading -> Failure: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Describe(tt.in))
		})
	}
}

func TestRecorderLimit(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(2)

	for _, handled := range []bool{true, false, true} {
		rec.Inspect(t.Context(), eventInspection(handled))
	}

	records := rec.Records()
	require.Len(t, records, 2)
	assert.False(t, records[0].Handled, "the oldest record was evicted")
	assert.True(t, records[1].Handled)

	rec.Reset()
	assert.Zero(t, rec.Len())
}

func TestMulti(t *testing.T) {
	t.Parallel()

	first, second := NewRecorder(0), NewRecorder(0)

	Multi(first, nil, second).Inspect(t.Context(), eventInspection(true))

	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len())
}

func TestHub(t *testing.T) {
	t.Parallel()

	hub := NewHub(1)

	ch, unsubscribe := hub.Subscribe()
	assert.Equal(t, 1, hub.Subscribers())

	hub.Inspect(t.Context(), eventInspection(true))
	hub.Inspect(t.Context(), eventInspection(false)) // dropped, buffer is full

	got := <-ch
	assert.True(t, got.Handled)

	select {
	case <-ch:
		t.Fatal("the second inspection should have been dropped")
	default:
	}

	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open, "unsubscribing closes the channel")
	assert.Zero(t, hub.Subscribers())

	// Inspecting with no subscribers is fine.
	hub.Inspect(t.Context(), eventInspection(true))
}

func TestRecorderWithMachine(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(0)
	client := mockapi.New(mockapi.WithDelay(0), mockapi.WithRand(func() float64 { return 0 }))

	m, err := fetchmachine.New(t.Context(),
		fetchmachine.WithOperation(client.Operation()),
		fetchmachine.WithInspector(rec),
		fetchmachine.WithLogger(slogt.New(t)))
	require.NoError(t, err)

	_, err = m.Send(t.Context(), fetchmachine.EventFetch)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	snap, err := m.Await(ctx, fetchmachine.Settled)
	require.NoError(t, err)
	assert.Equal(t, fetchmachine.Success, snap.State)

	m.Stop()
	m.Wait()

	assert.Equal(t, []fetchmachine.InspectionKind{
		fetchmachine.KindActor,
		fetchmachine.KindSnapshot,
		fetchmachine.KindEvent,
		fetchmachine.KindSnapshot,
		fetchmachine.KindEvent,
		fetchmachine.KindSnapshot,
		fetchmachine.KindActor,
	}, rec.Kinds())
}
