// Package inspect holds the fetchmachine.Inspector implementations: a debug
// logger, an in-memory recorder and a fan-out hub for live viewers.
package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/amp-labs/fetchsim/logger"
)

type logInspector struct {
	log *slog.Logger
}

// Log returns an inspector that writes every inspection at debug level. A nil
// log means logger.Get of the inspection context.
func Log(log *slog.Logger) fetchmachine.Inspector { //nolint:ireturn
	return &logInspector{log: log}
}

func (l *logInspector) Inspect(ctx context.Context, in fetchmachine.Inspection) {
	log := l.log
	if log == nil {
		log = logger.Get(ctx)
	}

	args := []any{"kind", in.Kind, "machine_id", in.MachineID}

	switch in.Kind {
	case fetchmachine.KindActor:
		args = append(args, "status", in.Status)
	case fetchmachine.KindEvent:
		args = append(args, "event", in.Event, "from", in.From, "to", in.To, "handled", in.Handled)
		if in.Error != "" {
			args = append(args, "error", in.Error)
		}
	case fetchmachine.KindSnapshot:
		if in.Snapshot != nil {
			args = append(args, "state", in.Snapshot.State, "sequence", in.Snapshot.Sequence)
		}
	}

	log.DebugContext(ctx, "inspect", args...)
}

type multi []fetchmachine.Inspector

// Multi returns an inspector that forwards to each non-nil inspector in order.
func Multi(inspectors ...fetchmachine.Inspector) fetchmachine.Inspector { //nolint:ireturn
	out := make(multi, 0, len(inspectors))

	for _, in := range inspectors {
		if in != nil {
			out = append(out, in)
		}
	}

	return out
}

func (m multi) Inspect(ctx context.Context, in fetchmachine.Inspection) {
	for _, inspector := range m {
		inspector.Inspect(ctx, in)
	}
}

// Describe renders an inspection as one short human-readable line.
func Describe(in fetchmachine.Inspection) string {
	var b strings.Builder

	b.WriteString(in.At.Format("15:04:05.000"))
	b.WriteString(" ")

	switch in.Kind {
	case fetchmachine.KindActor:
		fmt.Fprintf(&b, "actor %s", in.Status)
	case fetchmachine.KindEvent:
		fmt.Fprintf(&b, "event %s %s -> %s", in.Event, in.From, in.To)

		if !in.Handled {
			b.WriteString(" (ignored)")
		}

		if in.Error != "" {
			fmt.Fprintf(&b, ": %s", in.Error)
		}
	case fetchmachine.KindSnapshot:
		if in.Snapshot == nil {
			b.WriteString("snapshot")

			break
		}

		fmt.Fprintf(&b, "snapshot #%d %s", in.Snapshot.Sequence, in.Snapshot.State)

		if v, ok := in.Snapshot.Value(); ok && in.Snapshot.State == fetchmachine.Success {
			fmt.Fprintf(&b, " data=%d", v)
		}
	default:
		b.WriteString(string(in.Kind))
	}

	return b.String()
}
