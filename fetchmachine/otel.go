package fetchmachine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "fetchmachine"

// startInvokeSpan creates the span covering one invocation. The caller ends
// it with endInvokeSpan once the invocation settles.
//
//nolint:spancheck // Span lifecycle managed by caller
func startInvokeSpan(ctx context.Context, machineID string, invocation uint64) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "fetchmachine.invoke")
	span.SetAttributes(
		attribute.String("machine_id_hash", hashID(machineID)),
		attribute.Int64("invocation", int64(invocation)), //nolint:gosec
	)

	return ctx, span
}

func endInvokeSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("outcome", outcomeError))
	} else {
		span.SetStatus(codes.Ok, "resolved")
		span.SetAttributes(attribute.String("outcome", outcomeSuccess))
	}

	span.End()
}
