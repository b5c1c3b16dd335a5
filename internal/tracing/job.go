package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartJobSpan opens a span covering the full lifecycle of a single
// claimed job, from parameter decoding through the terminal write.
func StartJobSpan(ctx context.Context, jobID, jobType string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "job.process",
		trace.WithAttributes(
			attribute.String("job.id", jobID),
			attribute.String("job.type", jobType),
		),
	)
}

func RecordJobOutcome(span trace.Span, status string, err error) {
	span.SetAttributes(attribute.String("job.status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
