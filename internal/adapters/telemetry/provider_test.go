package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/parcel/internal/adapters/telemetry"
	"go.trai.ch/parcel/internal/core/ports"
)

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.Tracer = (*telemetry.OTelTracer)(nil)
	var _ ports.Span = (*telemetry.OTelSpan)(nil)
	var _ ports.Tracer = (*telemetry.NoOpTracer)(nil)
	var _ ports.Span = (*telemetry.NoOpSpan)(nil)
}

func TestOTelTracer_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	tracer := telemetry.NewOTelTracerFromProvider(tp, telemetry.InstrumentationName)

	ctx, parent := tracer.Start(context.Background(), "update", ports.WithAttribute("path", "ui/icon.png"))
	_, child := tracer.Start(ctx, "fetch")
	child.SetAttribute("bytes", int64(42))
	child.SetAttribute("packages", []string{"ui_pack"})
	child.RecordError(errors.New("connection refused"))
	child.RecordError(nil)
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	fetch, update := spans[0], spans[1]
	assert.Equal(t, "fetch", fetch.Name())
	assert.Equal(t, update.SpanContext().SpanID(), fetch.Parent().SpanID())
	assert.Contains(t, fetch.Attributes(), attribute.Int64("bytes", 42))
	assert.Contains(t, fetch.Attributes(), attribute.StringSlice("packages", []string{"ui_pack"}))
	assert.Equal(t, codes.Error, fetch.Status().Code)
	assert.Len(t, fetch.Events(), 1)

	assert.Equal(t, "update", update.Name())
	assert.Contains(t, update.Attributes(), attribute.String("path", "ui/icon.png"))
	assert.Equal(t, codes.Unset, update.Status().Code)
}

func TestNoOpTracer_Start(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()

	ctx := context.Background()
	got, span := tracer.Start(ctx, "test-span")
	assert.Equal(t, ctx, got)

	span.SetAttribute("key", "value")
	span.RecordError(errors.New("ignored"))
	span.End()
}
