// Package telemetry installs the tracer used around orchestration stages.
//
// Spans never leave the process: the only processor logs each finished span
// with its duration at debug level, which is what --debug shows as stage
// timings.
package telemetry

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the droidloop tracer.
const InstrumentationName = "github.com/droidloop/droidloop"

// timingProcessor logs span timings.
type timingProcessor struct {
	logger *log.Logger
}

// OnStart is a no-op; only finished spans are logged.
func (p *timingProcessor) OnStart(ctx context.Context, s sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, duration, status and attributes.
func (p *timingProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	kv := []interface{}{
		"span", s.Name(),
		"duration", s.EndTime().Sub(s.StartTime()).Round(time.Millisecond),
	}
	if status := s.Status(); status.Code != codes.Unset {
		kv = append(kv, "status", status.Code.String())
		if status.Description != "" {
			kv = append(kv, "description", status.Description)
		}
	}
	for _, attr := range s.Attributes() {
		if attr.Value.Emit() == "" {
			continue
		}
		kv = append(kv, string(attr.Key), attr.Value.Emit())
	}
	p.logger.Debug("Span finished", kv...)
}

// Shutdown is a no-op.
func (p *timingProcessor) Shutdown(ctx context.Context) error { return nil }

// ForceFlush is a no-op.
func (p *timingProcessor) ForceFlush(ctx context.Context) error { return nil }

// Setup creates a TracerProvider that logs span timings to logger and
// registers it globally.
//
// Parameters:
//   - logger: Destination for span timings, at debug level
//
// Returns:
//   - trace.Tracer: The droidloop tracer
//   - func(context.Context) error: Shutdown function to call before exit
func Setup(logger *log.Logger) (trace.Tracer, func(context.Context) error) {
	tp := NewTracerProvider(logger)
	otel.SetTracerProvider(tp)
	return tp.Tracer(InstrumentationName), tp.Shutdown
}

// NewTracerProvider returns a TracerProvider whose only processor logs
// finished spans.
func NewTracerProvider(logger *log.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(&timingProcessor{logger: logger}),
	)
}
