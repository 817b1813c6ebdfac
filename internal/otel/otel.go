package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hanpama/graphcompose/internal/eventbus"
	"github.com/hanpama/graphcompose/internal/events"
	"github.com/hanpama/graphcompose/internal/runid"
)

// Setup configures OpenTelemetry and attaches bus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string, bus *eventbus.Bus) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := Register(bus, tp.Tracer("graphcompose"))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Register turns composition events on bus into spans of tracer. Spans of one
// run are correlated by its run ID.
func Register(bus *eventbus.Bus, tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register(bus)
}

type stageKey struct {
	rid   int64
	stage string
}

type subscriber struct {
	tracer     trace.Tracer
	runSpans   sync.Map // rid -> trace.Span
	stageSpans sync.Map // stageKey -> trace.Span
}

func (s *subscriber) parent(ctx context.Context, rid int64) context.Context {
	if v, ok := s.runSpans.Load(rid); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *subscriber) register(bus *eventbus.Bus) func() {
	unsubs := []func(){
		eventbus.Subscribe(bus, func(ctx context.Context, e events.CompositionStart) {
			rid, _ := runid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "graphcompose.compose")
			span.SetAttributes(
				attribute.Bool("graphcompose.federated", e.Federated),
				attribute.Int("graphcompose.fragments", e.Fragments),
			)
			s.runSpans.Store(rid, span)
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.CompositionFinish) {
			rid, _ := runid.FromContext(ctx)
			v, ok := s.runSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(
				attribute.Bool("graphcompose.empty", e.Empty),
				attribute.Int("graphcompose.types", e.Types),
			)
			endSpan(span, e.Err)
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.StageStart) {
			rid, _ := runid.FromContext(ctx)
			_, span := s.tracer.Start(s.parent(ctx, rid), "graphcompose.stage."+e.Stage)
			s.stageSpans.Store(stageKey{rid, e.Stage}, span)
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.StageFinish) {
			rid, _ := runid.FromContext(ctx)
			v, ok := s.stageSpans.LoadAndDelete(stageKey{rid, e.Stage})
			if !ok {
				return
			}
			endSpan(v.(trace.Span), e.Err)
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.ArtifactWritten) {
			rid, _ := runid.FromContext(ctx)
			if v, ok := s.runSpans.Load(rid); ok {
				v.(trace.Span).AddEvent("artifact.written", trace.WithAttributes(
					attribute.String("artifact.path", e.Path),
					attribute.Int("artifact.bytes", e.Bytes),
				))
			}
		}),

		eventbus.Subscribe(bus, func(ctx context.Context, e events.ArtifactFailed) {
			rid, _ := runid.FromContext(ctx)
			if v, ok := s.runSpans.Load(rid); ok {
				v.(trace.Span).AddEvent("artifact.failed", trace.WithAttributes(
					attribute.String("artifact.path", e.Path),
					attribute.String("error", e.Err.Error()),
				))
			}
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
