// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package opentelemetry

import (
	"context"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace" // name this differently so it doesn't conflict with the tracer interface
	"go.opentelemetry.io/otel/trace"
)

const DefaultTracingEndpoint = "127.0.0.1:4317"

// the global tracer instance that keeps track of query spans
var Tracer trace.Tracer
var TracerProvider *sdktrace.TracerProvider

// SubSpanFromCtx starts a span named after the calling function
func SubSpanFromCtx(ctx context.Context) (trace.Span, context.Context) {
	// If tracer is nil and we aren't using open telemetry, return a dummy
	// span that fulfills the interface but doesn't do anything
	if Tracer == nil {
		return trace.SpanFromContext(context.Background()), ctx
	}

	pc, _, _, _ := runtime.Caller(1)

	fn := runtime.FuncForPC(pc)
	name := fn.Name()
	newCtx, span := Tracer.Start(ctx, name)
	return span, newCtx
}

func SubSpanFromCtxWithName(ctx context.Context, name string) (trace.Span, context.Context) {
	if Tracer == nil {
		return trace.SpanFromContext(context.Background()), ctx
	}
	ctx, span := Tracer.Start(ctx, name)
	return span, ctx
}

// FilteringSpanProcessor drops the spans testcontainers emits while talking to docker
type FilteringSpanProcessor struct {
	next sdktrace.SpanProcessor
}

func (f *FilteringSpanProcessor) OnStart(parent context.Context, span sdktrace.ReadWriteSpan) {
	f.next.OnStart(parent, span)
}

func (f *FilteringSpanProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	if shouldFilterOutSpan(span) {
		return
	}
	f.next.OnEnd(span)
}

func (f *FilteringSpanProcessor) Shutdown(ctx context.Context) error {
	return f.next.Shutdown(ctx)
}

func (f *FilteringSpanProcessor) ForceFlush(ctx context.Context) error {
	return f.next.ForceFlush(ctx)
}

func shouldFilterOutSpan(span sdktrace.ReadOnlySpan) bool {
	attrs := span.Attributes()
	for _, attr := range attrs {
		if attr.Key == "http.url" {
			if strings.Contains(attr.Value.AsString(), "/containers/") {
				return true
			}
		}
		if attr.Key == "user_agent.original" && strings.Contains(attr.Value.AsString(), "tc-go") {
			return true
		}
	}
	return false
}

// InitTracer exports spans over OTLP gRPC to the collector at endpoint
func InitTracer(serviceName string, endpoint string) error {
	ctx := context.Background()

	client := otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)

	otlpTraceExporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return err
	}

	if err := initTracerWithProcessor(serviceName, sdktrace.NewBatchSpanProcessor(otlpTraceExporter)); err != nil {
		return err
	}
	log.Infof("OpenTelemetry Tracer initialized, sending traces to %s", endpoint)
	return nil
}

func initTracerWithProcessor(serviceName string, processor sdktrace.SpanProcessor) error {
	resource, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return err
	}

	TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(&FilteringSpanProcessor{next: processor}),
		sdktrace.WithResource(resource),
	)

	otel.SetTracerProvider(TracerProvider)

	Tracer = TracerProvider.Tracer(serviceName)
	return nil
}
