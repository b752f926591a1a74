// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package opentelemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpansWithoutTracerAreNoops(t *testing.T) {
	Tracer = nil
	span, ctx := SubSpanFromCtx(context.Background())
	defer span.End()
	require.NotNil(t, ctx)
	require.False(t, span.SpanContext().IsValid())
}

func TestSpansAreRecordedAndFiltered(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	require.NoError(t, initTracerWithProcessor("sparqlbuddy_test", recorder))
	defer Shutdown()

	span, ctx := SubSpanFromCtxWithName(context.Background(), "run query")
	require.True(t, span.SpanContext().IsValid())
	child, _ := SubSpanFromCtx(ctx)
	child.End()
	span.End()

	_, docker := SubSpanFromCtxWithName(context.Background(), "docker")
	dockerSpan, _ := SubSpanFromCtxWithName(docker, "container list")
	dockerSpan.SetAttributes(attribute.String("http.url", "http://localhost/v1.47/containers/json"))
	dockerSpan.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	require.Equal(t, "run query", ended[1].Name())
	require.Contains(t, ended[0].Name(), "TestSpansAreRecordedAndFiltered")
}
