// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package opentelemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordingWithoutProviderIsNoop(t *testing.T) {
	MeterProvider = nil
	RecordQueryFailure("http://dbpedia.org/sparql", "timeout")
	RecordQueryDuration("http://dbpedia.org/sparql", 1.5)
}

func TestMetricsAreCollected(t *testing.T) {
	reader := metric.NewManualReader()
	require.NoError(t, initMetricsWithReader(reader))
	defer func() {
		require.NoError(t, MeterProvider.Shutdown(context.Background()))
		MeterProvider = nil
	}()

	RecordQueryDuration("http://dbpedia.org/sparql", 0.25)
	RecordQueryFailure("http://dbpedia.org/sparql", "timeout")
	RecordQueryFailure("http://dbpedia.org/sparql", "status")

	var collected metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &collected))
	require.Len(t, collected.ScopeMetrics, 1)

	names := map[string]metricdata.Aggregation{}
	for _, m := range collected.ScopeMetrics[0].Metrics {
		names[m.Name] = m.Data
	}
	require.Contains(t, names, "query_duration")

	failures, ok := names["query_failures"].(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, point := range failures.DataPoints {
		total += point.Value
	}
	require.Equal(t, int64(2), total)
}
