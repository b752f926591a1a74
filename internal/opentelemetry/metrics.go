// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package opentelemetry

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	metricInterfaces "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

var MeterProvider *metric.MeterProvider
var QueryHistogram metricInterfaces.Float64Histogram
var FailureCounter metricInterfaces.Int64Counter

const DefaultMetricCollectorEndpoint = "localhost:5317"

const meterName = "sparqlbuddy"

// InitMetrics registers a meter provider that pushes to the collector at endpoint
func InitMetrics(endpoint string) error {
	metricExporter, err := otlpmetricgrpc.New(
		context.Background(),
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return err
	}
	return initMetricsWithReader(metric.NewPeriodicReader(metricExporter, metric.WithInterval(10*time.Second)))
}

func initMetricsWithReader(reader metric.Reader) error {
	MeterProvider = metric.NewMeterProvider(metric.WithReader(reader))

	// Register as global meter provider so that it can be used via otel.Meter
	otel.SetMeterProvider(MeterProvider)

	var err error
	QueryHistogram, err = MeterProvider.Meter(meterName).Float64Histogram("query_duration",
		metricInterfaces.WithDescription("Seconds spent waiting on the SPARQL endpoint"),
		metricInterfaces.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	FailureCounter, err = MeterProvider.Meter(meterName).Int64Counter("query_failures",
		metricInterfaces.WithDescription("Queries that timed out or were rejected by the endpoint"),
	)
	if err != nil {
		return err
	}
	log.Debug("OpenTelemetry metrics initialized")
	return nil
}

// RecordQueryFailure counts a failed query against an endpoint; a no-op without metrics
func RecordQueryFailure(endpoint string, reason string) {
	if MeterProvider == nil {
		return
	}

	FailureCounter.Add(context.Background(), 1,
		metricInterfaces.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("reason", reason),
		),
	)
}

// RecordQueryDuration records how long the endpoint took to answer
func RecordQueryDuration(endpoint string, seconds float64) {
	if MeterProvider == nil {
		return
	}

	QueryHistogram.Record(context.Background(), seconds, metricInterfaces.WithAttributes(
		attribute.String("endpoint", endpoint)))
}
