// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package opentelemetry

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Shutdown any providers and flush any remaining spans and metrics.
// Call once when the command is exiting
func Shutdown() {
	if TracerProvider != nil {
		err := TracerProvider.ForceFlush(context.Background())
		if err != nil {
			log.Errorf("Error flushing traces; is the collector for traces running?; %v", err)
		}
		err = TracerProvider.Shutdown(context.Background())
		if err != nil {
			log.Errorf("Error shutting down tracer provider: %v", err)
		}
		TracerProvider = nil
		Tracer = nil
	}

	if MeterProvider != nil {
		err := MeterProvider.ForceFlush(context.Background())
		if err != nil {
			log.Errorf("Error flushing metrics; Is the collector for metrics running?; %v", err)
		}
		err = MeterProvider.Shutdown(context.Background())
		if err != nil {
			log.Errorf("Error shutting down meter provider: %v", err)
		}
		MeterProvider = nil
	}
}

// StartCommandSpan opens the span covering a whole command. The returned
// stop function ends it and then shuts the providers down, so the span is
// exported before the tracer goes away
func StartCommandSpan(ctx context.Context, name string) (context.Context, func()) {
	span, ctx := SubSpanFromCtxWithName(ctx, name)
	return ctx, func() {
		span.End()
		Shutdown()
	}
}
