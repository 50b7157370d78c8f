// metrics.go: OpenTelemetry instrumentation for digest and encryption operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/agilira/pbecrypt"

// Metric label values
const (
	statusSuccess = "success"
	statusError   = "error"

	opDigest  = "digest"
	opMatches = "matches"
	opEncrypt = "encrypt"
	opDecrypt = "decrypt"
)

// operationMetrics records operation counts and durations for one engine.
type operationMetrics struct {
	engine   attribute.KeyValue
	counter  metric.Int64Counter
	duration metric.Float64Histogram
}

// newOperationMetrics creates the instruments on mp, or on a noop provider when
// mp is nil.
func newOperationMetrics(mp metric.MeterProvider, engine string) (*operationMetrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter(meterName)

	counter, err := meter.Int64Counter(
		"pbecrypt_operations_total",
		metric.WithDescription("Total number of digest and encryption operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"pbecrypt_operation_duration_seconds",
		metric.WithDescription("Duration of digest and encryption operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &operationMetrics{
		engine:   attribute.String("engine", engine),
		counter:  counter,
		duration: duration,
	}, nil
}

// record reports one finished operation started at start.
func (m *operationMetrics) record(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	attrs := metric.WithAttributes(
		m.engine,
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	ctx := context.Background()
	m.counter.Add(ctx, 1, attrs)
	m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}
