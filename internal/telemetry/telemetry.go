// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package telemetry installs the global OpenTelemetry tracer provider.
//
package telemetry

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporters.
//
const (
	None   = "none"
	Stdout = "stdout"
)

// Setup installs a tracer provider exporting spans with the named exporter.
// The stdout exporter writes to w. With None, nothing is installed and the
// returned shutdown function does nothing.
//
func Setup(exporter string, w io.Writer) (shutdown func(context.Context) error, err error) {
	var exp sdktrace.SpanExporter
	switch exporter {
	case None, "":
		return func(context.Context) error { return nil }, nil
	case Stdout:
		exp, err = stdouttrace.New(stdouttrace.WithWriter(w))
	default:
		return nil, errors.Errorf("unknown trace exporter %q", exporter)
	}
	if err != nil {
		return nil, errors.Wrap(err, "create trace exporter")
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
