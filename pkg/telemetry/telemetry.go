// Package telemetry configura el TracerProvider global de OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config opciones de trazas.
type Config struct {
	ServiceName string
	Environment string
	Enabled     bool
	Writer      io.Writer // destino del exporter stdout; nil usa os.Stdout
}

// Init registra un TracerProvider con exporter stdout. Con Enabled=false no toca el provider global
// (otel queda en no-op) y shutdown no hace nada. Llamar shutdown al salir para vaciar el batch.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return noop, fmt.Errorf("telemetry: crear exporter: %w", err)
	}
	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
