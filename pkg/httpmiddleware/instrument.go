package httpmiddleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// TelemetryProviders supplies the tracer and meter providers to instrument
// with. go-faster/sdk's app.Telemetry satisfies it.
type TelemetryProviders interface {
	TracerProvider() trace.TracerProvider
	MeterProvider() metric.MeterProvider
}

// Instrument returns a middleware wrapping the handler with otelhttp server
// instrumentation under the given operation name.
func Instrument(operation string, providers TelemetryProviders) Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation,
			otelhttp.WithTracerProvider(providers.TracerProvider()),
			otelhttp.WithMeterProvider(providers.MeterProvider()),
			otelhttp.WithSpanNameFormatter(func(op string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}
