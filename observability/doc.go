// Package observability wires OpenTelemetry tracing and metrics.
//
// Init installs OTLP/HTTP exporters when enabled. Instrumented code always
// goes through the global providers, so with exporters off every span and
// counter is a no-op:
//
//	shutdown, err := observability.Init(ctx, cfg.Observability)
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanListChildren,
//	    attribute.String(observability.AttrFolderID, id))
//	defer func() { observability.EndSpan(span, err) }()
package observability
