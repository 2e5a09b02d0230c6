/*
Package tracing provides lightweight request tracing for the bridge server.

It follows OpenTelemetry concepts with a minimal zap-backed implementation:
spans carry trace and parent IDs, propagate over the X-Trace-ID and
X-Span-ID headers, and drain through a buffered collector so the request
path never blocks on trace output.

Usage:

	tracer := tracing.New("webbridge", logger)
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
