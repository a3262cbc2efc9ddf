/*
Package tracing provides lightweight in-process tracing.

# Overview

Every HTTP request gets a span; each filesystem operation performed for it
gets a child span. Finished spans are handed to a buffered collector which
writes them to the structured log.

# Usage

	tracer := tracing.New("weaverest", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "fs.read")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

# Trace Format

Trace context travels in HTTP headers:
- X-Trace-ID: identifier for the entire request flow
- X-Span-ID: identifier for the current operation

Incoming headers are honored, so a caller's trace continues here.
*/
package tracing
