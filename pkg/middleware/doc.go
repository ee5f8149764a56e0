// Package middleware provides HTTP middleware for the gridcast server:
// Prometheus request metrics and OpenTelemetry request tracing. Both are
// standard func(http.Handler) http.Handler wrappers and compose with any
// chi router.
package middleware
