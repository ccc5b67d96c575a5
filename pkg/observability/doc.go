// Package observability exposes search progress as Prometheus metrics.
// A Metrics value plugs into the engine as a step observer and is served
// by the HTTP adapter's /metrics endpoint.
package observability
