// Package instrumentation wires OpenTelemetry metrics and tracing for
// workspacemcp.
//
// A Provider owns the meter and tracer providers and is configured from the
// environment: metrics export via Prometheus (default), OTLP, or stdout;
// traces via OTLP, stdout, or not at all. The Metrics recorder exposes the
// small set of domain metrics the server cares about: MCP tool invocations,
// Google API operations, and OAuth authorization and refresh outcomes.
//
// Audit logging of tool invocations lives here too. By default audit entries
// carry anonymized user identifiers only; full addresses are opt-in via
// AUDIT_LOGGING_INCLUDE_PII for deployments that need a compliance trail.
package instrumentation
