// Package metrics defines the events emitted while solving and the sinks
// that record them. Sinks like the Prometheus and InfluxDB implementations in
// infra/metrics are registered by type name and built from configuration;
// NewMetricsSink returns a MultiSink automatically when several are
// configured. NewOracleObserver bridges the solver's per-check statistics to a
// sink.
package metrics
