// Package monitoring exposes Prometheus metrics for the bridge host: message
// and drop counters (by reason), reply deliveries, navigation outcomes, and
// connection/instance gauges. The Metrics type satisfies the bridge's
// Recorder interface, so instances report traffic without importing this
// package.
package monitoring
