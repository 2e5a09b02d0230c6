// Package server assembles the bridge HTTP surface: WebSocket endpoint,
// health check, and Prometheus metrics, behind CORS and rate limiting.
//
// Endpoints:
//   - GET /ws/bridge: WebSocket bridge for embedded content surfaces
//   - GET /health:    liveness probe with service version
//   - GET /metrics:   Prometheus exposition
package server
