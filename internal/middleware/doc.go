// Package middleware provides HTTP middleware for the bridge server.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing for the plain HTTP surface
//   - RateLimit: Per-IP token bucket rate limiting with idle-entry cleanup
//   - GlobalRateLimit: Single shared token bucket for all clients
//
// The WebSocket bridge endpoint is NOT governed by CORS; its origin policy
// is enforced by the security gate at message time.
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
