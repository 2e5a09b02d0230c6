// Package ws terminates WebSocket connections for embedded content surfaces.
//
// Each connection gets its own bridge instance. Inbound text frames are raw
// bridge envelopes; the Origin request header is parsed once at upgrade and
// judged by the security gate for every message.
//
// Frame Types (Server → Client):
//   - hello: Connection accepted, carries the surface ID
//   - eval: Synthesized callback script to run in the page
//   - page: Sanitized document after a permitted navigation
//   - toast: Short-lived user-facing text
//   - error: User-facing failure message
//
// Example Usage:
//
//	handler := ws.NewHandler(gate, reducer, loader, metrics, log, 16384)
//	router.GET("/ws/bridge", handler.HandleConnection)
package ws
