// Package server owns client connections and the HTTP surface of gridcast.
//
// Each WebSocket client gets one Conn with two goroutines: an inbound pump
// that decodes commands and hands them to the dispatcher, and an outbound
// pump that relays the hub's stream to the socket. The pumps are joined by a
// shared context — whichever stops first cancels the other — and the
// connection walks a Connecting → Active → Closing → Terminated lifecycle.
// New clients are caught up from the hub's replay content before they see
// the live stream.
//
// The HTTP side is a chi router: the WebSocket upgrade on /ws, a health
// check, Prometheus metrics, PNG snapshot export, and optional static file
// serving. The server constructs nothing lazily; engine, painting,
// dispatcher, and hub are built once at startup and passed in.
package server
