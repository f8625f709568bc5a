// Package server implements the HTTP and WebSocket transport of the room chat
// relay.
//
// The implementation is organized into specialized files for configuration, hub
// management, clients, routing, and HTTP handlers. Chat semantics live in the
// protocol package; this package only moves frames between sockets and the
// hub loop that drives each connection's session.
package server
