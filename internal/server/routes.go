// Package server wires HTTP handlers into a ServeMux for the chat relay via
// routing helpers.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application routes.
// It sets up handlers for health check, WebSocket endpoint, room snapshots and test page.
func SetupRoutes(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/ws", WebSocketHandler(hub))
	mux.HandleFunc("GET /rooms/{room}", RoomHandler(hub))
	mux.HandleFunc("/test", TestPageHandler)
	return mux
}
