// Package server defines the JSON frames exchanged over the socket and
// utility helpers that are reused across client and hub logic.
package server

import (
	"encoding/json"
	"errors"
	"strings"
)

// EventAck is the name of the frame that answers an inbound event.
const EventAck = "ack"

// ErrRateLimited is acknowledged to a client that sends events too fast.
var ErrRateLimited = errors.New("rate limit exceeded, slow down")

// ClientFrame is an event sent by a client. Ack is set when the client wants
// a reply.
type ClientFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   *int            `json:"ack,omitempty"`
}

// ServerFrame is an event pushed to clients.
type ServerFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// AckFrame answers the client event carrying the same Ack id. Error is empty
// on success.
type AckFrame struct {
	Event string `json:"event"`
	Ack   int    `json:"ack"`
	Error string `json:"error,omitempty"`
}

// inboundEvent is a decoded client frame waiting for the hub loop.
type inboundEvent struct {
	client *Client
	frame  ClientFrame
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
