// Package server coordinates client registration, event processing, and
// connection cleanup for the chat relay via the Hub type.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/roomchat/internal/message"
	"github.com/Tyrowin/roomchat/internal/presence"
	"github.com/Tyrowin/roomchat/internal/protocol"
)

// Hub owns every live connection and its protocol session. Registration,
// unregistration and inbound events are all handled on the Run goroutine,
// one at a time, so room broadcasts keep the order in which events arrived.
type Hub struct {
	clients    map[presence.ConnID]*Client
	inbound    chan inboundEvent
	register   chan *Client
	unregister chan *Client
	handler    *protocol.Handler
	log        *slog.Logger
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates a Hub whose sessions share directory, the profanity filter
// and the message factory. The returned Hub is ready to manage connections
// once Run is started.
func NewHub(
	directory *presence.Directory,
	profanity protocol.ProfanityChecker,
	messages *message.Factory,
	log *slog.Logger,
) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:    make(map[presence.ConnID]*Client),
		inbound:    make(chan inboundEvent),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	h.handler = protocol.NewHandler(directory, h, profanity, messages, log)
	return h
}

// Directory returns the presence directory shared by all sessions.
func (h *Hub) Directory() *presence.Directory {
	return h.handler.Directory()
}

// ClientCount returns the number of registered connections, joined or not.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Register hands a new client to the hub. It returns false when the hub is
// shutting down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) submit(evt inboundEvent) bool {
	select {
	case h.inbound <- evt:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Recovered from panic in safeSend", "panic", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent race conditions
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	// Check if client is still registered and not closed
	registered, exists := h.clients[client.id]
	if !exists || registered != client || client.closed {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// Run starts the hub's main event loop, handling client registration,
// unregistration and inbound events. This method should be called in a
// separate goroutine as it runs until Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("Received nil client registration; skipping")
				continue
			}
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case evt := <-h.inbound:
			h.handleInbound(evt)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	client.session = h.handler.NewSession(client.id)

	h.mutex.Lock()
	client.closed = false
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()
	h.log.Info("Client registered", "conn", client.id, "addr", client.addr, "total", clientCount)

	if client.conn == nil {
		return
	}

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

func (h *Hub) handleUnregister(client *Client) {
	if client == nil {
		return
	}

	h.mutex.Lock()
	if registered, ok := h.clients[client.id]; ok && registered == client {
		delete(h.clients, client.id)
		client.closed = true
		clientCount := len(h.clients)
		h.mutex.Unlock()
		// Close the channel after releasing the lock
		close(client.send)
		h.log.Info("Client unregistered", "conn", client.id, "addr", client.addr, "total", clientCount)
	} else {
		h.mutex.Unlock()
	}

	// A client dropped for a full buffer is already gone from the map but
	// still owns its identity until now.
	if client.session != nil {
		client.session.Disconnect()
	}
}

func (h *Hub) handleInbound(evt inboundEvent) {
	if evt.client == nil || evt.client.session == nil {
		return
	}
	evt.client.session.Dispatch(evt.frame.Event, evt.frame.Data, h.ackFor(evt.client, evt.frame.Ack))
}

// ackFor builds the reply hook for one inbound event. Events without an ack
// id get no reply.
func (h *Hub) ackFor(client *Client, id *int) protocol.Ack {
	if id == nil {
		return nil
	}
	ackID := *id
	return func(err error) {
		frame := AckFrame{Event: EventAck, Ack: ackID}
		if err != nil {
			frame.Error = err.Error()
		}
		payload, marshalErr := json.Marshal(frame)
		if marshalErr != nil {
			h.log.Error("Error encoding ack", "conn", client.id, "error", marshalErr)
			return
		}
		if !h.safeSend(client, payload) {
			h.log.Debug("Dropped ack for closed client", "conn", client.id, "ack", ackID)
		}
	}
}

// Deliver encodes evt once and queues it on every listed connection. It
// never blocks; clients whose buffers are full are dropped.
func (h *Hub) Deliver(to []presence.ConnID, evt protocol.Event) {
	payload, err := json.Marshal(ServerFrame{Event: evt.Name, Data: evt.Payload})
	if err != nil {
		h.log.Error("Error encoding event", "event", evt.Name, "error", err)
		return
	}

	clients := h.getClientSnapshot(to)
	h.log.Debug("Broadcasting message", "event", evt.Name, "clients", len(clients))

	clientsToRemove := h.deliverToClients(clients, payload)
	h.removeFailedClients(clientsToRemove)
}

// getClientSnapshot resolves connection ids to registered clients
func (h *Hub) getClientSnapshot(ids []presence.ConnID) []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*Client, 0, len(ids))
	for _, id := range ids {
		if client, ok := h.clients[id]; ok {
			clients = append(clients, client)
		}
	}
	return clients
}

// deliverToClients sends the payload to every client and returns the ones that failed
func (h *Hub) deliverToClients(clients []*Client, payload []byte) []*Client {
	var clientsToRemove []*Client

	for _, client := range clients {
		if !h.safeSend(client, payload) {
			clientsToRemove = append(clientsToRemove, client)
		}
	}

	return clientsToRemove
}

// removeFailedClients removes clients that failed to receive messages and closes their channels
func (h *Hub) removeFailedClients(clientsToRemove []*Client) {
	if len(clientsToRemove) == 0 {
		return
	}

	h.mutex.Lock()
	var channelsToClose []chan []byte
	for _, client := range clientsToRemove {
		if registered, exists := h.clients[client.id]; exists && registered == client {
			delete(h.clients, client.id)
			client.closed = true
			channelsToClose = append(channelsToClose, client.send)
			h.log.Warn("Client removed due to full send buffer", "conn", client.id, "addr", client.addr)
		}
	}
	h.mutex.Unlock()

	// Close channels after releasing the lock
	for _, ch := range channelsToClose {
		close(ch)
	}
}

// shutdownClients gracefully closes all active client connections
func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for id, client := range h.clients {
		clients = append(clients, client)
		client.closed = true
		delete(h.clients, id)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		close(client.send)
		if client.session != nil {
			client.session.Disconnect()
		}
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					h.log.Warn("Error closing client connection", "addr", client.addr, "error", err)
				}
			}
		}
	}

	h.log.Info("Closed client connections", "count", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")

	// Signal shutdown
	h.cancel()

	// Wait for Run() to complete
	<-h.done

	// Wait for all client goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
