package server

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/message"
	"github.com/Tyrowin/roomchat/internal/moderation"
	"github.com/Tyrowin/roomchat/internal/presence"
	"github.com/Tyrowin/roomchat/internal/protocol"
)

type received struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Ack   int             `json:"ack"`
	Error string          `json:"error"`
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	SetConfig(nil)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	moderator, err := moderation.NewModerator(log, moderation.DefaultWords)
	require.NoError(t, err)

	hub := NewHub(presence.NewDirectory(log), moderator, message.NewFactory(nil), log)
	go hub.Run()
	t.Cleanup(func() { _ = hub.Shutdown(time.Second) })
	return hub
}

// next reads one queued frame from a client created without a connection.
func next(t *testing.T, c *Client) received {
	t.Helper()
	select {
	case raw, ok := <-c.GetSendChan():
		require.True(t, ok, "send channel closed")
		var r received
		require.NoError(t, json.Unmarshal(raw, &r))
		return r
	case <-time.After(time.Second):
		t.Fatal("no frame queued")
		return received{}
	}
}

func drain(c *Client) {
	for {
		select {
		case _, ok := <-c.send:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func joinFrame(t *testing.T, username, room string, ack int) ClientFrame {
	t.Helper()
	data, err := json.Marshal(protocol.JoinPayload{Username: username, Room: room})
	require.NoError(t, err)
	return ClientFrame{Event: protocol.EventJoin, Data: data, Ack: &ack}
}

func TestNewClient(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)

	// When two clients are created
	a := NewClient(nil, hub, "127.0.0.1:1")
	b := NewClient(nil, hub, "127.0.0.1:2")

	// Then each gets its own connection id and an empty send queue
	req.NotEmpty(a.ID())
	req.NotEqual(a.ID(), b.ID())
	req.NotNil(a.GetSendChan())
	req.Empty(a.GetSendChan())
}

func TestHub_RegisterAndJoin(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	client := NewClient(nil, hub, "127.0.0.1:1")

	// Given a registered client
	req.True(hub.Register(client))

	// When it joins a room
	req.True(hub.submit(inboundEvent{client: client, frame: joinFrame(t, "Alice", "Lobby", 1)}))

	// Then it receives the welcome, the roster and a successful ack
	welcome := next(t, client)
	req.Equal(protocol.EventMessage, welcome.Event)
	var text protocol.MessagePayload
	req.NoError(json.Unmarshal(welcome.Data, &text))
	req.Equal(protocol.AdminName, text.Username)
	req.Equal("Welcome!", text.Text)

	roster := next(t, client)
	req.Equal(protocol.EventRoomData, roster.Event)
	var data protocol.RoomDataPayload
	req.NoError(json.Unmarshal(roster.Data, &data))
	req.Equal("lobby", data.Room)
	req.Equal([]protocol.RosterEntry{{Username: "Alice"}}, data.Users)

	ack := next(t, client)
	req.Equal(EventAck, ack.Event)
	req.Equal(1, ack.Ack)
	req.Empty(ack.Error)
	req.Equal(1, hub.ClientCount())
	req.Equal(1, hub.Directory().Len())
}

func TestHub_AckCarriesError(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	alice := NewClient(nil, hub, "127.0.0.1:1")
	impostor := NewClient(nil, hub, "127.0.0.1:2")
	req.True(hub.Register(alice))
	req.True(hub.Register(impostor))
	req.True(hub.submit(inboundEvent{client: alice, frame: joinFrame(t, "Alice", "lobby", 1)}))

	// When a second connection claims the same name in the same room
	req.True(hub.submit(inboundEvent{client: impostor, frame: joinFrame(t, "ALICE", "lobby", 7)}))

	// Then only an error ack reaches it
	ack := next(t, impostor)
	req.Equal(EventAck, ack.Event)
	req.Equal(7, ack.Ack)
	req.Equal(presence.ErrDuplicateUsername.Error(), ack.Error)
}

func TestHub_UnregisterReleasesIdentity(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	alice := NewClient(nil, hub, "127.0.0.1:1")
	bob := NewClient(nil, hub, "127.0.0.1:2")
	req.True(hub.Register(alice))
	req.True(hub.Register(bob))
	req.True(hub.submit(inboundEvent{client: alice, frame: joinFrame(t, "Alice", "lobby", 1)}))
	req.True(hub.submit(inboundEvent{client: bob, frame: joinFrame(t, "Bob", "lobby", 1)}))
	for i := 0; i < 3; i++ {
		next(t, bob)
	}
	for i := 0; i < 5; i++ {
		next(t, alice)
	}

	// When Alice's connection goes away
	hub.unregisterClient(alice)

	// Then Bob hears about it and sees the new roster
	left := next(t, bob)
	var text protocol.MessagePayload
	req.NoError(json.Unmarshal(left.Data, &text))
	req.Equal("Alice has left!", text.Text)

	roster := next(t, bob)
	var data protocol.RoomDataPayload
	req.NoError(json.Unmarshal(roster.Data, &data))
	req.Equal([]protocol.RosterEntry{{Username: "Bob"}}, data.Users)
	req.Equal(1, hub.ClientCount())
	req.Equal(1, hub.Directory().Len())
}

func TestHub_FullBufferDropsClient(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	slow := NewClient(nil, hub, "127.0.0.1:1")
	slow.send = make(chan []byte)
	req.True(hub.Register(slow))

	// When a frame cannot be queued
	req.True(hub.submit(inboundEvent{client: slow, frame: joinFrame(t, "Slow", "lobby", 1)}))

	// Then the client is dropped and its queue closed
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-slow.GetSendChan()
	req.False(ok)

	// And its identity is released once the connection is unregistered
	hub.unregisterClient(slow)
	require.Eventually(t, func() bool { return hub.Directory().Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_DeliverSkipsUnknownConnections(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	client := NewClient(nil, hub, "127.0.0.1:1")
	req.True(hub.Register(client))

	// When an event targets a known and an unknown connection
	hub.Deliver([]presence.ConnID{"missing", client.ID()}, protocol.Event{Name: protocol.EventMessage, Payload: "x"})

	// Then only the known client receives it
	frame := next(t, client)
	req.Equal(protocol.EventMessage, frame.Event)
	req.JSONEq(`"x"`, string(frame.Data))
	drain(client)
	req.Equal(1, hub.ClientCount())
}

func TestHub_Shutdown(t *testing.T) {
	req := require.New(t)
	SetConfig(nil)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	hub := NewHub(presence.NewDirectory(log), nil, message.NewFactory(nil), log)
	go hub.Run()

	client := NewClient(nil, hub, "127.0.0.1:1")
	req.True(hub.Register(client))

	// When the hub shuts down
	req.NoError(hub.Shutdown(time.Second))

	// Then clients are closed and no new registration is accepted
	_, ok := <-client.GetSendChan()
	req.False(ok)
	req.Equal(0, hub.ClientCount())
	req.False(hub.Register(NewClient(nil, hub, "127.0.0.1:2")))
}
