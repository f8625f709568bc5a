package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Tyrowin/roomchat/internal/message"
	"github.com/Tyrowin/roomchat/internal/presence"
)

// State is the lifecycle stage of a connection.
type State int

const (
	StateAnonymous State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is the per-connection state machine. It is not safe for concurrent
// use: every call for every session must happen on the same goroutine so that
// broadcasts reach a room in the order the events were processed.
type Session struct {
	connID  presence.ConnID
	state   State
	handler *Handler
}

// ConnID returns the connection this session belongs to.
func (s *Session) ConnID() presence.ConnID {
	return s.connID
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	return s.state
}

// Dispatch decodes data according to event and runs the matching transition.
// Decoding failures are reported through ack and never escape.
func (s *Session) Dispatch(event string, data json.RawMessage, ack Ack) {
	log := s.handler.log.With("conn", s.connID, "event", event)

	switch event {
	case EventJoin:
		var p JoinPayload
		if err := decode(data, &p); err != nil {
			log.Debug("Invalid join payload", "error", err)
			ack.reply(ErrMalformedPayload)
			return
		}
		s.Join(p.Username, p.Room, ack)

	case EventSendMessage:
		var text string
		if err := decode(data, &text); err != nil {
			log.Debug("Invalid message payload", "error", err)
			ack.reply(ErrMalformedPayload)
			return
		}
		s.SendMessage(text, ack)

	case EventLocationMessage:
		var c Coordinates
		if err := decode(data, &c); err != nil {
			log.Debug("Invalid location payload", "error", err)
			ack.reply(ErrMalformedPayload)
			return
		}
		if err := validate.Struct(c); err != nil {
			log.Debug("Rejected coordinates", "error", err)
			ack.reply(ErrMalformedPayload)
			return
		}
		s.ShareLocation(*c.Latitude, *c.Longitude, ack)

	default:
		log.Debug("Unknown event")
		ack.reply(fmt.Errorf("%w: %q", ErrUnknownEvent, event))
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errors.New("missing data")
	}
	return json.Unmarshal(data, v)
}

// Join binds the connection to username in room. On failure the session
// stays anonymous and nothing is broadcast.
func (s *Session) Join(username, room string, ack Ack) {
	switch s.state {
	case StateClosed:
		return
	case StateJoined:
		ack.reply(presence.ErrAlreadyJoined)
		return
	}

	h := s.handler
	user, err := h.directory.AddUser(s.connID, username, room)
	if err != nil {
		h.log.Debug("Join rejected", "conn", s.connID, "username", username, "room", room, "error", err)
		ack.reply(err)
		return
	}
	s.state = StateJoined
	h.log.Info("User joined", "conn", s.connID, "username", user.Username, "room", user.Room)

	h.sendTo(s.connID, h.notice("Welcome!"))
	h.broadcast(user.Room, h.notice(user.Username+" has joined!"), s.connID)
	h.broadcast(user.Room, h.roster(user.Room), "")
	ack.reply(nil)
}

// SendMessage broadcasts text to the sender's room, sender included.
func (s *Session) SendMessage(text string, ack Ack) {
	h := s.handler
	user, ok := s.identity()
	if !ok {
		h.log.Debug("Ignoring message from connection without identity", "conn", s.connID, "state", s.state)
		if s.state != StateClosed {
			ack.reply(nil)
		}
		return
	}

	if h.profanity.IsProfane(text) {
		h.log.Info("Rejected profane message", "conn", s.connID, "username", user.Username, "room", user.Room)
		ack.reply(ErrProfanity)
		return
	}

	h.broadcast(user.Room, messageEvent(h.messages.Text(user.Username, text)), "")
	ack.reply(nil)
}

// ShareLocation broadcasts a map link for the given coordinates to the
// sender's room.
func (s *Session) ShareLocation(latitude, longitude float64, ack Ack) {
	h := s.handler
	user, ok := s.identity()
	if !ok {
		h.log.Debug("Ignoring location from connection without identity", "conn", s.connID, "state", s.state)
		if s.state != StateClosed {
			ack.reply(nil)
		}
		return
	}

	msg := h.messages.Location(user.Username, message.MapsURL(latitude, longitude))
	h.broadcast(user.Room, messageEvent(msg), "")
	ack.reply(nil)
}

// Disconnect releases the identity and tells the rest of the room. Calling
// it more than once is harmless.
func (s *Session) Disconnect() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed

	h := s.handler
	user, ok := h.directory.RemoveUser(s.connID)
	if !ok {
		return
	}
	h.log.Info("User left", "conn", s.connID, "username", user.Username, "room", user.Room)

	h.broadcast(user.Room, h.notice(user.Username+" has left!"), "")
	h.broadcast(user.Room, h.roster(user.Room), "")
}

// identity returns the user bound to this connection while it is joined. A
// missing entry means the event raced a disconnect.
func (s *Session) identity() (presence.User, bool) {
	if s.state != StateJoined {
		return presence.User{}, false
	}
	return s.handler.directory.GetUser(s.connID)
}
