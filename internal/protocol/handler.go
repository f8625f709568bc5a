//go:generate go run go.uber.org/mock/mockgen -source=handler.go -destination=mocks/mock_handler.go -package=mocks

// Package protocol interprets the chat events of a single connection and
// decides who receives what. It holds no transport code: outbound events are
// handed to a Deliverer and replies go through the Ack of each inbound event.
package protocol

import (
	"errors"
	"log/slog"

	"github.com/Tyrowin/roomchat/internal/message"
	"github.com/Tyrowin/roomchat/internal/presence"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var (
	// ErrProfanity rejects a message whose text trips the profanity filter.
	ErrProfanity = errors.New("Profanity is not allowed")
	// ErrMalformedPayload rejects an event whose data cannot be decoded.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrUnknownEvent rejects an event name the server does not handle.
	ErrUnknownEvent = errors.New("unknown event")
)

var validate = validator.New()

// Ack replies to the connection that sent an event. A nil error means success.
type Ack func(err error)

func (a Ack) reply(err error) {
	if a != nil {
		a(err)
	}
}

// ProfanityChecker decides whether chat text may be broadcast.
type ProfanityChecker interface {
	IsProfane(text string) bool
}

// Deliverer pushes an event to a set of connections. Delivery is best effort
// and must not block.
type Deliverer interface {
	Deliver(to []presence.ConnID, evt Event)
}

// Handler holds the collaborators shared by every Session.
type Handler struct {
	directory *presence.Directory
	delivery  Deliverer
	profanity ProfanityChecker
	messages  *message.Factory
	log       *slog.Logger
}

// NewHandler wires a Handler. The directory is the single source of room
// membership for every broadcast.
func NewHandler(
	directory *presence.Directory,
	delivery Deliverer,
	profanity ProfanityChecker,
	messages *message.Factory,
	log *slog.Logger,
) *Handler {
	return &Handler{
		directory: directory,
		delivery:  delivery,
		profanity: profanity,
		messages:  messages,
		log:       log,
	}
}

// NewSession starts the state machine for a freshly accepted connection.
func (h *Handler) NewSession(connID presence.ConnID) *Session {
	return &Session{connID: connID, state: StateAnonymous, handler: h}
}

// Directory exposes the presence directory, mainly for read-only endpoints.
func (h *Handler) Directory() *presence.Directory {
	return h.directory
}

func (h *Handler) sendTo(connID presence.ConnID, evt Event) {
	h.delivery.Deliver([]presence.ConnID{connID}, evt)
}

// broadcast sends evt to the current members of room, skipping except.
// Membership is read from the directory at call time.
func (h *Handler) broadcast(room string, evt Event, except presence.ConnID) {
	to := lo.FilterMap(h.directory.UsersInRoom(room), func(u presence.User, _ int) (presence.ConnID, bool) {
		return u.ConnID, u.ConnID != except
	})
	if len(to) == 0 {
		return
	}
	h.log.Debug("Broadcasting event", "event", evt.Name, "room", room, "recipients", len(to))
	h.delivery.Deliver(to, evt)
}

func (h *Handler) notice(text string) Event {
	return messageEvent(h.messages.Text(AdminName, text))
}

func (h *Handler) roster(room string) Event {
	return roomDataEvent(room, h.directory.UsersInRoom(room))
}
