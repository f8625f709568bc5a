package protocol

import (
	"github.com/Tyrowin/roomchat/internal/message"
	"github.com/Tyrowin/roomchat/internal/presence"
	"github.com/samber/lo"
)

// Inbound event names.
const (
	EventJoin            = "join"
	EventSendMessage     = "sendMessage"
	EventLocationMessage = "locationMessage"
)

// Outbound event names. EventLocationMessage is used in both directions.
const (
	EventMessage  = "message"
	EventRoomData = "roomData"
)

// AdminName is the author of server notices.
const AdminName = "Admin"

// Event is one server to client frame before encoding.
type Event struct {
	Name    string
	Payload any
}

// JoinPayload is the data of a join event.
type JoinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// Coordinates is the data of an inbound locationMessage event.
type Coordinates struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// MessagePayload is the data of an outbound message event.
type MessagePayload struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// LocationPayload is the data of an outbound locationMessage event.
type LocationPayload struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Location  string `json:"location"`
	CreatedAt int64  `json:"createdAt"`
}

// RosterEntry is one member listed in roomData.
type RosterEntry struct {
	Username string `json:"username"`
}

// RoomDataPayload is the data of a roomData event.
type RoomDataPayload struct {
	Room  string        `json:"room"`
	Users []RosterEntry `json:"users"`
}

func messageEvent(msg message.Message) Event {
	if msg.Kind == message.KindLocation {
		return Event{Name: EventLocationMessage, Payload: LocationPayload{
			ID:        msg.ID.String(),
			Username:  msg.Author,
			Location:  msg.Location,
			CreatedAt: msg.CreatedAt.UnixMilli(),
		}}
	}
	return Event{Name: EventMessage, Payload: MessagePayload{
		ID:        msg.ID.String(),
		Username:  msg.Author,
		Text:      msg.Body,
		CreatedAt: msg.CreatedAt.UnixMilli(),
	}}
}

// RoomData builds the roster payload for room from its members.
func RoomData(room string, members []presence.User) RoomDataPayload {
	return RoomDataPayload{
		Room: room,
		Users: lo.Map(members, func(u presence.User, _ int) RosterEntry {
			return RosterEntry{Username: u.Username}
		}),
	}
}

func roomDataEvent(room string, members []presence.User) Event {
	return Event{Name: EventRoomData, Payload: RoomData(room, members)}
}
