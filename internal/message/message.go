// Package message builds the immutable chat messages that are broadcast to a
// room.
package message

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Kind tells text messages and location shares apart.
type Kind string

const (
	KindText     Kind = "text"
	KindLocation Kind = "location"
)

// Message is a single chat event. It is never mutated after creation.
type Message struct {
	ID        uuid.UUID
	Kind      Kind
	Author    string
	Body      string
	Location  string
	CreatedAt time.Time
}

// Factory stamps new messages with an id and the current server time.
type Factory struct {
	now func() time.Time
}

// NewFactory returns a Factory using clock for timestamps. A nil clock means
// time.Now.
func NewFactory(clock func() time.Time) *Factory {
	if clock == nil {
		clock = time.Now
	}
	return &Factory{now: clock}
}

// Text builds a text message.
func (f *Factory) Text(author, body string) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindText,
		Author:    author,
		Body:      body,
		CreatedAt: f.now(),
	}
}

// Location builds a location message pointing at url.
func (f *Factory) Location(author, url string) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindLocation,
		Author:    author,
		Location:  url,
		CreatedAt: f.now(),
	}
}

// MapsURL returns a map link for the given coordinates.
func MapsURL(latitude, longitude float64) string {
	return "https://google.com/maps?q=" +
		strconv.FormatFloat(latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(longitude, 'f', -1, 64)
}
