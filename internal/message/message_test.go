package message

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestFactory_Text(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewFactory(fixedClock(at))

	msg := f.Text("Alice", "hello")

	req.Equal(KindText, msg.Kind)
	req.Equal("Alice", msg.Author)
	req.Equal("hello", msg.Body)
	req.Empty(msg.Location)
	req.Equal(at, msg.CreatedAt)
	req.NotEqual(uuid.Nil, msg.ID)
}

func TestFactory_Location(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewFactory(fixedClock(at))

	msg := f.Location("Bob", "https://google.com/maps?q=1,2")

	req.Equal(KindLocation, msg.Kind)
	req.Equal("Bob", msg.Author)
	req.Empty(msg.Body)
	req.Equal("https://google.com/maps?q=1,2", msg.Location)
	req.Equal(at, msg.CreatedAt)
}

func TestFactory_IDsAreUnique(t *testing.T) {
	f := NewFactory(nil)
	require.NotEqual(t, f.Text("a", "b").ID, f.Text("a", "b").ID)
}

func TestMapsURL(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		expected string
	}{
		{name: "whole numbers", lat: 1.0, lng: 2.0, expected: "https://google.com/maps?q=1,2"},
		{name: "decimals", lat: 48.8584, lng: 2.2945, expected: "https://google.com/maps?q=48.8584,2.2945"},
		{name: "negative", lat: -33.8688, lng: -151.2093, expected: "https://google.com/maps?q=-33.8688,-151.2093"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, MapsURL(tt.lat, tt.lng))
		})
	}
}
