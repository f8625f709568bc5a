// Package presence keeps track of who is connected, under which name, and in
// which room. It is the only owner of user identities; everything else refers
// to a user by its connection id.
package presence

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var (
	// ErrValidation is returned when the connection id, username or room is
	// empty after trimming.
	ErrValidation = errors.New("username and room are required")
	// ErrDuplicateUsername is returned when the name is already taken in the
	// target room. Comparison is case-insensitive.
	ErrDuplicateUsername = errors.New("username is in use")
	// ErrAlreadyJoined is returned when the connection already owns an identity.
	ErrAlreadyJoined = errors.New("connection has already joined a room")
)

var validate = validator.New()

// ConnID identifies a live connection.
type ConnID string

// User is an immutable identity bound to one connection.
type User struct {
	ConnID   ConnID
	Username string
	Room     string
}

type candidate struct {
	ConnID   string `validate:"required"`
	Username string `validate:"required"`
	Room     string `validate:"required"`
}

type entry struct {
	user User
	seq  uint64
}

// Directory maps connection ids to users. All methods are safe for
// concurrent use and atomic with respect to each other.
type Directory struct {
	mu    sync.RWMutex
	users map[ConnID]entry
	seq   uint64
	log   *slog.Logger
}

// NewDirectory returns an empty directory.
func NewDirectory(log *slog.Logger) *Directory {
	return &Directory{
		users: make(map[ConnID]entry),
		log:   log,
	}
}

// NormalizeRoom returns the canonical form of a room name.
func NormalizeRoom(room string) string {
	return strings.ToLower(strings.TrimSpace(room))
}

// AddUser registers a new identity for connID in room. Username and room are
// trimmed and the room is lower-cased. On error the directory is unchanged.
func (d *Directory) AddUser(connID ConnID, username, room string) (User, error) {
	c := candidate{
		ConnID:   strings.TrimSpace(string(connID)),
		Username: strings.TrimSpace(username),
		Room:     NormalizeRoom(room),
	}
	if err := validate.Struct(c); err != nil {
		d.log.Debug("Rejected join", "conn", connID, "reason", err)
		return User{}, ErrValidation
	}

	user := User{ConnID: ConnID(c.ConnID), Username: c.Username, Room: c.Room}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[user.ConnID]; exists {
		return User{}, ErrAlreadyJoined
	}

	taken := lo.SomeBy(lo.Values(d.users), func(e entry) bool {
		return e.user.Room == user.Room && strings.EqualFold(e.user.Username, user.Username)
	})
	if taken {
		return User{}, ErrDuplicateUsername
	}

	d.seq++
	d.users[user.ConnID] = entry{user: user, seq: d.seq}
	d.log.Debug("User added", "conn", user.ConnID, "username", user.Username, "room", user.Room, "total", len(d.users))
	return user, nil
}

// RemoveUser deletes the identity bound to connID and returns it. The boolean
// is false when the connection never joined or was already removed.
func (d *Directory) RemoveUser(connID ConnID) (User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.users[connID]
	if !ok {
		return User{}, false
	}
	delete(d.users, connID)
	return e.user, true
}

// GetUser looks up the identity bound to connID.
func (d *Directory) GetUser(connID ConnID) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.users[connID]
	return e.user, ok
}

// UsersInRoom returns the members of room in join order. The room name is
// normalized before matching; an unknown room yields an empty slice.
func (d *Directory) UsersInRoom(room string) []User {
	room = NormalizeRoom(room)

	d.mu.RLock()
	members := lo.Filter(lo.Values(d.users), func(e entry, _ int) bool {
		return e.user.Room == room
	})
	d.mu.RUnlock()

	slices.SortFunc(members, func(a, b entry) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return lo.Map(members, func(e entry, _ int) User { return e.user })
}

// Len reports how many connections currently own an identity.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}
