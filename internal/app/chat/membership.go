package chat

import (
	"sync"

	"socialnet/internal/pkg/errs"
)

// Membership tracks which live connection is bound to which room.
// A connection belongs to at most one room at a time; joining a new room
// atomically replaces the old binding. The room set is closed and fixed at
// construction. All methods are safe for concurrent use; a single coarse
// mutex is enough at this scale and makes room switches atomic with respect
// to broadcast targeting.
type Membership struct {
	mu sync.RWMutex

	// rooms is the closed set of valid room identifiers.
	rooms map[string]struct{}

	// roomList preserves the configured room order for listing.
	roomList []string

	// byConn maps a connection ID to its current room, one entry at most.
	byConn map[string]string
}

// NewMembership builds a Membership over the given closed room set.
func NewMembership(rooms []string) *Membership {
	known := make(map[string]struct{}, len(rooms))
	list := make([]string, 0, len(rooms))

	for _, room := range rooms {
		if _, ok := known[room]; ok {
			continue
		}
		known[room] = struct{}{}
		list = append(list, room)
	}

	return &Membership{
		rooms:    known,
		roomList: list,
		byConn:   make(map[string]string),
	}
}

// Rooms returns the closed room set in configured order.
func (m *Membership) Rooms() []string {
	out := make([]string, len(m.roomList))
	copy(out, m.roomList)
	return out
}

// Known reports whether room belongs to the closed set.
func (m *Membership) Known(room string) bool {
	_, ok := m.rooms[room]
	return ok
}

// Join binds connID to room, implicitly leaving any previous room.
// An unknown room is rejected and the previous binding stays intact.
func (m *Membership) Join(connID, room string) *errs.CustomError {
	if !m.Known(room) {
		return errs.NewError(errs.ErrUnknownRoom)
	}

	m.mu.Lock()
	m.byConn[connID] = room
	m.mu.Unlock()

	return nil
}

// Leave removes the binding of connID if it currently points at room.
// A missing or mismatched binding is a no-op, not an error.
func (m *Membership) Leave(connID, room string) {
	m.mu.Lock()
	if current, ok := m.byConn[connID]; ok && current == room {
		delete(m.byConn, connID)
	}
	m.mu.Unlock()
}

// RoomOf returns the room connID is bound to, if any.
func (m *Membership) RoomOf(connID string) (string, bool) {
	m.mu.RLock()
	room, ok := m.byConn[connID]
	m.mu.RUnlock()
	return room, ok
}

// MembersOf returns the set of connection IDs currently bound to room.
func (m *Membership) MembersOf(room string) map[string]struct{} {
	members := make(map[string]struct{})

	m.mu.RLock()
	for connID, current := range m.byConn {
		if current == room {
			members[connID] = struct{}{}
		}
	}
	m.mu.RUnlock()

	return members
}

// Disconnect removes any binding held by connID. Calling it for a connection
// without a binding is a no-op, so repeated disconnects are harmless.
func (m *Membership) Disconnect(connID string) {
	m.mu.Lock()
	delete(m.byConn, connID)
	m.mu.Unlock()
}
