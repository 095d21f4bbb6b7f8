package signaling

import "slices"

// Room is a named group of peers exchanging signaling messages.
type Room struct {
	ID string

	// members keeps join order so host succession is deterministic.
	members []*Connection
	host    string
}

// Host returns the peer id of the room's host, or "" if the room is empty.
func (r *Room) Host() string {
	return r.host
}

// IsHost reports whether id is the room's host.
func (r *Room) IsHost(id string) bool {
	return id != "" && r.host == id
}

// Members returns the room members in join order.
func (r *Room) Members() []*Connection {
	return slices.Clone(r.members)
}

// Member returns the member with the given peer id.
func (r *Room) Member(id string) (*Connection, bool) {
	for _, c := range r.members {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Has reports whether c is a member.
func (r *Room) Has(c *Connection) bool {
	return slices.Contains(r.members, c)
}

// Len returns the member count.
func (r *Room) Len() int {
	return len(r.members)
}

// RemoveResult describes the outcome of RoomTable.RemoveMember.
type RemoveResult struct {
	WasHost   bool
	Remaining []*Connection
	IsEmpty   bool
}

// RoomTable is the authoritative store of membership and host designation.
type RoomTable struct {
	rooms map[string]*Room
}

func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[string]*Room)}
}

// Get returns the room with the given id.
func (t *RoomTable) Get(id string) (*Room, bool) {
	r, ok := t.rooms[id]
	return r, ok
}

// EnsureRoom returns the existing room or creates an empty one.
func (t *RoomTable) EnsureRoom(id string) *Room {
	if r, ok := t.rooms[id]; ok {
		return r
	}
	r := &Room{ID: id}
	t.rooms[id] = r
	return r
}

// AddMember adds c to the room, creating it if needed. The first member of
// an empty room becomes host and isFirstMember is true. Adding an existing
// member changes nothing.
func (t *RoomTable) AddMember(id string, c *Connection) (isFirstMember bool) {
	r := t.EnsureRoom(id)
	if r.Has(c) {
		return false
	}
	r.members = append(r.members, c)
	if len(r.members) == 1 {
		r.host = c.ID
		return true
	}
	return false
}

// RemoveMember removes c from the room. If c was host the host is cleared
// and the caller must pick a successor.
func (t *RoomTable) RemoveMember(id string, c *Connection) RemoveResult {
	r, ok := t.rooms[id]
	if !ok {
		return RemoveResult{IsEmpty: true}
	}
	i := slices.Index(r.members, c)
	if i < 0 {
		return RemoveResult{Remaining: r.Members(), IsEmpty: len(r.members) == 0}
	}
	r.members = slices.Delete(r.members, i, i+1)

	wasHost := r.IsHost(c.ID)
	if wasHost {
		r.host = ""
	}
	return RemoveResult{
		WasHost:   wasHost,
		Remaining: r.Members(),
		IsEmpty:   len(r.members) == 0,
	}
}

// DeleteIfEmpty drops the room entry once it has no members. It is a no-op
// for rooms that do not exist.
func (t *RoomTable) DeleteIfEmpty(id string) bool {
	r, ok := t.rooms[id]
	if !ok || len(r.members) > 0 {
		return false
	}
	delete(t.rooms, id)
	return true
}

// AssignHost makes c the room's host. c must be a member.
func (t *RoomTable) AssignHost(id string, c *Connection) bool {
	r, ok := t.rooms[id]
	if !ok || !r.Has(c) {
		return false
	}
	r.host = c.ID
	return true
}

// Successor picks the next host from the remaining members: the earliest
// joined one.
func Successor(remaining []*Connection) *Connection {
	if len(remaining) == 0 {
		return nil
	}
	return remaining[0]
}

// Len returns the number of rooms.
func (t *RoomTable) Len() int {
	return len(t.rooms)
}

// Each calls fn for every room.
func (t *RoomTable) Each(fn func(*Room)) {
	for _, r := range t.rooms {
		fn(r)
	}
}
