package signaling

import (
	"slices"

	"github.com/google/uuid"
)

// Peer is the transport side of one connection as seen by the state machine.
type Peer interface {
	// IsOpen reports whether the channel can currently accept sends.
	IsOpen() bool

	// Send queues msg without blocking. It returns false if the message was
	// dropped.
	Send(msg *Message) bool
}

// Connection is the registry record for one connected peer.
type Connection struct {
	ID string

	// Room is the room most recently joined, used when a message omits its
	// room. Empty until the first join.
	Room string

	peer  Peer
	rooms []string
}

// Peer returns the transport bound to this connection.
func (c *Connection) Peer() Peer {
	return c.peer
}

// Rooms returns every room the connection is a member of, in join order.
func (c *Connection) Rooms() []string {
	return slices.Clone(c.rooms)
}

func (c *Connection) isOpen() bool {
	return c.peer != nil && c.peer.IsOpen()
}

func (c *Connection) joined(room string) {
	if !slices.Contains(c.rooms, room) {
		c.rooms = append(c.rooms, room)
	}
	c.Room = room
}

// Registry binds peers to server-assigned identities.
type Registry struct {
	byPeer map[Peer]*Connection
	byID   map[string]*Connection
	newID  func() string
}

// NewRegistry returns an empty registry issuing random UUIDs.
func NewRegistry() *Registry {
	return &Registry{
		byPeer: make(map[Peer]*Connection),
		byID:   make(map[string]*Connection),
		newID:  uuid.NewString,
	}
}

// Assign generates an identity for p and records it. Calling Assign twice
// for the same peer returns the existing connection.
func (r *Registry) Assign(p Peer) *Connection {
	if c, ok := r.byPeer[p]; ok {
		return c
	}
	id := r.newID()
	for r.byID[id] != nil {
		id = r.newID()
	}
	c := &Connection{ID: id, peer: p}
	r.byPeer[p] = c
	r.byID[id] = c
	return c
}

// Lookup returns the connection bound to p.
func (r *Registry) Lookup(p Peer) (*Connection, bool) {
	c, ok := r.byPeer[p]
	return c, ok
}

// ByID returns the connection with the given peer id.
func (r *Registry) ByID(id string) (*Connection, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Release forgets p. The id is never handed out again because identities
// are random UUIDs.
func (r *Registry) Release(p Peer) {
	c, ok := r.byPeer[p]
	if !ok {
		return
	}
	delete(r.byPeer, p)
	delete(r.byID, c.ID)
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	return len(r.byPeer)
}
