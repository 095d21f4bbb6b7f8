package signaling

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/BioHazard786/roomrelay/internal/metrics"
)

// State is the signaling state machine: connection registry, room table and
// the routing and lifecycle rules over them.
//
// State is not safe for concurrent use. The Hub owns one State and feeds it
// events from a single goroutine; tests drive it directly.
type State struct {
	conns   *Registry
	rooms   *RoomTable
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewState returns an empty state. A nil logger discards logs and nil
// metrics discards counters.
func NewState(logger *slog.Logger, m *metrics.Metrics) *State {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &State{
		conns:   NewRegistry(),
		rooms:   NewRoomTable(),
		log:     logger,
		metrics: m,
	}
}

// Registry exposes the connection registry for read access.
func (s *State) Registry() *Registry {
	return s.conns
}

// Rooms exposes the room table for read access.
func (s *State) Rooms() *RoomTable {
	return s.rooms
}

// Connect registers a newly opened peer and assigns its identity.
func (s *State) Connect(p Peer) *Connection {
	c := s.conns.Assign(p)
	s.metrics.Inc(metrics.ConnectionsOpened)
	s.log.Debug("peer connected", "peer", c.ID)
	return c
}

// HandleFrame decodes one raw frame and handles it. Frames that do not
// decode are dropped.
func (s *State) HandleFrame(p Peer, codec Codec, data []byte) {
	c, ok := s.conns.Lookup(p)
	if !ok {
		s.log.Warn("frame from unregistered peer dropped")
		return
	}
	in, err := Decode(codec, data)
	if err != nil {
		s.drop(c, "", err)
		return
	}
	s.handle(c, in)
}

// Handle processes an already decoded message from p.
func (s *State) Handle(p Peer, in Inbound) {
	c, ok := s.conns.Lookup(p)
	if !ok {
		s.log.Warn("message from unregistered peer dropped")
		return
	}
	s.handle(c, in)
}

func (s *State) handle(c *Connection, in Inbound) {
	switch m := in.(type) {
	case JoinRequest:
		room := m.Room
		if room == "" {
			room = c.Room
		}
		if room == "" {
			s.drop(c, TypeJoin, ErrNoRoom)
			return
		}
		s.join(c, room)
	case *SignalRequest:
		s.route(c, m)
	default:
		s.drop(c, "", ErrUnknownType)
	}
}

// Disconnect runs the close transition for p. Calling it again for the same
// peer does nothing.
func (s *State) Disconnect(p Peer) {
	c, ok := s.conns.Lookup(p)
	if !ok {
		return
	}
	for _, room := range c.rooms {
		s.leave(c, room)
	}
	c.rooms = nil
	c.Room = ""
	s.conns.Release(p)
	s.metrics.Inc(metrics.ConnectionsClosed)
	s.log.Debug("peer disconnected", "peer", c.ID)
}

// drop records a message that was not acted on.
func (s *State) drop(c *Connection, msgType string, err error) {
	var counter string
	switch {
	case errors.Is(err, ErrMalformed):
		counter = metrics.DropMalformed
	case errors.Is(err, ErrUnknownType):
		counter = metrics.DropUnknownType
	case errors.Is(err, ErrMissingPayload):
		counter = metrics.DropMissingPayload
	case errors.Is(err, ErrNoRoom):
		counter = metrics.DropNoRoom
	case errors.Is(err, ErrNotAMember):
		counter = metrics.DropNotAMember
	}
	if counter != "" {
		s.metrics.Inc(counter)
	}
	s.log.Info("message dropped", "peer", c.ID, "type", msgType, "err", err)
}

// send queues msg for c if it is open. Closed peers are skipped silently.
func (s *State) send(c *Connection, msg *Message) bool {
	if !c.isOpen() {
		return false
	}
	if !c.peer.Send(msg) {
		s.metrics.Inc(metrics.DropSendQueueFull)
		s.log.Warn("send queue full, message dropped", "peer", c.ID, "type", msg.Type)
		return false
	}
	return true
}

// RoomInfo is a read-only view of one room.
type RoomInfo struct {
	ID      string   `json:"id"`
	Host    string   `json:"host"`
	Members []string `json:"members"`
}

// Snapshot lists every room, sorted by id.
func (s *State) Snapshot() []RoomInfo {
	out := make([]RoomInfo, 0, s.rooms.Len())
	s.rooms.Each(func(r *Room) {
		info := RoomInfo{ID: r.ID, Host: r.Host(), Members: make([]string, 0, r.Len())}
		for _, m := range r.members {
			info.Members = append(info.Members, m.ID)
		}
		out = append(out, info)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
