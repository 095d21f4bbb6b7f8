package signaling

import (
	"github.com/BioHazard786/roomrelay/internal/metrics"
)

// join adds c to roomID. The first member becomes host without being told;
// later arrivals are announced to the host with peer-joined.
//
// Joining a second room does not leave the first one. The connection keeps
// its membership in both and Disconnect cleans up all of them.
func (s *State) join(c *Connection, roomID string) {
	if r, ok := s.rooms.Get(roomID); ok && r.Has(c) {
		c.joined(roomID)
		s.log.Debug("peer already in room", "peer", c.ID, "room", roomID)
		return
	}
	if _, ok := s.rooms.Get(roomID); !ok {
		s.metrics.Inc(metrics.RoomsCreated)
		s.log.Info("room created", "room", roomID)
	}

	first := s.rooms.AddMember(roomID, c)
	c.joined(roomID)

	if first {
		s.log.Info("peer joined room as host", "peer", c.ID, "room", roomID)
		return
	}

	room, _ := s.rooms.Get(roomID)
	s.log.Info("peer joined room", "peer", c.ID, "room", roomID, "members", room.Len())
	if host, ok := room.Member(room.Host()); ok {
		s.send(host, &Message{Type: TypePeerJoined, PeerID: c.ID, Room: roomID})
	}
}

// leave removes c from roomID, migrating the host if needed. host-changed
// is always sent before peer-left.
func (s *State) leave(c *Connection, roomID string) {
	res := s.rooms.RemoveMember(roomID, c)

	if res.WasHost && len(res.Remaining) > 0 {
		next := Successor(res.Remaining)
		s.rooms.AssignHost(roomID, next)
		s.metrics.Inc(metrics.HostMigrations)
		s.log.Info("host migrated", "room", roomID, "from", c.ID, "to", next.ID)

		room, _ := s.rooms.Get(roomID)
		s.broadcast(room, &Message{Type: TypeHostChanged, NewHostID: next.ID, Room: roomID}, nil)
	}

	if room, ok := s.rooms.Get(roomID); ok && len(res.Remaining) > 0 {
		s.broadcast(room, &Message{Type: TypePeerLeft, PeerID: c.ID, Room: roomID}, nil)
	}

	if s.rooms.DeleteIfEmpty(roomID) {
		s.metrics.Inc(metrics.RoomsDeleted)
		s.log.Info("room deleted", "room", roomID)
	}
}
