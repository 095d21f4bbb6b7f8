package signaling

import (
	"github.com/BioHazard786/roomrelay/internal/metrics"
)

// route forwards an offer, answer or candidate. Addressed signals go to one
// named peer; unaddressed ones are broadcast to everyone else in the room.
func (s *State) route(from *Connection, req *SignalRequest) {
	roomID := req.Room
	if roomID == "" {
		roomID = from.Room
	}
	if roomID == "" {
		s.drop(from, req.Kind, ErrNoRoom)
		return
	}
	room, ok := s.rooms.Get(roomID)
	if !ok || !room.Has(from) {
		s.drop(from, req.Kind, ErrNotAMember)
		return
	}

	if req.Target != "" {
		s.deliver(from, room, req)
		return
	}
	n := s.broadcast(room, req.msg, from)
	s.metrics.Add(metrics.MessagesForwarded, uint64(n))
	s.log.Debug("signal broadcast", "type", req.Kind, "from", from.ID, "room", roomID, "recipients", n)
}

// deliver sends an addressed signal to its target, stamped with the sender
// id and room. Failures are recorded locally and never reported back.
func (s *State) deliver(from *Connection, room *Room, req *SignalRequest) {
	to, ok := room.Member(req.Target)
	if !ok || to == from {
		s.metrics.Inc(metrics.DeliveryFailedNotFound)
		s.log.Info("signal not delivered", "type", req.Kind, "from", from.ID, "to", req.Target, "room", room.ID, "err", ErrPeerNotFound)
		return
	}
	if !to.isOpen() {
		s.metrics.Inc(metrics.DeliveryFailedClosed)
		s.log.Info("signal not delivered", "type", req.Kind, "from", from.ID, "to", req.Target, "room", room.ID, "err", ErrPeerClosed)
		return
	}
	if s.send(to, req.forwardTo(from.ID, room.ID)) {
		s.metrics.Inc(metrics.MessagesForwarded)
		s.log.Debug("signal relayed", "type", req.Kind, "from", from.ID, "to", to.ID, "room", room.ID)
	}
}

// broadcast sends msg to every open member of room except exclude, which
// may be nil. It returns the number of peers the message was queued for.
func (s *State) broadcast(room *Room, msg *Message, exclude *Connection) int {
	n := 0
	for _, c := range room.members {
		if c == exclude {
			continue
		}
		if s.send(c, msg) {
			n++
		}
	}
	return n
}
