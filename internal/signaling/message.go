package signaling

import "errors"

// Message is the wire envelope for every frame exchanged with a peer, in
// either direction. Signaling payloads (offer, answer, candidate) are opaque
// and carried through untouched.
type Message struct {
	Type      string `json:"type" msgpack:"type"`
	Room      string `json:"room,omitempty" msgpack:"room,omitempty"`
	PeerID    string `json:"peerId,omitempty" msgpack:"peerId,omitempty"`
	NewHostID string `json:"newHostId,omitempty" msgpack:"newHostId,omitempty"`
	Offer     any    `json:"offer,omitempty" msgpack:"offer,omitempty"`
	Answer    any    `json:"answer,omitempty" msgpack:"answer,omitempty"`
	Candidate any    `json:"candidate,omitempty" msgpack:"candidate,omitempty"`

	// raw holds the inbound frame so broadcasts can be forwarded verbatim
	// to peers that speak the same encoding.
	raw      []byte
	rawCodec Codec
}

// Client to server message types.
const (
	TypeJoin      = "join"
	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeCandidate = "candidate"
)

// Server to client message types.
const (
	TypePeerJoined  = "peer-joined"
	TypePeerLeft    = "peer-left"
	TypeHostChanged = "host-changed"
)

var (
	ErrMalformed      = errors.New("malformed message")
	ErrUnknownType    = errors.New("unknown message type")
	ErrMissingPayload = errors.New("missing signaling payload")
	ErrNoRoom         = errors.New("no room context")
	ErrNotAMember     = errors.New("sender is not a member of the room")
	ErrPeerNotFound   = errors.New("target peer not found")
	ErrPeerClosed     = errors.New("target peer not open")
)

// Inbound is a decoded client message. It is either a JoinRequest or a
// SignalRequest.
type Inbound interface {
	inbound()
}

// JoinRequest asks to join Room. An empty Room falls back to the
// connection's current room.
type JoinRequest struct {
	Room string
}

// SignalRequest carries an offer, answer or candidate. Target is the
// addressed peer id; empty means broadcast to the rest of the room.
type SignalRequest struct {
	Kind   string
	Room   string
	Target string
	msg    *Message
}

func (JoinRequest) inbound()    {}
func (*SignalRequest) inbound() {}

// Payload returns the opaque signaling payload for the request kind.
func (r *SignalRequest) Payload() any {
	return r.msg.payload()
}

func (m *Message) payload() any {
	switch m.Type {
	case TypeOffer:
		return m.Offer
	case TypeAnswer:
		return m.Answer
	case TypeCandidate:
		return m.Candidate
	}
	return nil
}

// classify validates a parsed envelope and turns it into its variant.
func classify(m *Message) (Inbound, error) {
	switch m.Type {
	case TypeJoin:
		return JoinRequest{Room: m.Room}, nil
	case TypeOffer, TypeAnswer, TypeCandidate:
		if m.payload() == nil {
			return nil, ErrMissingPayload
		}
		return &SignalRequest{
			Kind:   m.Type,
			Room:   m.Room,
			Target: m.PeerID,
			msg:    m,
		}, nil
	case "":
		return nil, ErrMalformed
	default:
		return nil, ErrUnknownType
	}
}

// forwardTo builds the addressed copy of a signal: the payload is kept and
// provenance is stamped with the sender id and room.
func (r *SignalRequest) forwardTo(senderID, room string) *Message {
	out := &Message{Type: r.Kind, Room: room, PeerID: senderID}
	switch r.Kind {
	case TypeOffer:
		out.Offer = r.msg.Offer
	case TypeAnswer:
		out.Answer = r.msg.Answer
	case TypeCandidate:
		out.Candidate = r.msg.Candidate
	}
	return out
}
