package relayclient

import (
	"context"

	"github.com/BioHazard786/roomrelay/internal/signaling"
)

// Signal is an offer, answer or candidate relayed from another peer.
type Signal struct {
	From    string
	Room    string
	Payload any
}

// Handler routes incoming relay messages to typed channels.
type Handler struct {
	client      *Client
	PeerJoined  chan string
	PeerLeft    chan string
	HostChanged chan string
	Offer       chan *Signal
	Answer      chan *Signal
	Candidate   chan *Signal
}

// NewHandler creates a new message handler.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:      client,
		PeerJoined:  make(chan string, 8),
		PeerLeft:    make(chan string, 8),
		HostChanged: make(chan string, 8),
		Offer:       make(chan *Signal, 8),
		Answer:      make(chan *Signal, 8),
		Candidate:   make(chan *Signal, 32),
	}
}

// Start routes messages until the connection ends or ctx is done, then
// closes every channel.
func (h *Handler) Start(ctx context.Context) {
	defer h.close()

	for {
		var msg *signaling.Message
		select {
		case <-ctx.Done():
			return
		case m, ok := <-h.client.Incoming():
			if !ok {
				return
			}
			msg = m
		}

		var ch chan string
		var sig chan *Signal
		var value any

		switch msg.Type {
		case signaling.TypePeerJoined:
			ch = h.PeerJoined
		case signaling.TypePeerLeft:
			ch = h.PeerLeft
		case signaling.TypeHostChanged:
			ch = h.HostChanged
		case signaling.TypeOffer:
			sig, value = h.Offer, msg.Offer
		case signaling.TypeAnswer:
			sig, value = h.Answer, msg.Answer
		case signaling.TypeCandidate:
			sig, value = h.Candidate, msg.Candidate
		default:
			continue
		}

		if ch != nil {
			id := msg.PeerID
			if msg.Type == signaling.TypeHostChanged {
				id = msg.NewHostID
			}
			select {
			case ch <- id:
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case sig <- &Signal{From: msg.PeerID, Room: msg.Room, Payload: value}:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) close() {
	close(h.PeerJoined)
	close(h.PeerLeft)
	close(h.HostChanged)
	close(h.Offer)
	close(h.Answer)
	close(h.Candidate)
}
