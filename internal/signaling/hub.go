package signaling

import (
	"context"
	"log/slog"

	"github.com/BioHazard786/roomrelay/internal/metrics"
)

// Hub is the central event loop of the relay. It owns the State and is the
// only goroutine that touches it, so every connect, message and disconnect
// is handled to completion before the next one starts.
type Hub struct {
	state   *State
	log     *slog.Logger
	metrics *metrics.Metrics

	register   chan Peer
	unregister chan Peer
	inbound    chan inboundFrame
	queries    chan func(*State)
	done       chan struct{}
}

type inboundFrame struct {
	peer  Peer
	codec Codec
	data  []byte
}

// releaser is implemented by transports that hold resources the hub must
// free once the peer has been unregistered.
type releaser interface {
	release()
}

// NewHub creates a hub with an empty State.
func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		state:      NewState(logger, m),
		log:        logger,
		metrics:    m,
		register:   make(chan Peer),
		unregister: make(chan Peer),
		inbound:    make(chan inboundFrame),
		queries:    make(chan func(*State)),
		done:       make(chan struct{}),
	}
}

// Metrics returns the counters shared with the hub's state.
func (h *Hub) Metrics() *metrics.Metrics {
	return h.metrics
}

// Run processes events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.log.Info("hub started")

	for {
		select {
		case p := <-h.register:
			c := h.state.Connect(p)
			if cl, ok := p.(*Client); ok {
				cl.setID(c.ID)
			}

		case p := <-h.unregister:
			h.state.Disconnect(p)
			if r, ok := p.(releaser); ok {
				r.release()
			}

		case f := <-h.inbound:
			h.state.HandleFrame(f.peer, f.codec, f.data)

		case q := <-h.queries:
			q(h.state)

		case <-ctx.Done():
			h.log.Info("hub stopped")
			return
		}
	}
}

// Register hands a newly connected peer to the hub. It returns false if the
// hub has stopped.
func (h *Hub) Register(p Peer) bool {
	select {
	case h.register <- p:
		return true
	case <-h.done:
		return false
	}
}

// Unregister reports that a peer's transport closed or failed.
func (h *Hub) Unregister(p Peer) {
	select {
	case h.unregister <- p:
	case <-h.done:
	}
}

// Inbound hands one raw frame from p to the hub.
func (h *Hub) Inbound(p Peer, codec Codec, data []byte) {
	select {
	case h.inbound <- inboundFrame{peer: p, codec: codec, data: data}:
	case <-h.done:
	}
}

// Snapshot returns the current rooms, read on the hub goroutine.
func (h *Hub) Snapshot(ctx context.Context) ([]RoomInfo, error) {
	reply := make(chan []RoomInfo, 1)
	q := func(s *State) { reply <- s.Snapshot() }

	select {
	case h.queries <- q:
	case <-h.done:
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case rooms := <-reply:
		return rooms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
