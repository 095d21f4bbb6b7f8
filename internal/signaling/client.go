package signaling

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/BioHazard786/roomrelay/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024 // 64 KB - enough for WebRTC SDP messages

	// Outbound messages buffered per peer before new ones are dropped.
	sendQueueSize = 256
)

// ClientOptions tunes a single websocket connection.
type ClientOptions struct {
	// MaxMessagesPerSecond caps inbound frames per connection. Frames over
	// the limit are dropped; the connection stays open. Zero disables it.
	MaxMessagesPerSecond int

	// PingPeriod and PongWait override the heartbeat timings. Zero keeps
	// the defaults.
	PingPeriod time.Duration
	PongWait   time.Duration
}

// Client is a wrapper for a single websocket connection (a peer).
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	log  *slog.Logger

	// send is a buffered channel for all outbound messages. The hub writes
	// to it without blocking and writePump drains it to the socket.
	send chan *Message

	id         atomic.Pointer[string]
	codec      atomic.Uint32
	open       atomic.Bool
	limiter    *rate.Limiter
	pingPeriod time.Duration
	pongWait   time.Duration
}

// NewClient wraps conn. The caller must Register the client with the hub
// before starting its pumps.
func NewClient(hub *Hub, conn *websocket.Conn, opts ClientOptions) *Client {
	c := &Client{
		hub:        hub,
		conn:       conn,
		log:        hub.log.With("remote", conn.RemoteAddr().String()),
		send:       make(chan *Message, sendQueueSize),
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
	}
	if opts.PingPeriod > 0 {
		c.pingPeriod = opts.PingPeriod
	}
	if opts.PongWait > 0 {
		c.pongWait = opts.PongWait
	}
	if opts.MaxMessagesPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.MaxMessagesPerSecond), opts.MaxMessagesPerSecond)
	}
	c.open.Store(true)
	return c
}

// ID returns the peer id assigned by the hub, or "" before registration.
func (c *Client) ID() string {
	if id := c.id.Load(); id != nil {
		return *id
	}
	return ""
}

func (c *Client) setID(id string) {
	c.id.Store(&id)
}

// IsOpen reports whether the socket can still accept writes.
func (c *Client) IsOpen() bool {
	return c.open.Load()
}

// Send queues msg for writePump. It never blocks; a full queue drops msg.
func (c *Client) Send(msg *Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Codec returns the encoding of the last frame received from the peer.
func (c *Client) Codec() Codec {
	return Codec(c.codec.Load())
}

// release is called by the hub once the peer is unregistered. Closing the
// send channel stops writePump.
func (c *Client) release() {
	c.open.Store(false)
	close(c.send)
}

// Start runs both pumps in their own goroutines.
func (c *Client) Start() {
	go c.WritePump()
	go c.ReadPump()
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.open.Store(false)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		frameType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn("websocket read failed", "peer", c.ID(), "err", err)
			}
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			c.hub.Metrics().Inc(metrics.DropRateLimited)
			c.log.Debug("frame dropped by rate limit", "peer", c.ID())
			continue
		}

		codec := CodecForFrame(frameType)
		c.codec.Store(uint32(codec))
		c.hub.Inbound(c, codec, data)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
//
// A goroutine running WritePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine. The heartbeat ticker lives and
// dies with this goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)

	defer func() {
		ticker.Stop()
		c.open.Store(false)
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			codec := c.Codec()
			data, err := Encode(codec, message)
			if err != nil {
				c.log.Error("encode outbound message", "peer", c.ID(), "type", message.Type, "err", err)
				continue
			}
			if err := c.conn.WriteMessage(codec.FrameType(), data); err != nil {
				c.log.Debug("websocket write failed", "peer", c.ID(), "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
