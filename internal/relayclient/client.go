// Package relayclient is a websocket client for the roomrelay signaling
// server.
package relayclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BioHazard786/roomrelay/internal/signaling"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 64 * 1024
	queueSize      = 64
)

var ErrClosed = errors.New("relay connection closed")

// Options configures a Client.
type Options struct {
	// Codec selects the frame encoding. The relay answers in the same one.
	Codec  signaling.Codec
	Logger *slog.Logger

	// Resolver looks up the relay host. Nil uses NewResolver.
	Resolver *Resolver
}

// Client manages the WebSocket connection to the relay.
type Client struct {
	conn      *websocket.Conn
	serverURL string
	codec     signaling.Codec
	log       *slog.Logger
	resolver  *Resolver
	incoming  chan *signaling.Message
	outgoing  chan *signaling.Message
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a new relay client.
func NewClient(serverURL string, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewResolver()
	}
	return &Client{
		serverURL: serverURL,
		codec:     opts.Codec,
		log:       logger,
		resolver:  resolver,
		incoming:  make(chan *signaling.Message, queueSize),
		outgoing:  make(chan *signaling.Message, queueSize),
		done:      make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts the pumps.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid relay URL: %w", err)
	}

	// Resolve the relay host with DNS fallback.
	dialer := *websocket.DefaultDialer
	dialer.NetDialContext = c.resolver.DialContext

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn
	c.conn.SetReadLimit(maxMessageSize)

	go c.readPump()
	go c.writePump()

	return nil
}

// readPump reads frames from the relay. The relay pings; the default ping
// handler answers and each ping extends the read deadline.
func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPingHandler(func(appData string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		err := c.conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	for {
		frameType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := signaling.DecodeMessage(signaling.CodecForFrame(frameType), data)
		if err != nil {
			c.log.Debug("dropping unreadable frame from relay", "err", err)
			continue
		}

		select {
		case c.incoming <- msg:
		case <-c.done:
			return
		}
	}
}

// writePump writes queued messages to the relay.
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case msg := <-c.outgoing:
			data, err := signaling.Encode(c.codec, msg)
			if err != nil {
				c.log.Error("encode message", "type", msg.Type, "err", err)
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(c.codec.FrameType(), data); err != nil {
				c.log.Debug("websocket write failed", "err", err)
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Send queues msg for the relay. It blocks while the queue is full.
func (c *Client) Send(msg *signaling.Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.outgoing <- msg:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Join asks the relay to add this connection to room.
func (c *Client) Join(room string) error {
	return c.Send(&signaling.Message{Type: signaling.TypeJoin, Room: room})
}

// Incoming returns the channel of messages received from the relay. It is
// closed when the connection ends.
func (c *Client) Incoming() <-chan *signaling.Message {
	return c.incoming
}

// Close ends the connection. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
