package bus

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/fasthttp/websocket"

	"github.com/proxydeck/backend/src/types"
)

// Client wraps a WebSocket connection and manages message flow.
type Client struct {
	ID          string
	conn        types.Conn
	hub         *Hub
	send        chan []byte
	connectedAt time.Time
	mu          sync.Mutex
	done        chan struct{}
	closed      bool
}

// inboundFrame is the decoded shape of a client-sent message. Only the
// type tag matters; the protocol recognizes just "ping" inbound.
type inboundFrame struct {
	Type string `json:"type"`
}

// NewClient creates a new WebSocket client wrapper.
func NewClient(id string, conn types.Conn, h *Hub) *Client {
	return &Client{
		ID:          id,
		conn:        conn,
		hub:         h,
		send:        make(chan []byte, 256),
		connectedAt: h.clock.Now(),
		done:        make(chan struct{}),
	}
}

// Info returns metadata about this client.
func (c *Client) Info() types.ClientInfo {
	return types.ClientInfo{
		ID:          c.ID,
		ConnectedAt: c.connectedAt,
	}
}

// ReadPump reads frames from the WebSocket until the transport fails or
// closes, then deregisters the client. Frames that do not decode to a
// recognized envelope are dropped without a response; the connection
// stays up.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		raw, err := c.conn.ReadMessage()
		if err != nil {
			if !isCleanClose(err) {
				c.hub.logger.Warn().Err(err).Str("client_id", c.ID).Msg("connection read failed")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			// Malformed payload, deliberately discarded.
			continue
		}
		if frame.Type != TypePing {
			continue
		}

		// Pong goes back on this connection only, never through broadcast.
		reply, err := json.Marshal(NewPong(c.hub.clock))
		if err != nil {
			continue
		}
		c.trySend(reply)
	}
}

// isCleanClose reports whether a read error is an ordinary end of the
// connection rather than a transport fault worth logging.
func isCleanClose(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// WritePump writes queued frames to the WebSocket.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(payload); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// trySend queues payload for delivery without blocking. It reports false
// when the client is closed or its buffer is full; the caller treats both
// as "not writable right now" and moves on.
func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close signals the client to stop its pumps.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
		close(c.send)
	}
}
