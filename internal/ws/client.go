package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"trailmarket/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is the middleman between one websocket connection and the hub.
type Client struct {
	id        string
	userID    int64
	gateway   *Gateway
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func newClient(gateway *Gateway, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		id:      uuid.NewString(),
		userID:  userID,
		gateway: gateway,
		conn:    conn,
		send:    make(chan []byte, 256),
	}
}

// readPump pumps inbound frames from the connection into the gateway
// dispatcher. It owns connection teardown.
func (c *Client) readPump() {
	defer func() {
		c.gateway.disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.gateway.logger.Debug().Err(err).Str("client_id", c.id).Msg("unexpected websocket close")
			}
			break
		}
		c.gateway.dispatch(c, env)
	}
}

// writePump pumps outbound frames from the send channel to the connection
// and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue attempts a non-blocking delivery. The hub only calls this while
// holding its lock, which orders deliveries against closeSend.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		metrics.IncWSEvent("dropped")
		return false
	}
}

// closeSend closes the send channel exactly once, ending writePump.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
