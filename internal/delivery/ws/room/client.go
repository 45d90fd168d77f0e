package ws_room

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/humanbelnik/lootsplit/internal/model"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 << 10
)

// Client is one push connection. It satisfies model.Subscriber.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	// room is the last room joined. Only the read pump touches it.
	room string

	send      chan model.Event
	done      chan struct{}
	closeOnce sync.Once

	logger *zap.Logger
}

func newClient(id string, hub *Hub, conn *websocket.Conn, buffer int) *Client {
	return &Client{
		id:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan model.Event, buffer),
		done:   make(chan struct{}),
		logger: hub.logger.With(zap.String("connection_id", id)),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Deliver never blocks. A client whose buffer is full is considered stalled
// and gets disconnected.
func (c *Client) Deliver(e model.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- e:
		return true
	case <-c.done:
		return false
	default:
		c.logger.Warn("send buffer full, closing connection")
		c.shutdown()
		return false
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump decodes inbound messages and hands them to the hub. It owns the
// connection's lifetime: when it returns the client has left its room.
func (c *Client) readPump() {
	defer func() {
		c.shutdown()
		c.hub.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.hub.handle(c, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case e := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(e); err != nil {
				c.logger.Warn("failed to write message", zap.Error(err))
				c.shutdown()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
