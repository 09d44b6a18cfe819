package hub

import (
	"time"

	"github.com/gorilla/websocket"

	"liveshop/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // signaling payloads carry full session descriptions
	sendBufferSize = 256
)

// Client is one live websocket connection. The hub never touches the
// underlying conn; it only pushes frames onto Send, which WritePump drains.
type Client struct {
	ID   string
	Send chan []byte

	hub  *Hub
	conn *websocket.Conn
	log  logger.Logger
}

func NewClient(id string, hub *Hub, conn *websocket.Conn, log logger.Logger) *Client {
	return &Client{
		ID:   id,
		Send: make(chan []byte, sendBufferSize),
		hub:  hub,
		conn: conn,
		log:  log,
	}
}

// ReadPump relays inbound frames to the hub until the connection drops,
// then unregisters. One goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn("Websocket read failed", "client_id", c.ID, "error", err)
			}
			return
		}
		c.hub.Inbound(c, message)
	}
}

// WritePump drains Send and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
