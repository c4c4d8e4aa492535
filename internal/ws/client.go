package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 256
)

// Client is one authenticated socket. The hub owns its send channel and its
// room memberships; both are guarded by the hub lock.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	info   ConnInfo
	rooms  map[int]struct{}
	closed bool
}

func newClient(conn *websocket.Conn, info ConnInfo) *Client {
	return &Client{
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		info:  info,
		rooms: make(map[int]struct{}),
	}
}

// UserID returns the authenticated owner of the connection.
func (c *Client) UserID() int { return c.info.UserID }

// readPump feeds inbound frames to handle until the peer goes away.
func (c *Client) readPump(handle func(c *Client, payload []byte)) error {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		handle(c, payload)
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
// It exits when the hub closes the queue or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
