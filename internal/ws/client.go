package ws

import (
	"context"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

const (
	sendBuffer   = 64
	pingInterval = 15 * time.Second
)

// Client is one websocket connection.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func newRoomID() string { return uuid.NewString() }

func newClient(conn *websocket.Conn) *Client {
	return &Client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
}

// writePump forwards queued messages and keeps the connection alive
// until send is closed or ctx ends.
func (c *Client) writePump(ctx context.Context) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-ping.C:
			_ = c.conn.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}
