package room

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeTimeout   = 10 * time.Second
	maxMessageSize = 1024
	sendBuffer     = 32
)

// sender abstracts the per-player outbound channel so room logic can be
// exercised without a live websocket.
type sender interface {
	send(v any) bool
	close()
}

// client owns one websocket connection. Outbound frames funnel through a
// buffered channel so a slow peer can never block the room actor.
type client struct {
	id   string
	conn *websocket.Conn
	out  chan any
	done chan struct{}
	log  zerolog.Logger
}

func newClient(id string, conn *websocket.Conn, log zerolog.Logger) *client {
	return &client{
		id:   id,
		conn: conn,
		out:  make(chan any, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
}

// send queues v for delivery. A full buffer drops the frame rather than
// stalling the room; the read side will notice a dead peer soon enough.
func (c *client) send(v any) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- v:
		return true
	default:
		c.log.Warn().Str("player", c.id).Msg("send buffer full, dropping frame")
		return false
	}
}

// close is called by the room actor only.
func (c *client) close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// writePump drains the outbound queue onto the wire. It exits when the
// room closes the client or a write fails.
func (c *client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case v := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(v); err != nil {
				c.log.Warn().Err(err).Str("player", c.id).Msg("ws write failed")
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// readPump feeds inbound frames into the room. A connection closing for
// any reason turns into a single leave event.
func (c *client) readPump(r *Room) {
	defer func() {
		c.conn.Close()
		r.Leave(c.id)
	}()
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Str("player", c.id).Msg("ws read failed")
			}
			return
		}
		r.Message(c.id, data)
	}
}
