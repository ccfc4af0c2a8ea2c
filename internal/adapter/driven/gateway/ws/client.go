package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/signet-rtc/signet/internal/core/domain"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

var (
	errClientClosed   = errors.New("connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

// Client wraps one websocket connection behind port.Client. Outgoing frames
// are marshalled at Send time into an ordered buffered channel; a single
// write pump goroutine owns the socket's write side, as gorilla requires.
type Client struct {
	id   domain.ConnID
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Client{
		id:   domain.NewConnID(),
		conn: conn,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

func (c *Client) ConnID() domain.ConnID {
	return c.id
}

// Send enqueues the envelope without blocking. A full buffer means the peer
// is not draining; the frame is dropped and the caller decides whether that
// matters.
func (c *Client) Send(env domain.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return errClientClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// WritePump drains the send buffer onto the socket and keeps the connection
// alive with pings. Runs in its own goroutine per connection and closes the
// socket on exit, which in turn unblocks the read loop.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			deadline := time.Now().Add(writeWait)
			if err := c.conn.SetWriteDeadline(deadline); err == nil {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					log.Debug().Err(err).Str("conn_id", c.id.String()).Msg("Error writing close message")
				}
			}
			return

		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("conn_id", c.id.String()).Msg("Error setting write deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("conn_id", c.id.String()).Msg("Error writing frame")
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
