package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// conn is one device's WebSocket connection plus its outbound buffer.
type conn struct {
	id     string
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
	logger *slog.Logger

	closeOnce sync.Once
}

func newConn(id string, ws *websocket.Conn, bufferSize int, logger *slog.Logger) *conn {
	return &conn{
		id:     id,
		ws:     ws,
		send:   make(chan []byte, bufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// close signals teardown. The send channel is never closed: concurrent
// relays may still be queueing into it, and those messages simply die with
// the connection.
func (c *conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// writePump serializes all writes to the WebSocket: queued envelopes plus
// the keepalive pings. It exits on teardown or the first failed write.
func (c *conn) writePump(pingInterval, writeTimeout time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			c.ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout),
			)
			return

		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("write failed", "error", err)
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := c.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}
