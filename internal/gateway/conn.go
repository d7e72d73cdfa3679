package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/mankind/internal/model"
)

// ErrConnClosed is returned by Send once the connection is closed
var ErrConnClosed = errors.New("connection closed")

// conn adapts one websocket to the duel session: inbound text frames are
// delivered on a channel and outbound events are queued for a single writer
// goroutine.
type conn struct {
	ws     *websocket.Conn
	cfg    Config
	logger *slog.Logger

	inbound chan []byte
	send    chan []byte

	closed     chan struct{}
	closeOnce  sync.Once
	cancel     context.CancelFunc
	writerDone chan struct{}
}

func newConn(ws *websocket.Conn, cfg Config, cancel context.CancelFunc, logger *slog.Logger) *conn {
	return &conn{
		ws:         ws,
		cfg:        cfg,
		logger:     logger,
		inbound:    make(chan []byte, cfg.InboundBuffer),
		send:       make(chan []byte, cfg.SendBuffer),
		closed:     make(chan struct{}),
		cancel:     cancel,
		writerDone: make(chan struct{}),
	}
}

// Send encodes an event and queues it for the writer
func (c *conn) Send(ctx context.Context, event model.OutboundEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	case <-c.closed:
		return ErrConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the session and tells the writer to shut the socket. It is
// safe to call more than once and from any goroutine.
func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.cancel()
	})
	return nil
}

// readPump forwards text frames to the inbound channel until the socket
// fails, then closes the channel and cancels the session
func (c *conn) readPump() {
	defer func() {
		close(c.inbound)
		_ = c.Close()
	}()

	c.ws.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		select {
		case c.inbound <- data:
		case <-c.closed:
			return
		}
	}
}

// writePump is the only goroutine that writes to the socket
func (c *conn) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
		close(c.writerDone)
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				c.logger.Debug("websocket write error", slog.String("error", err.Error()))
				_ = c.Close()
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}

		case <-c.closed:
			c.flush()
			_ = c.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes any events still queued when the connection closes
func (c *conn) flush() {
	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *conn) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
	return c.ws.WriteMessage(messageType, data)
}
