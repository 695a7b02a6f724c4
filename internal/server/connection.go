package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/rummycircle/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	sendBuffer = 16
)

// Connection is one browser tab playing one session. All messages from the
// peer are handled on the read goroutine, which is the only goroutine that
// touches the session.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	session   *game.Session
	logger    *log.Logger
	clock     quartz.Clock
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps conn and binds it to session
func NewConnection(parent context.Context, conn *websocket.Conn, session *game.Session, logger *log.Logger, clock quartz.Clock) *Connection {
	ctx, cancel := context.WithCancel(parent)

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, sendBuffer),
		session: session,
		logger:  logger.WithPrefix("conn").With("session", session.ID()),
		clock:   clock,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins handling the connection and pushes the initial state
func (c *Connection) Start() {
	go c.writePump()
	c.sendState("", c.session.Snapshot())
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the write pump
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return websocket.ErrCloseSent
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(c.clock.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(c.clock.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := c.clock.NewTicker(pingPeriod, "conn", "ping")
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(c.clock.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				_ = c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(c.clock.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(c.clock.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "requestId", msg.RequestID)

	switch msg.Type {
	case MessageTypeSnapshot:
		c.sendState(msg.RequestID, c.session.Snapshot())

	case MessageTypeAction:
		var action game.Action
		if err := json.Unmarshal(msg.Data, &action); err != nil {
			c.sendError(msg.RequestID, "invalid_message", "Failed to parse action data", nil)
			return
		}
		c.apply(msg.RequestID, action)

	case MessageTypeCommand:
		var data CommandData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, "invalid_message", "Failed to parse command data", nil)
			return
		}
		action, err := game.ParseAction(data.Text)
		if err != nil {
			snap := c.session.Snapshot()
			c.sendError(msg.RequestID, game.ErrorCode(err), err.Error(), &snap)
			return
		}
		c.apply(msg.RequestID, action)

	default:
		c.sendError(msg.RequestID, "unknown_message_type", "Unknown message type: "+msg.Type.String(), nil)
	}
}

func (c *Connection) apply(requestID string, action game.Action) {
	snap, err := game.Dispatch(c.session, action)
	if err != nil {
		c.logger.Debug("Action rejected", "action", action, "error", err)
		c.sendError(requestID, game.ErrorCode(err), err.Error(), &snap)
		return
	}
	c.logger.Debug("Action applied", "action", action, "phase", snap.Phase, "score", snap.Score)
	c.sendState(requestID, snap)
}

func (c *Connection) sendState(requestID string, snap game.Snapshot) {
	msg, err := NewMessage(MessageTypeState, requestID, snap, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create state message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// sendError sends an error message to the client
func (c *Connection) sendError(requestID, code, message string, snap *game.Snapshot) {
	msg, err := NewMessage(MessageTypeError, requestID, ErrorData{
		Code:    code,
		Message: message,
		State:   snap,
	}, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}
