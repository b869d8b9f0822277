package ws

import (
	"context"
	"encoding/json"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"presence-relay/internal/presence"
	"sync"
	"sync/atomic"
	"time"
)

const pingPeriod = (60 * 9 * time.Second) / 10

// Message is the envelope of every frame, in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Client struct {
	ID        string
	Conn      *websocket.Conn
	Manager   *Manager
	send      chan Message
	ready     chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	dropping  atomic.Bool
}

func NewClient(id string, conn *websocket.Conn, manager *Manager) *Client {
	ctx, cancel := context.WithCancel(manager.ctx)
	return &Client{
		ID:      id,
		Conn:    conn,
		Manager: manager,
		send:    make(chan Message, manager.sendBufferSize),
		ready:   make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
	select {
	case c.Manager.register <- c:
	case <-c.Manager.ctx.Done():
		c.Close()
	}
}

// Close cancels the client's pumps first so the read loop unregisters
// without waiting on the close handshake.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		if err := c.Conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
			c.Manager.logger.Debug("failed to close connection", "clientID", c.ID, "error", err)
		}
	})
}

// Send queues msg without blocking. A client whose queue is full is dropped.
func (c *Client) Send(msg Message) {
	select {
	case c.send <- msg:
	default:
		if c.dropping.CompareAndSwap(false, true) {
			c.Manager.logger.Warn("send queue full, dropping client", "clientID", c.ID)
			go c.Manager.forceDisconnect(c)
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Manager.unregister <- c:
		case <-c.Manager.ctx.Done():
		}
		c.Close()
	}()

	// Nothing is read before the session exists in the registry.
	select {
	case <-c.ready:
	case <-c.ctx.Done():
		return
	}

	for {
		var msg Message
		if err := wsjson.Read(c.ctx, c.Conn, &msg); err != nil {
			c.Manager.logger.Debug("failed to read message", "clientID", c.ID, "error", err)
			break
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := wsjson.Write(c.ctx, c.Conn, msg); err != nil {
				c.Manager.logger.Warn("failed to write message", "clientID", c.ID, "error", err)
				return
			}
			c.Manager.logger.Debug("message sent", "clientID", c.ID, "type", msg.Type)
		case <-ticker.C:
			if err := c.Conn.Ping(c.ctx); err != nil {
				c.Manager.logger.Debug("failed to ping client", "clientID", c.ID, "error", err)
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) handleMessage(msg Message) {
	req, err := presence.DecodeRequest(presence.RequestKind(msg.Type), msg.Data)
	if err != nil {
		c.Manager.logger.Warn("dropping inbound message", "clientID", c.ID, "type", msg.Type, "error", err)
		return
	}
	if err := c.Manager.handler.Handle(c.ctx, c.ID, req); err != nil {
		c.Manager.logger.Error("failed to handle message", "clientID", c.ID, "type", msg.Type, "error", err)
	}
}
