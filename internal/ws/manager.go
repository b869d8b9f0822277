package ws

import (
	"context"
	"encoding/json"
	"github.com/coder/websocket"
	"log/slog"
	"presence-relay/internal/presence"
	"sync"
)

// Handler receives connection lifecycle notifications and decoded requests.
type Handler interface {
	OnConnect(ctx context.Context, id string) error
	OnDisconnect(ctx context.Context, id string) error
	Handle(ctx context.Context, from string, req presence.Request) error
}

// Manager owns the live websocket clients and implements presence.Sink.
type Manager struct {
	clients        map[string]*Client
	register       chan *Client
	unregister     chan *Client
	mu             sync.RWMutex
	handler        Handler
	logger         *slog.Logger
	sendBufferSize int
	ctx            context.Context
	cancel         context.CancelFunc
}

func NewManager(ctx context.Context, logger *slog.Logger, sendBufferSize int) *Manager {
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{
		clients:        make(map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		logger:         logger,
		sendBufferSize: sendBufferSize,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// SetHandler must be called before Start.
func (m *Manager) SetHandler(handler Handler) {
	m.handler = handler
}

func (m *Manager) HandleNewConnection(id string, conn *websocket.Conn) {
	NewClient(id, conn, m).Start()
}

// Start runs the registration loop until the manager is shut down.
// Connects and disconnects are handed to the handler one at a time, in
// arrival order.
func (m *Manager) Start() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			_, exists := m.clients[client.ID]
			if !exists {
				m.clients[client.ID] = client
			}
			m.mu.Unlock()
			if exists {
				m.logger.Error("client id already registered", "clientID", client.ID)
				go client.Close()
				continue
			}

			if err := m.handler.OnConnect(m.ctx, client.ID); err != nil {
				m.logger.Error("failed to connect session", "clientID", client.ID, "error", err)
				m.drop(client)
				go client.Close()
			}
			close(client.ready)
		case client := <-m.unregister:
			if !m.drop(client) {
				continue
			}
			if err := m.handler.OnDisconnect(m.ctx, client.ID); err != nil {
				m.logger.Error("failed to disconnect session", "clientID", client.ID, "error", err)
			}
		case <-m.ctx.Done():
			return
		}
	}
}

// Send implements presence.Sink.
func (m *Manager) Send(id string, evt presence.Event) {
	data, err := json.Marshal(evt.Payload)
	if err != nil {
		m.logger.Error("failed to marshal event", "clientID", id, "type", evt.Kind, "error", err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[id]
	if !ok {
		m.logger.Debug("no client for event", "clientID", id, "type", evt.Kind)
		return
	}
	client.Send(Message{Type: string(evt.Kind), Data: data})
}

// drop removes c from the live set and closes its queue. It reports false if
// c was not the registered client for its id.
func (m *Manager) drop(c *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.clients[c.ID]
	if !ok || current != c {
		return false
	}
	delete(m.clients, c.ID)
	close(c.send)
	return true
}

func (m *Manager) forceDisconnect(c *Client) {
	c.Close()
}

func (m *Manager) Shutdown() {
	m.cancel()
	m.mu.Lock()
	clients := make([]*Client, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	m.mu.Unlock()
	for _, client := range clients {
		client.Close()
	}
}
