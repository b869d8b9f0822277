package presence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Directory mirrors live sessions somewhere outside the process.
// Implementations must not block.
type Directory interface {
	Put(session Session)
	Delete(id string)
}

type noopDirectory struct{}

func (noopDirectory) Put(Session)   {}
func (noopDirectory) Delete(string) {}

// Router drives connection lifecycles and routes inbound requests.
// Every transition runs under mu together with the events it emits, so
// a broadcast always reflects the mutation it reports.
type Router struct {
	mu          sync.Mutex
	logger      *slog.Logger
	registry    *Registry
	broadcaster *Broadcaster
	sink        Sink
	directory   Directory
	lifecycles  map[string]*Lifecycle
}

// NewRouter wires the router to a registry and an outbound sink.
// directory may be nil.
func NewRouter(logger *slog.Logger, registry *Registry, sink Sink, directory Directory) *Router {
	if directory == nil {
		directory = noopDirectory{}
	}
	return &Router{
		logger:      logger,
		registry:    registry,
		broadcaster: NewBroadcaster(registry, sink),
		sink:        sink,
		directory:   directory,
		lifecycles:  make(map[string]*Lifecycle),
	}
}

func (r *Router) OnConnect(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.registry.Add(id)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	lifecycle := r.newLifecycle(id)
	r.lifecycles[id] = lifecycle

	r.sink.Send(id, statusEvent(StatusConnect, session, connectedMessage))
	r.broadcaster.BroadcastRoster()
	r.broadcaster.NotifyJoin(session.DisplayName)

	if err := lifecycle.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	r.logger.Info("session connected", "clientID", id, "name", session.DisplayName)
	return nil
}

func (r *Router) OnDisconnect(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.registry.Remove(id)
	if err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	lifecycle, ok := r.lifecycles[id]
	if !ok {
		lifecycle = r.newLifecycle(id)
	}
	delete(r.lifecycles, id)

	r.broadcaster.NotifyLeave(session.DisplayName)
	r.broadcaster.BroadcastRoster()

	if err := lifecycle.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}

	r.logger.Info("session disconnected", "clientID", id, "name", session.DisplayName)
	return nil
}

// OnMessage delivers a direct message if the recipient is connected.
// Messages to unknown recipients are dropped without error. The sender is
// not checked, so backend services may relay under a synthetic id.
func (r *Router) OnMessage(_ context.Context, from string, req DirectMessageRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.onMessage(from, req)
}

func (r *Router) OnRename(_ context.Context, from string, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.onRename(from, name)
}

// Handle dispatches a request sent by a client connection. Only connections
// in the connected state may issue requests.
func (r *Router) Handle(_ context.Context, from string, req Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state := r.state(from); state != StateConnected {
		return fmt.Errorf("%w: %q is %s", ErrNotConnected, from, state)
	}

	switch req := req.(type) {
	case DirectMessageRequest:
		return r.onMessage(from, req)
	case RenameRequest:
		return r.onRename(from, req.Name)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownRequest, req)
	}
}

// State reports the lifecycle state of a connection. Unknown ids are
// reported as disconnected.
func (r *Router) State(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state(id)
}

func (r *Router) state(id string) string {
	lifecycle, ok := r.lifecycles[id]
	if !ok {
		return StateDisconnected
	}
	return lifecycle.State()
}

func (r *Router) newLifecycle(id string) *Lifecycle {
	return NewLifecycle(func(_ context.Context, state string) {
		r.enter(id, state)
	})
}

// enter mirrors a lifecycle transition into the directory. It runs inside a
// transition, with mu held.
func (r *Router) enter(id, state string) {
	switch state {
	case StateConnected:
		if session, ok := r.registry.Get(id); ok {
			r.directory.Put(session)
		}
	case StateDisconnected:
		r.directory.Delete(id)
	}
	r.logger.Debug("lifecycle transition", "clientID", id, "state", state)
}

func (r *Router) onMessage(from string, req DirectMessageRequest) error {
	if err := r.route(from, req); err != nil {
		if errors.Is(err, ErrUnresolvedRecipient) {
			r.logger.Debug("dropping direct message", "from", from, "to", req.To)
			return nil
		}
		return err
	}
	return nil
}

func (r *Router) onRename(from string, name string) error {
	session, err := r.registry.Rename(from, name)
	if err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	r.sink.Send(from, statusEvent(StatusUpdateName, session, renamedMessage))
	r.broadcaster.BroadcastRoster()
	r.directory.Put(session)

	r.logger.Debug("session renamed", "clientID", from, "name", name)
	return nil
}

func (r *Router) route(from string, req DirectMessageRequest) error {
	if _, ok := r.registry.Get(req.To); !ok {
		return fmt.Errorf("%w: %q", ErrUnresolvedRecipient, req.To)
	}
	r.sink.Send(req.To, messageEvent(from, req.Message))
	return nil
}
