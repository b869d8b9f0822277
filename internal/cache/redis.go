package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/redis/go-redis/v9"
	"log/slog"
	"presence-relay/internal/presence"
	"time"
)

type opKind int

const (
	opPut opKind = iota
	opDelete
)

type directoryOp struct {
	kind    opKind
	id      string
	session presence.Session
}

// RedisPresenceDirectory mirrors live sessions into Redis so other services
// can see who is online. Updates are queued and applied in order by Run.
type RedisPresenceDirectory struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	ops    chan directoryOp
}

func NewRedisPresenceDirectory(client *redis.Client, ttl time.Duration, logger *slog.Logger, queueSize int) *RedisPresenceDirectory {
	return &RedisPresenceDirectory{
		client: client,
		ttl:    ttl,
		logger: logger,
		ops:    make(chan directoryOp, queueSize),
	}
}

// Put implements presence.Directory.
func (r *RedisPresenceDirectory) Put(session presence.Session) {
	r.enqueue(directoryOp{kind: opPut, id: session.ID, session: session})
}

// Delete implements presence.Directory.
func (r *RedisPresenceDirectory) Delete(id string) {
	r.enqueue(directoryOp{kind: opDelete, id: id})
}

func (r *RedisPresenceDirectory) enqueue(op directoryOp) {
	select {
	case r.ops <- op:
	default:
		r.logger.Warn("presence directory queue full, dropping update", "clientID", op.id)
	}
}

func (r *RedisPresenceDirectory) Run(ctx context.Context) error {
	r.logger.Info("presence directory is running", "ttl", r.ttl)
	for {
		select {
		case op := <-r.ops:
			if err := r.apply(ctx, op); err != nil {
				r.logger.Warn("failed to mirror session", "clientID", op.id, "error", err)
			}
		case <-ctx.Done():
			r.logger.Info("shutting down presence directory")
			return nil
		}
	}
}

func (r *RedisPresenceDirectory) apply(ctx context.Context, op directoryOp) error {
	switch op.kind {
	case opPut:
		return r.SetSession(ctx, op.session)
	case opDelete:
		return r.DeleteSession(ctx, op.id)
	}
	return fmt.Errorf("unknown directory op: %d", op.kind)
}

func (r *RedisPresenceDirectory) SetSession(ctx context.Context, session presence.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshalling session: %w", err)
	}
	key := formatKey(session.ID)
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisPresenceDirectory) DeleteSession(ctx context.Context, sessionID string) error {
	key := formatKey(sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func formatKey(sessionID string) string {
	return fmt.Sprintf("presence:session:%s", sessionID)
}
