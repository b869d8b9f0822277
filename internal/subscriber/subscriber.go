package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/redis/go-redis/v9"
	"log/slog"
	"presence-relay/internal/presence"
)

// Relay routes a direct message to a connected session.
type Relay interface {
	OnMessage(ctx context.Context, from string, req presence.DirectMessageRequest) error
}

type Subscriber struct {
	logger *slog.Logger
	client *redis.Client
	topic  string
	relay  Relay
}

func NewSubscriber(logger *slog.Logger, client *redis.Client, topic string, relay Relay) *Subscriber {
	return &Subscriber{
		logger,
		client,
		topic,
		relay,
	}
}

func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info("Redis subscriber is running", "topic", s.topic)
	pubsub := s.client.Subscribe(ctx, s.topic)
	defer func() {
		if err := pubsub.Close(); err != nil {
			s.logger.Warn("failed to close pubsub", "error", err)
		}
	}()

	msgCh := pubsub.Channel()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				s.logger.Warn("pubsub channel closed by Redis")
				return nil
			}
			if err := s.handleMessage(ctx, msg); err != nil {
				s.logger.Error("error handling message", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("shutting down Redis subscriber")
			return nil
		}
	}
}

func (s *Subscriber) handleMessage(ctx context.Context, msg *redis.Message) error {
	s.logger.Debug("received message", "channel", msg.Channel, "payload", msg.Payload)

	var relayMsg RelayMessage
	if err := json.Unmarshal([]byte(msg.Payload), &relayMsg); err != nil {
		return fmt.Errorf("unmarshalling relay message: %w", err)
	}
	if err := relayMsg.Validate(); err != nil {
		return err
	}

	return s.relay.OnMessage(ctx, relayMsg.Sender(), presence.DirectMessageRequest{
		To:      relayMsg.To,
		Message: relayMsg.Message,
	})
}
