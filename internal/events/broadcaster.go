package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

// Broadcaster listens for bank events on Redis and forwards them to every feed client.
type Broadcaster struct {
	redis   *redis.Client
	hub     *ws.Hub
	channel string
	logger  zerolog.Logger
}

func NewBroadcaster(client *redis.Client, hub *ws.Hub, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broadcaster{
		redis:   client,
		hub:     hub,
		channel: channel,
		logger:  logger.With().Str("component", "question_broadcaster").Logger(),
	}
}

// Run subscribes to the channel and blocks until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.hub == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(payload string) {
	var msg ws.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode question event payload")
		return
	}
	switch msg.Type {
	case ws.TypeQuestionCreated, ws.TypeQuestionDeleted:
	default:
		b.logger.Warn().Str("type", msg.Type).Msg("ignoring unknown question event")
		return
	}
	if err := b.hub.BroadcastAll(msg); err != nil {
		b.logger.Warn().Err(err).Msg("failed to broadcast question event")
	}
}
