// Package events publishes question bank mutations over Redis Pub/Sub and relays them to
// WebSocket subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gokatarajesh/trivia-api/internal/question"
	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

// DefaultChannel is the Pub/Sub channel used when none is configured.
const DefaultChannel = "trivia:questions"

// Publisher emits bank mutations on a Redis channel.
type Publisher struct {
	redis   *redis.Client
	channel string
}

var _ question.Events = (*Publisher)(nil)

func NewPublisher(client *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{redis: client, channel: channel}
}

func (p *Publisher) QuestionCreated(ctx context.Context, q question.Question) error {
	return p.publish(ctx, ws.TypeQuestionCreated, ws.QuestionCreatedPayload{
		ID:         q.ID,
		Question:   q.Question,
		Answer:     q.Answer,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	})
}

func (p *Publisher) QuestionDeleted(ctx context.Context, id int) error {
	return p.publish(ctx, ws.TypeQuestionDeleted, ws.QuestionDeletedPayload{ID: id})
}

func (p *Publisher) publish(ctx context.Context, msgType string, payload interface{}) error {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msgType, err)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msgType, err)
	}
	return p.redis.Publish(ctx, p.channel, data).Err()
}
