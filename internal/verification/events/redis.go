package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bridgeid/internal/verification/models"
)

// RedisSink publishes events as JSON on a Redis pub/sub channel.
type RedisSink struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisSink(client redis.UniversalClient, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Publish(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", s.channel, err)
	}
	return nil
}
