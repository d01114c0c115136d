package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ClickProducer appends click events to a Redis stream for click-worker.
type ClickProducer struct {
	client     *redis.Client
	streamName string
}

// NewClickProducer creates a new click event producer
func NewClickProducer(client *redis.Client, streamName string) *ClickProducer {
	return &ClickProducer{
		client:     client,
		streamName: streamName,
	}
}

func (p *ClickProducer) Publish(ctx context.Context, event *ClickEvent) error {
	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.streamName,
		Values: event.values(),
	})

	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish click event: %w", err)
	}

	return nil
}

// IncrementClicks lets the producer act as the click accountant's sink.
func (p *ClickProducer) IncrementClicks(ctx context.Context, shortCode string) error {
	return p.Publish(ctx, NewClickEvent(shortCode))
}

func (p *ClickProducer) StreamLength(ctx context.Context) (int64, error) {
	result := p.client.XLen(ctx, p.streamName)
	return result.Val(), result.Err()
}
