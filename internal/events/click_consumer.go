package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Varun5711/shortlinks/internal/logger"
)

// ClickStore applies aggregated click counts in one transaction.
type ClickStore interface {
	IncrementClicksBy(ctx context.Context, counts map[string]int64) (int64, error)
}

type ConsumerConfig struct {
	StreamName    string
	ConsumerGroup string
	ConsumerName  string
	BatchSize     int
	PollInterval  time.Duration
	BlockTime     time.Duration
}

// ClickConsumer drains the clicks stream through a consumer group. Each batch
// is acknowledged once the counts are applied, or once applying them has
// failed, so a click is counted at most once.
type ClickConsumer struct {
	client *redis.Client
	store  ClickStore
	cfg    ConsumerConfig
	log    *logger.Logger
}

func NewClickConsumer(client *redis.Client, store ClickStore, cfg ConsumerConfig, log *logger.Logger) *ClickConsumer {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &ClickConsumer{
		client: client,
		store:  store,
		cfg:    cfg,
		log:    log,
	}
}

// EnsureGroup creates the stream and consumer group if needed.
func (c *ClickConsumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.StreamName, c.cfg.ConsumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Run consumes until ctx is cancelled.
func (c *ClickConsumer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if _, err := c.ProcessOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("Failed to read from stream: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.cfg.PollInterval):
			}
		}
	}
}

// ProcessOnce reads one batch of new entries and returns how many were acknowledged.
func (c *ClickConsumer) ProcessOnce(ctx context.Context) (int, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.ConsumerGroup,
		Consumer: c.cfg.ConsumerName,
		Streams:  []string{c.cfg.StreamName, ">"},
		Count:    int64(c.cfg.BatchSize),
		Block:    c.cfg.BlockTime,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	acked := 0
	for _, stream := range streams {
		if len(stream.Messages) == 0 {
			continue
		}

		counts, ids := aggregate(stream.Messages, c.log)

		if len(counts) > 0 {
			updated, err := c.store.IncrementClicksBy(ctx, counts)
			if err != nil {
				c.log.Error("Failed to apply %d click events, dropping them: %v", len(ids), err)
			} else {
				c.log.Debug("Processed %d events for %d codes (%d rows)", len(ids), len(counts), updated)
			}
		}

		if len(ids) > 0 {
			if err := c.client.XAck(ctx, c.cfg.StreamName, c.cfg.ConsumerGroup, ids...).Err(); err != nil {
				c.log.Error("Failed to acknowledge messages: %v", err)
				continue
			}
			acked += len(ids)
		}
	}

	return acked, nil
}

// aggregate sums clicks per code. Malformed entries are acknowledged and skipped.
func aggregate(messages []redis.XMessage, log *logger.Logger) (map[string]int64, []string) {
	counts := make(map[string]int64)
	ids := make([]string, 0, len(messages))

	for _, msg := range messages {
		ids = append(ids, msg.ID)

		event, err := ParseClickEvent(msg.Values)
		if err != nil {
			log.Warn("Invalid message %s: %v", msg.ID, err)
			continue
		}
		counts[event.ShortCode]++
	}

	return counts, ids
}
