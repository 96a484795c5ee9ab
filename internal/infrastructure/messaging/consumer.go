package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
	redisstore "github.com/forum-hub/forum-engagement/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// PORTS
// ══════════════════════════════════════════════════════════════════════════════

// NoticeMaterializer turns engagement events into stored notices.
type NoticeMaterializer interface {
	Materialize(ctx context.Context, ev shared.Event) error
}

// SearchIndexer keeps the post search index in step with publish and delete
// events.
type SearchIndexer interface {
	IndexPost(ctx context.Context, postID int64) error
	RemovePost(ctx context.Context, postID int64) error
}

// ══════════════════════════════════════════════════════════════════════════════
// CONSUMER
// ══════════════════════════════════════════════════════════════════════════════

// ConsumerConfig contains configuration for the Consumer.
type ConsumerConfig struct {
	// Group is the consumer group name shared by worker replicas.
	Group string

	// Name identifies this worker within the group.
	Name string

	// BlockTimeout is how long one read waits before polling again.
	BlockTimeout time.Duration

	// BatchSize is the maximum entries fetched per read.
	BatchSize int64

	// DedupTTL is how long a processed event id is remembered. Redeliveries
	// inside this window become no-ops.
	DedupTTL time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultConsumerConfig returns sensible defaults.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Group:        "engagement-workers",
		Name:         "worker-1",
		BlockTimeout: 5 * time.Second,
		BatchSize:    32,
		DedupTTL:     24 * time.Hour,
	}
}

// Consumer reads topic streams through a consumer group and routes each event
// to its handler.
//
// Delivery is at-least-once: an entry is acknowledged only after its handler
// succeeds, so a crash mid-handling redelivers it. A short-lived seen-marker
// keyed by the event's dedup key makes the redelivered copy a no-op, which
// keeps notice materialization idempotent.
type Consumer struct {
	client    *redis.Client
	notices   NoticeMaterializer
	indexer   SearchIndexer
	cfg       ConsumerConfig
	logger    *slog.Logger
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
}

// NewConsumer creates a Consumer. Either port may be nil; events for a nil
// port are acknowledged without processing.
func NewConsumer(client *redis.Client, notices NoticeMaterializer, indexer SearchIndexer, cfg ConsumerConfig) *Consumer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	def := DefaultConsumerConfig()
	if cfg.Group == "" {
		cfg.Group = def.Group
	}
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = def.BlockTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = def.DedupTTL
	}

	return &Consumer{
		client:  client,
		notices: notices,
		indexer: indexer,
		cfg:     cfg,
		logger:  cfg.Logger,
	}
}

// Start creates the consumer groups and begins the read loop. It returns once
// the loop is running; Stop shuts it down.
func (c *Consumer) Start(ctx context.Context) error {
	var startErr error
	c.startOnce.Do(func() {
		if err := c.ensureGroups(ctx); err != nil {
			startErr = err
			return
		}

		loopCtx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel

		c.wg.Add(1)
		go c.readLoop(loopCtx)

		c.logger.Info("event consumer started",
			"group", c.cfg.Group,
			"consumer", c.cfg.Name,
		)
	})
	return startErr
}

// Stop halts the read loop and waits for in-flight handling to finish.
func (c *Consumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.logger.Info("event consumer stopped")
}

// ensureGroups creates the consumer group on every topic stream.
func (c *Consumer) ensureGroups(ctx context.Context) error {
	for _, topic := range shared.Topics() {
		stream := redisstore.StreamKey(topic)
		err := c.client.XGroupCreateMkStream(ctx, stream, c.cfg.Group, "0").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			return err
		}
	}
	return nil
}

// readLoop fetches batches across all topic streams until the context ends.
func (c *Consumer) readLoop(ctx context.Context) {
	defer c.wg.Done()

	streams := make([]string, 0, len(shared.Topics())*2)
	for _, topic := range shared.Topics() {
		streams = append(streams, redisstore.StreamKey(topic))
	}
	for range shared.Topics() {
		streams = append(streams, ">")
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.Name,
			Streams:  streams,
			Count:    c.cfg.BatchSize,
			Block:    c.cfg.BlockTimeout,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			c.logger.Error("stream read failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range res {
			for _, entry := range stream.Messages {
				c.consume(ctx, stream.Stream, entry)
			}
		}
	}
}

// consume handles one stream entry and acknowledges it on success.
func (c *Consumer) consume(ctx context.Context, stream string, entry redis.XMessage) {
	ev, err := decodeEvent(entry.Values)
	if err != nil {
		// Malformed entries can never succeed; ack so they stop redelivering.
		c.logger.Error("dropping malformed stream entry",
			"stream", stream,
			"entry_id", entry.ID,
			"error", err,
		)
		c.ack(ctx, stream, entry.ID)
		return
	}

	fresh, err := c.markSeen(ctx, ev)
	if err != nil {
		c.logger.Error("dedup check failed, leaving entry pending",
			"stream", stream,
			"entry_id", entry.ID,
			"error", err,
		)
		return
	}
	if !fresh {
		c.logger.Debug("skipping duplicate event", "event_id", ev.ID, "topic", ev.Topic)
		c.ack(ctx, stream, entry.ID)
		return
	}

	if err := c.route(ctx, ev); err != nil {
		// Clear the marker so the redelivery is not mistaken for a duplicate.
		c.client.Del(ctx, redisstore.EventSeenKey(ev.DedupKey()))
		c.logger.Error("event handling failed, leaving entry pending",
			"topic", ev.Topic,
			"event_id", ev.ID,
			"error", err,
		)
		return
	}

	c.ack(ctx, stream, entry.ID)
}

// route dispatches the event by topic.
func (c *Consumer) route(ctx context.Context, ev shared.Event) error {
	switch ev.Topic {
	case shared.TopicLike, shared.TopicFollow, shared.TopicComment:
		if c.notices == nil {
			return nil
		}
		return c.notices.Materialize(ctx, ev)
	case shared.TopicPublish:
		if c.indexer == nil {
			return nil
		}
		return c.indexer.IndexPost(ctx, ev.EntityID)
	case shared.TopicDelete:
		if c.indexer == nil {
			return nil
		}
		return c.indexer.RemovePost(ctx, ev.EntityID)
	default:
		c.logger.Warn("no handler for topic", "topic", ev.Topic)
		return nil
	}
}

// markSeen records the event's dedup key. It returns false when another
// delivery already claimed the key.
func (c *Consumer) markSeen(ctx context.Context, ev shared.Event) (bool, error) {
	return c.client.SetNX(ctx, redisstore.EventSeenKey(ev.DedupKey()), 1, c.cfg.DedupTTL).Result()
}

func (c *Consumer) ack(ctx context.Context, stream, entryID string) {
	if err := c.client.XAck(ctx, stream, c.cfg.Group, entryID).Err(); err != nil {
		c.logger.Error("ack failed", "stream", stream, "entry_id", entryID, "error", err)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DECODING
// ══════════════════════════════════════════════════════════════════════════════

// decodeEvent rebuilds an event from stream field-value pairs.
func decodeEvent(values map[string]interface{}) (shared.Event, error) {
	var ev shared.Event

	ev.ID = stringField(values, "id")
	if _, err := uuid.Parse(ev.ID); err != nil {
		return ev, errors.New("messaging: entry has no valid event id")
	}

	ev.Topic = shared.Topic(stringField(values, "topic"))
	if !ev.Topic.IsValid() {
		return ev, errors.New("messaging: entry has unknown topic")
	}

	var err error
	if ev.ActorID, err = intField(values, "actor_id"); err != nil {
		return ev, err
	}
	kind, err := intField(values, "entity_kind")
	if err != nil {
		return ev, err
	}
	ev.EntityKind = shared.EntityKind(kind)
	if ev.EntityID, err = intField(values, "entity_id"); err != nil {
		return ev, err
	}
	if ev.AuthorID, err = intField(values, "author_id"); err != nil {
		return ev, err
	}

	ms, err := intField(values, "created_at")
	if err != nil {
		return ev, err
	}
	ev.CreatedAt = time.UnixMilli(ms)

	if raw := stringField(values, "data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &ev.Data); err != nil {
			return ev, errors.New("messaging: entry has malformed data field")
		}
	}
	return ev, nil
}

func stringField(values map[string]interface{}, key string) string {
	s, _ := values[key].(string)
	return s
}

func intField(values map[string]interface{}, key string) (int64, error) {
	s, ok := values[key].(string)
	if !ok {
		return 0, errors.New("messaging: entry missing field " + key)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.New("messaging: entry has non-numeric field " + key)
	}
	return n, nil
}
