// Package messaging implements event transport over Redis Streams: a
// fire-and-forget publisher on the write side and a consumer-group reader
// on the worker side. Delivery is at-least-once; consumers deduplicate.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
	redisstore "github.com/forum-hub/forum-engagement/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUBLISHER
// ══════════════════════════════════════════════════════════════════════════════

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New("messaging: publisher is closed")

// PublisherConfig contains configuration for the Publisher.
type PublisherConfig struct {
	// BufferSize is the capacity of the in-process queue between callers
	// and the stream writer.
	BufferSize int

	// MaxStreamLen caps each stream with approximate trimming; 0 disables
	// trimming.
	MaxStreamLen int64

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultPublisherConfig returns sensible defaults.
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		BufferSize:   256,
		MaxStreamLen: 100_000,
	}
}

// Publisher appends events to per-topic Redis Streams.
//
// Publish is fire-and-forget: it hands the event to a background writer and
// returns immediately. Callers never block on the broker and never see broker
// errors; a full buffer drops the event with a warning rather than stalling
// the request path. Events that reach the stream survive until consumed, so
// the overall contract is at-least-once with loss possible only before the
// broker write.
type Publisher struct {
	client    *redis.Client
	queue     chan shared.Event
	maxLen    int64
	logger    *slog.Logger
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
}

// NewPublisher creates a Publisher and starts its background writer.
func NewPublisher(client *redis.Client, cfg PublisherConfig) *Publisher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultPublisherConfig().BufferSize
	}

	p := &Publisher{
		client: client,
		queue:  make(chan shared.Event, cfg.BufferSize),
		maxLen: cfg.MaxStreamLen,
		logger: cfg.Logger,
		done:   make(chan struct{}),
	}

	p.wg.Add(1)
	go p.writeLoop()

	return p
}

// Publish enqueues the event for delivery. It never blocks and never returns
// a broker error to the caller; invalid events and drops are logged.
func (p *Publisher) Publish(ev shared.Event) {
	if !ev.Topic.IsValid() {
		p.logger.Warn("dropping event with unknown topic", "topic", ev.Topic, "event_id", ev.ID)
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("dropping event after close", "topic", ev.Topic, "event_id", ev.ID)
		return
	}

	select {
	case p.queue <- ev:
	default:
		p.logger.Warn("publish buffer full, dropping event", "topic", ev.Topic, "event_id", ev.ID)
	}
}

// Close stops accepting events, drains the queue to the broker and waits for
// the writer to finish.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		close(p.queue)
		p.wg.Wait()
		close(p.done)
		p.logger.Info("event publisher closed")
	})
	return nil
}

// writeLoop moves events from the queue into their topic streams.
func (p *Publisher) writeLoop() {
	defer p.wg.Done()

	ctx := context.Background()
	for ev := range p.queue {
		if err := p.append(ctx, ev); err != nil {
			p.logger.Error("failed to append event to stream",
				"topic", ev.Topic,
				"event_id", ev.ID,
				"error", err,
			)
		}
	}
}

// append writes one event as a stream entry.
func (p *Publisher) append(ctx context.Context, ev shared.Event) error {
	values, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: redisstore.StreamKey(ev.Topic),
		Values: values,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	return p.client.XAdd(ctx, args).Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRE FORMAT
// ══════════════════════════════════════════════════════════════════════════════

// encodeEvent flattens an event into stream field-value pairs. The Data map
// travels as one JSON field so consumers get it back without schema changes
// per topic.
func encodeEvent(ev shared.Event) (map[string]interface{}, error) {
	values := map[string]interface{}{
		"id":          ev.ID,
		"topic":       string(ev.Topic),
		"actor_id":    ev.ActorID,
		"entity_kind": int(ev.EntityKind),
		"entity_id":   ev.EntityID,
		"author_id":   ev.AuthorID,
		"created_at":  ev.CreatedAt.UnixMilli(),
	}
	if len(ev.Data) > 0 {
		raw, err := json.Marshal(ev.Data)
		if err != nil {
			return nil, err
		}
		values["data"] = string(raw)
	}
	return values, nil
}
