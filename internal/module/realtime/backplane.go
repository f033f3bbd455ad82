package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultChannel     = "flowspace:rooms"
	backplaneQueueSize = 1024
	reconnectDelay     = time.Second
)

// RedisBackplane relays room broadcasts over a Redis pub/sub channel. One
// goroutine publishes in enqueue order and instances only deliver what the
// subscription returns, so all of them see the same per-room order.
type RedisBackplane struct {
	client  *redis.Client
	channel string
	queue   chan Envelope
	logger  *zap.Logger

	ready     chan struct{}
	readyOnce sync.Once
	// saturated is set while the queue is full so the overflow is logged
	// once per episode.
	saturated atomic.Bool
}

// NewRedisBackplane creates a backplane on channel.
func NewRedisBackplane(client *redis.Client, channel string, logger *zap.Logger) *RedisBackplane {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBackplane{
		client:  client,
		channel: channel,
		queue:   make(chan Envelope, backplaneQueueSize),
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// Publish queues env for the publisher goroutine. It returns false when the
// queue is full, which happens when Redis is unreachable long enough for
// the queue to fill before the first subscription.
func (b *RedisBackplane) Publish(env Envelope) bool {
	select {
	case b.queue <- env:
		return true
	default:
	}
	if b.saturated.CompareAndSwap(false, true) {
		b.logger.Error("backplane queue full, delivering broadcasts locally",
			zap.String("channel", b.channel),
			zap.Bool("subscribed", b.subscribed()),
			zap.String("room", env.Room),
			zap.String("event", env.Event),
		)
	}
	return false
}

func (b *RedisBackplane) subscribed() bool {
	select {
	case <-b.ready:
		return true
	default:
		return false
	}
}

// Run subscribes to the channel and publishes queued envelopes until ctx is
// done. Publishing starts once the first subscription is confirmed so the
// instance receives its own broadcasts.
func (b *RedisBackplane) Run(ctx context.Context, deliver func(Envelope)) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.publishLoop(ctx)
	}()

	b.subscribeLoop(ctx, deliver)
	wg.Wait()
	return nil
}

func (b *RedisBackplane) publishLoop(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-b.ready:
	}

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-b.queue:
			payload, err := json.Marshal(env)
			if err != nil {
				b.logger.Error("encode envelope", zap.Error(err))
				continue
			}
			if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
				b.logger.Error("publish room broadcast",
					zap.String("room", env.Room),
					zap.String("event", env.Event),
					zap.Error(err),
				)
			}
			if len(b.queue) == 0 && b.saturated.CompareAndSwap(true, false) {
				b.logger.Info("backplane queue drained", zap.String("channel", b.channel))
			}
		}
	}
}

func (b *RedisBackplane) subscribeLoop(ctx context.Context, deliver func(Envelope)) {
	for {
		sub := b.client.Subscribe(ctx, b.channel)
		if _, err := sub.Receive(ctx); err != nil {
			_ = sub.Close()
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("subscribe room channel", zap.String("channel", b.channel), zap.Error(err))
			if !sleepCtx(ctx, reconnectDelay) {
				return
			}
			continue
		}

		b.readyOnce.Do(func() { close(b.ready) })
		b.consume(ctx, sub.Channel(), deliver)
		_ = sub.Close()

		if ctx.Err() != nil {
			return
		}
		b.logger.Warn("room channel closed, reconnecting", zap.String("channel", b.channel))
		if !sleepCtx(ctx, reconnectDelay) {
			return
		}
	}
}

func (b *RedisBackplane) consume(ctx context.Context, ch <-chan *redis.Message, deliver func(Envelope)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn("discarding malformed envelope", zap.Error(err))
				continue
			}
			deliver(env)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var _ Backplane = (*RedisBackplane)(nil)
