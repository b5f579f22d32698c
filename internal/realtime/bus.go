package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"learnez/pkg/logger"
)

// Bus fans SSE messages out across service instances.
type Bus interface {
	Publish(ctx context.Context, msg SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m SSEMessage)) error
	Close() error
}

type RedisBusConfig struct {
	Addr     string
	Password string
	Channel  string
}

type redisBus struct {
	log     *logger.Logger
	rdb     *redis.Client
	channel string
}

func NewRedisBus(cfg RedisBusConfig, log *logger.Logger) (Bus, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if cfg.Channel == "" {
		cfg.Channel = "learnez:events"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisBus(rdb, cfg.Channel, log), nil
}

func newRedisBus(rdb *redis.Client, channel string, log *logger.Logger) *redisBus {
	return &redisBus{
		log:     log.With("component", "RedisBus"),
		rdb:     rdb,
		channel: channel,
	}
}

func (b *redisBus) Publish(ctx context.Context, msg SSEMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m SSEMessage)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var msg SSEMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad redis SSE payload", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
