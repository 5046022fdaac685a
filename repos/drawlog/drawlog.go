package drawlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list draws are appended to.
const DefaultQueueName = "bingo_draws"

// DrawRecord is one called number, as consumed by the audit reader.
type DrawRecord struct {
	RoundID   string `json:"round_id"`
	SessionID string `json:"session_id"`
	Sequence  int    `json:"sequence"`
	Number    int    `json:"number"`
	Label     string `json:"label"`
	Timestamp int64  `json:"timestamp"`
}

// Publisher records draws somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, record DrawRecord) error
}

type pusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

type RedisPublisher struct {
	rdb   pusher
	queue string
}

// Connect dials Redis and checks the connection before returning a publisher.
func Connect(ctx context.Context, addr string, db int, queue string) (*RedisPublisher, *redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return NewRedisPublisher(rdb, queue), rdb, nil
}

func NewRedisPublisher(rdb pusher, queue string) *RedisPublisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &RedisPublisher{rdb: rdb, queue: queue}
}

func (p *RedisPublisher) Publish(ctx context.Context, record DrawRecord) error {
	if record.Timestamp == 0 {
		record.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal DrawRecord: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}

// Noop drops every record. Used when no Redis is configured.
type Noop struct{}

func (Noop) Publish(context.Context, DrawRecord) error { return nil }
