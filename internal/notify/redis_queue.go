package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type listPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisQueue pushes messages onto a Redis list consumed by downstream workers.
type RedisQueue struct {
	client listPusher
	list   string
}

// NewRedisQueue builds a queue sender writing to the given list key.
func NewRedisQueue(client *redis.Client, list string) (*RedisQueue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if list == "" {
		return nil, errors.New("queue name is required")
	}
	return &RedisQueue{client: client, list: list}, nil
}

// Send implements QueueSender.
func (q *RedisQueue) Send(ctx context.Context, msg QueueMessage) (string, error) {
	if err := q.client.LPush(ctx, q.list, msg.Body).Err(); err != nil {
		return "", fmt.Errorf("redis lpush %s: %w", q.list, err)
	}
	return msg.ID, nil
}
