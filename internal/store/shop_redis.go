package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/storefront-gate/internal/shop"
)

// RedisCheckoutStore persists checkout sessions in Redis with a TTL.
type RedisCheckoutStore struct {
	client *redis.Client
	prefix string
}

// NewRedisCheckoutStore creates a new Redis-backed checkout store.
func NewRedisCheckoutStore(client *redis.Client) *RedisCheckoutStore {
	return &RedisCheckoutStore{
		client: client,
		prefix: "checkout:",
	}
}

func (r *RedisCheckoutStore) Save(ctx context.Context, session *shop.CheckoutSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.prefix+session.Token, payload, ttl).Err()
}

// RedisSubscriberStore persists subscribers in Redis: a set for
// deduplicated contacts plus a list of full records.
type RedisSubscriberStore struct {
	client     *redis.Client
	setKey     string
	recordsKey string
}

// NewRedisSubscriberStore creates a new Redis-backed subscriber store.
func NewRedisSubscriberStore(client *redis.Client) *RedisSubscriberStore {
	return &RedisSubscriberStore{
		client:     client,
		setKey:     "subscribers",
		recordsKey: "subscriber_records",
	}
}

func (r *RedisSubscriberStore) Save(ctx context.Context, subscriber *shop.Subscriber) error {
	payload, err := json.Marshal(subscriber)
	if err != nil {
		return err
	}

	contact := subscriber.Email
	if contact == "" {
		contact = subscriber.Phone
	}

	pipe := r.client.Pipeline()
	pipe.SAdd(ctx, r.setKey, contact)
	pipe.RPush(ctx, r.recordsKey, payload)
	_, err = pipe.Exec(ctx)

	return err
}

var (
	_ shop.CheckoutStore   = (*RedisCheckoutStore)(nil)
	_ shop.SubscriberStore = (*RedisSubscriberStore)(nil)
)
