// Package devlock provides an advisory per-owner lock around devotional
// generation, so concurrent first-requests-of-the-day don't both pay for a
// provider call. Correctness does not depend on it: the store's unique
// (owner, day) constraint is the real guarantee.
package devlock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL bounds how long a crashed request can hold the day's lock. The
// provider call can take tens of seconds, so this is generous.
const lockTTL = 2 * time.Minute

type Locker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a Redis-backed locker
func New(redisURL string) (*Locker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client), nil
}

// NewWithClient creates a locker from an existing Redis client
func NewWithClient(client *redis.Client) *Locker {
	return &Locker{
		client: client,
		prefix: "devgen:",
		ttl:    lockTTL,
	}
}

func (l *Locker) key(owner string, day time.Time) string {
	return l.prefix + owner + ":" + day.UTC().Format("2006-01-02")
}

// Acquire takes the owner's lock for the given calendar day. Returns false
// when another request already holds it.
func (l *Locker) Acquire(ctx context.Context, owner string, day time.Time) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(owner, day), 1, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire generation lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock early so a fallback-path retry tomorrow isn't the
// only way forward after a store failure.
func (l *Locker) Release(ctx context.Context, owner string, day time.Time) error {
	if err := l.client.Del(ctx, l.key(owner, day)).Err(); err != nil {
		return fmt.Errorf("release generation lock: %w", err)
	}
	return nil
}

func (l *Locker) Close() error {
	return l.client.Close()
}
