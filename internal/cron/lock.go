package cron

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 10 * time.Minute

// Lock keeps two workers from running the same cycle.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	DelIfEqual(ctx context.Context, key, value string) (bool, error)
}

// RedisLock is a SETNX lease. The stored value is "<label>/<token>" so an
// operator can see which worker holds it and only that worker can free it.
type RedisLock struct {
	client redisStore
	key    string
	label  string
	ttl    time.Duration
	token  string
}

// NewRedisLock builds a lease on key. label identifies this worker in the
// stored value; ttl bounds how long a crashed worker blocks the others.
func NewRedisLock(client redisStore, key, label string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	label = strings.ReplaceAll(strings.TrimSpace(label), "/", "-")
	if label == "" {
		label = "worker"
	}
	return &RedisLock{client: client, key: key, label: label, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := l.label + "/" + uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", l.key, err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release deletes the lease only while this worker still owns it; after a TTL
// expiry another worker may have taken over.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	defer func() { l.token = "" }()

	if _, err := l.client.DelIfEqual(ctx, l.key, l.token); err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}

// Holder returns the label of the worker holding the lease, empty when free.
func (l *RedisLock) Holder(ctx context.Context) (string, error) {
	current, err := l.client.Get(ctx, l.key)
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	label, _, _ := strings.Cut(current, "/")
	return label, nil
}
