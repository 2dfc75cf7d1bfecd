// Package cache backs the polling status endpoint. Snapshots live in Redis
// so every API replica sees the same progress; a short-lived in-process
// layer in front absorbs tight polling loops.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// JobSnapshot is the cached view of a job the status endpoint serves.
type JobSnapshot struct {
	Status      string  `json:"status"`
	ProgressPct int     `json:"progress_pct"`
	CostUSD     float64 `json:"cost_usd"`
	ErrorKind   string  `json:"error_kind,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Cache is the caching interface. Implementations must be safe for
// concurrent use.
type Cache interface {
	SetJobStatus(ctx context.Context, jobID uuid.UUID, snapshot JobSnapshot, ttl time.Duration) error
	GetJobStatus(ctx context.Context, jobID uuid.UUID) (JobSnapshot, bool, error)
	DeleteJobStatus(ctx context.Context, jobID uuid.UUID) error
	Ping(ctx context.Context) error
}

// RedisCache implements Cache using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) SetJobStatus(ctx context.Context, jobID uuid.UUID, snapshot JobSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, JobStatusKey(jobID), data, ttl).Err()
}

func (c *RedisCache) GetJobStatus(ctx context.Context, jobID uuid.UUID) (JobSnapshot, bool, error) {
	val, err := c.client.Get(ctx, JobStatusKey(jobID)).Bytes()
	if err == redis.Nil {
		return JobSnapshot{}, false, nil
	}
	if err != nil {
		return JobSnapshot{}, false, err
	}

	var snapshot JobSnapshot
	if err := json.Unmarshal(val, &snapshot); err != nil {
		return JobSnapshot{}, false, err
	}
	return snapshot, true, nil
}

func (c *RedisCache) DeleteJobStatus(ctx context.Context, jobID uuid.UUID) error {
	return c.client.Del(ctx, JobStatusKey(jobID)).Err()
}
