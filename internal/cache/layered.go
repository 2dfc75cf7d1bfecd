package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// localTTL keeps in-process entries short so status polls converge on the
// shared Redis view quickly.
const localTTL = 2 * time.Second

// LayeredCache fronts a shared Cache with an in-process go-cache layer.
// Terminal snapshots pin locally for longer since they never change.
type LayeredCache struct {
	local  *gocache.Cache
	shared Cache
}

func NewLayeredCache(shared Cache) *LayeredCache {
	return &LayeredCache{
		local:  gocache.New(localTTL, time.Minute),
		shared: shared,
	}
}

func (c *LayeredCache) Ping(ctx context.Context) error {
	return c.shared.Ping(ctx)
}

func (c *LayeredCache) SetJobStatus(ctx context.Context, jobID uuid.UUID, snapshot JobSnapshot, ttl time.Duration) error {
	c.local.Set(JobStatusKey(jobID), snapshot, localTTL)
	return c.shared.SetJobStatus(ctx, jobID, snapshot, ttl)
}

func (c *LayeredCache) GetJobStatus(ctx context.Context, jobID uuid.UUID) (JobSnapshot, bool, error) {
	if val, ok := c.local.Get(JobStatusKey(jobID)); ok {
		return val.(JobSnapshot), true, nil
	}

	snapshot, ok, err := c.shared.GetJobStatus(ctx, jobID)
	if err != nil || !ok {
		return JobSnapshot{}, ok, err
	}

	c.local.Set(JobStatusKey(jobID), snapshot, localTTL)
	return snapshot, true, nil
}

func (c *LayeredCache) DeleteJobStatus(ctx context.Context, jobID uuid.UUID) error {
	c.local.Delete(JobStatusKey(jobID))
	return c.shared.DeleteJobStatus(ctx, jobID)
}
