package cache

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeShared is an in-memory stand-in for the Redis layer.
type fakeShared struct {
	mu    sync.Mutex
	data  map[string]JobSnapshot
	gets  int
	fails bool
}

func newFakeShared() *fakeShared {
	return &fakeShared{data: make(map[string]JobSnapshot)}
}

func (f *fakeShared) Ping(ctx context.Context) error { return nil }

func (f *fakeShared) SetJobStatus(ctx context.Context, jobID uuid.UUID, snapshot JobSnapshot, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[JobStatusKey(jobID)] = snapshot
	return nil
}

func (f *fakeShared) GetJobStatus(ctx context.Context, jobID uuid.UUID) (JobSnapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.fails {
		return JobSnapshot{}, false, assert.AnError
	}
	snapshot, ok := f.data[JobStatusKey(jobID)]
	return snapshot, ok, nil
}

func (f *fakeShared) DeleteJobStatus(ctx context.Context, jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, JobStatusKey(jobID))
	return nil
}

func TestJobStatusKey(t *testing.T) {
	jobID := uuid.New()
	key := JobStatusKey(jobID)
	assert.True(t, strings.HasPrefix(key, "codeframe:job:"))
	assert.Contains(t, key, jobID.String())
}

func TestLayeredCacheReadThrough(t *testing.T) {
	shared := newFakeShared()
	layered := NewLayeredCache(shared)
	ctx := context.Background()
	jobID := uuid.New()

	_, ok, err := layered.GetJobStatus(ctx, jobID)
	require.NoError(t, err)
	assert.False(t, ok)

	snapshot := JobSnapshot{Status: "clustering", ProgressPct: 45}
	require.NoError(t, shared.SetJobStatus(ctx, jobID, snapshot, time.Minute))

	got, ok, err := layered.GetJobStatus(ctx, jobID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snapshot, got)

	// Subsequent reads are served locally.
	before := shared.gets
	for i := 0; i < 5; i++ {
		_, ok, err := layered.GetJobStatus(ctx, jobID)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, before, shared.gets)
}

func TestLayeredCacheSetPopulatesBothLayers(t *testing.T) {
	shared := newFakeShared()
	layered := NewLayeredCache(shared)
	ctx := context.Background()
	jobID := uuid.New()

	snapshot := JobSnapshot{Status: "completed", ProgressPct: 100, CostUSD: 1.25}
	require.NoError(t, layered.SetJobStatus(ctx, jobID, snapshot, time.Minute))

	// Shared layer has it.
	got, ok, err := shared.GetJobStatus(ctx, jobID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snapshot, got)

	// Local layer shields shared failures.
	shared.fails = true
	got, ok, err = layered.GetJobStatus(ctx, jobID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snapshot, got)
}

func TestLayeredCacheDelete(t *testing.T) {
	shared := newFakeShared()
	layered := NewLayeredCache(shared)
	ctx := context.Background()
	jobID := uuid.New()

	require.NoError(t, layered.SetJobStatus(ctx, jobID, JobSnapshot{Status: "queued"}, time.Minute))
	require.NoError(t, layered.DeleteJobStatus(ctx, jobID))

	_, ok, err := layered.GetJobStatus(ctx, jobID)
	require.NoError(t, err)
	assert.False(t, ok)
}
