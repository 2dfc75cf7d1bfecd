package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"codeframe-be/internal/config"
	"codeframe-be/internal/dto"
	"codeframe-be/internal/entity"
	"codeframe-be/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		MinAnswers:        50,
		MaxLLMPerMinute:   100,
		LLMQueueDepth:     10,
		BreakerThreshold:  5,
		MaxRetries:        3,
		DefaultMaxCostUSD: 5.0,
		ReviewThreshold:   0.5,
		WorkerDurableName: "test-worker",
	}
}

func seedAnswers(store *memStore, categoryId uuid.UUID, n int, prefix string) {
	for i := 0; i < n; i++ {
		store.addAnswer(categoryId, fmt.Sprintf("%s %d", prefix, i))
	}
}

func newGenerationFixture(store *memStore) (IGenerationService, *fakePublisher, *fakeLLM, *fakeBrandValidator) {
	publisher := &fakePublisher{}
	provider := &fakeLLM{respond: func(string) (string, error) { return "{}", nil }}
	validator := &fakeBrandValidator{known: map[string]bool{}}
	svc := NewGenerationService(&fakeFactory{store: store}, publisher, provider, validator, testPipelineConfig(), nopLogger{})
	return svc, publisher, provider, validator
}

func TestGenerateEnqueuesJobWithDefaults(t *testing.T) {
	store := newMemStore()
	categoryId := uuid.New()
	seedAnswers(store, categoryId, 60, "answer")

	svc, publisher, _, _ := newGenerationFixture(store)

	res, err := svc.Generate(context.Background(), &dto.GenerateRequest{CategoryId: categoryId})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, res.JobId)

	job := store.jobs[res.JobId]
	require.NotNil(t, job)
	assert.Equal(t, entity.JobStatusQueued, job.Status)
	assert.Equal(t, entity.JobModeClustering, job.Config.Mode)
	assert.Equal(t, 5, job.Config.MinClusterSize)
	assert.Equal(t, 3, job.Config.MinSamples)
	assert.InDelta(t, 0.35, job.Config.Epsilon, 1e-9)
	assert.InDelta(t, 5.0, job.Config.MaxCostPerJob, 1e-9)
	assert.InDelta(t, 0.5, job.Config.ReviewThreshold, 1e-9)

	require.Len(t, publisher.jobIds, 1)
	assert.Equal(t, res.JobId, publisher.jobIds[0])
}

func TestGenerateRejectsSmallCategories(t *testing.T) {
	store := newMemStore()
	categoryId := uuid.New()
	seedAnswers(store, categoryId, 49, "answer")

	svc, publisher, _, _ := newGenerationFixture(store)

	_, err := svc.Generate(context.Background(), &dto.GenerateRequest{CategoryId: categoryId})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInsufficientData, apperrors.KindOf(err))

	// Rejection happens before any job row or queue message exists.
	assert.Empty(t, store.jobs)
	assert.Empty(t, publisher.jobIds)
}

func TestGenerateEmptyAnswersAreNotEligible(t *testing.T) {
	store := newMemStore()
	categoryId := uuid.New()
	seedAnswers(store, categoryId, 49, "answer")
	store.addAnswer(categoryId, "   ")
	store.addAnswer(categoryId, "")

	svc, _, _, _ := newGenerationFixture(store)

	_, err := svc.Generate(context.Background(), &dto.GenerateRequest{CategoryId: categoryId})
	assert.Equal(t, apperrors.KindInsufficientData, apperrors.KindOf(err))
}

func TestGenerateUnhealthyProviderNeverEnqueues(t *testing.T) {
	store := newMemStore()
	categoryId := uuid.New()
	seedAnswers(store, categoryId, 60, "answer")

	svc, publisher, provider, _ := newGenerationFixture(store)
	provider.healthErr = errors.New("connection refused")

	_, err := svc.Generate(context.Background(), &dto.GenerateRequest{CategoryId: categoryId})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamUnavailable, apperrors.KindOf(err))
	assert.Empty(t, store.jobs)
	assert.Empty(t, publisher.jobIds)
}

func TestGenerateBrandModeChecksRegistryHealth(t *testing.T) {
	store := newMemStore()
	categoryId := uuid.New()
	seedAnswers(store, categoryId, 60, "answer")

	svc, _, provider, validator := newGenerationFixture(store)
	// Brand mode does not touch the LLM, so only the registry matters.
	provider.healthErr = errors.New("llm down")
	validator.healthErr = nil

	res, err := svc.Generate(context.Background(), &dto.GenerateRequest{
		CategoryId: categoryId,
		Config:     &entity.JobConfig{Mode: entity.JobModeBrands},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.JobId)

	validator.healthErr = errors.New("registry down")
	_, err = svc.Generate(context.Background(), &dto.GenerateRequest{
		CategoryId: categoryId,
		Config:     &entity.JobConfig{Mode: entity.JobModeBrands},
	})
	assert.Equal(t, apperrors.KindUpstreamUnavailable, apperrors.KindOf(err))
}

func TestGenerateInvalidConfigRejected(t *testing.T) {
	store := newMemStore()
	categoryId := uuid.New()
	seedAnswers(store, categoryId, 60, "answer")

	svc, _, _, _ := newGenerationFixture(store)

	_, err := svc.Generate(context.Background(), &dto.GenerateRequest{
		CategoryId: categoryId,
		Config:     &entity.JobConfig{Mode: "haiku"},
	})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Generate(context.Background(), &dto.GenerateRequest{
		CategoryId: categoryId,
		Config:     &entity.JobConfig{Mode: entity.JobModeClustering, Epsilon: 3.5},
	})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestGenerateFailedEnqueueMarksJobFailed(t *testing.T) {
	store := newMemStore()
	categoryId := uuid.New()
	seedAnswers(store, categoryId, 60, "answer")

	svc, publisher, _, _ := newGenerationFixture(store)
	publisher.err = errors.New("nats unavailable")

	_, err := svc.Generate(context.Background(), &dto.GenerateRequest{CategoryId: categoryId})
	require.Error(t, err)

	require.Len(t, store.jobs, 1)
	for _, job := range store.jobs {
		assert.Equal(t, entity.JobStatusFailed, job.Status)
		assert.Equal(t, string(apperrors.KindInternal), job.ErrorKind)
	}
}

func TestCancel(t *testing.T) {
	store := newMemStore()
	categoryId := uuid.New()
	svc, _, _, _ := newGenerationFixture(store)

	running := store.addJob(categoryId, entity.JobStatusClustering, entity.JobConfig{Mode: entity.JobModeClustering})
	require.NoError(t, svc.Cancel(context.Background(), running.Id))
	assert.True(t, store.jobs[running.Id].CancelRequested)

	done := store.addJob(categoryId, entity.JobStatusCompleted, entity.JobConfig{Mode: entity.JobModeClustering})
	err := svc.Cancel(context.Background(), done.Id)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	err = svc.Cancel(context.Background(), uuid.New())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
