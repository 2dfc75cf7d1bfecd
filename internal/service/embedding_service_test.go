package service

import (
	"context"
	"fmt"
	"testing"

	"codeframe-be/internal/entity"
	"codeframe-be/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureEmbeddingsSkipsEmptyText(t *testing.T) {
	store := newMemStore()
	embedder := &fakeEmbedder{vectors: func(string) []float32 { return axisVector(0) }}
	svc := NewEmbeddingService(&fakeFactory{store: store}, embedder, nopLogger{})

	categoryId := uuid.New()
	answers := []*entity.Answer{
		store.addAnswer(categoryId, "something useful"),
		store.addAnswer(categoryId, "   "),
		store.addAnswer(categoryId, ""),
	}

	vectors, err := svc.EnsureEmbeddings(context.Background(), answers)
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Equal(t, 1, embedder.callCount())
}

func TestEnsureEmbeddingsReusesCache(t *testing.T) {
	store := newMemStore()
	embedder := &fakeEmbedder{vectors: func(string) []float32 { return axisVector(0) }}
	svc := NewEmbeddingService(&fakeFactory{store: store}, embedder, nopLogger{})

	categoryId := uuid.New()
	var answers []*entity.Answer
	for i := 0; i < 10; i++ {
		answers = append(answers, store.addAnswer(categoryId, fmt.Sprintf("answer %d", i)))
	}

	_, err := svc.EnsureEmbeddings(context.Background(), answers)
	require.NoError(t, err)
	assert.Equal(t, 10, embedder.callCount())

	// Second pass over the same answers is a pure cache read.
	vectors, err := svc.EnsureEmbeddings(context.Background(), answers)
	require.NoError(t, err)
	assert.Len(t, vectors, 10)
	assert.Equal(t, 10, embedder.callCount())

	// A new answer only embeds the delta.
	answers = append(answers, store.addAnswer(categoryId, "a fresh answer"))
	_, err = svc.EnsureEmbeddings(context.Background(), answers)
	require.NoError(t, err)
	assert.Equal(t, 11, embedder.callCount())
}

func TestEnsureEmbeddingsOversizedBatch(t *testing.T) {
	store := newMemStore()
	embedder := &fakeEmbedder{vectors: func(string) []float32 { return axisVector(0) }}
	svc := NewEmbeddingService(&fakeFactory{store: store}, embedder, nopLogger{})

	answers := make([]*entity.Answer, maxEmbedBatch+1)
	for i := range answers {
		answers[i] = &entity.Answer{Id: uuid.New(), Text: "x"}
	}

	_, err := svc.EnsureEmbeddings(context.Background(), answers)
	assert.Equal(t, apperrors.KindEmbeddingError, apperrors.KindOf(err))
	assert.Zero(t, embedder.callCount())
}

func TestEnsureEmbeddingsSkipsFailedRows(t *testing.T) {
	store := newMemStore()
	embedder := &fakeEmbedder{
		vectors: func(text string) []float32 {
			return axisVector(0)
		},
		errFor: func(text string) error {
			if text == "poison" {
				return assert.AnError
			}
			return nil
		},
	}
	svc := NewEmbeddingService(&fakeFactory{store: store}, embedder, nopLogger{})

	categoryId := uuid.New()
	answers := []*entity.Answer{
		store.addAnswer(categoryId, "fine"),
		store.addAnswer(categoryId, "poison"),
		store.addAnswer(categoryId, "also fine"),
	}

	vectors, err := svc.EnsureEmbeddings(context.Background(), answers)
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.NotContains(t, vectors, answers[1].Id)
	assert.Equal(t, 3, embedder.callCount())
}

func TestEnsureEmbeddingsTimeoutAbortsBatch(t *testing.T) {
	store := newMemStore()
	embedder := &fakeEmbedder{
		vectors: func(string) []float32 { return axisVector(0) },
		err:     context.DeadlineExceeded,
	}
	svc := NewEmbeddingService(&fakeFactory{store: store}, embedder, nopLogger{})

	answers := []*entity.Answer{store.addAnswer(uuid.New(), "hello")}
	_, err := svc.EnsureEmbeddings(context.Background(), answers)
	assert.Equal(t, apperrors.KindUpstreamTimeout, apperrors.KindOf(err))
}
