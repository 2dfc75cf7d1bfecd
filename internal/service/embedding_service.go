package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"codeframe-be/internal/entity"
	"codeframe-be/internal/pkg/apperrors"
	"codeframe-be/internal/pkg/logger"
	"codeframe-be/internal/repository/unitofwork"
	"codeframe-be/pkg/embedding"

	"github.com/google/uuid"
)

// maxEmbedBatch bounds how many answers a single job may embed. Bigger
// categories should be split upstream before generation.
const maxEmbedBatch = 5000

type IEmbeddingService interface {
	// EnsureEmbeddings returns a vector for every embeddable answer,
	// generating and caching the missing ones. Answers with empty text are
	// skipped, not failed. Cached vectors are reused across jobs until the
	// model version changes.
	EnsureEmbeddings(ctx context.Context, answers []*entity.Answer) (map[uuid.UUID][]float32, error)
}

type embeddingService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   embedding.EmbeddingProvider
	logger     logger.ILogger
}

func NewEmbeddingService(
	uowFactory unitofwork.RepositoryFactory,
	provider embedding.EmbeddingProvider,
	log logger.ILogger,
) IEmbeddingService {
	return &embeddingService{
		uowFactory: uowFactory,
		provider:   provider,
		logger:     log,
	}
}

func (s *embeddingService) EnsureEmbeddings(ctx context.Context, answers []*entity.Answer) (map[uuid.UUID][]float32, error) {
	if len(answers) > maxEmbedBatch {
		return nil, apperrors.Newf(apperrors.KindEmbeddingError,
			"batch of %d answers exceeds the embedding limit of %d", len(answers), maxEmbedBatch)
	}

	embeddable := make([]*entity.Answer, 0, len(answers))
	ids := make([]uuid.UUID, 0, len(answers))
	for _, answer := range answers {
		if strings.TrimSpace(answer.Text) == "" {
			continue
		}
		embeddable = append(embeddable, answer)
		ids = append(ids, answer.Id)
	}
	if len(embeddable) == 0 {
		return map[uuid.UUID][]float32{}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	modelVersion := s.provider.ModelVersion()

	cached, err := uow.AnswerEmbeddingRepository().ListByAnswerIds(ctx, ids, modelVersion)
	if err != nil {
		return nil, err
	}

	vectors := make(map[uuid.UUID][]float32, len(embeddable))
	for _, emb := range cached {
		vectors[emb.AnswerId] = emb.Vector
	}

	var fresh []*entity.AnswerEmbedding
	for _, answer := range embeddable {
		if _, ok := vectors[answer.Id]; ok {
			continue
		}

		res, err := s.provider.Generate(ctx, answer.Text, "CLUSTERING")
		if err != nil {
			// Timeouts abort the batch so the worker can retry the stage.
			// Anything else skips the row and keeps the batch going.
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, apperrors.Wrap(apperrors.KindUpstreamTimeout, "embedding call timed out", err)
			}
			s.logger.Warn("EmbeddingService", "Skipping answer that failed to embed", map[string]interface{}{
				"answer_id": answer.Id.String(),
				"error":     err.Error(),
			})
			continue
		}

		vector := res.Embedding.Values
		vectors[answer.Id] = vector
		fresh = append(fresh, &entity.AnswerEmbedding{
			Id:           uuid.New(),
			AnswerId:     answer.Id,
			Vector:       vector,
			ModelVersion: modelVersion,
			CreatedAt:    time.Now(),
		})
	}

	if len(fresh) > 0 {
		if err := uow.AnswerEmbeddingRepository().UpsertBulk(ctx, fresh); err != nil {
			return nil, err
		}
		s.logger.Info("EmbeddingService", "Generated embeddings", map[string]interface{}{
			"new":    len(fresh),
			"cached": len(cached),
			"model":  modelVersion,
		})
	}

	return vectors, nil
}
