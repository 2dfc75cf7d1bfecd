package service

import (
	"context"
	"time"

	"codeframe-be/internal/config"
	"codeframe-be/internal/dto"
	"codeframe-be/internal/entity"
	"codeframe-be/internal/pkg/apperrors"
	"codeframe-be/internal/pkg/logger"
	"codeframe-be/internal/pkg/serverutils"
	"codeframe-be/internal/repository/unitofwork"
	"codeframe-be/pkg/brand"
	"codeframe-be/pkg/llm"

	"github.com/google/uuid"
)

// JobPublisher is the queue side the service needs. Satisfied by
// queue.Publisher.
type JobPublisher interface {
	PublishJob(ctx context.Context, jobId uuid.UUID) error
}

type IGenerationService interface {
	// Generate validates the request, verifies the providers are reachable
	// and enqueues a job. Rejections happen before any job row exists.
	Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.GenerateResponse, error)
	// Cancel flags a running job; the worker honours the flag between
	// stages.
	Cancel(ctx context.Context, jobId uuid.UUID) error
}

type generationService struct {
	uowFactory     unitofwork.RepositoryFactory
	publisher      JobPublisher
	llmProvider    llm.LLMProvider
	brandValidator brand.Validator
	pipeline       config.PipelineConfig
	logger         logger.ILogger
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	publisher JobPublisher,
	llmProvider llm.LLMProvider,
	brandValidator brand.Validator,
	pipeline config.PipelineConfig,
	log logger.ILogger,
) IGenerationService {
	return &generationService{
		uowFactory:     uowFactory,
		publisher:      publisher,
		llmProvider:    llmProvider,
		brandValidator: brandValidator,
		pipeline:       pipeline,
		logger:         log,
	}
}

func (s *generationService) Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	cfg := entity.JobConfig{}
	if req.Config != nil {
		cfg = *req.Config
	}
	if cfg.MaxCostPerJob == 0 {
		cfg.MaxCostPerJob = s.pipeline.DefaultMaxCostUSD
	}
	if cfg.ReviewThreshold == 0 {
		cfg.ReviewThreshold = s.pipeline.ReviewThreshold
	}
	cfg.ApplyDefaults()
	if err := serverutils.ValidateRequest(cfg); err != nil {
		return nil, err
	}

	// A job must never enqueue against a dead provider: the user finds out
	// now, not minutes later through a failed job.
	if cfg.Mode == entity.JobModeBrands {
		if err := s.brandValidator.Healthcheck(ctx); err != nil {
			return nil, apperrors.Wrap(apperrors.KindUpstreamUnavailable, "brand registry healthcheck failed", err)
		}
	} else {
		if err := s.llmProvider.Healthcheck(ctx); err != nil {
			return nil, apperrors.Wrap(apperrors.KindUpstreamUnavailable, "llm provider healthcheck failed", err)
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	count, err := uow.AnswerRepository().CountEligible(ctx, req.CategoryId)
	if err != nil {
		return nil, err
	}
	if count < int64(s.pipeline.MinAnswers) {
		return nil, apperrors.Newf(apperrors.KindInsufficientData,
			"category %s has %d eligible answers, need at least %d", req.CategoryId, count, s.pipeline.MinAnswers)
	}

	job := &entity.GenerationJob{
		Id:         uuid.New(),
		CategoryId: req.CategoryId,
		Status:     entity.JobStatusQueued,
		Config:     cfg,
		CreatedAt:  time.Now(),
	}
	if err := uow.GenerationJobRepository().Create(ctx, job); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishJob(ctx, job.Id); err != nil {
		// The row exists but no worker will ever pick it up; fail it so the
		// status endpoint tells the truth.
		if markErr := uow.GenerationJobRepository().MarkFailed(ctx, job.Id,
			string(apperrors.KindInternal), "failed to enqueue job"); markErr != nil {
			s.logger.Error("GenerationService", "Failed to mark unenqueued job", map[string]interface{}{
				"job_id": job.Id, "error": markErr.Error(),
			})
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to enqueue job", err)
	}

	s.logger.Info("GenerationService", "Job enqueued", map[string]interface{}{
		"job_id":      job.Id,
		"category_id": req.CategoryId,
		"mode":        cfg.Mode,
	})

	return &dto.GenerateResponse{JobId: job.Id}, nil
}

func (s *generationService) Cancel(ctx context.Context, jobId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.GenerationJobRepository().FindOne(ctx, jobId)
	if err != nil {
		return err
	}
	if job == nil {
		return apperrors.Newf(apperrors.KindNotFound, "job %s not found", jobId)
	}
	if job.Status.IsTerminal() {
		return apperrors.Newf(apperrors.KindValidation, "job %s already finished", jobId)
	}

	return uow.GenerationJobRepository().RequestCancel(ctx, jobId)
}
