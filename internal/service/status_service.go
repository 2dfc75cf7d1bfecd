package service

import (
	"context"
	"time"

	"codeframe-be/internal/cache"
	"codeframe-be/internal/dto"
	"codeframe-be/internal/entity"
	"codeframe-be/internal/pkg/apperrors"
	"codeframe-be/internal/pkg/logger"
	"codeframe-be/internal/pkg/serverutils"
	"codeframe-be/internal/repository/specification"
	"codeframe-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// defaultListLimit bounds an unpaginated job listing.
const defaultListLimit = 50

type IStatusService interface {
	// GetStatus serves the polling endpoint: cache first, job row on a
	// miss. Terminal statuses never regress.
	GetStatus(ctx context.Context, jobId uuid.UUID) (*dto.StatusResponse, error)
	// ListJobs returns jobs newest first, optionally filtered by
	// category and status. Always a direct DB read.
	ListJobs(ctx context.Context, req *dto.ListJobsRequest) (*dto.ListJobsResponse, error)
}

type statusService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      cache.Cache
	logger     logger.ILogger
}

func NewStatusService(
	uowFactory unitofwork.RepositoryFactory,
	statusCache cache.Cache,
	log logger.ILogger,
) IStatusService {
	return &statusService{
		uowFactory: uowFactory,
		cache:      statusCache,
		logger:     log,
	}
}

func (s *statusService) GetStatus(ctx context.Context, jobId uuid.UUID) (*dto.StatusResponse, error) {
	snapshot, ok, err := s.cache.GetJobStatus(ctx, jobId)
	if err != nil {
		// Cache trouble degrades to a DB read.
		s.logger.Warn("StatusService", "Status cache read failed", map[string]interface{}{
			"job_id": jobId, "error": err.Error(),
		})
	}
	if ok {
		return snapshotToResponse(jobId, snapshot), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.GenerationJobRepository().FindOne(ctx, jobId)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperrors.Newf(apperrors.KindNotFound, "job %s not found", jobId)
	}

	snapshot = cache.JobSnapshot{
		Status:      string(job.Status),
		ProgressPct: job.Status.ProgressPct(),
		CostUSD:     job.CostUSDAccum,
		ErrorKind:   job.ErrorKind,
		Error:       job.ErrorMessage,
	}

	ttl := statusTTL(job.Status)
	if cacheErr := s.cache.SetJobStatus(ctx, jobId, snapshot, ttl); cacheErr != nil {
		s.logger.Warn("StatusService", "Status cache write failed", map[string]interface{}{
			"job_id": jobId, "error": cacheErr.Error(),
		})
	}

	return snapshotToResponse(jobId, snapshot), nil
}

func (s *statusService) ListJobs(ctx context.Context, req *dto.ListJobsRequest) (*dto.ListJobsResponse, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	}
	if req.CategoryId != nil {
		specs = append(specs, specification.ByCategoryID{CategoryID: *req.CategoryId})
	}
	if req.Status != "" {
		specs = append(specs, specification.ByStatus{Status: req.Status})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	jobs, err := uow.GenerationJobRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := &dto.ListJobsResponse{Jobs: make([]dto.JobSummary, 0, len(jobs))}
	for _, job := range jobs {
		res.Jobs = append(res.Jobs, dto.JobSummary{
			JobId:       job.Id,
			CategoryId:  job.CategoryId,
			Mode:        string(job.Config.Mode),
			Status:      string(job.Status),
			ProgressPct: job.Status.ProgressPct(),
			CostUSD:     job.CostUSDAccum,
			ErrorKind:   job.ErrorKind,
			CreatedAt:   job.CreatedAt,
		})
	}
	return res, nil
}

func statusTTL(status entity.JobStatus) time.Duration {
	if status.IsTerminal() {
		return cache.TerminalStatusTTL
	}
	return cache.StatusTTL
}

func snapshotToResponse(jobId uuid.UUID, snapshot cache.JobSnapshot) *dto.StatusResponse {
	return &dto.StatusResponse{
		JobId:       jobId,
		Status:      snapshot.Status,
		ProgressPct: snapshot.ProgressPct,
		CostUSD:     snapshot.CostUSD,
		ErrorKind:   snapshot.ErrorKind,
		Error:       snapshot.Error,
	}
}
