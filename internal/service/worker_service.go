package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"codeframe-be/internal/config"
	"codeframe-be/internal/entity"
	"codeframe-be/internal/pkg/apperrors"
	"codeframe-be/internal/pkg/logger"
	"codeframe-be/internal/repository/unitofwork"
	"codeframe-be/pkg/brand"
	"codeframe-be/pkg/clustering"
	"codeframe-be/pkg/events"
	"codeframe-be/pkg/hierarchy"
	"codeframe-be/pkg/llm"
	"codeframe-be/pkg/llm/guard"
	"codeframe-be/pkg/queue"
	"codeframe-be/pkg/retry"

	"github.com/google/uuid"
)

// Per-stage deadlines. A stage that blows its deadline is retried like any
// other upstream timeout.
const (
	embeddingStageTimeout  = 5 * time.Minute
	clusteringStageTimeout = 2 * time.Minute
	labelingStageTimeout   = 10 * time.Minute
)

// labelSampleSize caps how many member answers go into a labeling prompt.
const labelSampleSize = 12

// ProgressSink receives job progress notifications. Satisfied by
// events.ProgressPublisher.
type ProgressSink interface {
	Publish(event events.JobProgressEvent) error
}

type IWorkerService interface {
	// Start attaches the durable queue consumer.
	Start() error
	// ProcessJob runs one job through its remaining stages. It resumes
	// from the persisted status, so a redelivered job repeats at most the
	// stage it died in. A nil return acks the message.
	ProcessJob(ctx context.Context, jobId uuid.UUID) error
}

type workerService struct {
	uowFactory       unitofwork.RepositoryFactory
	embeddingService IEmbeddingService
	llmProvider      llm.LLMProvider
	limiter          *guard.Limiter
	breaker          *guard.Breaker
	rates            guard.Rates
	brandValidator   brand.Validator
	subscriber       *queue.Subscriber
	progress         ProgressSink
	pipeline         config.PipelineConfig
	logger           logger.ILogger

	// sleep is injectable so retry tests advance instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewWorkerService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingService IEmbeddingService,
	llmProvider llm.LLMProvider,
	limiter *guard.Limiter,
	breaker *guard.Breaker,
	rates guard.Rates,
	brandValidator brand.Validator,
	subscriber *queue.Subscriber,
	progress ProgressSink,
	pipeline config.PipelineConfig,
	log logger.ILogger,
) IWorkerService {
	return &workerService{
		uowFactory:       uowFactory,
		embeddingService: embeddingService,
		llmProvider:      llmProvider,
		limiter:          limiter,
		breaker:          breaker,
		rates:            rates,
		brandValidator:   brandValidator,
		subscriber:       subscriber,
		progress:         progress,
		pipeline:         pipeline,
		logger:           log,
		sleep:            sleepWithContext,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *workerService) Start() error {
	return s.subscriber.Subscribe(s.pipeline.WorkerDurableName, func(ctx context.Context, msg queue.JobMessage) error {
		return s.ProcessJob(ctx, msg.JobId)
	})
}

func (s *workerService) ProcessJob(ctx context.Context, jobId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.GenerationJobRepository().FindOne(ctx, jobId)
	if err != nil {
		return err
	}
	if job == nil {
		s.logger.Warn("WorkerService", "Dequeued unknown job", map[string]interface{}{"job_id": jobId})
		return nil
	}
	if job.Status.IsTerminal() {
		// Redelivery after completion; nothing left to do.
		return nil
	}

	// The cost guard is per job and survives restarts through the
	// accumulated column; limiter and breaker are shared per process.
	costs := guard.NewCostGuard(s.rates, job.Config.MaxCostPerJob)
	costs.Seed(job.CostUSDAccum)
	client := llm.NewGuardedClient(s.llmProvider, s.limiter, s.breaker, costs, s.ledgerFor(jobId))

	if job.Config.Mode == entity.JobModeBrands {
		return s.runBrandJob(ctx, job)
	}
	return s.runClusteringJob(ctx, job, client)
}

func (s *workerService) runClusteringJob(ctx context.Context, job *entity.GenerationJob, client *llm.GuardedClient) error {
	stages := []struct {
		status  entity.JobStatus
		timeout time.Duration
		run     func(ctx context.Context, job *entity.GenerationJob, client *llm.GuardedClient) error
	}{
		{entity.JobStatusEmbedding, embeddingStageTimeout, s.stageEmbedding},
		{entity.JobStatusClustering, clusteringStageTimeout, s.stageClustering},
		{entity.JobStatusLabeling, labelingStageTimeout, s.stageLabeling},
	}

	for _, stage := range stages {
		if skipStage(job.Status, stage.status) {
			continue
		}

		cancelled, err := s.checkCancelled(ctx, job.Id)
		if err != nil {
			return err
		}
		if cancelled {
			return s.failJob(ctx, job.Id, apperrors.New(apperrors.KindCancelled, "cancelled by user"))
		}

		if err := s.enterStage(ctx, job, stage.status); err != nil {
			return err
		}
		if err := s.runStageWithRetry(ctx, job, client, stage.timeout, stage.run); err != nil {
			return s.failJob(ctx, job.Id, err)
		}
	}

	return s.completeJob(ctx, job.Id)
}

func (s *workerService) runBrandJob(ctx context.Context, job *entity.GenerationJob) error {
	cancelled, err := s.checkCancelled(ctx, job.Id)
	if err != nil {
		return err
	}
	if cancelled {
		return s.failJob(ctx, job.Id, apperrors.New(apperrors.KindCancelled, "cancelled by user"))
	}

	if err := s.enterStage(ctx, job, entity.JobStatusLabeling); err != nil {
		return err
	}
	if err := s.runStageWithRetry(ctx, job, nil, labelingStageTimeout, s.stageBrands); err != nil {
		return s.failJob(ctx, job.Id, err)
	}
	return s.completeJob(ctx, job.Id)
}

// skipStage reports whether the persisted status is already past the stage,
// which happens when a redelivered job resumes mid-pipeline.
func skipStage(current, stage entity.JobStatus) bool {
	order := map[entity.JobStatus]int{
		entity.JobStatusQueued:     0,
		entity.JobStatusEmbedding:  1,
		entity.JobStatusClustering: 2,
		entity.JobStatusLabeling:   3,
	}
	return order[current] > order[stage]
}

func (s *workerService) enterStage(ctx context.Context, job *entity.GenerationJob, status entity.JobStatus) error {
	if job.Status == status {
		// Resuming inside the stage that was interrupted.
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.GenerationJobRepository().UpdateStatus(ctx, job.Id, status); err != nil {
		return err
	}
	job.Status = status
	s.publishProgress(job.Id, status, "", "")
	return nil
}

func (s *workerService) runStageWithRetry(
	ctx context.Context,
	job *entity.GenerationJob,
	client *llm.GuardedClient,
	timeout time.Duration,
	run func(ctx context.Context, job *entity.GenerationJob, client *llm.GuardedClient) error,
) error {
	backoff := retry.New(s.pipeline.MaxRetries, 0, 0)

	for {
		stageCtx, cancel := context.WithTimeout(ctx, timeout)
		err := run(stageCtx, job, client)
		cancel()
		if err == nil {
			return nil
		}

		if !apperrors.IsRetryable(err) {
			return err
		}
		delay, ok := backoff.Next()
		if !ok {
			return err
		}

		s.logger.Warn("WorkerService", "Stage failed, retrying", map[string]interface{}{
			"job_id":  job.Id,
			"status":  string(job.Status),
			"attempt": backoff.Attempt,
			"delay":   delay.String(),
			"error":   err.Error(),
		})
		if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
			return err
		}
	}
}

func (s *workerService) stageEmbedding(ctx context.Context, job *entity.GenerationJob, _ *llm.GuardedClient) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	answers, err := uow.AnswerRepository().ListEligible(ctx, job.CategoryId)
	if err != nil {
		return err
	}

	_, err = s.embeddingService.EnsureEmbeddings(ctx, answers)
	return err
}

func (s *workerService) stageClustering(ctx context.Context, job *entity.GenerationJob, _ *llm.GuardedClient) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	answers, err := uow.AnswerRepository().ListEligible(ctx, job.CategoryId)
	if err != nil {
		return err
	}

	// Idempotent: vectors were cached by the embedding stage, this is a
	// read with a fill-in for any stragglers.
	vectors, err := s.embeddingService.EnsureEmbeddings(ctx, answers)
	if err != nil {
		return err
	}

	points := make([]clustering.Point, 0, len(vectors))
	for _, answer := range answers {
		if vector, ok := vectors[answer.Id]; ok {
			points = append(points, clustering.Point{AnswerID: answer.Id, Vector: vector})
		}
	}

	groups := clustering.Run(points, clustering.Params{
		MinClusterSize: job.Config.MinClusterSize,
		MinSamples:     job.Config.MinSamples,
		Epsilon:        job.Config.Epsilon,
	})

	nonNoise := 0
	for _, group := range groups {
		if !group.Noise {
			nonNoise++
		}
	}
	if nonNoise == 0 {
		// Everything landed in the noise bucket; there is nothing to label.
		return apperrors.Newf(apperrors.KindInsufficientData,
			"no clusters formed from %d answers with min_cluster_size=%d and epsilon=%.2f",
			len(points), job.Config.MinClusterSize, job.Config.Epsilon)
	}

	clusters := make([]*entity.Cluster, 0, len(groups))
	for _, group := range groups {
		clusters = append(clusters, &entity.Cluster{
			Id:              uuid.New(),
			JobId:           job.Id,
			MemberAnswerIds: group.MemberIDs,
			Centroid:        group.Centroid,
			Noise:           group.Noise,
			CreatedAt:       time.Now(),
		})
	}

	// A redelivered stage replaces its previous partial output.
	if err := uow.ClusterRepository().DeleteByJobId(ctx, job.Id); err != nil {
		return err
	}
	return uow.ClusterRepository().CreateBulk(ctx, clusters)
}

func (s *workerService) stageLabeling(ctx context.Context, job *entity.GenerationJob, client *llm.GuardedClient) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	clusters, err := uow.ClusterRepository().ListByJobId(ctx, job.Id)
	if err != nil {
		return err
	}

	var labels []hierarchy.CodeLabel
	for _, cluster := range clusters {
		if cluster.Noise {
			continue
		}
		label, err := s.labelCluster(ctx, uow, client, cluster)
		if err != nil {
			return err
		}
		labels = append(labels, label)
	}

	themes, err := s.groupIntoThemes(ctx, client, labels)
	if err != nil {
		return err
	}

	builder := hierarchy.NewBuilder(job.Config.ReviewThreshold)
	nodes, err := builder.FromClusters(job.Id, clusters, labels, themes)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to build hierarchy", err)
	}

	answerTotal, err := uow.AnswerRepository().CountEligible(ctx, job.CategoryId)
	if err != nil {
		return err
	}
	mece := hierarchy.ScoreMECE(clusters, int(answerTotal))

	if err := uow.HierarchyNodeRepository().DeleteByJobId(ctx, job.Id); err != nil {
		return err
	}
	if err := uow.HierarchyNodeRepository().CreateBulk(ctx, nodes); err != nil {
		return err
	}
	return uow.GenerationJobRepository().SetMECE(ctx, job.Id, mece.Coverage, mece.Overlap)
}

type labelReply struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func (s *workerService) labelCluster(ctx context.Context, uow unitofwork.UnitOfWork, client *llm.GuardedClient, cluster *entity.Cluster) (hierarchy.CodeLabel, error) {
	sampleIds := cluster.MemberAnswerIds
	if len(sampleIds) > labelSampleSize {
		sampleIds = sampleIds[:labelSampleSize]
	}
	answers, err := uow.AnswerRepository().FindByIds(ctx, sampleIds)
	if err != nil {
		return hierarchy.CodeLabel{}, err
	}

	var sb strings.Builder
	sb.WriteString("You are labeling a cluster of survey answers that share a topic.\n")
	sb.WriteString("Answers:\n")
	for _, answer := range answers {
		sb.WriteString("- ")
		sb.WriteString(answer.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("\nRespond with JSON only: {\"label\": \"<short code name, max 6 words>\", \"confidence\": <0.0-1.0>}")

	completion, err := client.Generate(ctx, sb.String(), llm.WithTemperature(0.2), llm.WithMaxTokens(128))
	if err != nil {
		return hierarchy.CodeLabel{}, err
	}

	var reply labelReply
	if err := decodeJSONReply(completion.Text, &reply); err != nil {
		return hierarchy.CodeLabel{}, apperrors.Wrap(apperrors.KindInternal, "unparseable label reply", err)
	}
	if reply.Label == "" {
		return hierarchy.CodeLabel{}, apperrors.New(apperrors.KindInternal, "model returned an empty label")
	}

	return hierarchy.CodeLabel{
		ClusterId:  cluster.Id,
		Name:       reply.Label,
		Confidence: clamp01(reply.Confidence),
	}, nil
}

type themeReply struct {
	Themes []struct {
		Name  string   `json:"name"`
		Codes []string `json:"codes"`
	} `json:"themes"`
}

func (s *workerService) groupIntoThemes(ctx context.Context, client *llm.GuardedClient, labels []hierarchy.CodeLabel) (map[string][]string, error) {
	if len(labels) == 0 {
		return map[string][]string{}, nil
	}

	var sb strings.Builder
	sb.WriteString("Group these survey codes into a small set of broader themes.\n")
	sb.WriteString("Codes:\n")
	for _, label := range labels {
		sb.WriteString("- ")
		sb.WriteString(label.Name)
		sb.WriteString("\n")
	}
	sb.WriteString("\nRespond with JSON only: {\"themes\": [{\"name\": \"<theme>\", \"codes\": [\"<code>\", ...]}]}")

	completion, err := client.Generate(ctx, sb.String(), llm.WithTemperature(0.2), llm.WithMaxTokens(512))
	if err != nil {
		return nil, err
	}

	var reply themeReply
	if err := decodeJSONReply(completion.Text, &reply); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "unparseable theme reply", err)
	}

	themes := make(map[string][]string, len(reply.Themes))
	for _, theme := range reply.Themes {
		if theme.Name == "" {
			continue
		}
		themes[theme.Name] = append(themes[theme.Name], theme.Codes...)
	}
	return themes, nil
}

func (s *workerService) stageBrands(ctx context.Context, job *entity.GenerationJob, _ *llm.GuardedClient) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	answers, err := uow.AnswerRepository().ListEligible(ctx, job.CategoryId)
	if err != nil {
		return err
	}

	texts := make([]string, 0, len(answers))
	for _, answer := range answers {
		texts = append(texts, answer.Text)
	}

	matcher := brand.NewMatcher(job.Config.KnownBrands)
	mentions := matcher.Extract(texts)

	codes := make([]hierarchy.BrandCode, 0, len(mentions))
	for _, mention := range mentions {
		validated := false
		ok, err := s.brandValidator.Validate(ctx, mention.Canonical)
		if err != nil {
			// Validation is corroborating evidence, not a gate; an
			// unreachable registry just lowers confidence.
			s.logger.Warn("WorkerService", "Brand validation failed", map[string]interface{}{
				"job_id": job.Id, "brand": mention.Canonical, "error": err.Error(),
			})
		} else {
			validated = ok
		}

		codes = append(codes, hierarchy.BrandCode{
			Name:       mention.Canonical,
			Mention:    brand.Normalize(mention.Raw),
			Confidence: brand.Confidence(mention.KnownMatch, validated, mention.ContextHit),
		})
	}

	builder := hierarchy.NewBuilder(job.Config.ReviewThreshold)
	nodes, err := builder.FromBrands(job.Id, codes)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to build brand hierarchy", err)
	}

	if err := uow.HierarchyNodeRepository().DeleteByJobId(ctx, job.Id); err != nil {
		return err
	}
	return uow.HierarchyNodeRepository().CreateBulk(ctx, nodes)
}

func (s *workerService) checkCancelled(ctx context.Context, jobId uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.GenerationJobRepository().FindOne(ctx, jobId)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, apperrors.Newf(apperrors.KindNotFound, "job %s disappeared", jobId)
	}
	return job.CancelRequested, nil
}

func (s *workerService) completeJob(ctx context.Context, jobId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.GenerationJobRepository().UpdateStatus(ctx, jobId, entity.JobStatusCompleted); err != nil {
		return err
	}
	s.publishProgress(jobId, entity.JobStatusCompleted, "", "")
	s.logger.Info("WorkerService", "Job completed", map[string]interface{}{"job_id": jobId})
	return nil
}

// failJob records the terminal failure and acks the message; the job row is
// the durable record, redelivery would only repeat the failure.
func (s *workerService) failJob(ctx context.Context, jobId uuid.UUID, cause error) error {
	kind := apperrors.KindOf(cause)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.GenerationJobRepository().MarkFailed(ctx, jobId, string(kind), cause.Error()); err != nil {
		return err
	}

	s.publishProgress(jobId, entity.JobStatusFailed, string(kind), apperrors.UserMessage(kind))
	s.logger.Error("WorkerService", "Job failed", map[string]interface{}{
		"job_id": jobId,
		"kind":   string(kind),
		"error":  cause.Error(),
	})
	return nil
}

func (s *workerService) publishProgress(jobId uuid.UUID, status entity.JobStatus, errorKind, errorMessage string) {
	if s.progress == nil {
		return
	}
	err := s.progress.Publish(events.JobProgressEvent{
		JobId:       jobId,
		Status:      string(status),
		ProgressPct: status.ProgressPct(),
		ErrorKind:   errorKind,
		Error:       errorMessage,
		OccurredAt:  time.Now(),
	})
	if err != nil {
		s.logger.Warn("WorkerService", "Failed to publish progress", map[string]interface{}{
			"job_id": jobId, "error": err.Error(),
		})
	}
}

// ledgerFor returns the callback recording actual usage of every billed
// call: one ledger row plus an atomic increment on the job.
func (s *workerService) ledgerFor(jobId uuid.UUID) llm.LedgerFunc {
	return func(ctx context.Context, model string, tokensIn, tokensOut int, costUSD float64) {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		entry := &entity.CostEntry{
			Id:        uuid.New(),
			JobId:     jobId,
			Model:     model,
			TokensIn:  tokensIn,
			TokensOut: tokensOut,
			CostUSD:   costUSD,
			CreatedAt: time.Now(),
		}
		if err := uow.CostLedgerRepository().Create(ctx, entry); err != nil {
			s.logger.Error("WorkerService", "Failed to write cost ledger entry", map[string]interface{}{
				"job_id": jobId, "error": err.Error(),
			})
		}
		if err := uow.GenerationJobRepository().AddCost(ctx, jobId, costUSD); err != nil {
			s.logger.Error("WorkerService", "Failed to accumulate job cost", map[string]interface{}{
				"job_id": jobId, "error": err.Error(),
			})
		}
	}
}

// decodeJSONReply extracts the first JSON object from a model reply, which
// may be wrapped in prose or a code fence.
func decodeJSONReply(text string, out interface{}) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in reply: %q", truncate(text, 120))
	}
	return json.Unmarshal([]byte(text[start:end+1]), out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
