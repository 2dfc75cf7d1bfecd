package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"codeframe-be/internal/entity"
	"codeframe-be/internal/repository/contract"
	"codeframe-be/internal/repository/specification"
	"codeframe-be/internal/repository/unitofwork"
	"codeframe-be/pkg/embedding"
	"codeframe-be/pkg/events"
	"codeframe-be/pkg/llm"

	"github.com/google/uuid"
)

// memStore is the shared in-memory backing for all fake repositories, so a
// unit of work built from it sees every write of the scenario.
type memStore struct {
	mu         sync.Mutex
	answers    []*entity.Answer
	embeddings map[string]*entity.AnswerEmbedding
	jobs       map[uuid.UUID]*entity.GenerationJob
	clusters   []*entity.Cluster
	nodes      []*entity.HierarchyNode
	ledger     []*entity.CostEntry
}

func newMemStore() *memStore {
	return &memStore{
		embeddings: make(map[string]*entity.AnswerEmbedding),
		jobs:       make(map[uuid.UUID]*entity.GenerationJob),
	}
}

func (m *memStore) addAnswer(categoryId uuid.UUID, text string) *entity.Answer {
	m.mu.Lock()
	defer m.mu.Unlock()
	answer := &entity.Answer{Id: uuid.New(), CategoryId: categoryId, Text: text, CreatedAt: time.Now()}
	m.answers = append(m.answers, answer)
	return answer
}

func (m *memStore) addJob(categoryId uuid.UUID, status entity.JobStatus, cfg entity.JobConfig) *entity.GenerationJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := &entity.GenerationJob{
		Id:         uuid.New(),
		CategoryId: categoryId,
		Status:     status,
		Config:     cfg,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.jobs[job.Id] = job
	return job
}

func embKey(answerId uuid.UUID, model string) string {
	return answerId.String() + "|" + model
}

// --- repositories ---

type fakeAnswerRepo struct{ store *memStore }

func (r *fakeAnswerRepo) ListEligible(ctx context.Context, categoryId uuid.UUID) ([]*entity.Answer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Answer
	for _, a := range r.store.answers {
		if a.CategoryId == categoryId && strings.TrimSpace(a.Text) != "" {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) CountEligible(ctx context.Context, categoryId uuid.UUID) (int64, error) {
	answers, _ := r.ListEligible(ctx, categoryId)
	return int64(len(answers)), nil
}

func (r *fakeAnswerRepo) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Answer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*entity.Answer
	for _, a := range r.store.answers {
		if want[a.Id] {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeEmbeddingRepo struct{ store *memStore }

func (r *fakeEmbeddingRepo) ListByAnswerIds(ctx context.Context, answerIds []uuid.UUID, modelVersion string) ([]*entity.AnswerEmbedding, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.AnswerEmbedding
	for _, id := range answerIds {
		if emb, ok := r.store.embeddings[embKey(id, modelVersion)]; ok {
			out = append(out, emb)
		}
	}
	return out, nil
}

func (r *fakeEmbeddingRepo) UpsertBulk(ctx context.Context, embeddings []*entity.AnswerEmbedding) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, emb := range embeddings {
		r.store.embeddings[embKey(emb.AnswerId, emb.ModelVersion)] = emb
	}
	return nil
}

func (r *fakeEmbeddingRepo) DeleteStale(ctx context.Context, currentModelVersion string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for key, emb := range r.store.embeddings {
		if emb.ModelVersion != currentModelVersion {
			delete(r.store.embeddings, key)
		}
	}
	return nil
}

func (r *fakeEmbeddingRepo) Count(ctx context.Context, modelVersion string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, emb := range r.store.embeddings {
		if emb.ModelVersion == modelVersion {
			n++
		}
	}
	return n, nil
}

type fakeJobRepo struct{ store *memStore }

func (r *fakeJobRepo) Create(ctx context.Context, job *entity.GenerationJob) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *job
	r.store.jobs[job.Id] = &copied
	return nil
}

func (r *fakeJobRepo) FindOne(ctx context.Context, id uuid.UUID) (*entity.GenerationJob, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	job, ok := r.store.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationJob, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.GenerationJob
	for _, job := range r.store.jobs {
		keep := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByCategoryID:
				keep = keep && job.CategoryId == s.CategoryID
			case specification.ByStatus:
				keep = keep && string(job.Status) == s.Status
			}
		}
		if keep {
			copied := *job
			out = append(out, &copied)
		}
	}

	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			sort.Slice(out, func(i, j int) bool {
				if s.Desc {
					return out[i].CreatedAt.After(out[j].CreatedAt)
				}
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			})
		case specification.Pagination:
			if s.Offset < len(out) {
				out = out[s.Offset:]
			} else {
				out = nil
			}
			if s.Limit > 0 && s.Limit < len(out) {
				out = out[:s.Limit]
			}
		}
	}
	return out, nil
}

func (r *fakeJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.JobStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if job, ok := r.store.jobs[id]; ok {
		job.Status = status
		job.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, kind, message string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if job, ok := r.store.jobs[id]; ok {
		job.Status = entity.JobStatusFailed
		job.ErrorKind = kind
		job.ErrorMessage = message
		job.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeJobRepo) AddCost(ctx context.Context, id uuid.UUID, deltaUSD float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if job, ok := r.store.jobs[id]; ok {
		job.CostUSDAccum += deltaUSD
	}
	return nil
}

func (r *fakeJobRepo) SetMECE(ctx context.Context, id uuid.UUID, coverage, overlap float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if job, ok := r.store.jobs[id]; ok {
		job.MECECoverage = coverage
		job.MECEOverlap = overlap
	}
	return nil
}

func (r *fakeJobRepo) RequestCancel(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if job, ok := r.store.jobs[id]; ok {
		job.CancelRequested = true
	}
	return nil
}

type fakeClusterRepo struct{ store *memStore }

func (r *fakeClusterRepo) CreateBulk(ctx context.Context, clusters []*entity.Cluster) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.clusters = append(r.store.clusters, clusters...)
	return nil
}

func (r *fakeClusterRepo) ListByJobId(ctx context.Context, jobId uuid.UUID) ([]*entity.Cluster, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Cluster
	for _, c := range r.store.clusters {
		if c.JobId == jobId {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeClusterRepo) DeleteByJobId(ctx context.Context, jobId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var kept []*entity.Cluster
	for _, c := range r.store.clusters {
		if c.JobId != jobId {
			kept = append(kept, c)
		}
	}
	r.store.clusters = kept
	return nil
}

type fakeNodeRepo struct{ store *memStore }

func (r *fakeNodeRepo) CreateBulk(ctx context.Context, nodes []*entity.HierarchyNode) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nodes = append(r.store.nodes, nodes...)
	return nil
}

func (r *fakeNodeRepo) ListByJobId(ctx context.Context, jobId uuid.UUID) ([]*entity.HierarchyNode, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.HierarchyNode
	for _, n := range r.store.nodes {
		if n.JobId == jobId {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNodeRepo) FindOne(ctx context.Context, id uuid.UUID) (*entity.HierarchyNode, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, n := range r.store.nodes {
		if n.Id == id {
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeNodeRepo) Rename(ctx context.Context, id uuid.UUID, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, n := range r.store.nodes {
		if n.Id == id {
			n.Name = name
		}
	}
	return nil
}

func (r *fakeNodeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var kept []*entity.HierarchyNode
	for _, n := range r.store.nodes {
		if n.Id != id {
			kept = append(kept, n)
		}
	}
	r.store.nodes = kept
	return nil
}

func (r *fakeNodeRepo) DeleteByParentId(ctx context.Context, parentId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var kept []*entity.HierarchyNode
	for _, n := range r.store.nodes {
		if n.ParentId == nil || *n.ParentId != parentId {
			kept = append(kept, n)
		}
	}
	r.store.nodes = kept
	return nil
}

func (r *fakeNodeRepo) DeleteByJobId(ctx context.Context, jobId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var kept []*entity.HierarchyNode
	for _, n := range r.store.nodes {
		if n.JobId != jobId {
			kept = append(kept, n)
		}
	}
	r.store.nodes = kept
	return nil
}

func (r *fakeNodeRepo) VerifyBrandNodes(ctx context.Context, categoryId uuid.UUID, brandMention string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, n := range r.store.nodes {
		job, ok := r.store.jobs[n.JobId]
		if !ok || job.CategoryId != categoryId {
			continue
		}
		if n.Kind == entity.NodeKindCode && n.SourceBrandMention == brandMention && n.NeedsReview {
			n.NeedsReview = false
			n.IsVerified = true
			count++
		}
	}
	return count, nil
}

type fakeLedgerRepo struct{ store *memStore }

func (r *fakeLedgerRepo) Create(ctx context.Context, entry *entity.CostEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.ledger = append(r.store.ledger, entry)
	return nil
}

func (r *fakeLedgerRepo) SumByJobId(ctx context.Context, jobId uuid.UUID) (float64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var sum float64
	for _, e := range r.store.ledger {
		if e.JobId == jobId {
			sum += e.CostUSD
		}
	}
	return sum, nil
}

// --- unit of work ---

type fakeUnitOfWork struct{ store *memStore }

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) AnswerRepository() contract.AnswerRepository {
	return &fakeAnswerRepo{store: u.store}
}
func (u *fakeUnitOfWork) AnswerEmbeddingRepository() contract.AnswerEmbeddingRepository {
	return &fakeEmbeddingRepo{store: u.store}
}
func (u *fakeUnitOfWork) GenerationJobRepository() contract.GenerationJobRepository {
	return &fakeJobRepo{store: u.store}
}
func (u *fakeUnitOfWork) ClusterRepository() contract.ClusterRepository {
	return &fakeClusterRepo{store: u.store}
}
func (u *fakeUnitOfWork) HierarchyNodeRepository() contract.HierarchyNodeRepository {
	return &fakeNodeRepo{store: u.store}
}
func (u *fakeUnitOfWork) CostLedgerRepository() contract.CostLedgerRepository {
	return &fakeLedgerRepo{store: u.store}
}

type fakeFactory struct{ store *memStore }

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

// --- providers and sinks ---

type fakeEmbedder struct {
	mu      sync.Mutex
	vectors func(text string) []float32
	calls   int
	err     error
	errFor  func(text string) error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.errFor != nil {
		if err := f.errFor(text); err != nil {
			return nil, err
		}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vectors(text)},
	}, nil
}

func (f *fakeEmbedder) ModelVersion() string { return "fake-embed-001" }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeLLM struct {
	mu        sync.Mutex
	respond   func(prompt string) (string, error)
	calls     int
	healthErr error
}

func (f *fakeLLM) Name() string  { return "fake" }
func (f *fakeLLM) Model() string { return "fake-model" }

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Completion, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	text, err := f.respond(prompt)
	if err != nil {
		return nil, err
	}
	return &llm.Completion{Text: text, TokensIn: len(prompt) / 4, TokensOut: len(text) / 4}, nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	var prompt string
	if len(history) > 0 {
		prompt = history[len(history)-1].Content
	}
	return f.Generate(ctx, prompt, options...)
}

func (f *fakeLLM) Healthcheck(ctx context.Context) error { return f.healthErr }

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePublisher struct {
	mu     sync.Mutex
	jobIds []uuid.UUID
	err    error
}

func (f *fakePublisher) PublishJob(ctx context.Context, jobId uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobIds = append(f.jobIds, jobId)
	return nil
}

type fakeBrandValidator struct {
	known     map[string]bool
	healthErr error
	err       error
}

func (f *fakeBrandValidator) Validate(ctx context.Context, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[name], nil
}

func (f *fakeBrandValidator) Healthcheck(ctx context.Context) error { return f.healthErr }

type fakeProgress struct {
	mu     sync.Mutex
	events []events.JobProgressEvent
}

func (f *fakeProgress) Publish(event events.JobProgressEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeProgress) statuses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.Status)
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
