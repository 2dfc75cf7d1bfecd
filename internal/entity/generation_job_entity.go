package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusEmbedding  JobStatus = "embedding"
	JobStatusClustering JobStatus = "clustering"
	JobStatusLabeling   JobStatus = "labeling"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether the status can no longer change.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ProgressPct maps a stage to the coarse progress reported by the polling
// API. Failed jobs keep the percentage of the stage they died in.
func (s JobStatus) ProgressPct() int {
	switch s {
	case JobStatusQueued:
		return 0
	case JobStatusEmbedding:
		return 20
	case JobStatusClustering:
		return 45
	case JobStatusLabeling:
		return 70
	case JobStatusCompleted:
		return 100
	default:
		return 0
	}
}

const (
	JobModeClustering = "clustering"
	JobModeBrands     = "brands"
)

// JobConfig is the validated per-job configuration supplied at enqueue time.
type JobConfig struct {
	Mode            string  `json:"mode" validate:"required,oneof=clustering brands"`
	MinClusterSize  int     `json:"min_cluster_size" validate:"omitempty,min=2,max=100"`
	MinSamples      int     `json:"min_samples" validate:"omitempty,min=1,max=100"`
	Epsilon         float64 `json:"epsilon" validate:"omitempty,gt=0,lt=2"`
	MaxCostPerJob   float64 `json:"max_cost_per_job" validate:"omitempty,gt=0,lte=100"`
	ReviewThreshold float64 `json:"review_threshold" validate:"omitempty,gte=0,lte=1"`
	// KnownBrands seeds the brand matcher in brands mode.
	KnownBrands []string `json:"known_brands" validate:"omitempty,dive,min=1,max=120"`
}

// ApplyDefaults fills unset fields. The review threshold is configurable on
// purpose; 0.5 is only the default.
func (c *JobConfig) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = JobModeClustering
	}
	if c.MinClusterSize == 0 {
		c.MinClusterSize = 5
	}
	if c.MinSamples == 0 {
		c.MinSamples = 3
	}
	if c.Epsilon == 0 {
		c.Epsilon = 0.35
	}
	if c.MaxCostPerJob == 0 {
		c.MaxCostPerJob = 5.0
	}
	if c.ReviewThreshold == 0 {
		c.ReviewThreshold = 0.5
	}
}

// GenerationJob tracks one codeframe generation request end to end. Status
// moves strictly forward; failed is reachable from any stage. Terminal jobs
// are retained for audit.
type GenerationJob struct {
	Id              uuid.UUID
	CategoryId      uuid.UUID
	Status          JobStatus
	Config          JobConfig
	CostUSDAccum    float64
	ErrorKind       string
	ErrorMessage    string
	CancelRequested bool
	MECECoverage    float64
	MECEOverlap     float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
