package dto

import (
	"time"

	"github.com/google/uuid"

	"codeframe-be/internal/entity"
)

type GenerateRequest struct {
	CategoryId uuid.UUID         `json:"category_id" validate:"required"`
	Config     *entity.JobConfig `json:"config" validate:"omitempty"`
}

type GenerateResponse struct {
	JobId uuid.UUID `json:"job_id"`
}

type StatusResponse struct {
	JobId       uuid.UUID `json:"job_id"`
	Status      string    `json:"status"`
	ProgressPct int       `json:"progress_pct"`
	CostUSD     float64   `json:"cost_usd"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// ListJobsRequest filters the job listing. Both filters are optional.
type ListJobsRequest struct {
	CategoryId *uuid.UUID `json:"category_id"`
	Status     string     `json:"status" validate:"omitempty,oneof=queued embedding clustering labeling completed failed"`
	Limit      int        `json:"limit" validate:"omitempty,gte=1,lte=200"`
	Offset     int        `json:"offset" validate:"omitempty,gte=0"`
}

type JobSummary struct {
	JobId       uuid.UUID `json:"job_id"`
	CategoryId  uuid.UUID `json:"category_id"`
	Mode        string    `json:"mode"`
	Status      string    `json:"status"`
	ProgressPct int       `json:"progress_pct"`
	CostUSD     float64   `json:"cost_usd"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListJobsResponse struct {
	Jobs []JobSummary `json:"jobs"`
}

// HierarchyNodeResponse is one node of the returned codeframe tree. Codes
// nest under their theme's Children.
type HierarchyNodeResponse struct {
	Id                 uuid.UUID               `json:"id"`
	Name               string                  `json:"name"`
	Kind               string                  `json:"kind"`
	Confidence         float64                 `json:"confidence"`
	IsVerified         bool                    `json:"is_verified"`
	NeedsReview        bool                    `json:"needs_review"`
	SourceClusterId    *uuid.UUID              `json:"source_cluster_id,omitempty"`
	SourceBrandMention string                  `json:"source_brand_mention,omitempty"`
	Children           []HierarchyNodeResponse `json:"children,omitempty"`
}

type HierarchyResponse struct {
	JobId        uuid.UUID               `json:"job_id"`
	MECECoverage float64                 `json:"mece_coverage"`
	MECEOverlap  float64                 `json:"mece_overlap"`
	Themes       []HierarchyNodeResponse `json:"themes"`
	GeneratedAt  time.Time               `json:"generated_at"`
}

type ConfirmBrandRequest struct {
	CategoryId   uuid.UUID `json:"category_id" validate:"required"`
	BrandMention string    `json:"brand_mention" validate:"required,min=1,max=120"`
}

type ConfirmBrandResponse struct {
	VerifiedCount int64 `json:"verified_count"`
}

type RenameNodeRequest struct {
	Id   uuid.UUID
	Name string `json:"name" validate:"required,min=1,max=200"`
}
