// Package events carries in-process job progress notifications between the
// pipeline worker and the status cache over a watermill pub/sub channel.
package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicJobProgress is the watermill topic progress events flow on.
const TopicJobProgress = "job.progress"

// JobProgressEvent is emitted every time a job changes status. The status
// listener folds it into the cache so polling clients see fresh progress
// without hitting the database.
type JobProgressEvent struct {
	JobId       uuid.UUID `json:"job_id"`
	Status      string    `json:"status"`
	ProgressPct int       `json:"progress_pct"`
	CostUSD     float64   `json:"cost_usd"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	Error       string    `json:"error,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
