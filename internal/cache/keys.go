package cache

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const keyPrefix = "codeframe"

// Status snapshot TTLs. Terminal snapshots never change, so they may live
// longer; in-flight ones expire fast to bound staleness against the job row.
const (
	StatusTTL         = 30 * time.Second
	TerminalStatusTTL = 10 * time.Minute
)

// JobStatusKey builds the cache key for a job's status snapshot.
func JobStatusKey(jobID uuid.UUID) string {
	return fmt.Sprintf("%s:job:%s:status", keyPrefix, jobID)
}
