package ports

import (
	"context"
	"time"
)

// SolveRun records the outcome of one solve for later inspection.
type SolveRun struct {
	ID           string
	InstanceName string
	Strategy     string
	Fingerprint  string
	Outcome      string
	ErrorKind    string
	Routes       int
	Unreachable  int
	TotalCost    float64
	Duration     time.Duration
	CacheHit     bool
	CreatedAt    time.Time
}

// Port: a boundary for persisting solve history.
type SolveRunRepository interface {
	SaveRun(ctx context.Context, run SolveRun) error
	// Most recent first; limit <= 0 means no limit.
	ListRuns(ctx context.Context, instanceName string, limit int) ([]SolveRun, error)
}
