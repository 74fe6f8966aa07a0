package store

import (
	"context"

	"github.com/takeoff-group/recon-cli/internal/model"
)

// RunFilter specifies criteria for listing reconciliation runs.
type RunFilter struct {
	Status  model.RunStatus `json:"status,omitempty"`
	Project string          `json:"project,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for reconciliation runs.
type Store interface {
	CreateRun(ctx context.Context, project string) (*model.ReconciliationRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	SaveRunResult(ctx context.Context, runID string, status model.RunStatus, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.ReconciliationRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.ReconciliationRun, error)

	Migrate(ctx context.Context) error
	Close() error
}
