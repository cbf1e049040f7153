// Package persistence provides the storage abstraction for workflows.
package persistence

import (
	"context"
	"time"

	"github.com/contractpulse/flowdesigner/pkg/models"
)

// Persistence is a storage backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflows as whole documents.
type WorkflowRepository interface {
	// Save inserts or replaces a workflow and stamps CreatedAt and UpdatedAt on it.
	Save(ctx context.Context, workflow *models.Workflow) error
	// GetByID returns ErrWorkflowNotFound when the workflow does not exist.
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	// Publish marks a stored workflow published at the given time and returns it.
	Publish(ctx context.Context, id string, at time.Time) (*models.Workflow, error)
	List(ctx context.Context, opts ListWorkflowsOptions) (*WorkflowListResult, error)
	Delete(ctx context.Context, id string) error
}

// Sort fields accepted by List.
const (
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortByName      = "name"
	SortByPriority  = "priority"

	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListWorkflowsOptions filters, sorts and paginates List.
type ListWorkflowsOptions struct {
	Status       *models.WorkflowStatus
	Active       *bool
	ContractType string
	Owner        string
	SortBy       string
	SortOrder    string
	Limit        int
	Offset       int
}

// WorkflowListResult is one page of workflows.
type WorkflowListResult struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// ValidateWorkflowID rejects ids that are empty or could escape a storage namespace.
func ValidateWorkflowID(id string) error {
	if id == "" || len(id) > 128 {
		return ErrInvalidWorkflowID
	}

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ErrInvalidWorkflowID
		}
	}

	return nil
}
