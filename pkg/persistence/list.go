package persistence

import (
	"fmt"
	"slices"
	"sort"

	"github.com/contractpulse/flowdesigner/pkg/models"
)

// NormalizeListOptions applies defaults and rejects unknown sort fields.
func NormalizeListOptions(opts ListWorkflowsOptions) (ListWorkflowsOptions, error) {
	if opts.Limit <= 0 || opts.Limit > MaxListLimit {
		opts.Limit = DefaultListLimit
	}

	if opts.Offset < 0 {
		opts.Offset = 0
	}

	if opts.SortBy == "" {
		opts.SortBy = SortByCreatedAt
	}

	if opts.SortOrder == "" {
		opts.SortOrder = SortDesc
	}

	switch opts.SortBy {
	case SortByCreatedAt, SortByUpdatedAt, SortByName, SortByPriority:
	default:
		return opts, fmt.Errorf("%w: sort field %q", ErrInvalidSortField, opts.SortBy)
	}

	if opts.SortOrder != SortAsc && opts.SortOrder != SortDesc {
		return opts, fmt.Errorf("%w: sort order %q", ErrInvalidSortField, opts.SortOrder)
	}

	if opts.Status != nil && *opts.Status != models.WorkflowStatusDraft && *opts.Status != models.WorkflowStatusPublished {
		return opts, fmt.Errorf("%w: %q", ErrInvalidWorkflowStatus, *opts.Status)
	}

	return opts, nil
}

// Matches reports whether a workflow passes the option filters.
func (opts ListWorkflowsOptions) Matches(workflow *models.Workflow) bool {
	if opts.Owner != "" && workflow.Owner != opts.Owner {
		return false
	}

	if opts.Status != nil && workflow.Status != *opts.Status {
		return false
	}

	if opts.Active != nil && workflow.Properties.Active != *opts.Active {
		return false
	}

	if opts.ContractType != "" && !slices.Contains(workflow.Properties.ContractTypes, opts.ContractType) {
		return false
	}

	return true
}

// ApplyListOptions filters, sorts and paginates workflows in memory. It is used by
// backends that cannot query.
func ApplyListOptions(workflows []*models.Workflow, opts ListWorkflowsOptions) (*WorkflowListResult, error) {
	opts, err := NormalizeListOptions(opts)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Workflow, 0, len(workflows))

	for _, workflow := range workflows {
		if opts.Matches(workflow) {
			filtered = append(filtered, workflow)
		}
	}

	sortWorkflows(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))

	if opts.Offset >= len(filtered) {
		return &WorkflowListResult{
			Workflows:   make([]*models.Workflow, 0),
			TotalCount:  totalCount,
			HasNextPage: false,
		}, nil
	}

	endIdx := min(opts.Offset+opts.Limit, len(filtered))

	return &WorkflowListResult{
		Workflows:   filtered[opts.Offset:endIdx],
		TotalCount:  totalCount,
		HasNextPage: endIdx < len(filtered),
	}, nil
}

// sortWorkflows sorts workflows in-place based on the specified field and order. Ties
// are broken by id so pages are stable.
func sortWorkflows(workflows []*models.Workflow, sortBy, sortOrder string) {
	sort.SliceStable(workflows, func(i, j int) bool {
		a, b := workflows[i], workflows[j]

		var cmp int

		switch sortBy {
		case SortByUpdatedAt:
			cmp = a.UpdatedAt.Compare(b.UpdatedAt)
		case SortByName:
			cmp = compare(a.Name, b.Name)
		case SortByPriority:
			cmp = compare(a.Properties.Priority, b.Properties.Priority)
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}

		if cmp == 0 {
			cmp = compare(a.ID, b.ID)
		}

		if sortOrder == SortDesc {
			return cmp > 0
		}

		return cmp < 0
	})
}

func compare[T int | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
