package persistence_test

import (
	"testing"
	"time"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/persistence"
	"github.com/contractpulse/flowdesigner/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listFixture() []*models.Workflow {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	fixture := func(id, name string, offset int, status models.WorkflowStatus, active bool, priority int, types ...string) *models.Workflow {
		return testutil.CreateTestWorkflow(
			testutil.WithWorkflowID(id),
			testutil.WithName(name),
			testutil.WithStatus(status),
			testutil.WithWorkflowProperties(active, priority, types...),
			testutil.WithCreatedAt(base.Add(time.Duration(offset)*time.Hour)),
		)
	}

	return []*models.Workflow{
		fixture("wf-a", "Alpha", 0, models.WorkflowStatusDraft, true, 3, "nda"),
		fixture("wf-b", "Bravo", 1, models.WorkflowStatusPublished, true, 7, "msa", "sow"),
		fixture("wf-c", "Charlie", 2, models.WorkflowStatusPublished, false, 1, "vendor"),
		fixture("wf-d", "Delta", 3, models.WorkflowStatusDraft, true, 5, "msa"),
	}
}

func ids(result *persistence.WorkflowListResult) []string {
	out := make([]string, len(result.Workflows))
	for i, wf := range result.Workflows {
		out[i] = wf.ID
	}

	return out
}

func TestApplyListOptions(t *testing.T) {
	t.Parallel()

	published := models.WorkflowStatusPublished
	inactive := false

	tests := []struct {
		name     string
		opts     persistence.ListWorkflowsOptions
		expected []string
		total    int64
		hasNext  bool
	}{
		{
			name:     "defaults to newest first",
			expected: []string{"wf-d", "wf-c", "wf-b", "wf-a"},
			total:    4,
		},
		{
			name:     "status filter",
			opts:     persistence.ListWorkflowsOptions{Status: &published},
			expected: []string{"wf-c", "wf-b"},
			total:    2,
		},
		{
			name:     "active filter",
			opts:     persistence.ListWorkflowsOptions{Active: &inactive},
			expected: []string{"wf-c"},
			total:    1,
		},
		{
			name:     "contract type filter",
			opts:     persistence.ListWorkflowsOptions{ContractType: "msa", SortBy: "name", SortOrder: "asc"},
			expected: []string{"wf-b", "wf-d"},
			total:    2,
		},
		{
			name:     "priority descending",
			opts:     persistence.ListWorkflowsOptions{SortBy: "priority"},
			expected: []string{"wf-b", "wf-d", "wf-a", "wf-c"},
			total:    4,
		},
		{
			name:     "first page",
			opts:     persistence.ListWorkflowsOptions{SortBy: "name", SortOrder: "asc", Limit: 3},
			expected: []string{"wf-a", "wf-b", "wf-c"},
			total:    4,
			hasNext:  true,
		},
		{
			name:     "last page",
			opts:     persistence.ListWorkflowsOptions{SortBy: "name", SortOrder: "asc", Limit: 3, Offset: 3},
			expected: []string{"wf-d"},
			total:    4,
		},
		{
			name:     "offset past end",
			opts:     persistence.ListWorkflowsOptions{Offset: 10},
			expected: []string{},
			total:    4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := persistence.ApplyListOptions(listFixture(), tt.opts)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, ids(result))
			assert.Equal(t, tt.total, result.TotalCount)
			assert.Equal(t, tt.hasNext, result.HasNextPage)
		})
	}
}

func TestNormalizeListOptions(t *testing.T) {
	t.Parallel()

	opts, err := persistence.NormalizeListOptions(persistence.ListWorkflowsOptions{Limit: 1000, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, persistence.DefaultListLimit, opts.Limit)
	assert.Equal(t, 0, opts.Offset)
	assert.Equal(t, persistence.SortByCreatedAt, opts.SortBy)
	assert.Equal(t, persistence.SortDesc, opts.SortOrder)

	_, err = persistence.NormalizeListOptions(persistence.ListWorkflowsOptions{SortBy: "color"})
	assert.ErrorIs(t, err, persistence.ErrInvalidSortField)

	_, err = persistence.NormalizeListOptions(persistence.ListWorkflowsOptions{SortOrder: "sideways"})
	assert.ErrorIs(t, err, persistence.ErrInvalidSortField)

	bogus := models.WorkflowStatus("archived")
	_, err = persistence.NormalizeListOptions(persistence.ListWorkflowsOptions{Status: &bogus})
	assert.ErrorIs(t, err, persistence.ErrInvalidWorkflowStatus)
}
