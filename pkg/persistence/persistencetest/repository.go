// Package persistencetest holds the behavior every workflow repository must share.
package persistencetest

import (
	"context"
	"testing"
	"time"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SampleWorkflow returns a small draft workflow with one of every common field set.
func SampleWorkflow(id, name string) *models.Workflow {
	wf := models.NewWorkflow(id, name)
	wf.Description = "Routes " + name + " contracts"
	wf.Owner = "lisa.anderson"
	wf.Properties.Priority = 4
	wf.Properties.ContractTypes = []string{"msa", "nda"}
	wf.Properties.Triggers.Renewal = true
	wf.Nodes = []*models.WorkflowNode{
		{ID: "start", Type: models.NodeTypeStart, Label: "Start", Position: models.Position{X: 100, Y: 200}, Properties: map[string]any{}},
		{ID: "legal", Type: models.NodeTypeApproval, Label: "Legal", Position: models.Position{X: 300.5, Y: 200}, Properties: map[string]any{
			"approver": "john.smith", "timeout": "24", "allowDelegation": true,
		}},
		{ID: "end", Type: models.NodeTypeEnd, Label: "End", Position: models.Position{X: 500, Y: 200}, Properties: map[string]any{}},
	}
	wf.Connections = []*models.Connection{
		{From: "start", To: "legal"},
		{From: "legal", To: "end", Label: "approved"},
	}

	return wf
}

// RunWorkflowRepositoryTests exercises a repository. The repository must start empty.
func RunWorkflowRepositoryTests(ctx context.Context, t *testing.T, repo persistence.WorkflowRepository) {
	t.Helper()

	t.Run("get missing workflow", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "does-not-exist")
		require.Error(t, err)
		assert.True(t, persistence.IsWorkflowNotFound(err))
	})

	t.Run("save and load round trip", func(t *testing.T) {
		wf := SampleWorkflow("wf-roundtrip", "Round Trip")

		require.NoError(t, repo.Save(ctx, wf))
		assert.False(t, wf.CreatedAt.IsZero())
		assert.False(t, wf.UpdatedAt.IsZero())

		loaded, err := repo.GetByID(ctx, wf.ID)
		require.NoError(t, err)

		assert.Equal(t, wf.Name, loaded.Name)
		assert.Equal(t, wf.Description, loaded.Description)
		assert.Equal(t, wf.Owner, loaded.Owner)
		assert.Equal(t, models.WorkflowStatusDraft, loaded.Status)
		assert.Equal(t, wf.Properties, loaded.Properties)
		assert.Equal(t, wf.Connections, loaded.Connections)
		require.Len(t, loaded.Nodes, 3)
		assert.Equal(t, "legal", loaded.Nodes[1].ID)
		assert.Equal(t, models.Position{X: 300.5, Y: 200}, loaded.Nodes[1].Position)
		assert.Equal(t, "john.smith", loaded.Nodes[1].Properties["approver"])
		assert.Equal(t, true, loaded.Nodes[1].Properties["allowDelegation"])
		assert.Nil(t, loaded.PublishedAt)
		assert.WithinDuration(t, wf.CreatedAt, loaded.CreatedAt, time.Millisecond)
	})

	t.Run("save replaces and keeps created at", func(t *testing.T) {
		wf := SampleWorkflow("wf-replace", "Replace")
		require.NoError(t, repo.Save(ctx, wf))

		created := wf.CreatedAt
		wf.Name = "Replaced"
		wf.Nodes = wf.Nodes[:1]
		wf.Connections = nil

		require.NoError(t, repo.Save(ctx, wf))

		loaded, err := repo.GetByID(ctx, wf.ID)
		require.NoError(t, err)
		assert.Equal(t, "Replaced", loaded.Name)
		assert.Len(t, loaded.Nodes, 1)
		assert.Empty(t, loaded.Connections)
		assert.WithinDuration(t, created, loaded.CreatedAt, time.Millisecond)
	})

	t.Run("publish", func(t *testing.T) {
		wf := SampleWorkflow("wf-publish", "Publish")
		require.NoError(t, repo.Save(ctx, wf))

		at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		published, err := repo.Publish(ctx, wf.ID, at)
		require.NoError(t, err)
		assert.Equal(t, models.WorkflowStatusPublished, published.Status)
		require.NotNil(t, published.PublishedAt)
		assert.True(t, at.Equal(*published.PublishedAt))

		loaded, err := repo.GetByID(ctx, wf.ID)
		require.NoError(t, err)
		assert.True(t, loaded.IsPublished())
		require.NotNil(t, loaded.PublishedAt)
		assert.True(t, at.Equal(*loaded.PublishedAt))

		_, err = repo.Publish(ctx, "never-saved", at)
		assert.True(t, persistence.IsWorkflowNotFound(err))
	})

	t.Run("list filters", func(t *testing.T) {
		other := SampleWorkflow("wf-list-vendor", "Vendor")
		other.Properties.ContractTypes = []string{"vendor"}
		other.Properties.Active = false
		require.NoError(t, repo.Save(ctx, other))

		result, err := repo.List(ctx, persistence.ListWorkflowsOptions{ContractType: "vendor"})
		require.NoError(t, err)
		require.Len(t, result.Workflows, 1)
		assert.Equal(t, "wf-list-vendor", result.Workflows[0].ID)

		published := models.WorkflowStatusPublished
		result, err = repo.List(ctx, persistence.ListWorkflowsOptions{Status: &published})
		require.NoError(t, err)
		require.Len(t, result.Workflows, 1)
		assert.Equal(t, "wf-publish", result.Workflows[0].ID)

		inactive := false
		result, err = repo.List(ctx, persistence.ListWorkflowsOptions{Active: &inactive})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.TotalCount)

		result, err = repo.List(ctx, persistence.ListWorkflowsOptions{SortBy: persistence.SortByName, SortOrder: persistence.SortAsc, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(4), result.TotalCount)
		assert.True(t, result.HasNextPage)
		require.Len(t, result.Workflows, 2)
		assert.Equal(t, "Publish", result.Workflows[0].Name)
		assert.Equal(t, "Replaced", result.Workflows[1].Name)

		_, err = repo.List(ctx, persistence.ListWorkflowsOptions{SortBy: "name; DROP TABLE workflows; --"})
		assert.ErrorIs(t, err, persistence.ErrInvalidSortField)
	})

	t.Run("delete", func(t *testing.T) {
		wf := SampleWorkflow("wf-delete", "Delete")
		require.NoError(t, repo.Save(ctx, wf))

		require.NoError(t, repo.Delete(ctx, wf.ID))

		_, err := repo.GetByID(ctx, wf.ID)
		assert.True(t, persistence.IsWorkflowNotFound(err))

		err = repo.Delete(ctx, wf.ID)
		assert.True(t, persistence.IsWorkflowNotFound(err))
	})

	t.Run("invalid id", func(t *testing.T) {
		err := repo.Save(ctx, SampleWorkflow("../escape", "Escape"))
		assert.ErrorIs(t, err, persistence.ErrInvalidWorkflowID)
	})
}
