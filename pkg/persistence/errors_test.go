package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/contractpulse/flowdesigner/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		t.Parallel()

		workflowErr := persistence.NewWorkflowError("GetByID", "workflow-123", persistence.ErrWorkflowNotFound)

		assert.True(t, persistence.IsWorkflowNotFound(workflowErr))
		assert.True(t, persistence.IsWorkflowNotFound(fmt.Errorf("load: %w", workflowErr)))
		assert.False(t, persistence.IsWorkflowNotFound(errors.New("boom")))
		assert.True(t, errors.Is(workflowErr, persistence.ErrWorkflowNotFound))
	})

	t.Run("workflow error contains context", func(t *testing.T) {
		t.Parallel()

		err := persistence.NewWorkflowError("Publish", "workflow-123", persistence.ErrWorkflowNotFound)

		assert.Contains(t, err.Error(), "Publish")
		assert.Contains(t, err.Error(), "workflow-123")
		assert.Contains(t, err.Error(), "workflow not found")
	})

	t.Run("message is included", func(t *testing.T) {
		t.Parallel()

		err := &persistence.WorkflowError{Op: "List", Err: persistence.ErrInvalidSortField, Message: "sort by color"}

		assert.Equal(t, "List operation failed for workflow : sort by color (invalid sort field)", err.Error())
	})
}
