package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, WorkflowSavedEvent, WorkflowSaved{}.GetType())
	assert.Equal(t, WorkflowPublishedEvent, WorkflowPublished{}.GetType())
	assert.Equal(t, WorkflowUnpublishedEvent, WorkflowUnpublished{}.GetType())
	assert.Equal(t, WorkflowDeletedEvent, WorkflowDeleted{}.GetType())
}

func TestNewBaseEvent(t *testing.T) {
	t.Parallel()

	event := NewBaseEvent(WorkflowDeletedEvent, "wf-1")

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, WorkflowDeletedEvent, event.Type)
	assert.Equal(t, "wf-1", event.WorkflowID)
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Minute)
	assert.NotEqual(t, event.ID, NewBaseEvent(WorkflowDeletedEvent, "wf-1").ID)
}

func TestWorkflowSaved_JSONSerialization(t *testing.T) {
	t.Parallel()

	workflow := models.NewWorkflow("wf-42", "Vendor Intake")
	workflow.Nodes = append(workflow.Nodes, &models.WorkflowNode{ID: "start", Type: models.NodeTypeStart})

	original := NewWorkflowSaved(workflow, true)

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"type":"workflow.saved"`)
	assert.Contains(t, string(jsonData), `"workflow_id":"wf-42"`)
	assert.Contains(t, string(jsonData), `"node_count":1`)
	assert.Contains(t, string(jsonData), `"autosave":true`)

	decoded, ok := New(WorkflowSavedEvent).(*WorkflowSaved)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(jsonData, decoded))

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, "Vendor Intake", decoded.Name)
	assert.Equal(t, models.WorkflowStatusDraft, decoded.Status)
	assert.Equal(t, 1, decoded.NodeCount)
	assert.Zero(t, decoded.ConnectionCount)
}

func TestNewWorkflowPublished(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	workflow := models.NewWorkflow("wf-7", "High Value")
	workflow.PublishedAt = &at
	workflow.Properties.Priority = 8
	workflow.Properties.ContractTypes = []string{"msa"}

	event := NewWorkflowPublished(workflow)

	assert.Equal(t, WorkflowPublishedEvent, event.Type)
	assert.Equal(t, at, event.PublishedAt)
	assert.Equal(t, 8, event.Priority)
	assert.Equal(t, []string{"msa"}, event.ContractTypes)
}

func TestNew_UnknownType(t *testing.T) {
	t.Parallel()

	assert.Nil(t, New("workflow.exploded"))
	assert.IsType(t, &WorkflowDeleted{}, New(WorkflowDeletedEvent))
}
