// Package events defines the workflow lifecycle events published by the designer.
package events

import (
	"time"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every workflow lifecycle event.
const Topic = "contractpulse.workflows"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowSavedEvent       EventType = "workflow.saved"
	WorkflowPublishedEvent   EventType = "workflow.published"
	WorkflowUnpublishedEvent EventType = "workflow.unpublished"
	WorkflowDeletedEvent     EventType = "workflow.deleted"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// WorkflowSaved is emitted after a draft is written to the repository.
type WorkflowSaved struct {
	BaseEvent

	Name            string                `json:"name"`
	Status          models.WorkflowStatus `json:"status"`
	NodeCount       int                   `json:"node_count"`
	ConnectionCount int                   `json:"connection_count"`
	Autosave        bool                  `json:"autosave"`
}

func (w WorkflowSaved) GetType() EventType {
	return WorkflowSavedEvent
}

// WorkflowPublished is emitted once a validated workflow becomes read-only.
type WorkflowPublished struct {
	BaseEvent

	Name          string    `json:"name"`
	PublishedAt   time.Time `json:"published_at"`
	Priority      int       `json:"priority"`
	ContractTypes []string  `json:"contract_types"`
}

func (w WorkflowPublished) GetType() EventType {
	return WorkflowPublishedEvent
}

type WorkflowUnpublished struct {
	BaseEvent
}

func (w WorkflowUnpublished) GetType() EventType {
	return WorkflowUnpublishedEvent
}

type WorkflowDeleted struct {
	BaseEvent
}

func (w WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

// NewBaseEvent stamps a new event id and the current time.
func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}

// NewWorkflowSaved describes a saved workflow.
func NewWorkflowSaved(workflow *models.Workflow, autosave bool) *WorkflowSaved {
	return &WorkflowSaved{
		BaseEvent:       NewBaseEvent(WorkflowSavedEvent, workflow.ID),
		Name:            workflow.Name,
		Status:          workflow.Status,
		NodeCount:       len(workflow.Nodes),
		ConnectionCount: len(workflow.Connections),
		Autosave:        autosave,
	}
}

// NewWorkflowPublished describes a published workflow.
func NewWorkflowPublished(workflow *models.Workflow) *WorkflowPublished {
	event := &WorkflowPublished{
		BaseEvent:     NewBaseEvent(WorkflowPublishedEvent, workflow.ID),
		Name:          workflow.Name,
		Priority:      workflow.Properties.Priority,
		ContractTypes: workflow.Properties.ContractTypes,
	}

	if workflow.PublishedAt != nil {
		event.PublishedAt = *workflow.PublishedAt
	}

	return event
}

// New returns an empty event of the given type for decoding, or nil when the type is unknown.
func New(eventType EventType) any {
	switch eventType {
	case WorkflowSavedEvent:
		return &WorkflowSaved{}
	case WorkflowPublishedEvent:
		return &WorkflowPublished{}
	case WorkflowUnpublishedEvent:
		return &WorkflowUnpublished{}
	case WorkflowDeletedEvent:
		return &WorkflowDeleted{}
	default:
		return nil
	}
}
