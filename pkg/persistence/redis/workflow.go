package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

// WorkflowRepository stores each workflow as a JSON string under <prefix>workflow:<id>
// and tracks ids in the <prefix>workflows set.
type WorkflowRepository struct {
	client goredis.UniversalClient
	prefix string
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(client goredis.UniversalClient, prefix string) *WorkflowRepository {
	return &WorkflowRepository{client: client, prefix: prefix}
}

func (r *WorkflowRepository) key(id string) string {
	return r.prefix + "workflow:" + id
}

func (r *WorkflowRepository) indexKey() string {
	return r.prefix + "workflows"
}

// GetByID returns a workflow by id.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", id, err)
	}

	return decode(id, data)
}

func decode(id string, data []byte) (*models.Workflow, error) {
	var workflow models.Workflow

	err := json.Unmarshal(data, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", id, err)
	}

	return &workflow, nil
}

// Save stores a workflow and adds it to the index.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	err := persistence.ValidateWorkflowID(workflow.ID)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	return r.write(ctx, workflow)
}

func (r *WorkflowRepository) write(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, r.key(workflow.ID), data, 0)
		pipe.SAdd(ctx, r.indexKey(), workflow.ID)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// Publish marks a stored workflow published. The read-modify-write is guarded by WATCH.
func (r *WorkflowRepository) Publish(ctx context.Context, id string, at time.Time) (*models.Workflow, error) {
	var published *models.Workflow

	err := r.client.Watch(ctx, func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, r.key(id)).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return persistence.NewWorkflowError("Publish", id, persistence.ErrWorkflowNotFound)
			}

			return fmt.Errorf("failed to fetch workflow %s: %w", id, err)
		}

		workflow, err := decode(id, data)
		if err != nil {
			return err
		}

		publishedAt := at.UTC()
		workflow.Status = models.WorkflowStatusPublished
		workflow.PublishedAt = &publishedAt
		workflow.UpdatedAt = publishedAt

		encoded, err := json.Marshal(workflow)
		if err != nil {
			return fmt.Errorf("failed to marshal workflow %s: %w", id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, r.key(id), encoded, 0)

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to publish workflow %s: %w", id, err)
		}

		published = workflow

		return nil
	}, r.key(id))
	if err != nil {
		return nil, err
	}

	return published, nil
}

// List loads every indexed workflow and filters in memory.
func (r *WorkflowRepository) List(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow ids: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	if len(ids) > 0 {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = r.key(id)
		}

		values, err := r.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load workflows: %w", err)
		}

		for i, value := range values {
			raw, ok := value.(string)
			if !ok {
				continue
			}

			workflow, err := decode(ids[i], []byte(raw))
			if err != nil {
				return nil, err
			}

			workflows = append(workflows, workflow)
		}
	}

	result, err := persistence.ApplyListOptions(workflows, opts)
	if err != nil {
		return nil, persistence.NewWorkflowError("List", "", err)
	}

	return result, nil
}

// Delete removes a workflow and its index entry.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	var deleted *goredis.IntCmd

	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		deleted = pipe.Del(ctx, r.key(id))
		pipe.SRem(ctx, r.indexKey(), id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	if deleted.Val() == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}
