package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/persistence"
	"github.com/lib/pq"
)

const selectWorkflow = `
	SELECT
		id
	  , name
	  , description
	  , status
	  , owner
	  , active
	  , priority
	  , contract_types
	  , triggers
	  , nodes
	  , connections
	  , created_at
	  , updated_at
	  , published_at
	FROM workflows
`

var sortColumns = map[string]string{
	persistence.SortByCreatedAt: "created_at",
	persistence.SortByUpdatedAt: "updated_at",
	persistence.SortByName:      "name",
	persistence.SortByPriority:  "priority",
}

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *WorkflowRepository) scanWorkflow(row scanner) (*models.Workflow, error) {
	var (
		workflow        models.Workflow
		status          string
		triggersJSON    []byte
		nodesJSON       []byte
		connectionsJSON []byte
		publishedAt     sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&status,
		&workflow.Owner,
		&workflow.Properties.Active,
		&workflow.Properties.Priority,
		pq.Array(&workflow.Properties.ContractTypes),
		&triggersJSON,
		&nodesJSON,
		&connectionsJSON,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&publishedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.Status = models.WorkflowStatus(status)

	if publishedAt.Valid {
		workflow.PublishedAt = &publishedAt.Time
	}

	if workflow.Properties.ContractTypes == nil {
		workflow.Properties.ContractTypes = make([]string, 0)
	}

	err = json.Unmarshal(triggersJSON, &workflow.Properties.Triggers)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal triggers: %w", err)
	}

	err = json.Unmarshal(nodesJSON, &workflow.Nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal nodes: %w", err)
	}

	err = json.Unmarshal(connectionsJSON, &workflow.Connections)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal connections: %w", err)
	}

	return &workflow, nil
}

// GetByID returns a workflow by id.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := r.db.QueryRowContext(ctx, selectWorkflow+" WHERE id = $1", id)

	workflow, err := r.scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

func marshalOrEmpty(v any, empty string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	if string(data) == "null" {
		return []byte(empty), nil
	}

	return data, nil
}

// Save upserts a workflow.
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

	triggersJSON, err := json.Marshal(workflow.Properties.Triggers)
	if err != nil {
		return fmt.Errorf("failed to marshal triggers: %w", err)
	}

	nodesJSON, err := marshalOrEmpty(workflow.Nodes, "[]")
	if err != nil {
		return fmt.Errorf("failed to marshal nodes: %w", err)
	}

	connectionsJSON, err := marshalOrEmpty(workflow.Connections, "[]")
	if err != nil {
		return fmt.Errorf("failed to marshal connections: %w", err)
	}

	contractTypes := workflow.Properties.ContractTypes
	if contractTypes == nil {
		contractTypes = []string{}
	}

	query := `
		INSERT INTO workflows (id, name, description, status, owner, active, priority,
			contract_types, triggers, nodes, connections, created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			owner = EXCLUDED.owner,
			active = EXCLUDED.active,
			priority = EXCLUDED.priority,
			contract_types = EXCLUDED.contract_types,
			triggers = EXCLUDED.triggers,
			nodes = EXCLUDED.nodes,
			connections = EXCLUDED.connections,
			updated_at = EXCLUDED.updated_at,
			published_at = EXCLUDED.published_at
		RETURNING created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		string(workflow.Status),
		workflow.Owner,
		workflow.Properties.Active,
		workflow.Properties.Priority,
		pq.Array(contractTypes),
		triggersJSON,
		nodesJSON,
		connectionsJSON,
		workflow.CreatedAt,
		workflow.UpdatedAt,
		workflow.PublishedAt,
	).Scan(&workflow.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// Publish marks a stored workflow published.
func (r *WorkflowRepository) Publish(ctx context.Context, id string, at time.Time) (*models.Workflow, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE workflows SET status = $2, published_at = $3, updated_at = $3 WHERE id = $1",
		id, string(models.WorkflowStatusPublished), at.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to publish workflow %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to publish workflow %s: %w", id, err)
	}

	if affected == 0 {
		return nil, persistence.NewWorkflowError("Publish", id, persistence.ErrWorkflowNotFound)
	}

	return r.GetByID(ctx, id)
}

// List returns filtered, sorted and paginated workflows.
func (r *WorkflowRepository) List(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	opts, err := persistence.NormalizeListOptions(opts)
	if err != nil {
		return nil, persistence.NewWorkflowError("List", "", err)
	}

	conditions := make([]string, 0, 4)
	args := make([]any, 0, 6)

	addCondition := func(format string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, "$"+strconv.Itoa(len(args))))
	}

	if opts.Status != nil {
		addCondition("status = %s", string(*opts.Status))
	}

	if opts.Active != nil {
		addCondition("active = %s", *opts.Active)
	}

	if opts.ContractType != "" {
		addCondition("%s = ANY(contract_types)", opts.ContractType)
	}

	if opts.Owner != "" {
		addCondition("owner = %s", opts.Owner)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var totalCount int64

	err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM workflows"+where, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count workflows: %w", err)
	}

	order := fmt.Sprintf(" ORDER BY %s %s, id %s", sortColumns[opts.SortBy], strings.ToUpper(opts.SortOrder), strings.ToUpper(opts.SortOrder))
	page := fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, selectWorkflow+where+order+page, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0, opts.Limit)

	for rows.Next() {
		workflow, err := r.scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return &persistence.WorkflowListResult{
		Workflows:   workflows,
		TotalCount:  totalCount,
		HasNextPage: int64(opts.Offset+len(workflows)) < totalCount,
	}, nil
}

// Delete removes a workflow.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}
