package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/contractpulse/flowdesigner/pkg/directory"
	"github.com/contractpulse/flowdesigner/pkg/eventbus"
	"github.com/contractpulse/flowdesigner/pkg/events"
	"github.com/contractpulse/flowdesigner/pkg/graph"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/otelhelper"
	"github.com/contractpulse/flowdesigner/pkg/palette"
	"github.com/contractpulse/flowdesigner/pkg/persistence"
	"github.com/contractpulse/flowdesigner/pkg/schema"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Editor coordinates palette, graph store, canvas and property panel for every open
// workflow, and saves and publishes through a WorkflowRepository.
type Editor struct {
	repo      persistence.WorkflowRepository
	registry  *schema.Registry
	palette   *palette.Palette
	directory *directory.Directory
	validate  *validator.Validate
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
	logger    *slog.Logger
	acyclic   bool
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithEventPublisher publishes lifecycle events after successful saves, publishes and deletes.
func WithEventPublisher(publisher eventbus.EventPublisher) EditorOption {
	return func(e *Editor) {
		e.publisher = publisher
	}
}

// WithTracer starts a span per editor operation.
func WithTracer(tracer trace.Tracer) EditorOption {
	return func(e *Editor) {
		e.tracer = tracer
	}
}

// WithLogger sets the editor logger.
func WithLogger(logger *slog.Logger) EditorOption {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithAcyclicGraphs makes every session reject connections that close a cycle.
func WithAcyclicGraphs(enabled bool) EditorOption {
	return func(e *Editor) {
		e.acyclic = enabled
	}
}

// WithClock sets the clock used for publish timestamps and node ids.
func WithClock(now func() time.Time) EditorOption {
	return func(e *Editor) {
		e.now = now
	}
}

// WithDirectory sets the approver directory used to check approver ids.
func WithDirectory(dir *directory.Directory) EditorOption {
	return func(e *Editor) {
		e.directory = dir
	}
}

// WithPalette sets the node catalog and templates.
func WithPalette(p *palette.Palette) EditorOption {
	return func(e *Editor) {
		e.palette = p
	}
}

// NewEditor creates an editor service.
func NewEditor(repo persistence.WorkflowRepository, registry *schema.Registry, opts ...EditorOption) *Editor {
	e := &Editor{
		repo:      repo,
		registry:  registry,
		palette:   palette.Default(),
		directory: directory.Default(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		tracer:    otelhelper.NoopTracer(),
		logger:    slog.Default(),
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.logger = e.logger.With("module", "editor")

	return e
}

// Palette returns the editor's palette.
func (e *Editor) Palette() *palette.Palette {
	return e.palette
}

// Registry returns the property schema registry.
func (e *Editor) Registry() *schema.Registry {
	return e.registry
}

// Directory returns the approver directory.
func (e *Editor) Directory() *directory.Directory {
	return e.directory
}

// nolint:spancheck // spans are ended by the caller
func (e *Editor) startSpan(ctx context.Context, name, workflowID string) (context.Context, trace.Span) {
	return otelhelper.StartSpan(ctx, e.tracer, "editor."+name, attribute.String(otelhelper.WorkflowIDKey, workflowID))
}

func (e *Editor) fail(span trace.Span, op string, err error) error {
	otelhelper.SetError(span, err)

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return err
	}

	return newServiceError(op, errorCode(err), err)
}

func errorCode(err error) string {
	switch {
	case IsNotFound(err):
		return "not_found"
	case IsConflictError(err):
		return "conflict"
	case IsValidationError(err):
		return "validation_failed"
	case IsRejectedMutation(err):
		return "rejected"
	default:
		return "internal"
	}
}

func (e *Editor) newSession(workflow *models.Workflow) (*Session, error) {
	store, err := graph.NewStore(workflow, e.registry, graph.WithAcyclic(e.acyclic), graph.WithClock(e.now))
	if err != nil {
		return nil, err
	}

	return newSession(store), nil
}

// NewWorkflow opens a session on a new, unsaved draft.
func (e *Editor) NewWorkflow(ctx context.Context, name string) (*Session, error) {
	ctx, span := e.startSpan(ctx, "new_workflow", "")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, e.fail(span, "NewWorkflow", fmt.Errorf("failed to generate workflow id: %w", err))
	}

	workflow := models.NewWorkflow(id.String(), name)

	session, err := e.newSession(workflow)
	if err != nil {
		return nil, e.fail(span, "NewWorkflow", err)
	}

	e.mu.Lock()
	e.sessions[workflow.ID] = session
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "Created workflow", "workflow_id", workflow.ID, "name", workflow.Name)

	return session, nil
}

// Open returns the session of a workflow, loading it from the repository when no
// session is open yet.
func (e *Editor) Open(ctx context.Context, id string) (*Session, error) {
	e.mu.Lock()
	session, ok := e.sessions[id]
	e.mu.Unlock()

	if ok {
		return session, nil
	}

	ctx, span := e.startSpan(ctx, "open", id)
	defer span.End()

	workflow, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return nil, e.fail(span, "Open", err)
	}

	session, err = e.newSession(workflow)
	if err != nil {
		return nil, e.fail(span, "Open", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.sessions[id]; ok {
		return existing, nil
	}

	e.sessions[id] = session

	return session, nil
}

// Session returns an already open session.
func (e *Editor) Session(id string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions[id]
	if !ok {
		return nil, newServiceError("Session", "not_found", fmt.Errorf("%w: %s", ErrSessionNotFound, id))
	}

	return session, nil
}

// CloseSession discards a session and any unsaved changes.
func (e *Editor) CloseSession(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.sessions, id)
}

// Sessions returns every open session.
func (e *Editor) Sessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	sessions := make([]*Session, 0, len(e.sessions))
	for _, session := range e.sessions {
		sessions = append(sessions, session)
	}

	return sessions
}

// draft opens a session and refuses published workflows.
// draft opens a session that is still a draft and locks it for editing. Callers must
// unlock session.edit when done.
func (e *Editor) draft(ctx context.Context, op, id string) (*Session, error) {
	session, err := e.Open(ctx, id)
	if err != nil {
		return nil, err
	}

	session.edit.Lock()

	if session.Store.Status() == models.WorkflowStatusPublished {
		session.edit.Unlock()

		return nil, newServiceError(op, "conflict", fmt.Errorf("%w: %s", ErrCannotModifyPublished, id))
	}

	return session, nil
}

// mutate runs fn against a draft session inside a span.
func (e *Editor) mutate(ctx context.Context, op, id string, fn func(*Session) error) (*Session, error) {
	ctx, span := e.startSpan(ctx, op, id)
	defer span.End()

	session, err := e.draft(ctx, op, id)
	if err != nil {
		return nil, e.fail(span, op, err)
	}
	defer session.edit.Unlock()

	err = fn(session)
	if err != nil {
		return nil, e.fail(span, op, err)
	}

	span.SetAttributes(attribute.Int64(otelhelper.RevisionKey, int64(session.Store.Revision()))) //nolint:gosec // revision never exceeds int64

	return session, nil
}

// AddNode places a node of the given type at position, or at the default drop point
// when position is nil.
func (e *Editor) AddNode(ctx context.Context, id string, nodeType models.NodeType, position *models.Position) (*models.WorkflowNode, error) {
	var node *models.WorkflowNode

	_, err := e.mutate(ctx, "AddNode", id, func(s *Session) error {
		def, err := e.palette.Definition(nodeType)
		if err != nil {
			return err
		}

		node, err = s.Store.AddNode(def, position)

		return err
	})
	if err != nil {
		return nil, err
	}

	return node, nil
}

// MoveNode sets a node's canvas position.
func (e *Editor) MoveNode(ctx context.Context, id, nodeID string, position models.Position) error {
	_, err := e.mutate(ctx, "MoveNode", id, func(s *Session) error {
		return s.Store.MoveNode(nodeID, position)
	})

	return err
}

// UpdateNodeProperties merges a partial property update into a node after checking any
// approver ids it names against the directory.
func (e *Editor) UpdateNodeProperties(ctx context.Context, id, nodeID string, partial map[string]any) (*models.WorkflowNode, error) {
	var node *models.WorkflowNode

	_, err := e.mutate(ctx, "UpdateNodeProperties", id, func(s *Session) error {
		err := e.checkApprovers(partial)
		if err != nil {
			return err
		}

		node, err = s.Store.UpdateNodeProperties(nodeID, partial)

		return err
	})
	if err != nil {
		return nil, err
	}

	return node, nil
}

// DuplicateNode copies a node next to the original.
func (e *Editor) DuplicateNode(ctx context.Context, id, nodeID string) (*models.WorkflowNode, error) {
	var node *models.WorkflowNode

	_, err := e.mutate(ctx, "DuplicateNode", id, func(s *Session) error {
		var err error

		node, err = s.Store.DuplicateNode(nodeID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return node, nil
}

// RemoveNode deletes a node together with every connection that touches it.
func (e *Editor) RemoveNode(ctx context.Context, id, nodeID string) ([]*models.Connection, error) {
	var removed []*models.Connection

	_, err := e.mutate(ctx, "RemoveNode", id, func(s *Session) error {
		var err error

		removed, err = s.Store.RemoveNode(nodeID)
		if err != nil {
			return err
		}

		s.Canvas.Forget(nodeID)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

// AddConnection links two nodes.
func (e *Editor) AddConnection(ctx context.Context, id, from, to, label string) (*models.Connection, error) {
	var conn *models.Connection

	_, err := e.mutate(ctx, "AddConnection", id, func(s *Session) error {
		var err error

		conn, err = s.Store.AddConnection(from, to, label)

		return err
	})
	if err != nil {
		return nil, err
	}

	return conn, nil
}

// RemoveConnection unlinks two nodes.
func (e *Editor) RemoveConnection(ctx context.Context, id, from, to string) error {
	_, err := e.mutate(ctx, "RemoveConnection", id, func(s *Session) error {
		return s.Store.RemoveConnection(from, to)
	})

	return err
}

// UpdateWorkflowMeta merges workflow-level fields.
func (e *Editor) UpdateWorkflowMeta(ctx context.Context, id string, update graph.MetaUpdate) (*models.Workflow, error) {
	session, err := e.mutate(ctx, "UpdateWorkflowMeta", id, func(s *Session) error {
		if update.Properties != nil {
			err := e.validate.Struct(update.Properties)
			if err != nil {
				return fmt.Errorf("%w: %w", graph.ErrInvalidMetadata, err)
			}
		}

		return s.Store.UpdateWorkflowMeta(update)
	})
	if err != nil {
		return nil, err
	}

	return session.Store.Workflow(), nil
}

// LoadTemplate replaces the workflow graph with a template's nodes and connections.
func (e *Editor) LoadTemplate(ctx context.Context, id, templateID string) (*models.Workflow, error) {
	session, err := e.mutate(ctx, "LoadTemplate", id, func(s *Session) error {
		tmpl, err := e.palette.Template(templateID)
		if err != nil {
			return err
		}

		err = palette.LoadTemplate(s.Store, tmpl)
		if err != nil {
			return err
		}

		s.Canvas.ClearSelection()

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Loaded template", "workflow_id", id, "template_id", templateID)

	return session.Store.Workflow(), nil
}

// Validate reports why a workflow cannot be published. An empty result means it can.
func (e *Editor) Validate(ctx context.Context, id string) (graph.Issues, error) {
	session, err := e.Open(ctx, id)
	if err != nil {
		return nil, err
	}

	return graph.Validate(session.Store.Workflow(), e.validate), nil
}

// Save writes a draft to the repository.
func (e *Editor) Save(ctx context.Context, id string) (*models.Workflow, error) {
	ctx, span := e.startSpan(ctx, "save", id)
	defer span.End()

	session, err := e.draft(ctx, "Save", id)
	if err != nil {
		return nil, e.fail(span, "Save", err)
	}
	defer session.edit.Unlock()

	workflow, err := e.save(ctx, session, false)
	if err != nil {
		return nil, e.fail(span, "Save", err)
	}

	return workflow, nil
}

func (e *Editor) save(ctx context.Context, session *Session, autosave bool) (*models.Workflow, error) {
	workflow, revision := session.Store.Snapshot()

	return e.persist(ctx, session, workflow, revision, autosave)
}

// persist writes the snapshot taken at revision.
func (e *Editor) persist(
	ctx context.Context,
	session *Session,
	workflow *models.Workflow,
	revision uint64,
	autosave bool,
) (*models.Workflow, error) {
	err := e.repo.Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	session.Store.SyncTimestamps(workflow)
	session.markSaved(revision)

	e.logger.InfoContext(ctx, "Saved workflow",
		"workflow_id", workflow.ID,
		"nodes", len(workflow.Nodes),
		"connections", len(workflow.Connections),
		"autosave", autosave)

	e.emit(ctx, workflow.ID, events.NewWorkflowSaved(workflow, autosave))

	return workflow, nil
}

// Publish validates a draft, saves it and marks it published. Invalid workflows are
// refused with ErrWorkflowInvalid carrying the issues.
func (e *Editor) Publish(ctx context.Context, id string) (*models.Workflow, error) {
	ctx, span := e.startSpan(ctx, "publish", id)
	defer span.End()

	session, err := e.draft(ctx, "Publish", id)
	if err != nil {
		return nil, e.fail(span, "Publish", err)
	}
	defer session.edit.Unlock()

	workflow, revision := session.Store.Snapshot()

	issues := graph.Validate(workflow, e.validate)
	if len(issues) > 0 {
		span.SetAttributes(attribute.Int("issues", len(issues)))

		return nil, e.fail(span, "Publish", fmt.Errorf("%w: %w", ErrWorkflowInvalid, issues))
	}

	_, err = e.persist(ctx, session, workflow, revision, false)
	if err != nil {
		return nil, e.fail(span, "Publish", err)
	}

	published, err := e.repo.Publish(ctx, id, e.now().UTC())
	if err != nil {
		return nil, e.fail(span, "Publish", err)
	}

	session.Store.MarkPublished(*published.PublishedAt)
	session.Store.SyncTimestamps(published)
	session.markSaved(session.Store.Revision())

	e.logger.InfoContext(ctx, "Published workflow", "workflow_id", id, "published_at", published.PublishedAt)

	e.emit(ctx, id, events.NewWorkflowPublished(published))

	return published, nil
}

// Unpublish returns a published workflow to draft so it can be edited again.
func (e *Editor) Unpublish(ctx context.Context, id string) (*models.Workflow, error) {
	ctx, span := e.startSpan(ctx, "unpublish", id)
	defer span.End()

	session, err := e.Open(ctx, id)
	if err != nil {
		return nil, e.fail(span, "Unpublish", err)
	}

	session.edit.Lock()
	defer session.edit.Unlock()

	if session.Store.Status() != models.WorkflowStatusPublished {
		return nil, e.fail(span, "Unpublish", fmt.Errorf("%w: %s", ErrNotPublished, id))
	}

	session.Store.MarkDraft()

	workflow, err := e.save(ctx, session, false)
	if err != nil {
		return nil, e.fail(span, "Unpublish", err)
	}

	e.emit(ctx, id, &events.WorkflowUnpublished{BaseEvent: events.NewBaseEvent(events.WorkflowUnpublishedEvent, id)})

	return workflow, nil
}

// List returns stored workflows. Open sessions are not consulted.
func (e *Editor) List(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	ctx, span := e.startSpan(ctx, "list", "")
	defer span.End()

	result, err := e.repo.List(ctx, opts)
	if err != nil {
		return nil, e.fail(span, "List", err)
	}

	return result, nil
}

// Get returns the current state of a workflow, including unsaved changes of an open session.
func (e *Editor) Get(ctx context.Context, id string) (*models.Workflow, error) {
	session, err := e.Open(ctx, id)
	if err != nil {
		return nil, err
	}

	return session.Store.Workflow(), nil
}

// Delete removes a stored workflow and closes its session.
func (e *Editor) Delete(ctx context.Context, id string) error {
	ctx, span := e.startSpan(ctx, "delete", id)
	defer span.End()

	err := e.repo.Delete(ctx, id)
	if err != nil {
		return e.fail(span, "Delete", err)
	}

	e.CloseSession(id)

	e.logger.InfoContext(ctx, "Deleted workflow", "workflow_id", id)

	e.emit(ctx, id, &events.WorkflowDeleted{BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, id)})

	return nil
}

// FlushDirty saves every draft session with unsaved changes and returns how many were saved.
func (e *Editor) FlushDirty(ctx context.Context) (int, error) {
	saved := 0

	var firstErr error

	for _, session := range e.Sessions() {
		skipped, err := e.autosave(ctx, session)
		if skipped {
			continue
		}

		if err != nil {
			e.logger.ErrorContext(ctx, "Autosave failed", "workflow_id", session.Store.ID(), "error", err)

			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		saved++
	}

	return saved, firstErr
}

// autosave saves a dirty draft session, reporting whether it was skipped.
func (e *Editor) autosave(ctx context.Context, session *Session) (bool, error) {
	session.edit.Lock()
	defer session.edit.Unlock()

	if !session.Dirty() || session.Store.Status() == models.WorkflowStatusPublished {
		return true, nil
	}

	_, err := e.save(ctx, session, true)

	return false, err
}

func (e *Editor) checkApprovers(partial map[string]any) error {
	for _, key := range []string{"approver", "fallbackApprover", "escalateTo"} {
		value, ok := partial[key].(string)
		if !ok || value == "" {
			continue
		}

		if _, known := e.directory.Approver(value); !known {
			return fmt.Errorf("%w: %s %q", ErrUnknownApprover, key, value)
		}
	}

	for _, value := range stringList(partial["approvers"]) {
		if _, known := e.directory.Approver(value); !known {
			return fmt.Errorf("%w: approvers %q", ErrUnknownApprover, value)
		}
	}

	return nil
}

func stringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		list := make([]string, 0, len(v))

		for _, item := range v {
			if s, ok := item.(string); ok {
				list = append(list, s)
			}
		}

		return list
	default:
		return nil
	}
}

func (e *Editor) emit(ctx context.Context, key string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	err := e.publisher.Publish(ctx, key, event)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "workflow_id", key, "error", err)
	}
}

// HealthCheck checks the health of the persistence layer.
func HealthCheck(ctx context.Context, p persistence.Persistence) (string, bool) {
	if p == nil {
		return "Persistence layer not initialized", false
	}

	err := p.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}
