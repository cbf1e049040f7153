// Package graph holds the workflow graph store. Every mutation of a workflow's nodes,
// connections and metadata goes through a Store so that all views stay consistent.
package graph

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/schema"
)

// DefaultDropPoint is where nodes added without a position are placed.
var DefaultDropPoint = models.Position{X: 250, Y: 150}

// duplicateOffset is the displacement of a duplicated node from its original.
var duplicateOffset = models.Position{X: 20, Y: 20}

// Store owns one workflow graph. Node lookup is indexed by id.
type Store struct {
	mu       sync.RWMutex
	workflow *models.Workflow
	index    map[string]int
	registry *schema.Registry
	now      func() time.Time
	acyclic  bool
	revision uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to derive node ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithAcyclic makes AddConnection reject edges that would close a cycle.
func WithAcyclic(enabled bool) Option {
	return func(s *Store) {
		s.acyclic = enabled
	}
}

// NewStore takes ownership of a copy of workflow. Duplicate node ids and connections
// to missing nodes are rejected.
func NewStore(workflow *models.Workflow, registry *schema.Registry, opts ...Option) (*Store, error) {
	if workflow == nil {
		return nil, newError("NewStore", "", fmt.Errorf("%w: workflow is nil", ErrInvalidMetadata))
	}

	s := &Store{
		workflow: workflow.Clone(),
		registry: registry,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.workflow.Nodes == nil {
		s.workflow.Nodes = make([]*models.WorkflowNode, 0)
	}

	if s.workflow.Connections == nil {
		s.workflow.Connections = make([]*models.Connection, 0)
	}

	err := s.reindex()
	if err != nil {
		return nil, err
	}

	for _, conn := range s.workflow.Connections {
		err := s.checkEndpoints("NewStore", conn.From, conn.To)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Store) reindex() error {
	index := make(map[string]int, len(s.workflow.Nodes))

	for i, node := range s.workflow.Nodes {
		if node.Properties == nil {
			node.Properties = make(map[string]any)
		}

		if _, exists := index[node.ID]; exists {
			return newError("reindex", node.ID, ErrDuplicateNodeID)
		}

		index[node.ID] = i
	}

	s.index = index

	return nil
}

// Workflow returns a snapshot of the whole workflow.
func (s *Store) Workflow() *models.Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.workflow.Clone()
}

// Snapshot returns a copy of the workflow together with the revision it reflects.
func (s *Store) Snapshot() (*models.Workflow, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.workflow.Clone(), s.revision
}

// ID returns the workflow id.
func (s *Store) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.workflow.ID
}

// Status returns the workflow status.
func (s *Store) Status() models.WorkflowStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.workflow.Status
}

// Revision increases by one on every successful mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.revision
}

// Node returns a copy of the node.
func (s *Store) Node(id string) (*models.WorkflowNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.lookup(id)
	if !ok {
		return nil, newError("Node", id, ErrNodeNotFound)
	}

	return node.Clone(), nil
}

// Nodes returns copies of all nodes in insertion order.
func (s *Store) Nodes() []*models.WorkflowNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*models.WorkflowNode, len(s.workflow.Nodes))
	for i, node := range s.workflow.Nodes {
		nodes[i] = node.Clone()
	}

	return nodes
}

// Connections returns copies of all connections in insertion order.
func (s *Store) Connections() []*models.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conns := make([]*models.Connection, len(s.workflow.Connections))
	for i, conn := range s.workflow.Connections {
		c := *conn
		conns[i] = &c
	}

	return conns
}

func (s *Store) lookup(id string) (*models.WorkflowNode, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}

	return s.workflow.Nodes[i], true
}

// AddNode appends a node of the definition's type with the type's default properties.
// A nil position places the node at DefaultDropPoint.
func (s *Store) AddNode(def models.NodeTypeDefinition, position *models.Position) (*models.WorkflowNode, error) {
	if !s.registry.Has(def.Type) {
		return nil, newError("AddNode", "", fmt.Errorf("%w: %q", ErrUnknownNodeType, def.Type))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := DefaultDropPoint
	if position != nil {
		pos = *position
	}

	label := def.Label
	if label == "" {
		label = string(def.Type)
	}

	node := &models.WorkflowNode{
		ID:         s.newNodeID(def.Type, nil),
		Type:       def.Type,
		Label:      label,
		Position:   pos,
		Properties: s.registry.Defaults(def.Type),
	}

	s.appendNode(node)

	return node.Clone(), nil
}

func (s *Store) appendNode(node *models.WorkflowNode) {
	s.workflow.Nodes = append(s.workflow.Nodes, node)
	s.index[node.ID] = len(s.workflow.Nodes) - 1
	s.revision++
}

// newNodeID derives an id from the type and the current millisecond, suffixed when taken.
func (s *Store) newNodeID(nodeType models.NodeType, taken map[string]bool) string {
	base := string(nodeType) + "-" + strconv.FormatInt(s.now().UnixMilli(), 10)

	free := func(id string) bool {
		_, exists := s.index[id]

		return !exists && !taken[id]
	}

	if free(base) {
		return base
	}

	for i := 1; ; i++ {
		id := base + "-" + strconv.Itoa(i)
		if free(id) {
			return id
		}
	}
}

// MoveNode replaces the node position. There is no clamping or rounding.
func (s *Store) MoveNode(id string, position models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.lookup(id)
	if !ok {
		return newError("MoveNode", id, ErrNodeNotFound)
	}

	node.Position = position
	s.revision++

	return nil
}

// UpdateNodeProperties shallow-merges partial into the node's properties after validating
// every key against the node type. The "name" key renames the node.
func (s *Store) UpdateNodeProperties(id string, partial map[string]any) (*models.WorkflowNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.lookup(id)
	if !ok {
		return nil, newError("UpdateNodeProperties", id, ErrNodeNotFound)
	}

	err := s.registry.Validate(node.Type, partial)
	if err != nil {
		return nil, newError("UpdateNodeProperties", id, fmt.Errorf("%w: %w", ErrInvalidPropertyValue, err))
	}

	for key, value := range partial {
		if key == models.PropertyName {
			label, _ := value.(string)
			if strings.TrimSpace(label) == "" {
				return nil, newError("UpdateNodeProperties", id, fmt.Errorf("%w: name cannot be empty", ErrInvalidPropertyValue))
			}
		}
	}

	for key, value := range partial {
		if key == models.PropertyName {
			node.Label, _ = value.(string)

			continue
		}

		node.Properties[key] = value
	}

	s.revision++

	return node.Clone(), nil
}

// RenameNode sets the node label.
func (s *Store) RenameNode(id, label string) error {
	_, err := s.UpdateNodeProperties(id, map[string]any{models.PropertyName: label})

	return err
}

// DuplicateNode copies a node with a fresh id, offset from the original.
func (s *Store) DuplicateNode(id string) (*models.WorkflowNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.lookup(id)
	if !ok {
		return nil, newError("DuplicateNode", id, ErrNodeNotFound)
	}

	node := original.Clone()
	node.ID = s.newNodeID(node.Type, nil)
	node.Label = original.Label + " (copy)"
	node.Position = original.Position.Add(duplicateOffset)

	s.appendNode(node)

	return node.Clone(), nil
}

// RemoveNode deletes the node and every connection that references it. It returns the
// connections that were removed with the node.
func (s *Store) RemoveNode(id string) ([]*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil, newError("RemoveNode", id, ErrNodeNotFound)
	}

	s.workflow.Nodes = append(s.workflow.Nodes[:i], s.workflow.Nodes[i+1:]...)

	kept := make([]*models.Connection, 0, len(s.workflow.Connections))
	removed := make([]*models.Connection, 0)

	for _, conn := range s.workflow.Connections {
		if conn.References(id) {
			removed = append(removed, conn)

			continue
		}

		kept = append(kept, conn)
	}

	s.workflow.Connections = kept
	s.revision++

	return removed, s.reindex()
}

func (s *Store) checkEndpoints(op, from, to string) error {
	if _, ok := s.index[from]; !ok {
		return newError(op, from, fmt.Errorf("%w: source %q does not exist", ErrDanglingReference, from))
	}

	if _, ok := s.index[to]; !ok {
		return newError(op, to, fmt.Errorf("%w: target %q does not exist", ErrDanglingReference, to))
	}

	return nil
}

// AddConnection appends a directed edge. Both endpoints must exist; self loops and
// duplicate edges are rejected, and so are cycles when the store is acyclic.
func (s *Store) AddConnection(from, to, label string) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.checkEndpoints("AddConnection", from, to)
	if err != nil {
		return nil, err
	}

	if from == to {
		return nil, newError("AddConnection", from, ErrSelfLoop)
	}

	for _, conn := range s.workflow.Connections {
		if conn.From == from && conn.To == to {
			return nil, newError("AddConnection", from, fmt.Errorf("%w: %s -> %s", ErrDuplicateConnection, from, to))
		}
	}

	if s.acyclic && hasPath(s.workflow.Connections, to, from) {
		return nil, newError("AddConnection", from, fmt.Errorf("%w: %s -> %s closes a cycle", ErrCyclicGraphRejected, from, to))
	}

	conn := &models.Connection{From: from, To: to, Label: label}
	s.workflow.Connections = append(s.workflow.Connections, conn)
	s.revision++

	c := *conn

	return &c, nil
}

// RemoveConnection deletes the edge from -> to.
func (s *Store) RemoveConnection(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, conn := range s.workflow.Connections {
		if conn.From == from && conn.To == to {
			s.workflow.Connections = append(s.workflow.Connections[:i], s.workflow.Connections[i+1:]...)
			s.revision++

			return nil
		}
	}

	return newError("RemoveConnection", from, fmt.Errorf("%w: %s -> %s", ErrConnectionNotFound, from, to))
}

// TriggersUpdate is a partial update of workflow triggers.
type TriggersUpdate struct {
	NewContract  *bool `json:"new_contract,omitempty"`
	Modification *bool `json:"modification,omitempty"`
	Renewal      *bool `json:"renewal,omitempty"`
}

// PropertiesUpdate is a partial update of workflow properties. A nil ContractTypes leaves
// the set unchanged.
type PropertiesUpdate struct {
	Active        *bool           `json:"active,omitempty"`
	Priority      *int            `json:"priority,omitempty"       validate:"omitempty,min=0,max=10"`
	ContractTypes []string        `json:"contract_types,omitempty"`
	Triggers      *TriggersUpdate `json:"triggers,omitempty"`
}

// MetaUpdate is a partial update of workflow-level fields.
type MetaUpdate struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Owner       *string           `json:"owner,omitempty"`
	Properties  *PropertiesUpdate `json:"properties,omitempty"`
}

// UpdateWorkflowMeta shallow-merges name, description and properties.
func (s *Store) UpdateWorkflowMeta(update MetaUpdate) error {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return newError("UpdateWorkflowMeta", "", fmt.Errorf("%w: name cannot be empty", ErrInvalidMetadata))
	}

	if p := update.Properties; p != nil && p.Priority != nil && (*p.Priority < 0 || *p.Priority > 10) {
		return newError("UpdateWorkflowMeta", "", fmt.Errorf("%w: priority %d outside 0..10", ErrInvalidMetadata, *p.Priority))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if update.Name != nil {
		s.workflow.Name = strings.TrimSpace(*update.Name)
	}

	if update.Description != nil {
		s.workflow.Description = *update.Description
	}

	if update.Owner != nil {
		s.workflow.Owner = *update.Owner
	}

	if p := update.Properties; p != nil {
		props := &s.workflow.Properties

		if p.Active != nil {
			props.Active = *p.Active
		}

		if p.Priority != nil {
			props.Priority = *p.Priority
		}

		if p.ContractTypes != nil {
			props.ContractTypes = models.NormalizeContractTypes(p.ContractTypes)
		}

		if t := p.Triggers; t != nil {
			if t.NewContract != nil {
				props.Triggers.NewContract = *t.NewContract
			}

			if t.Modification != nil {
				props.Triggers.Modification = *t.Modification
			}

			if t.Renewal != nil {
				props.Triggers.Renewal = *t.Renewal
			}
		}
	}

	s.revision++

	return nil
}

// ReplaceGraph swaps all nodes and connections for the given ones in a single step.
// Node ids are re-keyed so they cannot collide with ids handed out earlier; connections
// are rewritten to the new ids. Workflow metadata is untouched.
func (s *Store) ReplaceGraph(nodes []*models.WorkflowNode, connections []*models.Connection) error {
	for _, node := range nodes {
		if !s.registry.Has(node.Type) {
			return newError("ReplaceGraph", node.ID, fmt.Errorf("%w: %q", ErrUnknownNodeType, node.Type))
		}

		err := s.registry.Validate(node.Type, node.Properties)
		if err != nil {
			return newError("ReplaceGraph", node.ID, fmt.Errorf("%w: %w", ErrInvalidPropertyValue, err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rekeyed := make(map[string]string, len(nodes))
	taken := make(map[string]bool, len(nodes))
	replacement := make([]*models.WorkflowNode, 0, len(nodes))

	for _, node := range nodes {
		if _, dup := rekeyed[node.ID]; dup {
			return newError("ReplaceGraph", node.ID, ErrDuplicateNodeID)
		}

		clone := node.Clone()
		clone.ID = s.newNodeID(node.Type, taken)
		clone.Properties = s.registry.Effective(node.Type, node.Properties)

		taken[clone.ID] = true
		rekeyed[node.ID] = clone.ID
		replacement = append(replacement, clone)
	}

	edges := make([]*models.Connection, 0, len(connections))

	for _, conn := range connections {
		from, okFrom := rekeyed[conn.From]
		to, okTo := rekeyed[conn.To]

		if !okFrom || !okTo {
			return newError("ReplaceGraph", "", fmt.Errorf("%w: %s -> %s", ErrDanglingReference, conn.From, conn.To))
		}

		if from == to {
			return newError("ReplaceGraph", conn.From, ErrSelfLoop)
		}

		for _, edge := range edges {
			if edge.From == from && edge.To == to {
				return newError("ReplaceGraph", conn.From, fmt.Errorf("%w: %s -> %s", ErrDuplicateConnection, conn.From, conn.To))
			}
		}

		if s.acyclic && hasPath(edges, to, from) {
			return newError("ReplaceGraph", "", fmt.Errorf("%w: %s -> %s closes a cycle", ErrCyclicGraphRejected, conn.From, conn.To))
		}

		edges = append(edges, &models.Connection{From: from, To: to, Label: conn.Label})
	}

	previous := s.workflow.Nodes
	s.workflow.Nodes = replacement

	err := s.reindex()
	if err != nil {
		s.workflow.Nodes = previous
		_ = s.reindex()

		return err
	}

	s.workflow.Connections = edges
	s.revision++

	return nil
}

// MarkPublished records a successful publish.
func (s *Store) MarkPublished(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflow.Status = models.WorkflowStatusPublished
	s.workflow.PublishedAt = &at
	s.revision++
}

// MarkDraft returns a published workflow to draft state.
func (s *Store) MarkDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflow.Status = models.WorkflowStatusDraft
	s.revision++
}

// SyncTimestamps copies persistence-assigned timestamps without counting as a mutation.
func (s *Store) SyncTimestamps(saved *models.Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflow.CreatedAt = saved.CreatedAt
	s.workflow.UpdatedAt = saved.UpdatedAt
}

// hasPath reports whether to is reachable from from along the edges.
func hasPath(edges []*models.Connection, from, to string) bool {
	if from == to {
		return true
	}

	adjacency := make(map[string][]string, len(edges))
	for _, e := range edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	visited := map[string]bool{from: true}
	queue := []string{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adjacency[current] {
			if next == to {
				return true
			}

			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	return false
}
