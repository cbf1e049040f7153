package graph

import (
	"errors"
	"fmt"
)

// Mutation errors. Every store operation rejects invalid input synchronously with one of these.
var (
	// ErrDanglingReference indicates a connection endpoint that is not a node of the graph.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrInvalidPropertyValue indicates a property key or value the node type does not allow.
	ErrInvalidPropertyValue = errors.New("invalid property value")

	// ErrCyclicGraphRejected indicates a connection that would close a cycle in an acyclic store.
	ErrCyclicGraphRejected = errors.New("cyclic graph rejected")

	// ErrDuplicateNodeID indicates a node id that is already taken.
	ErrDuplicateNodeID = errors.New("duplicate node id")

	// ErrNodeNotFound indicates an operation on a node id that does not exist.
	ErrNodeNotFound = errors.New("node not found")

	// ErrConnectionNotFound indicates a removal of an edge that does not exist.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrUnknownNodeType indicates a node type that has no registered schema.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrSelfLoop indicates a connection from a node to itself.
	ErrSelfLoop = errors.New("self loop")

	// ErrDuplicateConnection indicates a second edge between the same ordered node pair.
	ErrDuplicateConnection = errors.New("duplicate connection")

	// ErrInvalidMetadata indicates a workflow-level field that failed validation.
	ErrInvalidMetadata = errors.New("invalid workflow metadata")
)

// GraphError wraps a mutation failure with the operation and node it concerns.
type GraphError struct {
	Op     string // Store operation, e.g. "AddConnection"
	NodeID string // Node the failure concerns, if any
	Err    error
}

func (e *GraphError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s failed for node %s: %v", e.Op, e.NodeID, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for graph errors.
func (e *GraphError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newError(op, nodeID string, err error) *GraphError {
	return &GraphError{Op: op, NodeID: nodeID, Err: err}
}

// IsNotFound reports whether err refers to a missing node or connection.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrConnectionNotFound)
}

// IsRejected reports whether err is a rejected graph mutation.
func IsRejected(err error) bool {
	return errors.Is(err, ErrDanglingReference) ||
		errors.Is(err, ErrInvalidPropertyValue) ||
		errors.Is(err, ErrCyclicGraphRejected) ||
		errors.Is(err, ErrDuplicateNodeID) ||
		errors.Is(err, ErrUnknownNodeType) ||
		errors.Is(err, ErrSelfLoop) ||
		errors.Is(err, ErrDuplicateConnection) ||
		errors.Is(err, ErrInvalidMetadata)
}
