// Package services provides the workflow editor service and its error taxonomy.
package services

import (
	"errors"
	"fmt"

	"github.com/contractpulse/flowdesigner/pkg/graph"
	"github.com/contractpulse/flowdesigner/pkg/palette"
	"github.com/contractpulse/flowdesigner/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnknownApprover = errors.New("unknown approver")

	// Publishing Validation Errors (422 Unprocessable Entity).
	ErrWorkflowInvalid = errors.New("workflow is not publishable")

	// Not Found Errors (404 Not Found).
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
	ErrSessionNotFound  = errors.New("editing session not found")

	// Business Logic Conflicts (409 Conflict).
	ErrCannotModifyPublished = errors.New("cannot modify published workflow")
	ErrNotPublished          = errors.New("workflow is not published")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// newServiceError wraps err with the operation and code.
func newServiceError(op, code string, err error) *ServiceError {
	return &ServiceError{Op: op, Code: code, Err: err}
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrUnknownApprover) ||
		errors.Is(err, persistence.ErrInvalidSortField) ||
		errors.Is(err, persistence.ErrInvalidWorkflowStatus) ||
		errors.Is(err, persistence.ErrInvalidWorkflowID) ||
		errors.Is(err, graph.ErrInvalidPropertyValue) ||
		errors.Is(err, graph.ErrInvalidMetadata) ||
		errors.Is(err, graph.ErrUnknownNodeType)
}

// IsRejectedMutation checks if an error is a graph mutation rejected for structural
// reasons, which maps to HTTP 422.
func IsRejectedMutation(err error) bool {
	return errors.Is(err, ErrWorkflowInvalid) ||
		errors.Is(err, graph.ErrDanglingReference) ||
		errors.Is(err, graph.ErrCyclicGraphRejected) ||
		errors.Is(err, graph.ErrSelfLoop) ||
		errors.Is(err, graph.ErrDuplicateConnection) ||
		errors.Is(err, graph.ErrDuplicateNodeID)
}

// IsNotFound checks if an error should return HTTP 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, palette.ErrTemplateNotFound) ||
		errors.Is(err, palette.ErrNodeTypeNotFound) ||
		graph.IsNotFound(err)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrCannotModifyPublished) ||
		errors.Is(err, ErrNotPublished)
}

// Issues extracts the publish validation issues carried by err, if any.
func Issues(err error) graph.Issues {
	var issues graph.Issues
	if errors.As(err, &issues) {
		return issues
	}

	return nil
}
