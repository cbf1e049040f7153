package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument is wrapped by DocumentError.
var ErrInvalidDocument = errors.New("invalid workflow document")

// DocumentError lists the structural problems of a workflow document.
type DocumentError struct {
	Issues []string
}

func (e *DocumentError) Error() string {
	return "invalid workflow document: " + strings.Join(e.Issues, "; ")
}

func (e *DocumentError) Unwrap() error {
	return ErrInvalidDocument
}

// workflowDocumentSchema describes the stored JSON form of a workflow. Node properties
// are checked per node type by Registry.Validate.
const workflowDocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "workflow",
  "type": "object",
  "required": ["id", "name", "nodes", "connections"],
  "properties": {
    "id": {"type": "string", "minLength": 1, "maxLength": 128, "pattern": "^[A-Za-z0-9_-]+$"},
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "status": {"enum": ["draft", "published"]},
    "owner": {"type": "string"},
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1},
          "label": {"type": "string"},
          "position": {
            "type": "object",
            "required": ["x", "y"],
            "properties": {"x": {"type": "number"}, "y": {"type": "number"}}
          },
          "properties": {"type": ["object", "null"]}
        }
      }
    },
    "connections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["from", "to"],
        "properties": {
          "from": {"type": "string", "minLength": 1},
          "to": {"type": "string", "minLength": 1},
          "label": {"type": "string"}
        }
      }
    },
    "properties": {
      "type": "object",
      "properties": {
        "active": {"type": "boolean"},
        "priority": {"type": "integer", "minimum": 0, "maximum": 10},
        "contract_types": {"type": ["array", "null"], "items": {"type": "string"}},
        "triggers": {
          "type": "object",
          "properties": {
            "new_contract": {"type": "boolean"},
            "modification": {"type": "boolean"},
            "renewal": {"type": "boolean"}
          }
        }
      }
    }
  }
}`

var documentSchema = gojsonschema.NewStringLoader(workflowDocumentSchema)

// ValidateDocument checks raw workflow JSON against the workflow document schema.
func ValidateDocument(data []byte) error {
	result, err := gojsonschema.Validate(documentSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}

	slices.Sort(issues)

	return &DocumentError{Issues: issues}
}
