// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"

	"github.com/contractpulse/flowdesigner/pkg/directory"
	"github.com/contractpulse/flowdesigner/pkg/schema"
)

// NewSchemaRegistry builds the property registry with the directory's contract types.
func NewSchemaRegistry(dir *directory.Directory) (*schema.Registry, error) {
	registry, err := schema.NewRegistry(schema.WithContractTypes(dir.ContractTypes()))
	if err != nil {
		return nil, fmt.Errorf("failed to build property registry: %w", err)
	}

	return registry, nil
}
