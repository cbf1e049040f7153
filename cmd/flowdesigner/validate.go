package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/contractpulse/flowdesigner/pkg/cmd"
	"github.com/contractpulse/flowdesigner/pkg/directory"
	"github.com/contractpulse/flowdesigner/pkg/graph"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/schema"
	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"
)

var (
	ErrMissingWorkflowFile = errors.New("workflow file is required")
	ErrNotPublishable      = errors.New("workflow is not publishable")
)

func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Check a workflow JSON file against the publish rules",
		ArgsUsage: "<workflow.json>",
		Action: func(_ context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return ErrMissingWorkflowFile
			}

			return validateWorkflowFile(os.Stdout, path)
		},
	}
}

// loadWorkflowFile reads a workflow document, rejecting files that do not match the
// workflow document schema.
func loadWorkflowFile(path string) (*models.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	err = schema.ValidateDocument(data)
	if err != nil {
		return nil, err
	}

	var workflow models.Workflow

	err = json.Unmarshal(data, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to decode workflow file: %w", err)
	}

	return &workflow, nil
}

func validateWorkflowFile(w io.Writer, path string) error {
	workflow, err := loadWorkflowFile(path)
	if err != nil {
		return err
	}

	registry, err := cmd.NewSchemaRegistry(directory.Default())
	if err != nil {
		return err
	}

	issues := graph.Validate(workflow, validator.New(validator.WithRequiredStructEnabled()))

	for _, node := range workflow.Nodes {
		if !registry.Has(node.Type) {
			continue
		}

		err := registry.Validate(node.Type, node.Properties)
		if err != nil {
			issues = append(issues, graph.Issue{
				Code:    graph.IssueInvalidProperties,
				NodeID:  node.ID,
				Message: err.Error(),
			})
		}
	}

	if len(issues) == 0 {
		fmt.Fprintf(w, "%s (%s): publishable\n", workflow.Name, workflow.ID)

		return nil
	}

	fmt.Fprintf(w, "%s (%s): %d issue(s)\n", workflow.Name, workflow.ID, len(issues))

	for _, issue := range issues {
		if issue.NodeID != "" {
			fmt.Fprintf(w, "  %s [%s] %s\n", issue.Code, issue.NodeID, issue.Message)

			continue
		}

		fmt.Fprintf(w, "  %s %s\n", issue.Code, issue.Message)
	}

	return ErrNotPublishable
}
