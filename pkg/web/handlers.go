// Package web provides HTTP handlers and REST API endpoints for the workflow designer.
package web

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/contractpulse/flowdesigner/pkg/canvas"
	"github.com/contractpulse/flowdesigner/pkg/graph"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/palette"
	"github.com/contractpulse/flowdesigner/pkg/persistence"
	"github.com/contractpulse/flowdesigner/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	editor      *services.Editor
	persistence persistence.Persistence
	validator   *validator.Validate
}

func NewAPIHandlers(
	editor *services.Editor,
	persistence persistence.Persistence,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		editor:      editor,
		persistence: persistence,
		validator:   validator,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	opts, err := parseListWorkflowsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.editor.List(c.Context(), *opts)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":     result.Workflows,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  opts.Limit,
			"offset": opts.Offset,
		},
		"sorting": fiber.Map{
			"sort_by":    opts.SortBy,
			"sort_order": opts.SortOrder,
		},
	})
}

// parseListWorkflowsRequest parses filter, sort and pagination query parameters.
func parseListWorkflowsRequest(c fiber.Ctx) (*persistence.ListWorkflowsOptions, error) {
	opts := &persistence.ListWorkflowsOptions{
		ContractType: c.Query("contract_type"),
		Owner:        c.Query("owner"),
		SortBy:       c.Query("sort_by"),
		SortOrder:    c.Query("sort_order"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		opts.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		opts.Offset = offset
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.WorkflowStatus(statusStr)
		opts.Status = &status
	}

	if activeStr := c.Query("active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			return nil, err
		}

		opts.Active = &active
	}

	normalized, err := persistence.NormalizeListOptions(*opts)
	if err != nil {
		return nil, err
	}

	return &normalized, nil
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.editor.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := services.HealthCheck(c.Context(), h.persistence)

	status := "unhealthy"
	message := "Workflow designer is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Workflow designer is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"open_sessions": len(h.editor.Sessions()),
		"timestamp":     time.Now().UTC(),
	})
}

// CreateWorkflow opens a new draft, optionally seeds it from a template and saves it.
func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	session, err := h.editor.NewWorkflow(c.Context(), req.Name)
	if err != nil {
		return handleServiceError(c, err)
	}

	id := session.ID()

	created, err := h.seedWorkflow(c, id, req)
	if err != nil {
		h.editor.CloseSession(id)

		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) seedWorkflow(c fiber.Ctx, id string, req CreateWorkflowRequest) (*models.Workflow, error) {
	if req.Description != "" || req.Owner != "" {
		_, err := h.editor.UpdateWorkflowMeta(c.Context(), id, graph.MetaUpdate{
			Description: &req.Description,
			Owner:       &req.Owner,
		})
		if err != nil {
			return nil, err
		}
	}

	if req.TemplateID != "" {
		_, err := h.editor.LoadTemplate(c.Context(), id, req.TemplateID)
		if err != nil {
			return nil, err
		}
	}

	return h.editor.Save(c.Context(), id)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req WorkflowMetaRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	workflow, err := h.editor.UpdateWorkflowMeta(c.Context(), c.Params("id"), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	err := h.editor.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SaveWorkflow(c fiber.Ctx) error {
	workflow, err := h.editor.Save(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) PublishWorkflow(c fiber.Ctx) error {
	workflow, err := h.editor.Publish(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) UnpublishWorkflow(c fiber.Ctx) error {
	workflow, err := h.editor.Unpublish(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	issues, err := h.editor.Validate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if issues == nil {
		issues = graph.Issues{}
	}

	return c.JSON(ValidationResponse{
		Publishable: len(issues) == 0,
		Issues:      issues,
	})
}

func (h *APIHandlers) LoadTemplate(c fiber.Ctx) error {
	var req LoadTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow, err := h.editor.LoadTemplate(c.Context(), c.Params("id"), req.TemplateID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflowNode(c fiber.Ctx) error {
	var req AddNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.editor.AddNode(c.Context(), c.Params("id"), req.Type, req.Position)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

// UpdateWorkflowNode moves a node and/or merges its properties.
func (h *APIHandlers) UpdateWorkflowNode(c fiber.Ctx) error {
	var req UpdateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	id := c.Params("id")
	nodeID := c.Params("nodeId")

	if req.Position != nil {
		err := h.editor.MoveNode(c.Context(), id, nodeID, *req.Position)
		if err != nil {
			return handleServiceError(c, err)
		}
	}

	if req.Properties != nil {
		node, err := h.editor.UpdateNodeProperties(c.Context(), id, nodeID, req.Properties)
		if err != nil {
			return handleServiceError(c, err)
		}

		return c.JSON(node)
	}

	session, err := h.editor.Open(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	node, err := session.Store.Node(nodeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) DuplicateWorkflowNode(c fiber.Ctx) error {
	node, err := h.editor.DuplicateNode(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) DeleteWorkflowNode(c fiber.Ctx) error {
	nodeID := c.Params("nodeId")

	removed, err := h.editor.RemoveNode(c.Context(), c.Params("id"), nodeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	if removed == nil {
		removed = []*models.Connection{}
	}

	return c.JSON(RemoveNodeResponse{
		NodeID:             nodeID,
		RemovedConnections: removed,
	})
}

func (h *APIHandlers) CreateConnection(c fiber.Ctx) error {
	var req AddConnectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	connection, err := h.editor.AddConnection(c.Context(), c.Params("id"), req.From, req.To, req.Label)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(connection)
}

func (h *APIHandlers) DeleteConnection(c fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to")

	if from == "" || to == "" {
		return badRequest(c, "Both from and to are required")
	}

	err := h.editor.RemoveConnection(c.Context(), c.Params("id"), from, to)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RenderWorkflow draws the workflow as svg (default), mermaid or png.
func (h *APIHandlers) RenderWorkflow(c fiber.Ctx) error {
	session, err := h.editor.Open(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	workflow := session.Store.Workflow()

	switch format := c.Query("format", "svg"); format {
	case "svg":
		var buf bytes.Buffer

		err := canvas.RenderSVG(&buf, session.Canvas.Scene(workflow))
		if err != nil {
			return internalError(c, err)
		}

		c.Set(fiber.HeaderContentType, "image/svg+xml")

		return c.Send(buf.Bytes())
	case "mermaid":
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)

		return c.SendString(canvas.RenderMermaid(workflow))
	case "png":
		image, err := canvas.RenderImage(c.Context(), workflow)
		if err != nil {
			return internalError(c, err)
		}

		c.Set(fiber.HeaderContentType, "image/png")

		return c.Send(image)
	default:
		return badRequest(c, "Unsupported format: "+format)
	}
}

func (h *APIHandlers) GetCanvas(c fiber.Ctx) error {
	session, err := h.editor.Open(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(CanvasResponse{
		State: session.Canvas.State(),
		Scene: session.Canvas.Scene(session.Store.Workflow()),
	})
}

// UpdateCanvas applies a zoom, reset or selection change to the session view.
func (h *APIHandlers) UpdateCanvas(c fiber.Ctx) error {
	var req ViewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	session, err := h.editor.Open(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	view := session.Canvas

	switch req.Action {
	case "zoom_in":
		view.ZoomIn()
	case "zoom_out":
		view.ZoomOut()
	case "reset":
		view.ResetView()
	case "select":
		err := view.Select(req.NodeID)
		if err != nil {
			return handleServiceError(c, err)
		}
	case "clear":
		view.ClearSelection()
	}

	return c.JSON(CanvasResponse{
		State: view.State(),
		Scene: view.Scene(session.Store.Workflow()),
	})
}

func (h *APIHandlers) GetPaletteNodes(c fiber.Ctx) error {
	return c.JSON(h.editor.Palette().Search(c.Query("q"), c.Query("category")))
}

func (h *APIHandlers) GetPaletteTemplates(c fiber.Ctx) error {
	templates := h.editor.Palette().SearchTemplates(c.Query("q"), c.Query("category"))

	summaries := make([]palette.Summary, 0, len(templates))
	for _, tmpl := range templates {
		summaries = append(summaries, tmpl.Summary())
	}

	return c.JSON(summaries)
}

func (h *APIHandlers) GetPaletteTemplate(c fiber.Ctx) error {
	tmpl, err := h.editor.Palette().Template(c.Params("templateId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(tmpl)
}

func (h *APIHandlers) GetNodeSchema(c fiber.Ctx) error {
	nodeType := models.NodeType(c.Params("type"))

	registry := h.editor.Registry()
	if !registry.Has(nodeType) {
		return notFound(c, "Unknown node type: "+string(nodeType))
	}

	return c.JSON(SchemaResponse{
		Type:       nodeType,
		Fields:     registry.FieldsFor(nodeType),
		Defaults:   registry.Defaults(nodeType),
		JSONSchema: registry.JSONSchema(nodeType),
	})
}

func (h *APIHandlers) GetApprovers(c fiber.Ctx) error {
	return c.JSON(h.editor.Directory().SearchApprovers(c.Query("q")))
}

func (h *APIHandlers) GetContractTypes(c fiber.Ctx) error {
	return c.JSON(h.editor.Directory().ContractTypes())
}
