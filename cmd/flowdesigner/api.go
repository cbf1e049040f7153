package main

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/contractpulse/flowdesigner/pkg/persistence"
	"github.com/contractpulse/flowdesigner/pkg/services"
	"github.com/contractpulse/flowdesigner/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	editor      *services.Editor
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	editor *services.Editor,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		editor:      editor,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.editor, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("ContractPulse Workflow Designer")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/save", handlers.SaveWorkflow)
	w.Post("/:id/publish", handlers.PublishWorkflow)
	w.Post("/:id/unpublish", handlers.UnpublishWorkflow)
	w.Get("/:id/validate", handlers.ValidateWorkflow)
	w.Post("/:id/template", handlers.LoadTemplate)
	w.Get("/:id/render", handlers.RenderWorkflow)
	w.Get("/:id/canvas", handlers.GetCanvas)
	w.Post("/:id/canvas", handlers.UpdateCanvas)

	// Node endpoints:
	w.Post("/:id/nodes", handlers.CreateWorkflowNode)
	w.Patch("/:id/nodes/:nodeId", handlers.UpdateWorkflowNode)
	w.Delete("/:id/nodes/:nodeId", handlers.DeleteWorkflowNode)
	w.Post("/:id/nodes/:nodeId/duplicate", handlers.DuplicateWorkflowNode)

	// Connection endpoints:
	w.Post("/:id/connections", handlers.CreateConnection)
	w.Delete("/:id/connections", handlers.DeleteConnection)

	p := app.Group("/palette")
	p.Get("/nodes", handlers.GetPaletteNodes)
	p.Get("/templates", handlers.GetPaletteTemplates)
	p.Get("/templates/:templateId", handlers.GetPaletteTemplate)

	app.Get("/schemas/:type", handlers.GetNodeSchema)

	d := app.Group("/directory")
	d.Get("/approvers", handlers.GetApprovers)
	d.Get("/contract-types", handlers.GetContractTypes)

	app.Get("/health", handlers.HealthCheck)

	return app
}

// Start serves the API until ctx is done, then shuts the server down.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	go func() {
		<-ctx.Done()

		err := app.Shutdown()
		if err != nil {
			a.logger.Error("Failed to shut down API server", "error", err)
		}
	}()

	err := app.Listen(":" + strconv.Itoa(port))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
