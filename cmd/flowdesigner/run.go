package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/contractpulse/flowdesigner/pkg/cmd"
	"github.com/contractpulse/flowdesigner/pkg/directory"
	"github.com/contractpulse/flowdesigner/pkg/eventbus"
	"github.com/contractpulse/flowdesigner/pkg/events"
	"github.com/contractpulse/flowdesigner/pkg/log"
	"github.com/contractpulse/flowdesigner/pkg/otelhelper"
	"github.com/contractpulse/flowdesigner/pkg/services"
	"github.com/urfave/cli/v3"
)

func RunAPICommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Start the designer API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file path, postgres:// or redis://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "autosave-schedule",
				Usage:   "Cron schedule for flushing unsaved drafts",
				Value:   services.DefaultAutosaveSchedule,
				Sources: cli.EnvVars("AUTOSAVE_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.BoolFlag{
				Name:    "acyclic-workflows",
				Usage:   "Reject connections that close a cycle while editing",
				Sources: cli.EnvVars("ACYCLIC_WORKFLOWS"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.InfoContext(ctx, "Initializing workflow designer API")

			dir := directory.Default()

			registry, err := cmd.NewSchemaRegistry(dir)
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(context.Background())
				if err != nil {
					logger.Error("Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			err = subscribeAuditLog(ctx, eventBus, log.WithModule("audit"))
			if err != nil {
				return err
			}

			opts := []services.EditorOption{
				services.WithEventPublisher(eventBus),
				services.WithLogger(logger),
				services.WithDirectory(dir),
				services.WithAcyclicGraphs(command.Bool("acyclic-workflows")),
			}

			if command.Bool("otel-enabled") {
				tracer, shutdown, err := otelhelper.NewTracer(ctx, "flowdesigner")
				if err != nil {
					return err
				}

				defer func() {
					if err := shutdown(context.Background()); err != nil {
						logger.Error("Failed to shut down tracer provider", "error", err)
					}
				}()

				opts = append(opts, services.WithTracer(tracer))
			}

			editor := services.NewEditor(persistence.WorkflowRepository(), registry, opts...)

			autosaver, err := services.NewAutosaver(editor, command.String("autosave-schedule"), logger)
			if err != nil {
				return err
			}

			err = autosaver.Start(ctx)
			if err != nil {
				return err
			}
			defer autosaver.Stop()

			err = NewAPI(logger, persistence, editor).Start(ctx, command.Int("port"))
			if err != nil {
				return fmt.Errorf("failed to start API server: %w", err)
			}

			// Flush what the last autosave tick missed.
			saved := autosaver.Run(context.Background())
			logger.Info("Workflow designer API stopped", "flushed", saved)

			return nil
		},
	}
}

// subscribeAuditLog logs every workflow lifecycle event received from the bus.
func subscribeAuditLog(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	handler := func(ctx context.Context, event any) error {
		e, ok := event.(eventbus.Event)
		if !ok {
			return nil
		}

		logger.InfoContext(ctx, "Workflow lifecycle event", "event_type", e.GetType(), "event", event)

		return nil
	}

	for _, eventType := range []events.EventType{
		events.WorkflowSavedEvent,
		events.WorkflowPublishedEvent,
		events.WorkflowUnpublishedEvent,
		events.WorkflowDeletedEvent,
	} {
		err := bus.Handle(eventType, handler)
		if err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	err := bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to workflow events: %w", err)
	}

	return nil
}
