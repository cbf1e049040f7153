package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// DefaultAutosaveSchedule flushes dirty drafts every minute.
const DefaultAutosaveSchedule = "@every 1m"

// ErrAutosaveRunning is returned by Start on an already started autosaver.
var ErrAutosaveRunning = errors.New("autosave already running")

// Autosaver periodically saves every editing session with unsaved changes.
type Autosaver struct {
	editor   *Editor
	schedule string
	logger   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewAutosaver validates the schedule, which accepts standard five-field cron
// expressions and descriptors such as "@every 30s".
func NewAutosaver(editor *Editor, schedule string, logger *slog.Logger) (*Autosaver, error) {
	if schedule == "" {
		schedule = DefaultAutosaveSchedule
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid autosave schedule %q: %w", schedule, err)
	}

	return &Autosaver{
		editor:   editor,
		schedule: schedule,
		logger:   logger.With("module", "autosave"),
	}, nil
}

// Start begins flushing on the schedule until ctx is done or Stop is called.
func (a *Autosaver) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cron != nil {
		return ErrAutosaveRunning
	}

	a.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := a.cron.AddFunc(a.schedule, func() { a.Run(ctx) })
	if err != nil {
		a.cron = nil

		return fmt.Errorf("failed to schedule autosave: %w", err)
	}

	a.cron.Start()
	a.logger.InfoContext(ctx, "Autosave started", "schedule", a.schedule)

	go func() {
		<-ctx.Done()
		a.Stop()
	}()

	return nil
}

// Run performs one flush.
func (a *Autosaver) Run(ctx context.Context) int {
	saved, err := a.editor.FlushDirty(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "Autosave finished with errors", "saved", saved, "error", err)

		return saved
	}

	if saved > 0 {
		a.logger.InfoContext(ctx, "Autosaved workflows", "saved", saved)
	}

	return saved
}

// Stop stops the schedule and waits for a running flush to finish.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	c := a.cron
	a.cron = nil
	a.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
