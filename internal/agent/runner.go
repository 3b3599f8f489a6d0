// internal/agent/runner.go
package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
	"github.com/kvirtue/gemini-computer-use/internal/browser"
	"github.com/kvirtue/gemini-computer-use/internal/config"
)

// SurfaceFactory opens the browser session a run executes against.
type SurfaceFactory func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (schemas.BrowserSurface, error)

// Runner launches an exclusive browser session per task and drives a
// controller over it. The model client and the optional run store are shared
// across runs; everything else is per-run state.
type Runner struct {
	cfg        *config.Config
	model      schemas.ModelClient
	store      schemas.RunStore
	logger     *zap.Logger
	newSurface SurfaceFactory
}

// NewRunner wires a runner. store may be nil when run auditing is disabled.
func NewRunner(cfg *config.Config, model schemas.ModelClient, store schemas.RunStore, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		model:  model,
		store:  store,
		logger: logger.Named("runner"),
		newSurface: func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (schemas.BrowserSurface, error) {
			return browser.NewSurface(ctx, cfg, logger)
		},
	}
}

// RunTask executes one task end to end. The browser session is released on
// every exit path; a release fault is logged and never overrides the result.
func (r *Runner) RunTask(ctx context.Context, task schemas.Task) (*schemas.RunResult, error) {
	if task.Viewport.Width <= 0 || task.Viewport.Height <= 0 {
		task.Viewport = schemas.DefaultViewport
	}

	browserCfg := r.cfg.Browser
	browserCfg.Width = task.Viewport.Width
	browserCfg.Height = task.Viewport.Height

	surface, err := r.newSurface(ctx, browserCfg, r.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := surface.Close(context.Background()); err != nil {
			r.logger.Warn("Browser session release failed.", zap.Error(err))
		}
	}()

	mapper := NewCoordinateMapper(task.Viewport, r.logger)
	translator := NewTranslator(surface, mapper, r.cfg.Agent, r.logger)
	controller := NewController(r.model, surface, translator, r.cfg.Agent, r.logger)

	result, err := controller.Run(ctx, task)
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := r.store.SaveRun(ctx, result); err != nil {
			r.logger.Warn("Failed to persist run.",
				zap.String("run_id", result.RunID),
				zap.Error(err))
		}
	}

	return result, nil
}
