// internal/agent/controller.go
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
	"github.com/kvirtue/gemini-computer-use/internal/config"
)

// ErrEmptyInstruction rejects a task before the loop starts.
var ErrEmptyInstruction = errors.New("task instruction must not be empty")

// loopState names the controller's position in the action loop.
type loopState string

const (
	stateSeeded           loopState = "SEEDED"
	stateAwaitingModel    loopState = "AWAITING_MODEL"
	stateExecutingActions loopState = "EXECUTING_ACTIONS"
	stateCompleted        loopState = "COMPLETED"
	stateMaxTurnsExceeded loopState = "MAX_TURNS_EXCEEDED"
	stateFailed           loopState = "FAILED"
)

// Controller drives one run: it seeds the conversation, alternates asking the
// model and executing its actions, enforces the turn budget, and produces the
// final RunResult. It owns the conversation exclusively and never outlives the
// run.
type Controller struct {
	model      schemas.ModelClient
	surface    schemas.BrowserSurface
	translator *Translator
	cfg        config.AgentConfig
	logger     *zap.Logger
}

func NewController(model schemas.ModelClient, surface schemas.BrowserSurface, translator *Translator, cfg config.AgentConfig, logger *zap.Logger) *Controller {
	return &Controller{
		model:      model,
		surface:    surface,
		translator: translator,
		cfg:        cfg,
		logger:     logger.Named("controller"),
	}
}

// Run executes task to a terminal state. The caller always receives a
// well-formed RunResult; model-channel faults are reflected as status
// "failed" with the partial action log preserved. The returned error is
// reserved for input faults and context cancellation.
func (c *Controller) Run(ctx context.Context, task schemas.Task) (*schemas.RunResult, error) {
	if task.Instruction == "" {
		return nil, ErrEmptyInstruction
	}

	result := &schemas.RunResult{
		RunID:  uuid.NewString(),
		Status: schemas.StatusFailed,
	}
	conversation := NewConversation()
	state := stateSeeded

	c.logger.Info("Run starting.",
		zap.String("run_id", result.RunID),
		zap.String("instruction", task.Instruction),
		zap.Int("max_turns", c.cfg.MaxTurns))

	if err := c.seed(ctx, task, conversation); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result.Error = err.Error()
		c.finalize(ctx, result, stateFailed)
		return result, nil
	}
	state = stateAwaitingModel

	for turn := 1; turn <= c.cfg.MaxTurns; turn++ {
		conversation.PruneScreenshots(c.cfg.MaxRecentScreenshots)

		c.logger.Info("Consulting model.",
			zap.String("run_id", result.RunID),
			zap.Int("turn", turn),
			zap.String("state", string(state)))

		modelTurn, err := c.model.Converse(ctx, conversation.Turns())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.Error = err.Error()
			c.finalize(ctx, result, stateFailed)
			return result, nil
		}

		if modelTurn.Malformed {
			// The provider mangled its own function call. Re-ask with the
			// same history; the retry still consumes a turn.
			c.logger.Warn("Malformed model turn, re-asking.", zap.Int("turn", turn))
			continue
		}

		if len(modelTurn.Actions) == 0 {
			result.FinalResponse = modelTurn.FinalResponse()
			c.finalize(ctx, result, stateCompleted)
			return result, nil
		}

		conversation.AppendModel(modelTurn)
		state = stateExecutingActions

		records, err := c.executeTurn(ctx, modelTurn, result)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.Error = err.Error()
			c.finalize(ctx, result, stateFailed)
			return result, nil
		}

		conversation.AppendObservations(records)
		state = stateAwaitingModel
	}

	c.finalize(ctx, result, stateMaxTurnsExceeded)
	return result, nil
}

// seed navigates to the starting page and records the opening turn.
func (c *Controller) seed(ctx context.Context, task schemas.Task, conversation *Conversation) error {
	startURL := task.StartURL
	if startURL == "" {
		startURL = c.cfg.StartURL
	}
	startURL = NormalizeURL(startURL)

	if err := c.surface.Navigate(ctx, startURL); err != nil {
		return fmt.Errorf("failed to load starting page %s: %w", startURL, err)
	}
	if err := c.surface.WaitIdle(ctx, c.cfg.IdleTimeout); err != nil {
		c.logger.Debug("Starting page did not settle in time, proceeding.", zap.Error(err))
	}

	screenshot, err := c.surface.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to capture starting screenshot: %w", err)
	}

	conversation.Seed(task.Instruction, screenshot)
	return nil
}

// executeTurn runs one model turn's actions strictly in the order received,
// appending each to the run's action log as it goes.
func (c *Controller) executeTurn(ctx context.Context, modelTurn *schemas.ModelTurn, result *schemas.RunResult) ([]schemas.ObservationRecord, error) {
	records := make([]schemas.ObservationRecord, 0, len(modelTurn.Actions))

	for _, action := range modelTurn.Actions {
		result.ActionsTaken = append(result.ActionsTaken, schemas.ActionLogEntry{
			Action: action.Name,
			Args:   action.Args,
		})

		obs, err := c.translator.Execute(ctx, action)
		if err != nil {
			return nil, fmt.Errorf("action %s aborted: %w", action.Name, err)
		}

		records = append(records, schemas.ObservationRecord{
			Action:      action.Name,
			Observation: obs,
		})
	}

	return records, nil
}

// finalize captures a last URL/screenshot snapshot and stamps the terminal
// status. Snapshot faults are logged, never escalated: they must not mask the
// run's actual outcome.
func (c *Controller) finalize(ctx context.Context, result *schemas.RunResult, state loopState) {
	switch state {
	case stateCompleted:
		result.Status = schemas.StatusCompleted
	case stateMaxTurnsExceeded:
		result.Status = schemas.StatusMaxTurnsExceeded
	default:
		result.Status = schemas.StatusFailed
	}

	if url, err := c.surface.CurrentURL(ctx); err == nil {
		result.FinalURL = url
	} else {
		c.logger.Warn("Failed to read final URL.", zap.Error(err))
	}
	if shot, err := c.surface.Screenshot(ctx); err == nil {
		result.FinalScreenshot = shot
	} else {
		c.logger.Warn("Failed to capture final screenshot.", zap.Error(err))
	}

	c.logger.Info("Run finished.",
		zap.String("run_id", result.RunID),
		zap.String("status", string(result.Status)),
		zap.Int("actions_taken", len(result.ActionsTaken)),
		zap.String("final_url", result.FinalURL))
}
