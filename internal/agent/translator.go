// internal/agent/translator.go
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
	"github.com/kvirtue/gemini-computer-use/internal/config"
)

// documentScrollDelta is the fixed wheel delta for whole-document scrolls.
const documentScrollDelta = 300

// defaultScrollMagnitude is used when scroll_at omits a magnitude.
const defaultScrollMagnitude = 800

// Translator converts one proposed action into browser surface calls and
// produces the observation the model sees next. Per-action faults are
// absorbed into the observation; only context cancellation escalates.
type Translator struct {
	surface schemas.BrowserSurface
	mapper  *CoordinateMapper
	cfg     config.AgentConfig
	logger  *zap.Logger
}

func NewTranslator(surface schemas.BrowserSurface, mapper *CoordinateMapper, cfg config.AgentConfig, logger *zap.Logger) *Translator {
	return &Translator{
		surface: surface,
		mapper:  mapper,
		cfg:     cfg,
		logger:  logger.Named("translator"),
	}
}

// Execute runs one action to completion and captures the resulting page state.
// The returned error is fatal to the run; everything action-level lands in the
// observation's Note instead.
func (t *Translator) Execute(ctx context.Context, action schemas.ProposedAction) (schemas.ActionObservation, error) {
	obs := schemas.ActionObservation{}

	if action.Safety != nil {
		t.logger.Warn("Auto-acknowledging safety decision.",
			zap.String("action", action.Name),
			zap.String("decision", action.Safety.Decision),
			zap.String("explanation", action.Safety.Explanation))
		obs.SafetyAcknowledged = true
	}

	t.logger.Info("Executing action.", zap.String("action", action.Name), zap.Any("args", action.Args))

	settle := true
	if err := t.dispatch(ctx, action.Request, &obs, &settle); err != nil {
		if ctx.Err() != nil {
			return obs, ctx.Err()
		}
		obs.Note = err.Error()
		t.logger.Warn("Action fault absorbed.", zap.String("action", action.Name), zap.Error(err))
	}

	if settle {
		t.settle(ctx)
	}
	if err := ctx.Err(); err != nil {
		return obs, err
	}

	t.capture(ctx, &obs)
	return obs, nil
}

// dispatch performs the device operations for one request. settle is cleared
// for the cases that must skip the post-action settle step.
func (t *Translator) dispatch(ctx context.Context, req schemas.ActionRequest, obs *schemas.ActionObservation, settle *bool) error {
	switch a := req.(type) {
	case schemas.OpenBrowser:
		// The surface is already open when the loop starts.
		*settle = false
		return nil

	case schemas.ClickAt:
		x, y := t.mapper.MapPoint(a.X, a.Y)
		return t.surface.Click(ctx, x, y)

	case schemas.HoverAt:
		x, y := t.mapper.MapPoint(a.X, a.Y)
		return t.surface.Hover(ctx, x, y)

	case schemas.TypeTextAt:
		return t.typeTextAt(ctx, a)

	case schemas.ScrollDocument:
		return t.scrollDocument(ctx, a.Direction)

	case schemas.ScrollAt:
		return t.scrollAt(ctx, a)

	case schemas.Navigate:
		return t.navigate(ctx, a.URL, obs)

	case schemas.Search:
		return t.navigate(ctx, t.cfg.SearchURL, obs)

	case schemas.GoBack:
		return t.surface.GoBack(ctx)

	case schemas.GoForward:
		return t.surface.GoForward(ctx)

	case schemas.Wait:
		*settle = false
		return t.wait(ctx, a.Seconds)

	case schemas.KeyCombination:
		return t.surface.Key(ctx, a.Keys)

	case schemas.DragAndDrop:
		fromX, fromY := t.mapper.MapPoint(a.X, a.Y)
		toX, toY := t.mapper.MapPoint(a.DestX, a.DestY)
		return t.surface.Drag(ctx, fromX, fromY, toX, toY)

	case nil:
		// Unknown action name. Recorded as a no-op so the model learns it
		// asked for something this build does not support.
		*settle = false
		return fmt.Errorf("unsupported action")

	default:
		*settle = false
		return fmt.Errorf("unsupported action kind %q", a.Kind())
	}
}

func (t *Translator) typeTextAt(ctx context.Context, a schemas.TypeTextAt) error {
	x, y := t.mapper.MapPoint(a.X, a.Y)
	if err := t.surface.Click(ctx, x, y); err != nil {
		return err
	}
	if a.ClearBefore {
		if err := t.surface.Key(ctx, "Control+A"); err != nil {
			return err
		}
		if err := t.surface.Key(ctx, "Delete"); err != nil {
			return err
		}
	}
	if err := t.surface.Type(ctx, a.Text); err != nil {
		return err
	}
	if a.PressEnter {
		return t.surface.Key(ctx, "Enter")
	}
	return nil
}

func (t *Translator) scrollDocument(ctx context.Context, direction string) error {
	var dx, dy int
	switch strings.ToLower(direction) {
	case "up":
		dy = -documentScrollDelta
	case "down":
		dy = documentScrollDelta
	case "left":
		dx = -documentScrollDelta
	case "right":
		dx = documentScrollDelta
	default:
		// No-op that still counts as an executed step.
		return fmt.Errorf("unknown scroll direction %q", direction)
	}
	x, y := t.mapper.MapPoint(normalizedRange/2, normalizedRange/2)
	return t.surface.Scroll(ctx, x, y, dx, dy)
}

func (t *Translator) scrollAt(ctx context.Context, a schemas.ScrollAt) error {
	magnitude := a.Magnitude
	if magnitude <= 0 {
		magnitude = defaultScrollMagnitude
	}

	x, y := t.mapper.MapPoint(a.X, a.Y)

	var dx, dy int
	switch strings.ToLower(a.Direction) {
	case "up":
		dy = -t.mapper.Denormalize(magnitude, t.mapper.viewport.Height)
	case "down":
		dy = t.mapper.Denormalize(magnitude, t.mapper.viewport.Height)
	case "left":
		dx = -t.mapper.Denormalize(magnitude, t.mapper.viewport.Width)
	case "right":
		dx = t.mapper.Denormalize(magnitude, t.mapper.viewport.Width)
	default:
		return fmt.Errorf("unknown scroll direction %q", a.Direction)
	}
	return t.surface.Scroll(ctx, x, y, dx, dy)
}

// navigate loads url, recording the pre-navigation URL in the observation so a
// failed navigation still tells the model where the browser actually is.
func (t *Translator) navigate(ctx context.Context, url string, obs *schemas.ActionObservation) error {
	url = NormalizeURL(url)

	before, urlErr := t.surface.CurrentURL(ctx)
	if err := t.surface.Navigate(ctx, url); err != nil {
		if urlErr == nil {
			obs.URL = before
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

func (t *Translator) wait(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		seconds = 5
	}
	select {
	case <-time.After(time.Duration(seconds) * time.Second):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// settle gives the page a fixed pause plus a bounded idle wait. An idle
// timeout is swallowed: the screenshot taken right after approximates settled
// state well enough.
func (t *Translator) settle(ctx context.Context) {
	select {
	case <-time.After(t.cfg.SettleDelay):
	case <-ctx.Done():
		return
	}
	if err := t.surface.WaitIdle(ctx, t.cfg.IdleTimeout); err != nil {
		t.logger.Debug("Page did not settle in time, proceeding.", zap.Error(err))
	}
}

// capture fills in the observation's URL and screenshot best-effort.
func (t *Translator) capture(ctx context.Context, obs *schemas.ActionObservation) {
	if url, err := t.surface.CurrentURL(ctx); err == nil {
		obs.URL = url
	} else if obs.Note == "" {
		obs.Note = fmt.Sprintf("failed to read URL: %v", err)
	}

	shot, err := t.surface.Screenshot(ctx)
	if err != nil {
		t.logger.Warn("Screenshot capture failed.", zap.Error(err))
		if obs.Note == "" {
			obs.Note = fmt.Sprintf("failed to capture screenshot: %v", err)
		}
		return
	}
	obs.Screenshot = shot
}

// NormalizeURL prefixes bare hosts with https.
func NormalizeURL(url string) string {
	if url == "" {
		return url
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "https://" + url
	}
	return url
}
