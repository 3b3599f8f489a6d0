// internal/browser/surface.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
	"github.com/kvirtue/gemini-computer-use/internal/config"
)

// Surface is one exclusively owned browser tab driven over CDP. It implements
// schemas.BrowserSurface. One Surface belongs to exactly one run; no two
// operations on it are ever issued concurrently.
type Surface struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    config.BrowserConfig

	// allocCancel tears down the exec allocator (the browser process).
	allocCancel context.CancelFunc

	targetID target.ID

	closeOnce sync.Once
}

var _ schemas.BrowserSurface = (*Surface)(nil)

// NewSurface launches a browser process and opens a single tab sized to the
// configured viewport. The caller owns the returned surface and must Close it
// on every exit path.
func NewSurface(parentCtx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Surface, error) {
	surfaceID := uuid.New().String()
	log := logger.Named("surface").With(zap.String("surface_id", surfaceID))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.WindowSize(cfg.Width, cfg.Height),
		// Lock the browser down: the model steers it, nothing else should.
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-file-system", true),
		chromedp.Flag("disable-plugins", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-sync", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &Surface{
		id:          surfaceID,
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		logger:      log,
		cfg:         cfg,
	}

	// Establish the target (tab) and pin the viewport.
	if err := chromedp.Run(ctx, chromedp.EmulateViewport(int64(cfg.Width), int64(cfg.Height))); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	if t := chromedp.FromContext(ctx).Target; t != nil {
		s.targetID = t.TargetID
	}

	s.watchPopups()

	log.Info("Browser surface ready.",
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("headless", cfg.Headless))
	return s, nil
}

// ID returns the surface identifier.
func (s *Surface) ID() string {
	return s.id
}

// watchPopups keeps the session single-tab: the computer-use model only
// reasons about one page, so a popup is closed and its URL reopened in the
// main tab.
func (s *Surface) watchPopups() {
	chromedp.ListenBrowser(s.ctx, func(ev interface{}) {
		created, ok := ev.(*target.EventTargetCreated)
		if !ok {
			return
		}
		info := created.TargetInfo
		if info.Type != "page" || info.TargetID == s.targetID {
			return
		}
		// Listeners must not block; adopt the popup asynchronously.
		go s.adoptPopup(info)
	})
}

func (s *Surface) adoptPopup(info *target.Info) {
	s.logger.Debug("Redirecting popup into main tab.", zap.String("url", info.URL))

	c := chromedp.FromContext(s.ctx)
	if c == nil || c.Browser == nil {
		return
	}
	browserCtx := cdp.WithExecutor(s.ctx, c.Browser)
	if err := target.CloseTarget(info.TargetID).Do(browserCtx); err != nil {
		s.logger.Debug("Failed to close popup target.", zap.Error(err))
	}
	if info.URL == "" || info.URL == "about:blank" {
		return
	}
	if err := chromedp.Run(s.ctx, chromedp.Navigate(info.URL)); err != nil {
		s.logger.Warn("Failed to open popup URL in main tab.", zap.Error(err))
	}
}

// run executes chromedp actions bounded by both the surface lifetime and the
// caller's context.
func (s *Surface) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the given absolute URL, bounded by the navigation timeout.
func (s *Surface) Navigate(ctx context.Context, url string) error {
	s.logger.Info("Navigating.", zap.String("url", url))

	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	if err := s.run(navCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %q failed: %w", url, err)
	}
	return nil
}

// Click issues a single left click at the given pixel coordinate.
func (s *Surface) Click(ctx context.Context, x, y int) error {
	return s.run(ctx, chromedp.MouseClickXY(float64(x), float64(y)))
}

// Hover moves the pointer to the given pixel coordinate without clicking.
func (s *Surface) Hover(ctx context.Context, x, y int) error {
	return s.run(ctx, chromedp.MouseEvent(input.MouseMoved, float64(x), float64(y)))
}

// Type sends the text as keystrokes to the focused element.
func (s *Surface) Type(ctx context.Context, text string) error {
	return s.run(ctx, chromedp.KeyEvent(text))
}

// Key presses a combination such as "Control+A": every key before the last is
// held down as a modifier while the final key is pressed.
func (s *Surface) Key(ctx context.Context, keys string) error {
	parts := strings.Split(keys, "+")

	var modifiers input.Modifier
	for _, part := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "control", "ctrl":
			modifiers |= input.ModifierCtrl
		case "shift":
			modifiers |= input.ModifierShift
		case "alt":
			modifiers |= input.ModifierAlt
		case "meta", "command":
			modifiers |= input.ModifierCommand
		default:
			return fmt.Errorf("unsupported modifier key %q in combination %q", part, keys)
		}
	}

	final := ResolveKey(parts[len(parts)-1])
	return s.run(ctx, chromedp.KeyEvent(final, chromedp.KeyModifiers(modifiers)))
}

// Scroll dispatches a wheel event at (x, y) with the given pixel deltas.
func (s *Surface) Scroll(ctx context.Context, x, y, deltaX, deltaY int) error {
	return s.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		return input.DispatchMouseEvent(input.MouseWheel, float64(x), float64(y)).
			WithDeltaX(float64(deltaX)).
			WithDeltaY(float64(deltaY)).
			Do(c)
	}))
}

// Drag presses the left button at (fromX, fromY), moves to (toX, toY), and
// releases.
func (s *Surface) Drag(ctx context.Context, fromX, fromY, toX, toY int) error {
	press := func(c context.Context) error {
		return input.DispatchMouseEvent(input.MousePressed, float64(fromX), float64(fromY)).
			WithButton(input.Left).
			WithClickCount(1).
			Do(c)
	}
	move := func(c context.Context) error {
		return input.DispatchMouseEvent(input.MouseMoved, float64(toX), float64(toY)).
			WithButton(input.Left).
			Do(c)
	}
	release := func(c context.Context) error {
		return input.DispatchMouseEvent(input.MouseReleased, float64(toX), float64(toY)).
			WithButton(input.Left).
			WithClickCount(1).
			Do(c)
	}

	return s.run(ctx,
		chromedp.ActionFunc(press),
		chromedp.ActionFunc(move),
		chromedp.ActionFunc(release),
	)
}

// GoBack triggers history-back. Without history the browser ignores it.
func (s *Surface) GoBack(ctx context.Context) error {
	return s.run(ctx, chromedp.NavigateBack())
}

// GoForward triggers history-forward.
func (s *Surface) GoForward(ctx context.Context) error {
	return s.run(ctx, chromedp.NavigateForward())
}

// WaitIdle blocks until the document body is ready or the timeout elapses.
// Callers treat a timeout as "proceed anyway": the screenshot taken right
// after is an acceptable approximation of settled state.
func (s *Surface) WaitIdle(ctx context.Context, timeout time.Duration) error {
	idleCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.run(idleCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("idle wait did not settle: %w", err)
	}
	return nil
}

// Screenshot captures the current viewport as PNG bytes.
func (s *Surface) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// CurrentURL returns the main tab's location.
func (s *Surface) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read current URL: %w", err)
	}
	return url, nil
}

// Close tears down the tab and the browser process. Safe to call more than
// once; only the first call does work.
func (s *Surface) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Info("Closing browser surface.")
		s.cancel()
		s.allocCancel()
	})
	return nil
}
