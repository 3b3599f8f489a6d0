package schemas

import (
	"context"
	"time"
)

// -- Collaborator Contracts --
//
// The loop consumes two capabilities it does not implement: a vision model and
// a controllable browser. Both are injected per run so tests can substitute
// doubles without shared process state.

// ModelClient asks the vision model what to do next given the full ordered
// conversation. The returned ModelTurn has zero actions when the model
// considers the task finished. Any transport, parse, or provider fault
// surfaces as a single error: the model channel is either working or the run
// is over.
type ModelClient interface {
	Converse(ctx context.Context, history []Turn) (*ModelTurn, error)
}

// BrowserSurface is one exclusively owned browser session. All coordinates are
// device pixels; denormalization happens before this boundary. Any call may
// fail; whether a failure aborts the run is the caller's policy, not the
// surface's.
type BrowserSurface interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, x, y int) error
	Hover(ctx context.Context, x, y int) error
	Type(ctx context.Context, text string) error
	// Key presses a combination such as "Control+A" or a single key name.
	Key(ctx context.Context, keys string) error
	// Scroll dispatches a wheel event at (x, y) with the given deltas.
	Scroll(ctx context.Context, x, y, deltaX, deltaY int) error
	Drag(ctx context.Context, fromX, fromY, toX, toY int) error
	GoBack(ctx context.Context) error
	GoForward(ctx context.Context) error
	// WaitIdle blocks until the page looks settled or the timeout elapses.
	// A timeout is reported as an error but is safe to ignore: the screenshot
	// taken afterwards approximates settled state well enough.
	WaitIdle(ctx context.Context, timeout time.Duration) error
	Screenshot(ctx context.Context) ([]byte, error)
	CurrentURL(ctx context.Context) (string, error)
	// Close releases the session. Must be called on every exit path.
	Close(ctx context.Context) error
}

// RunStore persists finished runs for audit. Implementations must never let a
// storage fault alter the RunResult handed to the caller.
type RunStore interface {
	SaveRun(ctx context.Context, result *RunResult) error
}
