package schemas

// -- Action Schemas --
//
// The model proposes actions by name with loosely typed arguments. Before they
// reach the translator they are parsed into the closed set of ActionRequest
// variants below, so adding an action kind is a compile-time-checked extension
// rather than a silently ignored string.

// ActionKind identifies one variant of the closed ActionRequest set.
type ActionKind string

const (
	KindOpenBrowser    ActionKind = "open_web_browser"
	KindClickAt        ActionKind = "click_at"
	KindHoverAt        ActionKind = "hover_at"
	KindTypeTextAt     ActionKind = "type_text_at"
	KindScrollDocument ActionKind = "scroll_document"
	KindScrollAt       ActionKind = "scroll_at"
	KindNavigate       ActionKind = "navigate"
	KindSearch         ActionKind = "search"
	KindGoBack         ActionKind = "go_back"
	KindGoForward      ActionKind = "go_forward"
	KindWait           ActionKind = "wait_5_seconds"
	KindKeyCombination ActionKind = "key_combination"
	KindDragAndDrop    ActionKind = "drag_and_drop"
)

// ActionRequest is the closed tagged variant of everything the model may ask
// the browser to do. Coordinates are normalized integers in [0,999] and must
// pass through the coordinate mapper before touching pixel-based operations.
type ActionRequest interface {
	Kind() ActionKind
}

// OpenBrowser is a no-op: the surface is already open when the loop starts.
type OpenBrowser struct{}

// ClickAt clicks at a normalized coordinate.
type ClickAt struct {
	X, Y int
}

// HoverAt moves the pointer to a normalized coordinate without clicking.
type HoverAt struct {
	X, Y int
}

// TypeTextAt focuses the element at a normalized coordinate, optionally clears
// the existing content, types Text literally, and optionally presses Enter.
type TypeTextAt struct {
	X, Y        int
	Text        string
	ClearBefore bool
	PressEnter  bool
}

// ScrollDocument scrolls the whole document in one of "up", "down", "left",
// "right". An unknown direction is a no-op that still counts as an executed
// step.
type ScrollDocument struct {
	Direction string
}

// ScrollAt wheel-scrolls at a normalized coordinate. Magnitude is normalized
// too and denormalized against the axis matching Direction.
type ScrollAt struct {
	X, Y      int
	Direction string
	Magnitude int
}

// Navigate loads URL directly. A missing scheme is normalized to https.
type Navigate struct {
	URL string
}

// Search returns the browser to the configured search home page.
type Search struct{}

// GoBack triggers history-back; a no-op when no history exists.
type GoBack struct{}

// GoForward triggers history-forward; a no-op when no forward entry exists.
type GoForward struct{}

// Wait pauses the run cooperatively without touching the browser.
type Wait struct {
	Seconds int
}

// KeyCombination presses keys like "Control+A": every key but the last is held
// as a modifier while the last is pressed.
type KeyCombination struct {
	Keys string
}

// DragAndDrop presses at one normalized coordinate and releases at another.
type DragAndDrop struct {
	X, Y         int
	DestX, DestY int
}

func (OpenBrowser) Kind() ActionKind    { return KindOpenBrowser }
func (ClickAt) Kind() ActionKind        { return KindClickAt }
func (HoverAt) Kind() ActionKind        { return KindHoverAt }
func (TypeTextAt) Kind() ActionKind     { return KindTypeTextAt }
func (ScrollDocument) Kind() ActionKind { return KindScrollDocument }
func (ScrollAt) Kind() ActionKind       { return KindScrollAt }
func (Navigate) Kind() ActionKind       { return KindNavigate }
func (Search) Kind() ActionKind         { return KindSearch }
func (GoBack) Kind() ActionKind         { return KindGoBack }
func (GoForward) Kind() ActionKind      { return KindGoForward }
func (Wait) Kind() ActionKind           { return KindWait }
func (KeyCombination) Kind() ActionKind { return KindKeyCombination }
func (DragAndDrop) Kind() ActionKind    { return KindDragAndDrop }

// SafetyDecision is attached by the model when an action needs an explicit
// acknowledgement before being carried out.
type SafetyDecision struct {
	Decision    string `json:"decision"`
	Explanation string `json:"explanation"`
}

// ProposedAction pairs a parsed ActionRequest with the raw name and arguments
// the model emitted, for the action log and the function response.
type ProposedAction struct {
	// Name is the function name exactly as the model emitted it.
	Name string
	// Args are the raw arguments, kept for the action log.
	Args map[string]any
	// Request is the parsed variant. Nil when the model named an action this
	// build does not know; the translator treats that as a recorded no-op.
	Request ActionRequest
	// Safety is non-nil when the model flagged the action for acknowledgement.
	Safety *SafetyDecision
}

// ActionObservation is the evidence produced by executing one action: where
// the browser ended up and what the page looked like. It is paired 1:1 with
// the action that produced it.
type ActionObservation struct {
	// URL is the page URL after the action settled. For a failed navigation it
	// is the pre-navigation URL.
	URL string
	// Screenshot is an opaque PNG buffer. It may be pruned from older turns to
	// bound conversation size; the URL and action name are always retained.
	Screenshot []byte
	// Note records a non-fatal fault absorbed during execution, if any.
	Note string
	// SafetyAcknowledged is set when a flagged action was auto-acknowledged.
	SafetyAcknowledged bool
}
