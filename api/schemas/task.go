package schemas

// -- Task and Result Schemas --

// Viewport holds the browser viewport dimensions for a run, in device pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultViewport matches the dimensions the computer-use model is tuned for.
var DefaultViewport = Viewport{Width: 1440, Height: 900}

// Task is the immutable input of a single run: what to do, where to start, and
// how large the screen is. It is created once per invocation and owned by the
// controller for the lifetime of that invocation.
type Task struct {
	// Instruction is the natural-language description of the work,
	// e.g. "Go to Google and search for salesforce".
	Instruction string `json:"instruction"`
	// StartURL is the page loaded before the model sees the first screenshot.
	StartURL string `json:"start_url"`
	// Viewport fixes the axis sizes used to denormalize model coordinates.
	Viewport Viewport `json:"viewport"`
}

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	// StatusCompleted means the model returned a response with no further
	// actions, i.e. it considers the task done.
	StatusCompleted RunStatus = "completed"
	// StatusMaxTurnsExceeded means the turn budget ran out while the model was
	// still proposing actions. A safety valve, not an error.
	StatusMaxTurnsExceeded RunStatus = "max_turns_exceeded"
	// StatusFailed means the model channel broke or an action faulted in a way
	// that could not be absorbed.
	StatusFailed RunStatus = "failed"
)

// ActionLogEntry records one action the model asked for, in the order issued.
type ActionLogEntry struct {
	Action string         `json:"action"`
	Args   map[string]any `json:"args,omitempty"`
}

// RunResult is the single structure handed back to the caller on every exit
// path. It is finalized exactly once; partial action logs survive failures so
// the caller can see exactly what was attempted.
type RunResult struct {
	RunID           string           `json:"run_id"`
	Status          RunStatus        `json:"status"`
	ActionsTaken    []ActionLogEntry `json:"actions_taken"`
	FinalURL        string           `json:"final_url"`
	FinalResponse   string           `json:"final_response"`
	FinalScreenshot []byte           `json:"final_screenshot,omitempty"`
	// Error carries the fatal fault description when Status is StatusFailed.
	Error string `json:"error,omitempty"`
}
