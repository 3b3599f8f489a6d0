package schemas

// -- Conversation Schemas --
//
// The conversation is the model's working memory for one run: an append-only
// ordered log of strongly typed turns. The first turn is always the seed;
// after that, model turns and observation turns strictly alternate.

// Turn is one entry in the conversation log.
type Turn interface {
	isTurn()
}

// SeedTurn is the opening user turn: the task instruction plus a screenshot of
// the starting page.
type SeedTurn struct {
	Instruction string
	Screenshot  []byte
}

// ModelTurn is what the model said: its text fragments and the actions it
// proposed. An empty Actions slice means the model considers the task done.
type ModelTurn struct {
	TextFragments []string
	Actions       []ProposedAction
	// Malformed is set when the provider reported a malformed function call;
	// the controller retries the turn instead of failing the run.
	Malformed bool
	// Raw preserves the provider-native content so the next request can replay
	// the model's own turn byte-for-byte. Opaque to everything but the client
	// that produced it.
	Raw any
}

// ObservationRecord pairs an executed action's name with its observation.
type ObservationRecord struct {
	Action      string
	Observation ActionObservation
}

// ObservationTurn feeds the results of one model turn's actions back to the
// model, in the exact order the actions were executed.
type ObservationTurn struct {
	Records []ObservationRecord
}

func (*SeedTurn) isTurn()        {}
func (*ModelTurn) isTurn()       {}
func (*ObservationTurn) isTurn() {}

// FinalResponse joins the model turn's text fragments into the run's final
// textual answer.
func (t *ModelTurn) FinalResponse() string {
	out := ""
	for i, frag := range t.TextFragments {
		if i > 0 {
			out += " "
		}
		out += frag
	}
	return out
}
